package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/vkb-viewer/pkg/logging"
)

// corsMiddleware allows cross-origin requests from the browser UI. The
// viewer serves localhost traffic; the policy mirrors the original
// allow-all proxy.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// observeMiddleware tags each request with an ID and records logs and
// metrics on completion
func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		s.metrics.HTTPRequestsInFlight.Inc()
		defer s.metrics.HTTPRequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.metrics.RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status), elapsed)
		s.logger.Info("request",
			logging.RequestID(requestID),
			logging.String("method", r.Method),
			logging.Path(r.URL.Path),
			logging.Int("status", rec.status),
			logging.Latency(elapsed),
		)
	})
}
