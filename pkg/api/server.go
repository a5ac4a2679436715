package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dd0wney/vkb-viewer/pkg/filter"
	"github.com/dd0wney/vkb-viewer/pkg/gateway"
	"github.com/dd0wney/vkb-viewer/pkg/health"
	"github.com/dd0wney/vkb-viewer/pkg/logging"
	"github.com/dd0wney/vkb-viewer/pkg/metrics"
	"github.com/dd0wney/vkb-viewer/pkg/prefs"
	"github.com/dd0wney/vkb-viewer/pkg/snapshot"
)

// Server is the viewer HTTP API. It owns the snapshot holder and hands
// the pure filter pipeline explicit FilterConfig values; handlers never
// read ambient filter state.
type Server struct {
	holder     *snapshot.Holder
	gw         *gateway.Client // nil when running batch-only
	prefs      *prefs.Store    // nil disables preference persistence
	logger     logging.Logger
	metrics    *metrics.Registry
	checker    *health.Checker
	filterOpts filter.Options
	staticDir  string
	version    string
	startTime  time.Time
}

// Config configures the API server
type Config struct {
	Gateway    *gateway.Client
	Prefs      *prefs.Store
	Logger     logging.Logger
	Metrics    *metrics.Registry
	FilterOpts filter.Options
	StaticDir  string
	Version    string
}

// NewServer creates the viewer API server
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.Default()
	}

	s := &Server{
		holder:     snapshot.NewHolder(),
		gw:         cfg.Gateway,
		prefs:      cfg.Prefs,
		logger:     logger.With(logging.Component("api")),
		metrics:    reg,
		checker:    health.NewChecker(),
		filterOpts: cfg.FilterOpts,
		staticDir:  cfg.StaticDir,
		version:    cfg.Version,
		startTime:  time.Now(),
	}
	s.registerChecks()
	return s
}

// Holder exposes the snapshot holder for startup loading
func (s *Server) Holder() *snapshot.Holder {
	return s.holder
}

// Handler builds the full route table wrapped in CORS, request-ID,
// logging and metrics middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Team management
	mux.HandleFunc("GET /api/teams", s.handleListTeams)
	mux.HandleFunc("POST /api/teams", s.handleSetTeams)
	mux.HandleFunc("GET /api/current-teams", s.handleCurrentTeams)
	mux.HandleFunc("GET /api/config", s.handleConfig)

	// Data queries
	mux.HandleFunc("GET /api/entities", s.handleQueryEntities)
	mux.HandleFunc("GET /api/relations", s.handleQueryRelations)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	// Snapshot and projection
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("POST /api/graph", s.handleGraph)
	mux.HandleFunc("GET /api/whats-new", s.handleWhatsNew)
	mux.HandleFunc("POST /api/baseline", s.handleUpdateBaseline)

	// Mutations proxied to the query service (undo path)
	mux.HandleFunc("POST /api/entities", s.handleCreateEntity)
	mux.HandleFunc("DELETE /api/entities/{name}", s.handleDeleteEntity)
	mux.HandleFunc("POST /api/relations", s.handleCreateRelation)

	// Operational endpoints
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleLiveness)
	mux.Handle("GET /metrics", s.metrics.Handler())

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	return s.corsMiddleware(s.observeMiddleware(mux))
}

func (s *Server) registerChecks() {
	s.checker.Register("snapshot", func() health.Check {
		snap := s.holder.Current()
		if snap == nil {
			return health.Degraded("snapshot", "no snapshot loaded")
		}
		check := health.Healthy("snapshot", "snapshot loaded")
		check.Details = map[string]any{
			"entities":  snap.EntityCount(),
			"relations": snap.RelationCount(),
		}
		return check
	})

	if s.gw != nil {
		s.checker.Register("gateway", func() health.Check {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			status, err := s.gw.Health(ctx)
			if err != nil {
				return health.Unhealthy("gateway", err.Error())
			}
			check := health.Healthy("gateway", status.Status)
			check.Details = map[string]any{
				"storage": status.Storage,
				"search":  status.Search,
				"graph":   status.Graph,
			}
			return check
		})
	}
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

// errorBody is the wire shape of an error response. State makes the
// waiting / failed / empty conditions distinguishable to the UI.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	State   string `json:"state,omitempty"`
}

// respondError sends a JSON error response
func (s *Server) respondError(w http.ResponseWriter, status int, errMsg, detail string) {
	s.respondJSON(w, status, errorBody{Error: errMsg, Message: detail})
}
