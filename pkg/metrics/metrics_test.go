package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistryRecordsMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/api/teams", "200", 5*time.Millisecond)
	r.RecordSnapshotLoad("upload", 10, 4, 1)
	r.RecordPipelineRun(2*time.Millisecond, 8, 3, 0, 2)
	r.RecordGatewayRequest("teams", "ok", time.Millisecond)

	if got := testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("GET", "/api/teams", "200")); got != 1 {
		t.Errorf("http requests = %f, want 1", got)
	}
	if got := testutil.ToFloat64(r.SnapshotEntities); got != 10 {
		t.Errorf("snapshot entities = %f, want 10", got)
	}
	if got := testutil.ToFloat64(r.IngestSkippedTotal); got != 1 {
		t.Errorf("skipped = %f, want 1", got)
	}
	if got := testutil.ToFloat64(r.VisibleNodes); got != 8 {
		t.Errorf("visible nodes = %f, want 8", got)
	}
	if got := testutil.ToFloat64(r.DanglingDroppedTotal); got != 2 {
		t.Errorf("dangling = %f, want 2", got)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()

	a.RecordPipelineRun(time.Millisecond, 5, 5, 0, 0)
	if got := testutil.ToFloat64(b.PipelineRunsTotal); got != 0 {
		t.Errorf("second registry saw first registry's runs: %f", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	r := NewRegistry()
	r.RecordSnapshotLoad("upload", 3, 2, 0)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()

	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(buf.String(), "vkb_snapshot_entities") {
		t.Error("exposition missing snapshot gauge")
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default must return the same registry")
	}
}
