package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveScore(t *testing.T) {
	m := New()
	m.ObserveScore("heuristic", 10*time.Millisecond, 47, nil)
	m.ObserveScore("heuristic", time.Millisecond, 0, errors.New("boom"))
	m.ObserveScore("model", time.Millisecond, 50, nil)

	if got := testutil.ToFloat64(m.scoreRequests.WithLabelValues("heuristic", OutcomeOK)); got != 1 {
		t.Errorf("heuristic ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.scoreRequests.WithLabelValues("heuristic", OutcomeError)); got != 1 {
		t.Errorf("heuristic error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.scoreRequests); got != 3 {
		t.Errorf("series = %d, want 3", got)
	}
}

func TestMetrics_ModelLoadAndIngest(t *testing.T) {
	m := New()
	m.ObserveModelLoad(time.Second, nil)
	m.ObserveModelLoad(time.Second, errors.New("missing"))
	m.ObserveIngest("upload", nil)
	m.ObserveIngest("inbox", errors.New("bad pdf"))

	if got := testutil.ToFloat64(m.modelLoads.WithLabelValues(OutcomeError)); got != 1 {
		t.Errorf("model load errors = %v", got)
	}
	if got := testutil.ToFloat64(m.ingested.WithLabelValues("inbox", OutcomeError)); got != 1 {
		t.Errorf("inbox errors = %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveScore("heuristic", time.Millisecond, 10, nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rwascore_score_requests_total") {
		t.Error("exposition should include score counter")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveScore("heuristic", time.Millisecond, 1, nil)
	m.ObserveModelLoad(time.Millisecond, nil)
	m.ObserveIngest("upload", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
