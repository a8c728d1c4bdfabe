package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/JonMunkholm/stockfile/internal/core"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New(nil)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/sessions/{sessionID}/stats", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b", "c"} {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/stats", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/sessions/{sessionID}/stats", "418"))
	if got != 3 {
		t.Errorf("requests_total = %v, want 3", got)
	}
}

func TestObserveImport(t *testing.T) {
	m := New(nil)

	m.ObserveImport("spreadsheet", nil, 10, 3)
	m.ObserveImport("document", errors.New("boom"), 0, 0)

	if got := testutil.ToFloat64(m.ImportsTotal.WithLabelValues("spreadsheet", "committed")); got != 1 {
		t.Errorf("imports committed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ImportsTotal.WithLabelValues("document", "failed")); got != 1 {
		t.Errorf("imports failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ProductsTotal.WithLabelValues("spreadsheet", "valid")); got != 7 {
		t.Errorf("valid products = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.ProductsTotal.WithLabelValues("spreadsheet", "invalid")); got != 3 {
		t.Errorf("invalid products = %v, want 3", got)
	}
}

func TestHandler_ExposesActiveSessions(t *testing.T) {
	m := New(func() int { return 4 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "stockfile_active_sessions 4") {
		t.Errorf("metrics output missing active_sessions gauge:\n%s", body)
	}
}

type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, fileName, mimeType string, data []byte) ([]core.Candidate, error) {
	return []core.Candidate{{Code: "A1"}}, nil
}

func TestInstrumentExtractor(t *testing.T) {
	m := New(nil)

	if m.InstrumentExtractor(nil) != nil {
		t.Error("InstrumentExtractor(nil) should stay nil")
	}

	ex := m.InstrumentExtractor(stubExtractor{})
	cands, err := ex.Extract(context.Background(), "inv.pdf", "application/pdf", []byte("%PDF"))
	if err != nil || len(cands) != 1 {
		t.Fatalf("Extract() = %v, %v", cands, err)
	}
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	var count uint64
	for _, mf := range families {
		if mf.GetName() == "stockfile_document_extraction_duration_seconds" {
			count = mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	if count != 1 {
		t.Errorf("extraction sample count = %d, want 1", count)
	}
}
