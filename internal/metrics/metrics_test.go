package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	apperrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}
	return byName
}

func TestMetrics_Register(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()

	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	// Registering twice must fail
	if err := m.Register(reg); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
}

func TestMetrics_ObserveScoring(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	results := []model.ScoredResult{
		{Identifier: "a", FinalScore: 73.3},
		{Identifier: "b", FinalScore: 12.0, Warnings: []*apperrors.InvalidSignalWarning{
			apperrors.NewInvalidSignalWarning("colorScore", "value is not a number"),
		}},
	}
	m.ObserveScoring(model.ScoreEventKindScore, results, 2*time.Millisecond)

	families := gather(t, reg)

	scored := families[MetricCandidatesScored]
	if scored == nil {
		t.Fatalf("metric %s not found", MetricCandidatesScored)
	}
	if got := scored.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("Expected 2 candidates scored, got %v", got)
	}

	invalid := families[MetricInvalidSignals]
	if invalid == nil {
		t.Fatalf("metric %s not found", MetricInvalidSignals)
	}
	if got := invalid.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Errorf("Expected 1 invalid signal, got %v", got)
	}

	histogram := families[MetricFinalScore]
	if histogram == nil {
		t.Fatalf("metric %s not found", MetricFinalScore)
	}
	if got := histogram.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("Expected 2 score samples, got %v", got)
	}
}

func TestMetrics_JobFinished(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	m.JobFinished(model.JobTypeBatchScore, model.JobStatusCompleted, time.Second)
	m.JobFinished(model.JobTypeBatchScore, model.JobStatusFailed, 0)

	families := gather(t, reg)
	if got := len(families[MetricJobsFinished].GetMetric()); got != 2 {
		t.Errorf("Expected 2 status series, got %d", got)
	}
	if got := families[MetricJobExecutionDuration].GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
		t.Errorf("Expected only the completed job to be timed, got %d samples", got)
	}
}

func TestHandler(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	m.ObserveHTTPRequest("POST", "/similarity/score", "200", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), MetricHTTPRequestsTotal) {
		t.Errorf("Expected %s in exposition output", MetricHTTPRequestsTotal)
	}
}
