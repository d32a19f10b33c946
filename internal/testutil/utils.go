// Package testutil provides fixtures and helpers for testing the similarity service.
package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-trademark-similarity/config"
	"github.com/gcbaptista/go-trademark-similarity/internal/engine"
	"github.com/gcbaptista/go-trademark-similarity/internal/logging"
	"github.com/gcbaptista/go-trademark-similarity/model"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

// CreateTestEngine creates a started engine with default weights and an in-memory
// audit recorder. The engine is stopped when the test ends.
func CreateTestEngine(t *testing.T) (*engine.Engine, *RecordingAudit) {
	t.Helper()
	recorder := &RecordingAudit{}
	eng, err := engine.NewEngine(config.DefaultWeights(), engine.Options{
		MaxWorkers: 2,
		Audit:      recorder,
		Logger:     logging.Discard(),
	})
	require.NoError(t, err, "Failed to create test engine")

	eng.Start()
	t.Cleanup(eng.Stop)
	return eng, recorder
}

// WorkedExampleSignals returns a signal set whose final score is 73.3 under the default weights.
func WorkedExampleSignals() model.RawSignals {
	return model.RawSignals{
		EmbeddingScoreA: model.Float(0.90),
		EmbeddingScoreB: model.Float(0.80),
		TextScore:       model.Float(0.50),
		ColorScore:      model.Float(0.60),
		FontScore:       model.Float(0.40),
		ShapeScore:      model.Float(0.70),
	}
}

// SampleCandidates returns a small candidate set with a known ranking:
// TM-001 (73.3), TM-002 (partial signals) and TM-003 (no signals, 0.0).
func SampleCandidates() []model.Candidate {
	return []model.Candidate{
		{
			Identifier:     "TM-003",
			DisplayName:    "Blank Mark",
			ImageReference: "images/tm-003.png",
		},
		{
			Identifier:     "TM-001",
			DisplayName:    "Starbucks Coffee",
			ImageReference: "images/tm-001.png",
			Signals:        WorkedExampleSignals(),
		},
		{
			Identifier:     "TM-002",
			DisplayName:    "Star Brew",
			ImageReference: "images/tm-002.png",
			Signals: model.RawSignals{
				EmbeddingScoreA: model.Float(0.60),
				EmbeddingScoreB: model.Float(0.50),
				ColorScore:      model.Float(math.NaN()),
			},
		},
	}
}

// RandomCandidates builds n candidates with a mix of valid, absent, invalid and
// out-of-range signals. Values are coarse so ties are common.
func RandomCandidates(rng *rand.Rand, n int) []model.Candidate {
	candidates := make([]model.Candidate, n)
	for i := range candidates {
		var signals model.RawSignals
		for _, name := range model.SignalOrder {
			switch r := rng.Float64(); {
			case r < 0.1:
			case r < 0.15:
				signals.Set(name, model.Float(math.NaN()))
			case r < 0.2:
				signals.Set(name, model.Float(rng.Float64()*3-1))
			default:
				signals.Set(name, model.Float(float64(rng.Intn(5))/4))
			}
		}
		candidates[i] = model.Candidate{
			Identifier:     fmt.Sprintf("TM-%05d", i),
			DisplayName:    fmt.Sprintf("Mark %d", i),
			ImageReference: fmt.Sprintf("images/%d.png", i),
			Signals:        signals,
		}
	}
	return candidates
}

// RecordingAudit is an in-memory services.AuditRecorder
type RecordingAudit struct {
	mu     sync.Mutex
	events []model.ScoreEvent
}

// Record stores the event
func (r *RecordingAudit) Record(event model.ScoreEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Dashboard counts recorded events per kind
func (r *RecordingAudit) Dashboard() (model.AuditDashboard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dashboard := model.AuditDashboard{
		TotalRequests: len(r.events),
		StoredEvents:  len(r.events),
	}
	for _, e := range r.events {
		dashboard.CandidatesScored += e.CandidateCount
		switch e.Kind {
		case model.ScoreEventKindScore:
			dashboard.Kinds.Score++
		case model.ScoreEventKindExplore:
			dashboard.Kinds.Explore++
		case model.ScoreEventKindBatch:
			dashboard.Kinds.Batch++
		}
	}
	return dashboard, nil
}

// Events returns a copy of the recorded events
func (r *RecordingAudit) Events() []model.ScoreEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ScoreEvent(nil), r.events...)
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  true,
	}
}

// WaitForJobCompletion polls a job until it completes or times out
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				if opts.LogProgress {
					t.Logf("Job %s completed in %v", jobID, job.CompletedAt.Sub(job.CreatedAt))
				}
				return job
			case model.JobStatusFailed, model.JobStatusCancelled:
				t.Fatalf("Job %s ended with status %s: %s", jobID, job.Status, job.Error)
				return nil
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s",
						jobID,
						job.Progress.Current,
						job.Progress.Total,
						job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedLabel string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedLabel, job.Label, "Job label should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// ScoreTestCase represents a test case for score requests
type ScoreTestCase struct {
	Name          string
	Request       services.ScoreRequest
	ExpectedCount int
	ExpectedFirst string // Expected first result identifier
	ValidateFunc  func(t *testing.T, result *services.ScoreResult)
}

// RunScoreTests runs a suite of score requests against a service
func RunScoreTests(t *testing.T, svc services.SimilarityService, tests []ScoreTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := svc.Score(t.Context(), tt.Request)
			require.NoError(t, err, "Score should not fail")

			assert.Equal(t, tt.ExpectedCount, result.Total, "Result count should match")
			assert.Len(t, result.Results, tt.ExpectedCount)

			if tt.ExpectedFirst != "" && len(result.Results) > 0 {
				assert.Equal(t, tt.ExpectedFirst, result.Results[0].Identifier, "First result should match expected")
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, result)
			}
		})
	}
}
