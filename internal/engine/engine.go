// Package engine wires the similarity scorer to the request-level concerns
// around it: query IDs, batch jobs, audit events, metrics and tracing.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/go-trademark-similarity/config"
	"github.com/gcbaptista/go-trademark-similarity/internal/audit"
	"github.com/gcbaptista/go-trademark-similarity/internal/jobs"
	"github.com/gcbaptista/go-trademark-similarity/internal/metrics"
	"github.com/gcbaptista/go-trademark-similarity/internal/similarity"
	"github.com/gcbaptista/go-trademark-similarity/internal/textnorm"
	"github.com/gcbaptista/go-trademark-similarity/internal/tracing"
	"github.com/gcbaptista/go-trademark-similarity/model"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

// Options configures the collaborators of an Engine. Zero values are usable:
// auditing and metrics are off and a single batch worker runs.
type Options struct {
	Similarity similarity.Options
	Scorer     services.Scorer // replaces the weight-table scorer when set
	MaxWorkers int
	Audit      services.AuditRecorder
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Engine serves scoring requests and batch jobs.
// It implements services.SimilarityService, services.BatchScorer and services.JobManager.
type Engine struct {
	scorer     services.Scorer
	jobManager *jobs.Manager
	audit      services.AuditRecorder
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

var _ services.Scorer = (*similarity.Engine)(nil)

// NewEngine validates the weight table and builds an engine around it.
// Call Start before submitting batches and Stop on shutdown.
func NewEngine(weights config.WeightTable, opts Options) (*Engine, error) {
	scorer := opts.Scorer
	if scorer == nil {
		weighted, err := similarity.NewEngine(weights, opts.Similarity)
		if err != nil {
			return nil, err
		}
		scorer = weighted
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := opts.Audit
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}

	jobManager := jobs.NewManager(opts.MaxWorkers, logger)
	if opts.Metrics != nil {
		jobManager.SetObserver(opts.Metrics)
	}

	return &Engine{
		scorer:     scorer,
		jobManager: jobManager,
		audit:      recorder,
		metrics:    opts.Metrics,
		logger:     logger.With("component", "engine"),
	}, nil
}

// Start starts the background job manager
func (e *Engine) Start() {
	e.jobManager.Start()
}

// Stop cancels running batches and waits for them to return
func (e *Engine) Stop() {
	e.jobManager.Stop()
}

// Weights returns the active weight table
func (e *Engine) Weights() config.WeightTable {
	return e.scorer.Weights()
}

// Score ranks one candidate set.
func (e *Engine) Score(ctx context.Context, req services.ScoreRequest) (*services.ScoreResult, error) {
	result, err := e.score(ctx, model.ScoreEventKindScore, req.Candidates, req.QueryContext)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Explore ranks a candidate set, then filters, orders and pages it.
// The audit event covers the full ranking, before filtering.
func (e *Engine) Explore(ctx context.Context, req services.ExploreRequest) (*services.ExploreResult, error) {
	startTime := time.Now()

	scored, err := e.score(ctx, model.ScoreEventKindExplore, req.Candidates, req.QueryContext)
	if err != nil {
		return nil, err
	}

	page := similarity.Explore(scored.Results, similarity.ExploreOptions{
		MinSimilarity: req.MinSimilarity,
		Keyword:       req.Keyword,
		Order:         req.Order,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})

	return &services.ExploreResult{
		QueryId:      scored.QueryId,
		Results:      page.Results,
		Total:        page.Total,
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalPages:   page.TotalPages,
		Took:         time.Since(startTime).Milliseconds(),
		QueryContext: scored.QueryContext,
	}, nil
}

// score runs the scorer for one candidate set and reports it to tracing, metrics and the audit log.
func (e *Engine) score(ctx context.Context, kind model.ScoreEventKind, candidates []model.Candidate, qctx model.QueryContext) (*services.ScoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, endSpan := tracing.StartScoreSpan(ctx, string(kind), len(candidates))
	defer endSpan(nil)

	startTime := time.Now()
	queryID := uuid.New().String()

	results := e.scorer.Score(candidates, qctx)
	took := time.Since(startTime)

	echoed := qctx
	echoed.OCRTokens = textnorm.NormalizeTokens(qctx.OCRTokens)

	e.report(queryID, kind, qctx.Category, results, took)

	return &services.ScoreResult{
		QueryId:      queryID,
		Results:      results,
		Total:        len(results),
		Took:         took.Milliseconds(),
		QueryContext: echoed,
	}, nil
}

// report logs degraded signals and records the request. It never fails the request.
func (e *Engine) report(queryID string, kind model.ScoreEventKind, category string, results []model.ScoredResult, took time.Duration) {
	warned := 0
	for _, result := range results {
		if !result.HasWarnings() {
			continue
		}
		warned++
		for _, warning := range result.Warnings {
			e.logger.Debug("signal discarded",
				"query_id", queryID,
				"identifier", result.Identifier,
				"signal", warning.Signal,
				"reason", warning.Reason,
			)
		}
	}
	if warned > 0 {
		e.logger.Info("candidates scored with discarded signals", "query_id", queryID, "kind", kind, "count", warned)
	}

	if e.metrics != nil {
		e.metrics.ObserveScoring(kind, results, took)
	}

	topScore := 0.0
	if len(results) > 0 {
		topScore = results[0].FinalScore
	}
	event := model.ScoreEvent{
		QueryID:        queryID,
		Kind:           kind,
		Category:       category,
		CandidateCount: len(results),
		WarningCount:   warned,
		TopScore:       topScore,
		ResponseTime:   took,
		Timestamp:      time.Now(),
	}
	if err := e.audit.Record(event); err != nil {
		e.logger.Warn("failed to record score event", "query_id", queryID, "error", err)
	}
}

// Dashboard returns the audit dashboard
func (e *Engine) Dashboard() (model.AuditDashboard, error) {
	return e.audit.Dashboard()
}

// GetJob returns a batch job by ID
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs lists batch jobs, optionally by label and status
func (e *Engine) ListJobs(label string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(label, status)
}

// GetJobResult returns the result of a completed batch job
func (e *Engine) GetJobResult(jobID string) (any, error) {
	return e.jobManager.GetJobResult(jobID)
}

// GetJobMetrics returns current job performance metrics
func (e *Engine) GetJobMetrics() jobs.JobMetricsData {
	return e.jobManager.GetMetrics()
}

// GetJobSuccessRate returns the overall job success rate
func (e *Engine) GetJobSuccessRate() float64 {
	return e.jobManager.GetJobSuccessRate()
}

// GetCurrentWorkload returns the number of pending and running jobs
func (e *Engine) GetCurrentWorkload() int64 {
	return e.jobManager.GetCurrentWorkload()
}
