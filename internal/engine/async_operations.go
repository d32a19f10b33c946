package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gcbaptista/go-trademark-similarity/model"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

// SubmitBatch scores several candidate sets in the background.
// It returns the job ID immediately; the result is stored on the job when it completes.
func (e *Engine) SubmitBatch(req services.BatchRequest) (string, error) {
	if len(req.Queries) == 0 {
		return "", fmt.Errorf("batch must contain at least one query")
	}

	candidates := 0
	for _, q := range req.Queries {
		candidates += len(q.Candidates)
	}

	jobID := e.jobManager.CreateJob(model.JobTypeBatchScore, req.Label, map[string]string{
		"operation":       "batch_score",
		"query_count":     strconv.Itoa(len(req.Queries)),
		"candidate_count": strconv.Itoa(candidates),
	})

	err := e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job model.Job) (any, error) {
		return e.executeBatchJob(ctx, req, job.ID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start batch job: %w", err)
	}

	return jobID, nil
}

// executeBatchJob scores each query in order and reports progress after each one.
// A cancelled context stops the batch between queries.
func (e *Engine) executeBatchJob(ctx context.Context, req services.BatchRequest, jobID string) (*services.BatchResult, error) {
	startTime := time.Now()
	total := len(req.Queries)

	e.jobManager.UpdateJobProgress(jobID, 0, total, "Starting batch scoring")

	results := make(map[string]services.ScoreResult, total)
	for i, query := range req.Queries {
		scored, err := e.score(ctx, model.ScoreEventKindBatch, query.Candidates, query.QueryContext)
		if err != nil {
			return nil, fmt.Errorf("batch stopped at query '%s': %w", query.Name, err)
		}
		results[query.Name] = *scored

		e.jobManager.UpdateJobProgress(jobID, i+1, total, fmt.Sprintf("Scored query '%s'", query.Name))
	}

	e.logger.Info("batch scored", "job_id", jobID, "label", req.Label, "queries", total)

	return &services.BatchResult{
		Label:            req.Label,
		Results:          results,
		TotalQueries:     total,
		ProcessingTimeMs: float64(time.Since(startTime).Microseconds()) / 1000.0,
	}, nil
}
