package services

import (
	"context"

	"github.com/gcbaptista/go-trademark-similarity/config"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// ScoreRequest is one similarity check: a query logo's context and the candidate
// marks the feature extractors produced signals for.
type ScoreRequest struct {
	Candidates   []model.Candidate  `json:"candidates"`
	QueryContext model.QueryContext `json:"queryContext"`
}

// ScoreResult is the ranked similarity report for one request.
type ScoreResult struct {
	QueryId      string               `json:"queryId"` // unique UUID for this scoring request
	Results      []model.ScoredResult `json:"results"`
	Total        int                  `json:"total"`
	Took         int64                `json:"took"` // milliseconds
	QueryContext model.QueryContext   `json:"queryContext"`
}

// ExploreRequest scores a candidate set like ScoreRequest, then narrows and pages the ranking.
type ExploreRequest struct {
	ScoreRequest
	MinSimilarity float64 `json:"minSimilarity,omitempty"` // percentage in [0,100]
	Keyword       string  `json:"keyword,omitempty"`
	Order         string  `json:"order,omitempty"` // "desc" (default) or "asc"
	Page          int     `json:"page,omitempty"`
	PageSize      int     `json:"pageSize,omitempty"`
}

// ExploreResult is one page of an explored ranking. Total counts the results that
// passed the filters.
type ExploreResult struct {
	QueryId      string               `json:"queryId"`
	Results      []model.ScoredResult `json:"results"`
	Total        int                  `json:"total"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"pageSize"`
	TotalPages   int                  `json:"totalPages"`
	Took         int64                `json:"took"`
	QueryContext model.QueryContext   `json:"queryContext"`
}

// BatchRequest bundles several named score requests into one background job
type BatchRequest struct {
	Label   string       `json:"label,omitempty"`
	Queries []BatchQuery `json:"queries"`
}

// BatchQuery is a single named score request within a batch
type BatchQuery struct {
	Name         string             `json:"name"`
	Candidates   []model.Candidate  `json:"candidates"`
	QueryContext model.QueryContext `json:"queryContext"`
}

// BatchResult is the stored result of a completed batch job
type BatchResult struct {
	Label            string                 `json:"label,omitempty"`
	Results          map[string]ScoreResult `json:"results"`
	TotalQueries     int                    `json:"totalQueries"`
	ProcessingTimeMs float64                `json:"processingTimeMs"`
}

// Scorer turns candidate signals into a ranked list. It is pure: the same
// input always produces the same output.
type Scorer interface {
	Score(candidates []model.Candidate, qctx model.QueryContext) []model.ScoredResult
	Weights() config.WeightTable
}

// SimilarityService is the request-level surface used by the HTTP API
type SimilarityService interface {
	Score(ctx context.Context, req ScoreRequest) (*ScoreResult, error)
	Explore(ctx context.Context, req ExploreRequest) (*ExploreResult, error)
	Weights() config.WeightTable
}

// BatchScorer runs batches in the background
type BatchScorer interface {
	SubmitBatch(req BatchRequest) (string, error) // Returns job ID
}

// JobManager defines operations for inspecting background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(label string, status *model.JobStatus) []*model.Job
	GetJobResult(jobID string) (any, error)
}

// AuditRecorder stores score events and summarizes them
type AuditRecorder interface {
	Record(event model.ScoreEvent) error
	Dashboard() (model.AuditDashboard, error)
}

// FeatureExtractor computes raw signals between a query logo and one candidate
// image. Implementations live outside this service.
type FeatureExtractor interface {
	Extract(ctx context.Context, queryImage, candidateImage string) (model.RawSignals, error)
}
