package model

import "time"

// ScoreEventKind classifies the request that produced a similarity report
type ScoreEventKind string

const (
	ScoreEventKindScore   ScoreEventKind = "score"
	ScoreEventKindExplore ScoreEventKind = "explore"
	ScoreEventKindBatch   ScoreEventKind = "batch"
)

// ScoreEvent is the audit record of one scoring request.
// It holds aggregates only; candidate data is never written to the audit log.
type ScoreEvent struct {
	QueryID        string         `json:"query_id"`
	Kind           ScoreEventKind `json:"kind"`
	Category       string         `json:"category,omitempty"`
	CandidateCount int            `json:"candidate_count"`
	WarningCount   int            `json:"warning_count"` // Candidates carrying at least one signal warning
	TopScore       float64        `json:"top_score"`
	ResponseTime   time.Duration  `json:"response_time"`
	Timestamp      time.Time      `json:"timestamp"`
}

// ScoreDistribution buckets the top final score of each request
type ScoreDistribution struct {
	Bucket0To25       int     `json:"bucket_0_25"`
	Bucket25To50      int     `json:"bucket_25_50"`
	Bucket50To75      int     `json:"bucket_50_75"`
	Bucket75To100     int     `json:"bucket_75_100"`
	Percentage0To25   float64 `json:"percentage_0_25"`
	Percentage25To50  float64 `json:"percentage_25_50"`
	Percentage50To75  float64 `json:"percentage_50_75"`
	Percentage75To100 float64 `json:"percentage_75_100"`
}

// KindStats counts requests per event kind
type KindStats struct {
	Score   int `json:"score"`
	Explore int `json:"explore"`
	Batch   int `json:"batch"`
}

// AuditDashboard summarizes the audit log
type AuditDashboard struct {
	TotalRequests         int     `json:"total_requests"`
	RequestsChangePercent float64 `json:"requests_change_percent"`
	CandidatesScored      int     `json:"candidates_scored"`
	AvgResponseTime       int64   `json:"avg_response_time"` // in milliseconds
	WarningRatePercent    float64 `json:"warning_rate_percent"`

	TopScoreDistribution ScoreDistribution `json:"top_score_distribution"`
	Kinds                KindStats         `json:"kinds"`
	StoredEvents         int               `json:"stored_events"`
}
