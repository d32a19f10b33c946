package model

import (
	apperrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
)

// Candidate is a registered mark compared against the query logo.
// It is built fresh for each search from feature-extraction output and never persisted.
type Candidate struct {
	Identifier     string     `json:"identifier"`     // Stable trademark ID, unique within a search
	DisplayName    string     `json:"displayName"`    // Mark name shown to applicants and agents
	ImageReference string     `json:"imageReference"` // Opaque pointer into external image storage
	Signals        RawSignals `json:"signals"`
}

// QueryContext carries per-request metadata that is passed through to the results.
type QueryContext struct {
	OCRTokens []string `json:"ocrTokens,omitempty"` // Text detected inside the query logo
	Category  string   `json:"category,omitempty"`  // NICE class used upstream to pre-filter candidates
}

// ScoredResult is one ranked row of a similarity report.
// The embedded SignalVector echoes the normalized component scores for audit.
type ScoredResult struct {
	Rank           int     `json:"rank"`
	Identifier     string  `json:"identifier"`
	DisplayName    string  `json:"displayName"`
	ImageReference string  `json:"imageReference"`
	FinalScore     float64 `json:"finalScore"` // Weighted percentage in [0,100], one decimal
	SignalVector
	TextSignalPresent bool                              `json:"textSignalPresent"`
	OCRTokens         []string                          `json:"ocrTokens"`
	Warnings          []*apperrors.InvalidSignalWarning `json:"warnings,omitempty"`
}

// HasWarnings reports whether any signal of this result was discarded.
func (r ScoredResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}
