// Package api provides the HTTP surface of the similarity service.
package api

import (
	"fmt"
	"math"
	"strings"

	"github.com/gcbaptista/go-trademark-similarity/internal/similarity"
	"github.com/gcbaptista/go-trademark-similarity/model"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

// MaxBatchQueries caps the number of named queries in one batch
const MaxBatchQueries = 100

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateCandidates checks a candidate set. A nil slice means the field was
// missing from the request; an empty slice is valid.
func ValidateCandidates(field string, candidates []model.Candidate) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if candidates == nil {
		result.AddError(field, "Candidates are required (use an empty array for no candidates)")
		return result
	}

	seen := make(map[string]int, len(candidates))
	for i, candidate := range candidates {
		idField := fmt.Sprintf("%s[%d].identifier", field, i)
		id := strings.TrimSpace(candidate.Identifier)
		if id == "" {
			result.AddError(idField, "Identifier cannot be empty or whitespace-only")
			continue
		}
		if first, dup := seen[id]; dup {
			result.AddError(idField, fmt.Sprintf("Identifier '%s' duplicates %s[%d]", id, field, first))
			continue
		}
		seen[id] = i
	}

	return result
}

// ValidateScoreRequest validates a synchronous score request
func ValidateScoreRequest(req *services.ScoreRequest) *ValidationResult {
	return ValidateCandidates("candidates", req.Candidates)
}

// ValidateExploreRequest validates the candidates and explore options.
// Page and page size are not rejected here; out-of-range values fall back to defaults.
func ValidateExploreRequest(req *services.ExploreRequest) *ValidationResult {
	result := ValidateCandidates("candidates", req.Candidates)

	if math.IsNaN(req.MinSimilarity) || req.MinSimilarity < 0 || req.MinSimilarity > 100 {
		result.AddError("minSimilarity", "Minimum similarity must be between 0 and 100")
	}

	switch req.Order {
	case "", similarity.OrderDesc, similarity.OrderAsc:
	default:
		result.AddError("order", fmt.Sprintf("Order must be '%s' or '%s', got '%s'", similarity.OrderDesc, similarity.OrderAsc, req.Order))
	}

	return result
}

// ValidateBatchRequest validates a batch and every query in it
func ValidateBatchRequest(req *services.BatchRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Queries) == 0 {
		result.AddError("queries", "At least one query is required")
		return result
	}
	if len(req.Queries) > MaxBatchQueries {
		result.AddError("queries", fmt.Sprintf("At most %d queries are allowed per batch, got %d", MaxBatchQueries, len(req.Queries)))
		return result
	}

	names := make(map[string]struct{}, len(req.Queries))
	for i, query := range req.Queries {
		nameField := fmt.Sprintf("queries[%d].name", i)
		name := strings.TrimSpace(query.Name)
		switch {
		case name == "":
			result.AddError(nameField, "Query name cannot be empty")
		case name != query.Name:
			result.AddError(nameField, "Query name cannot have leading or trailing whitespace")
		default:
			if _, dup := names[name]; dup {
				result.AddError(nameField, fmt.Sprintf("Query name '%s' is used more than once", name))
			}
			names[name] = struct{}{}
		}

		candidates := ValidateCandidates(fmt.Sprintf("queries[%d].candidates", i), query.Candidates)
		for _, err := range candidates.Errors {
			result.AddError(err.Field, err.Message)
		}
	}

	return result
}

// ValidateJobStatus validates an optional status filter
func ValidateJobStatus(status string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch model.JobStatus(status) {
	case "", model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted,
		model.JobStatusFailed, model.JobStatusCancelled:
	default:
		result.AddError("status", fmt.Sprintf("Unknown job status '%s'", status))
	}

	return result
}
