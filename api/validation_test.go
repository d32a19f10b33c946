package api

import (
	"math"
	"testing"

	"github.com/gcbaptista/go-trademark-similarity/model"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

func TestValidationResult_AddError(t *testing.T) {
	result := &ValidationResult{Valid: true}

	result.AddError("field1", "error message")

	if result.Valid {
		t.Error("Expected Valid to be false after adding error")
	}
	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 error, got %d", len(result.Errors))
	}
	if result.Errors[0].Field != "field1" {
		t.Errorf("Expected field 'field1', got '%s'", result.Errors[0].Field)
	}
	if result.Errors[0].Message != "error message" {
		t.Errorf("Expected message 'error message', got '%s'", result.Errors[0].Message)
	}
}

func TestValidationResult_HasErrors(t *testing.T) {
	result := &ValidationResult{Valid: true}

	if result.HasErrors() {
		t.Error("Expected HasErrors to be false for empty result")
	}

	result.AddError("field", "message")

	if !result.HasErrors() {
		t.Error("Expected HasErrors to be true after adding error")
	}
}

func TestValidateCandidates(t *testing.T) {
	tests := []struct {
		name       string
		candidates []model.Candidate
		wantValid  bool
		wantFields []string
	}{
		{
			name:       "missing",
			wantValid:  false,
			wantFields: []string{"candidates"},
		},
		{
			name:       "empty",
			candidates: []model.Candidate{},
			wantValid:  true,
		},
		{
			name:       "valid",
			candidates: []model.Candidate{{Identifier: "TM-1"}, {Identifier: "TM-2"}},
			wantValid:  true,
		},
		{
			name:       "blank identifier",
			candidates: []model.Candidate{{Identifier: "TM-1"}, {Identifier: " \t"}},
			wantValid:  false,
			wantFields: []string{"candidates[1].identifier"},
		},
		{
			name:       "duplicate after trimming",
			candidates: []model.Candidate{{Identifier: "TM-1"}, {Identifier: "TM-2"}, {Identifier: " TM-1 "}},
			wantValid:  false,
			wantFields: []string{"candidates[2].identifier"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateCandidates("candidates", tt.candidates)

			if result.Valid != tt.wantValid {
				t.Errorf("Expected Valid=%v, got %v (%v)", tt.wantValid, result.Valid, result.Errors)
			}
			if len(result.Errors) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.wantFields), len(result.Errors), result.Errors)
			}
			for i, field := range tt.wantFields {
				if result.Errors[i].Field != field {
					t.Errorf("Expected error on field '%s', got '%s'", field, result.Errors[i].Field)
				}
			}
		})
	}
}

func TestValidateExploreRequest(t *testing.T) {
	base := services.ScoreRequest{Candidates: []model.Candidate{{Identifier: "TM-1"}}}

	tests := []struct {
		name      string
		req       services.ExploreRequest
		wantField string
	}{
		{name: "defaults", req: services.ExploreRequest{ScoreRequest: base}},
		{name: "bounds inclusive", req: services.ExploreRequest{ScoreRequest: base, MinSimilarity: 100, Order: "asc"}},
		{name: "negative min similarity", req: services.ExploreRequest{ScoreRequest: base, MinSimilarity: -1}, wantField: "minSimilarity"},
		{name: "NaN min similarity", req: services.ExploreRequest{ScoreRequest: base, MinSimilarity: math.NaN()}, wantField: "minSimilarity"},
		{name: "bad order", req: services.ExploreRequest{ScoreRequest: base, Order: "DESC"}, wantField: "order"},
		{name: "large page size is not an error", req: services.ExploreRequest{ScoreRequest: base, PageSize: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateExploreRequest(&tt.req)

			if tt.wantField == "" {
				if result.HasErrors() {
					t.Errorf("Expected no errors, got %v", result.Errors)
				}
				return
			}
			if len(result.Errors) != 1 || result.Errors[0].Field != tt.wantField {
				t.Errorf("Expected one error on '%s', got %v", tt.wantField, result.Errors)
			}
		})
	}
}

func TestValidateBatchRequest(t *testing.T) {
	empty := []model.Candidate{}

	tests := []struct {
		name       string
		req        services.BatchRequest
		wantFields []string
	}{
		{
			name:       "no queries",
			req:        services.BatchRequest{},
			wantFields: []string{"queries"},
		},
		{
			name: "valid",
			req: services.BatchRequest{Queries: []services.BatchQuery{
				{Name: "a", Candidates: empty},
				{Name: "b", Candidates: []model.Candidate{{Identifier: "TM-1"}}},
			}},
		},
		{
			name: "empty and padded names",
			req: services.BatchRequest{Queries: []services.BatchQuery{
				{Name: "", Candidates: empty},
				{Name: " b ", Candidates: empty},
			}},
			wantFields: []string{"queries[0].name", "queries[1].name"},
		},
		{
			name: "nested candidate errors",
			req: services.BatchRequest{Queries: []services.BatchQuery{
				{Name: "a"},
				{Name: "b", Candidates: []model.Candidate{{Identifier: "x"}, {Identifier: "x"}}},
			}},
			wantFields: []string{"queries[0].candidates", "queries[1].candidates[1].identifier"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateBatchRequest(&tt.req)

			if len(result.Errors) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.wantFields), len(result.Errors), result.Errors)
			}
			for i, field := range tt.wantFields {
				if result.Errors[i].Field != field {
					t.Errorf("Expected error on field '%s', got '%s'", field, result.Errors[i].Field)
				}
			}
		})
	}

	t.Run("too many queries", func(t *testing.T) {
		queries := make([]services.BatchQuery, MaxBatchQueries+1)
		result := ValidateBatchRequest(&services.BatchRequest{Queries: queries})
		if len(result.Errors) != 1 || result.Errors[0].Field != "queries" {
			t.Errorf("Expected a single queries error, got %v", result.Errors)
		}
	})
}

func TestValidateJobStatus(t *testing.T) {
	for _, status := range []string{"", "pending", "running", "completed", "failed", "cancelled"} {
		if result := ValidateJobStatus(status); result.HasErrors() {
			t.Errorf("Expected status '%s' to be valid", status)
		}
	}
	if result := ValidateJobStatus("done"); !result.HasErrors() {
		t.Error("Expected unknown status to be rejected")
	}
}
