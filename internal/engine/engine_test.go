package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-trademark-similarity/config"
	"github.com/gcbaptista/go-trademark-similarity/internal/engine"
	apperrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/internal/testutil"
	"github.com/gcbaptista/go-trademark-similarity/model"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

func TestNewEngine_InvalidWeights(t *testing.T) {
	weights := config.DefaultWeights()
	weights.TextScore = 0.05

	eng, err := engine.NewEngine(weights, engine.Options{})

	assert.Nil(t, eng)
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestEngine_Score(t *testing.T) {
	eng, _ := testutil.CreateTestEngine(t)

	testutil.RunScoreTests(t, eng, []testutil.ScoreTestCase{
		{
			Name:          "empty candidate set",
			Request:       services.ScoreRequest{Candidates: []model.Candidate{}},
			ExpectedCount: 0,
			ValidateFunc: func(t *testing.T, result *services.ScoreResult) {
				assert.NotNil(t, result.Results)
			},
		},
		{
			Name:          "sample candidates ranked",
			Request:       services.ScoreRequest{Candidates: testutil.SampleCandidates()},
			ExpectedCount: 3,
			ExpectedFirst: "TM-001",
			ValidateFunc: func(t *testing.T, result *services.ScoreResult) {
				assert.Equal(t, 73.3, result.Results[0].FinalScore)
				assert.Equal(t, "TM-002", result.Results[1].Identifier)
				assert.Equal(t, 33.5, result.Results[1].FinalScore)
				assert.True(t, result.Results[1].HasWarnings())
				assert.Equal(t, "TM-003", result.Results[2].Identifier)
				assert.Equal(t, 0.0, result.Results[2].FinalScore)
				for i, r := range result.Results {
					assert.Equal(t, i+1, r.Rank)
				}
			},
		},
		{
			Name: "ocr tokens echoed normalized",
			Request: services.ScoreRequest{
				Candidates:   testutil.SampleCandidates()[:1],
				QueryContext: model.QueryContext{OCRTokens: []string{" STAR ", "star", "", "Coffee"}, Category: "43"},
			},
			ExpectedCount: 1,
			ValidateFunc: func(t *testing.T, result *services.ScoreResult) {
				assert.Equal(t, []string{"STAR", "Coffee"}, result.QueryContext.OCRTokens)
				assert.Equal(t, "43", result.QueryContext.Category)
				assert.Equal(t, []string{"STAR", "Coffee"}, result.Results[0].OCRTokens)
			},
		},
	})
}

// fixedScorer returns a canned ranking regardless of input.
type fixedScorer struct {
	results []model.ScoredResult
}

func (f fixedScorer) Score(candidates []model.Candidate, qctx model.QueryContext) []model.ScoredResult {
	return append([]model.ScoredResult(nil), f.results...)
}

func (f fixedScorer) Weights() config.WeightTable {
	return config.DefaultWeights()
}

func TestEngine_CustomScorer(t *testing.T) {
	recorder := &testutil.RecordingAudit{}
	scorer := fixedScorer{results: []model.ScoredResult{
		{Identifier: "A", FinalScore: 88.8, Rank: 1},
		{Identifier: "B", FinalScore: 12.0, Rank: 2},
	}}

	// Weights are not validated when a scorer is supplied.
	invalid := config.DefaultWeights()
	invalid.TextScore = 0.9

	eng, err := engine.NewEngine(invalid, engine.Options{Scorer: scorer, Audit: recorder})
	require.NoError(t, err)

	result, err := eng.Score(context.Background(), services.ScoreRequest{Candidates: []model.Candidate{}})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.NotEmpty(t, result.QueryId)
	assert.Equal(t, config.DefaultWeights(), eng.Weights())

	events := recorder.Events()
	require.Len(t, events, 1)
	assert.Equal(t, 88.8, events[0].TopScore)
	assert.Equal(t, 2, events[0].CandidateCount)
}

func TestEngine_Score_UniqueQueryIDs(t *testing.T) {
	eng, _ := testutil.CreateTestEngine(t)

	first, err := eng.Score(context.Background(), services.ScoreRequest{Candidates: testutil.SampleCandidates()})
	require.NoError(t, err)
	second, err := eng.Score(context.Background(), services.ScoreRequest{Candidates: testutil.SampleCandidates()})
	require.NoError(t, err)

	assert.NotEmpty(t, first.QueryId)
	assert.NotEqual(t, first.QueryId, second.QueryId)
	assert.Equal(t, first.Results, second.Results)
}

func TestEngine_Score_CancelledContext(t *testing.T) {
	eng, recorder := testutil.CreateTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := eng.Score(ctx, services.ScoreRequest{Candidates: testutil.SampleCandidates()})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, recorder.Events())
}

func TestEngine_Score_RecordsAuditEvent(t *testing.T) {
	eng, recorder := testutil.CreateTestEngine(t)

	result, err := eng.Score(context.Background(), services.ScoreRequest{
		Candidates:   testutil.SampleCandidates(),
		QueryContext: model.QueryContext{Category: "9"},
	})
	require.NoError(t, err)

	events := recorder.Events()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, result.QueryId, event.QueryID)
	assert.Equal(t, model.ScoreEventKindScore, event.Kind)
	assert.Equal(t, "9", event.Category)
	assert.Equal(t, 3, event.CandidateCount)
	assert.Equal(t, 1, event.WarningCount)
	assert.Equal(t, 73.3, event.TopScore)
	assert.False(t, event.Timestamp.IsZero())

	dashboard, err := eng.Dashboard()
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.Kinds.Score)
}

func TestEngine_Explore(t *testing.T) {
	eng, recorder := testutil.CreateTestEngine(t)

	tests := []struct {
		name        string
		req         services.ExploreRequest
		expectedIDs []string
		total       int
	}{
		{
			name:        "defaults keep canonical order",
			req:         services.ExploreRequest{},
			expectedIDs: []string{"TM-001", "TM-002", "TM-003"},
			total:       3,
		},
		{
			name:        "min similarity",
			req:         services.ExploreRequest{MinSimilarity: 30},
			expectedIDs: []string{"TM-001", "TM-002"},
			total:       2,
		},
		{
			name:        "ascending order",
			req:         services.ExploreRequest{Order: "asc"},
			expectedIDs: []string{"TM-003", "TM-002", "TM-001"},
			total:       3,
		},
		{
			name:        "keyword with typo",
			req:         services.ExploreRequest{Keyword: "starbuks"},
			expectedIDs: []string{"TM-001"},
			total:       1,
		},
		{
			name:        "second page",
			req:         services.ExploreRequest{Page: 2, PageSize: 2},
			expectedIDs: []string{"TM-003"},
			total:       3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Candidates = testutil.SampleCandidates()

			result, err := eng.Explore(context.Background(), tt.req)
			require.NoError(t, err)

			ids := make([]string, len(result.Results))
			for i, r := range result.Results {
				ids[i] = r.Identifier
			}
			assert.Equal(t, tt.expectedIDs, ids)
			assert.Equal(t, tt.total, result.Total)
			assert.NotEmpty(t, result.QueryId)
		})
	}

	for _, event := range recorder.Events() {
		assert.Equal(t, model.ScoreEventKindExplore, event.Kind)
		assert.Equal(t, 3, event.CandidateCount, "audit covers the full ranking")
	}
}

func TestEngine_Explore_KeepsCanonicalRanks(t *testing.T) {
	eng, _ := testutil.CreateTestEngine(t)

	result, err := eng.Explore(context.Background(), services.ExploreRequest{
		ScoreRequest: services.ScoreRequest{Candidates: testutil.SampleCandidates()},
		Order:        "asc",
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 3)
	assert.Equal(t, 3, result.Results[0].Rank)
	assert.Equal(t, 1, result.Results[2].Rank)
}

func TestEngine_Weights(t *testing.T) {
	eng, _ := testutil.CreateTestEngine(t)
	assert.Equal(t, config.DefaultWeights(), eng.Weights())
}
