package similarity

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-trademark-similarity/config"
	apperrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

func newTestEngine(t testing.TB, opts Options) *Engine {
	t.Helper()
	engine, err := NewEngine(config.DefaultWeights(), opts)
	require.NoError(t, err)
	return engine
}

func workedExampleSignals() model.RawSignals {
	return model.RawSignals{
		EmbeddingScoreA: model.Float(0.90),
		EmbeddingScoreB: model.Float(0.80),
		TextScore:       model.Float(0.50),
		ColorScore:      model.Float(0.60),
		FontScore:       model.Float(0.40),
		ShapeScore:      model.Float(0.70),
	}
}

func randomCandidates(rng *rand.Rand, n int) []model.Candidate {
	candidates := make([]model.Candidate, n)
	for i := range candidates {
		var signals model.RawSignals
		for _, name := range model.SignalOrder {
			switch r := rng.Float64(); {
			case r < 0.1:
				// absent
			case r < 0.15:
				signals.Set(name, model.Float(math.NaN()))
			case r < 0.2:
				signals.Set(name, model.Float(rng.Float64()*3-1))
			default:
				// coarse values produce plenty of ties
				signals.Set(name, model.Float(float64(rng.Intn(5))/4))
			}
		}
		candidates[i] = model.Candidate{
			Identifier:     fmt.Sprintf("TM-%05d", rng.Intn(n*10)),
			DisplayName:    fmt.Sprintf("Mark %d", i),
			ImageReference: fmt.Sprintf("images/%d.png", i),
			Signals:        signals,
		}
	}
	return candidates
}

func TestNewEngine_InvalidWeights(t *testing.T) {
	weights := config.DefaultWeights()
	weights.EmbeddingScoreA = 0.25 // sums to 0.9

	engine, err := NewEngine(weights, Options{})

	assert.Nil(t, engine)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))

	var cfgErr *apperrors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestEngine_Score_WorkedExample(t *testing.T) {
	engine := newTestEngine(t, Options{})

	results := engine.Score([]model.Candidate{{
		Identifier:     "TM-1",
		DisplayName:    "Acme",
		ImageReference: "images/acme.png",
		Signals:        workedExampleSignals(),
	}}, model.QueryContext{OCRTokens: []string{"ACME", "acme", " Corp "}})

	require.Len(t, results, 1)
	result := results[0]
	assert.Equal(t, 1, result.Rank)
	assert.Equal(t, "TM-1", result.Identifier)
	assert.Equal(t, "Acme", result.DisplayName)
	assert.Equal(t, "images/acme.png", result.ImageReference)
	assert.Equal(t, 73.3, result.FinalScore)
	assert.Equal(t, 0.9, result.EmbeddingScoreA)
	assert.Equal(t, 0.7, result.ShapeScore)
	assert.True(t, result.TextSignalPresent)
	assert.Equal(t, []string{"ACME", "Corp"}, result.OCRTokens)
	assert.False(t, result.HasWarnings())
}

func TestEngine_Score_EmptyInput(t *testing.T) {
	engine := newTestEngine(t, Options{})

	results := engine.Score(nil, model.QueryContext{})
	assert.NotNil(t, results)
	assert.Empty(t, results)

	results = engine.Score([]model.Candidate{}, model.QueryContext{})
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestEngine_Score_AllSignalsAbsent(t *testing.T) {
	engine := newTestEngine(t, Options{})

	results := engine.Score([]model.Candidate{
		{Identifier: "TM-EMPTY"},
		{Identifier: "TM-FULL", Signals: workedExampleSignals()},
	}, model.QueryContext{})

	require.Len(t, results, 2)
	assert.Equal(t, "TM-FULL", results[0].Identifier)

	empty := results[1]
	assert.Equal(t, "TM-EMPTY", empty.Identifier)
	assert.Equal(t, 0.0, empty.FinalScore)
	assert.False(t, empty.TextSignalPresent)
	assert.False(t, empty.HasWarnings())
	assert.NotNil(t, empty.OCRTokens)
}

func TestEngine_Score_AllSignalsInvalid(t *testing.T) {
	engine := newTestEngine(t, Options{})

	var signals model.RawSignals
	for _, name := range model.SignalOrder {
		signals.Set(name, model.Float(math.NaN()))
	}

	results := engine.Score([]model.Candidate{{Identifier: "TM-BROKEN", Signals: signals}}, model.QueryContext{})

	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].FinalScore)
	assert.Len(t, results[0].Warnings, len(model.SignalOrder))
}

func TestEngine_Score_TieBrokenByEmbeddingA(t *testing.T) {
	engine := newTestEngine(t, Options{})

	b := workedExampleSignals()
	b.EmbeddingScoreA = model.Float(0.85)
	b.EmbeddingScoreB = model.Float(0.87)

	// B is listed first and sorts first by identifier; embeddingScoreA must still win.
	results := engine.Score([]model.Candidate{
		{Identifier: "A-candidate-b", Signals: b},
		{Identifier: "Z-candidate-a", Signals: workedExampleSignals()},
	}, model.QueryContext{})

	require.Len(t, results, 2)
	assert.Equal(t, 73.3, results[0].FinalScore)
	assert.Equal(t, 73.3, results[1].FinalScore)
	assert.Equal(t, "Z-candidate-a", results[0].Identifier)
	assert.Equal(t, "A-candidate-b", results[1].Identifier)
}

func TestEngine_Score_TieBrokenByIdentifier(t *testing.T) {
	engine := newTestEngine(t, Options{})

	results := engine.Score([]model.Candidate{
		{Identifier: "TM-300", Signals: workedExampleSignals()},
		{Identifier: "TM-100", Signals: workedExampleSignals()},
		{Identifier: "TM-200", Signals: workedExampleSignals()},
	}, model.QueryContext{})

	require.Len(t, results, 3)
	assert.Equal(t, "TM-100", results[0].Identifier)
	assert.Equal(t, "TM-200", results[1].Identifier)
	assert.Equal(t, "TM-300", results[2].Identifier)
	for i, result := range results {
		assert.Equal(t, i+1, result.Rank)
	}
}

func TestEngine_Score_Idempotent(t *testing.T) {
	engine := newTestEngine(t, Options{})
	candidates := randomCandidates(rand.New(rand.NewSource(1)), 500)

	first := engine.Score(candidates, model.QueryContext{})
	second := engine.Score(candidates, model.QueryContext{})

	assert.Equal(t, first, second)
}

func TestEngine_Score_ParallelMatchesSequential(t *testing.T) {
	sequential := newTestEngine(t, Options{ParallelThreshold: 1 << 30})
	parallel := newTestEngine(t, Options{ParallelThreshold: 1, MaxParallelism: 8})

	for _, n := range []int{1, 2, 7, 64, 1000} {
		t.Run(fmt.Sprintf("%d candidates", n), func(t *testing.T) {
			candidates := randomCandidates(rand.New(rand.NewSource(int64(n))), n)
			qctx := model.QueryContext{OCRTokens: []string{"mark"}}

			assert.Equal(t, sequential.Score(candidates, qctx), parallel.Score(candidates, qctx))
		})
	}
}

func TestEngine_Score_ConcurrentCallers(t *testing.T) {
	engine := newTestEngine(t, Options{ParallelThreshold: 16})
	candidates := randomCandidates(rand.New(rand.NewSource(5)), 200)
	want := engine.Score(candidates, model.QueryContext{})

	var wg sync.WaitGroup
	results := make([][]model.ScoredResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Score(candidates, model.QueryContext{})
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEngine_Score_DoesNotMutateInput(t *testing.T) {
	engine := newTestEngine(t, Options{})
	candidates := []model.Candidate{
		{Identifier: "TM-B", Signals: model.RawSignals{EmbeddingScoreA: model.Float(2)}},
		{Identifier: "TM-A", Signals: model.RawSignals{EmbeddingScoreA: model.Float(0.1)}},
	}
	tokens := []string{"  x  "}

	engine.Score(candidates, model.QueryContext{OCRTokens: tokens})

	assert.Equal(t, "TM-B", candidates[0].Identifier)
	assert.Equal(t, 2.0, *candidates[0].Signals.EmbeddingScoreA)
	assert.Equal(t, "  x  ", tokens[0])
}

func TestEngine_Score_ResultsOwnTheirTokens(t *testing.T) {
	for _, opts := range []Options{{}, {ParallelThreshold: 1, MaxParallelism: 2}} {
		engine := newTestEngine(t, opts)
		candidates := []model.Candidate{
			{Identifier: "TM-A", Signals: model.RawSignals{EmbeddingScoreA: model.Float(0.9)}},
			{Identifier: "TM-B", Signals: model.RawSignals{EmbeddingScoreA: model.Float(0.1)}},
		}

		results := engine.Score(candidates, model.QueryContext{OCRTokens: []string{"star", "coffee"}})
		require.Len(t, results, 2)

		results[0].OCRTokens[0] = "edited"
		assert.Equal(t, []string{"star", "coffee"}, results[1].OCRTokens)
	}
}

func TestEngine_Weights(t *testing.T) {
	engine := newTestEngine(t, Options{})
	assert.Equal(t, config.DefaultWeights(), engine.Weights())
}

func BenchmarkEngine_Score(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		candidates := randomCandidates(rand.New(rand.NewSource(int64(n))), n)
		engine := newTestEngine(b, Options{})

		b.Run(fmt.Sprintf("%d candidates", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				engine.Score(candidates, model.QueryContext{})
			}
		})
	}
}
