// Package similarity implements the trademark similarity aggregation engine:
// signal normalization, weighted aggregation and deterministic ranking.
package similarity

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-trademark-similarity/config"
	"github.com/gcbaptista/go-trademark-similarity/internal/textnorm"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// DefaultParallelThreshold is the candidate count above which scoring fans out.
const DefaultParallelThreshold = config.DefaultParallelThreshold

// Options tunes how an Engine spreads work across goroutines.
type Options struct {
	ParallelThreshold int // <= 0 uses DefaultParallelThreshold
	MaxParallelism    int // <= 0 uses runtime.GOMAXPROCS(0)
}

// Engine scores candidate sets against a fixed, validated weight table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	weights     config.WeightTable
	threshold   int
	parallelism int
}

// NewEngine validates the weight table and returns an engine bound to it.
// An invalid table yields a *errors.ConfigurationError and no engine.
func NewEngine(weights config.WeightTable, opts Options) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	threshold := opts.ParallelThreshold
	if threshold <= 0 {
		threshold = DefaultParallelThreshold
	}
	parallelism := opts.MaxParallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	return &Engine{
		weights:     weights,
		threshold:   threshold,
		parallelism: parallelism,
	}, nil
}

// Weights returns a copy of the engine's weight table.
func (e *Engine) Weights() config.WeightTable {
	return e.weights
}

// Score normalizes, weights and ranks every candidate. The returned slice has
// one result per candidate, in rank order; it is empty but non-nil for empty input.
// Per-candidate data problems are attached to the result as warnings and never abort the call.
func (e *Engine) Score(candidates []model.Candidate, qctx model.QueryContext) []model.ScoredResult {
	results := make([]model.ScoredResult, len(candidates))
	if len(candidates) == 0 {
		return results
	}

	tokens := textnorm.NormalizeTokens(qctx.OCRTokens)

	if len(candidates) > e.threshold && e.parallelism > 1 {
		e.scoreParallel(candidates, tokens, results)
	} else {
		for i := range candidates {
			results[i] = e.scoreCandidate(candidates[i], tokens)
		}
	}

	Rank(results)
	return results
}

// scoreParallel splits candidates into contiguous chunks; each worker writes only its own slots.
func (e *Engine) scoreParallel(candidates []model.Candidate, tokens []string, results []model.ScoredResult) {
	var g errgroup.Group
	g.SetLimit(e.parallelism)

	chunk := (len(candidates) + e.parallelism - 1) / e.parallelism
	for start := 0; start < len(candidates); start += chunk {
		end := min(start+chunk, len(candidates))
		g.Go(func() error {
			for i := start; i < end; i++ {
				results[i] = e.scoreCandidate(candidates[i], tokens)
			}
			return nil
		})
	}

	// Workers never fail.
	_ = g.Wait()
}

// scoreCandidate gives each result its own copy of the tokens.
func (e *Engine) scoreCandidate(candidate model.Candidate, tokens []string) model.ScoredResult {
	normalized := Normalize(candidate.Signals)

	return model.ScoredResult{
		Identifier:        candidate.Identifier,
		DisplayName:       candidate.DisplayName,
		ImageReference:    candidate.ImageReference,
		FinalScore:        FinalScore(normalized.Vector, e.weights),
		SignalVector:      normalized.Vector,
		TextSignalPresent: normalized.TextSignalPresent,
		OCRTokens:         slices.Clone(tokens),
		Warnings:          normalized.Warnings,
	}
}
