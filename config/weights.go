package config

import (
	"fmt"
	"math"

	apperrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// WeightSumTolerance is the allowed distance of the weight sum from 1.0.
const WeightSumTolerance = 1e-9

// WeightTable holds the weight applied to each normalized signal.
// Visual embeddings dominate because logo similarity is primarily visual; text counts when
// present; color, font and shape refine the ranking.
//
// A WeightTable is validated once at startup and never mutated afterwards.
type WeightTable struct {
	EmbeddingScoreA float64 `json:"embeddingScoreA"`
	EmbeddingScoreB float64 `json:"embeddingScoreB"`
	TextScore       float64 `json:"textScore"`
	ColorScore      float64 `json:"colorScore"`
	FontScore       float64 `json:"fontScore"`
	ShapeScore      float64 `json:"shapeScore"`
}

// DefaultWeights returns the production weighting policy.
//
//	embeddingScoreA 0.35, embeddingScoreB 0.25, textScore 0.15,
//	colorScore 0.10, fontScore 0.075, shapeScore 0.075
func DefaultWeights() WeightTable {
	return WeightTable{
		EmbeddingScoreA: 0.35,
		EmbeddingScoreB: 0.25,
		TextScore:       0.15,
		ColorScore:      0.10,
		FontScore:       0.075,
		ShapeScore:      0.075,
	}
}

// Get returns the weight for a signal.
func (w WeightTable) Get(name model.SignalName) float64 {
	switch name {
	case model.SignalEmbeddingA:
		return w.EmbeddingScoreA
	case model.SignalEmbeddingB:
		return w.EmbeddingScoreB
	case model.SignalText:
		return w.TextScore
	case model.SignalColor:
		return w.ColorScore
	case model.SignalFont:
		return w.FontScore
	case model.SignalShape:
		return w.ShapeScore
	}
	return 0
}

// Set assigns the weight for a signal.
func (w *WeightTable) Set(name model.SignalName, value float64) {
	switch name {
	case model.SignalEmbeddingA:
		w.EmbeddingScoreA = value
	case model.SignalEmbeddingB:
		w.EmbeddingScoreB = value
	case model.SignalText:
		w.TextScore = value
	case model.SignalColor:
		w.ColorScore = value
	case model.SignalFont:
		w.FontScore = value
	case model.SignalShape:
		w.ShapeScore = value
	}
}

// Sum adds the weights in signal order.
func (w WeightTable) Sum() float64 {
	sum := 0.0
	for _, name := range model.SignalOrder {
		sum += w.Get(name)
	}
	return sum
}

// Validate checks that every weight is a finite, non-negative number and that
// the weights sum to 1.0 within WeightSumTolerance.
func (w WeightTable) Validate() error {
	for _, name := range model.SignalOrder {
		v := w.Get(name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperrors.NewConfigurationError("weights."+string(name), "weight must be a finite number")
		}
		if v < 0 {
			return apperrors.NewConfigurationError("weights."+string(name), fmt.Sprintf("weight must not be negative, got %g", v))
		}
	}

	if sum := w.Sum(); math.Abs(sum-1.0) > WeightSumTolerance {
		return apperrors.NewConfigurationError("weights", fmt.Sprintf("weights must sum to 1.0, got %.12g", sum))
	}
	return nil
}
