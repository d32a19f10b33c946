package similarity

import (
	"math"

	"github.com/gcbaptista/go-trademark-similarity/config"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// snapTolerance is the relative distance, in tenths of a percent, within which
// a scaled score is treated as sitting exactly on a half. It absorbs float
// error (0.7325 scales to 732.4999999999999) without moving the boundary.
const snapTolerance = 1e-9

// RawScore is the weighted arithmetic mean of the normalized signals, in [0,1].
// The sum runs in model.SignalOrder so results are bit-identical across runs.
func RawScore(vec model.SignalVector, weights config.WeightTable) float64 {
	sum := 0.0
	for _, name := range model.SignalOrder {
		sum += weights.Get(name) * vec.Get(name)
	}
	return sum
}

// ScaleScore converts a raw score in [0,1] into a percentage with one decimal.
// Halves round up (away from zero); the result is clamped to [0,100].
func ScaleScore(raw float64) float64 {
	tenths := raw * 1000
	if half := math.Round(tenths*2) / 2; math.Abs(tenths-half) <= snapTolerance*math.Max(1, math.Abs(tenths)) {
		tenths = half
	}
	rounded := math.Round(tenths) / 10

	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// FinalScore is ScaleScore(RawScore(vec, weights)).
func FinalScore(vec model.SignalVector, weights config.WeightTable) float64 {
	return ScaleScore(RawScore(vec, weights))
}
