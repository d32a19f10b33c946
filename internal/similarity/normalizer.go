package similarity

import (
	"math"

	apperrors "github.com/gcbaptista/go-trademark-similarity/internal/errors"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// NormalizedSignals is the total signal vector of one candidate plus what the
// normalizer learned about the input on the way.
type NormalizedSignals struct {
	Vector            model.SignalVector
	TextSignalPresent bool                              // false when no usable text reading was supplied
	Warnings          []*apperrors.InvalidSignalWarning // one per discarded reading, in signal order
}

// Normalize turns raw, possibly missing or out-of-range readings into a total vector.
//
//   - present, finite readings are clamped to [0,1]
//   - absent readings become 0
//   - NaN and ±Inf readings are treated as absent and recorded as warnings
//
// An absent text reading contributes 0 like any other signal; TextSignalPresent
// lets callers render it as "not applicable" instead of 0%.
func Normalize(raw model.RawSignals) NormalizedSignals {
	var out NormalizedSignals

	for _, name := range model.SignalOrder {
		value := raw.Get(name)
		if value == nil {
			continue
		}

		v := *value
		if reason, ok := invalidReason(v); ok {
			out.Warnings = append(out.Warnings, apperrors.NewInvalidSignalWarning(string(name), reason))
			continue
		}

		out.Vector.Set(name, clampUnit(v))
		if name == model.SignalText {
			out.TextSignalPresent = true
		}
	}

	return out
}

func invalidReason(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "value is not a number", true
	case math.IsInf(v, 1):
		return "value is +Inf", true
	case math.IsInf(v, -1):
		return "value is -Inf", true
	}
	return "", false
}

// clampUnit pins v into [0,1]. Negative zero becomes 0.
func clampUnit(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
