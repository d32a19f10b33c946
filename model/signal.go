package model

import (
	"bytes"
	"encoding/json"
	"math"
)

// SignalName identifies one similarity measurement between a query logo and a candidate mark.
// The string value doubles as the wire name of the field.
type SignalName string

const (
	SignalEmbeddingA SignalName = "embeddingScoreA" // general-purpose visual descriptor (DINO-style)
	SignalEmbeddingB SignalName = "embeddingScoreB" // classic CNN descriptor (VGG-style)
	SignalText       SignalName = "textScore"       // OCR/text similarity
	SignalColor      SignalName = "colorScore"
	SignalFont       SignalName = "fontScore"
	SignalShape      SignalName = "shapeScore"
)

// SignalOrder is the fixed order in which signals are normalized and summed.
// Summing in a fixed order keeps final scores bit-identical across runs.
var SignalOrder = [...]SignalName{
	SignalEmbeddingA,
	SignalEmbeddingB,
	SignalText,
	SignalColor,
	SignalFont,
	SignalShape,
}

// Float returns a pointer to v, for building RawSignals literals.
func Float(v float64) *float64 {
	return &v
}

// RawSignals is the per-candidate evidence as delivered by the feature extractors.
// A nil field means the signal is absent. A non-finite value (NaN, ±Inf) marks a
// reading that was present but unusable; JSON values that are not numbers decode to NaN.
type RawSignals struct {
	EmbeddingScoreA *float64 `json:"embeddingScoreA,omitempty"`
	EmbeddingScoreB *float64 `json:"embeddingScoreB,omitempty"`
	TextScore       *float64 `json:"textScore,omitempty"`
	ColorScore      *float64 `json:"colorScore,omitempty"`
	FontScore       *float64 `json:"fontScore,omitempty"`
	ShapeScore      *float64 `json:"shapeScore,omitempty"`
}

// Get returns the raw reading for a signal, or nil when absent.
func (r RawSignals) Get(name SignalName) *float64 {
	switch name {
	case SignalEmbeddingA:
		return r.EmbeddingScoreA
	case SignalEmbeddingB:
		return r.EmbeddingScoreB
	case SignalText:
		return r.TextScore
	case SignalColor:
		return r.ColorScore
	case SignalFont:
		return r.FontScore
	case SignalShape:
		return r.ShapeScore
	}
	return nil
}

// Set stores a raw reading for a signal. Passing nil marks it absent.
func (r *RawSignals) Set(name SignalName, value *float64) {
	switch name {
	case SignalEmbeddingA:
		r.EmbeddingScoreA = value
	case SignalEmbeddingB:
		r.EmbeddingScoreB = value
	case SignalText:
		r.TextScore = value
	case SignalColor:
		r.ColorScore = value
	case SignalFont:
		r.FontScore = value
	case SignalShape:
		r.ShapeScore = value
	}
}

// UnmarshalJSON accepts numbers, null, or missing keys for every signal.
// Any other JSON value (string, bool, object) is kept as a NaN reading so the
// normalizer can report it instead of the whole request failing to decode.
func (r *RawSignals) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = RawSignals{}
	for _, name := range SignalOrder {
		raw, ok := fields[string(name)]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}

		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			v = math.NaN()
		}
		r.Set(name, Float(v))
	}
	return nil
}

// MarshalJSON writes finite readings only; non-finite readings cannot be encoded as JSON numbers.
func (r RawSignals) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(SignalOrder))
	for _, name := range SignalOrder {
		if v := r.Get(name); v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			out[string(name)] = *v
		}
	}
	return json.Marshal(out)
}

// SignalVector is a total, normalized set of signals. Every value lies in [0,1].
type SignalVector struct {
	EmbeddingScoreA float64 `json:"embeddingScoreA"`
	EmbeddingScoreB float64 `json:"embeddingScoreB"`
	TextScore       float64 `json:"textScore"`
	ColorScore      float64 `json:"colorScore"`
	FontScore       float64 `json:"fontScore"`
	ShapeScore      float64 `json:"shapeScore"`
}

// Get returns the normalized value of a signal.
func (v SignalVector) Get(name SignalName) float64 {
	switch name {
	case SignalEmbeddingA:
		return v.EmbeddingScoreA
	case SignalEmbeddingB:
		return v.EmbeddingScoreB
	case SignalText:
		return v.TextScore
	case SignalColor:
		return v.ColorScore
	case SignalFont:
		return v.FontScore
	case SignalShape:
		return v.ShapeScore
	}
	return 0
}

// Set assigns the normalized value of a signal.
func (v *SignalVector) Set(name SignalName, value float64) {
	switch name {
	case SignalEmbeddingA:
		v.EmbeddingScoreA = value
	case SignalEmbeddingB:
		v.EmbeddingScoreB = value
	case SignalText:
		v.TextScore = value
	case SignalColor:
		v.ColorScore = value
	case SignalFont:
		v.FontScore = value
	case SignalShape:
		v.ShapeScore = value
	}
}
