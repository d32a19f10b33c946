package similarity

import (
	"strconv"

	"github.com/gcbaptista/go-trademark-similarity/model"
)

// NotApplicable is shown in place of a text score when no text was detected.
const NotApplicable = "N/A"

// FormatScore renders a final score as a percentage, e.g. 73.3 -> "73.3%".
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64) + "%"
}

// FormatComponent renders a normalized component in [0,1] as a percentage, e.g. 0.905 -> "90.5%".
func FormatComponent(value float64) string {
	return FormatScore(ScaleScore(value))
}

// FormatTextComponent is FormatComponent for the text signal, or NotApplicable when it was absent.
func FormatTextComponent(result model.ScoredResult) string {
	if !result.TextSignalPresent {
		return NotApplicable
	}
	return FormatComponent(result.TextScore)
}
