package similarity

import (
	"sort"

	"github.com/gcbaptista/go-trademark-similarity/model"
)

// Rank sorts results into their canonical order and assigns 1-based ranks.
//
// Order: finalScore descending, then embeddingScoreA descending, then
// identifier ascending. The sort is stable, so results sharing an identifier
// keep their input order.
func Rank(results []model.ScoredResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return rankedBefore(results[i], results[j])
	})
	for i := range results {
		results[i].Rank = i + 1
	}
}

func rankedBefore(a, b model.ScoredResult) bool {
	if a.FinalScore != b.FinalScore {
		return a.FinalScore > b.FinalScore
	}
	if a.EmbeddingScoreA != b.EmbeddingScoreA {
		return a.EmbeddingScoreA > b.EmbeddingScoreA
	}
	return a.Identifier < b.Identifier
}
