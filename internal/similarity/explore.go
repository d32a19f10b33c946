package similarity

import (
	"slices"

	"github.com/gcbaptista/go-trademark-similarity/internal/textnorm"
	"github.com/gcbaptista/go-trademark-similarity/internal/typoutil"
	"github.com/gcbaptista/go-trademark-similarity/model"
)

// Explore ordering.
const (
	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// Pagination defaults for Explore.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ExploreOptions narrows and pages a ranked result list.
type ExploreOptions struct {
	MinSimilarity float64 // drop results scoring below this percentage
	Keyword       string  // typo-tolerant match against display name or identifier
	Order         string  // OrderDesc (default) or OrderAsc
	Page          int
	PageSize      int
}

// ExplorePage is one page of filtered results. Total counts every result that
// passed the filters, not only those on this page.
type ExplorePage struct {
	Results    []model.ScoredResult `json:"results"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// Explore filters an already ranked list, orders it and cuts out one page.
// Results keep the rank they were given by Rank.
func Explore(ranked []model.ScoredResult, opts ExploreOptions) ExplorePage {
	page := opts.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	keywordTokens := textnorm.Tokenize(opts.Keyword)

	filtered := make([]model.ScoredResult, 0, len(ranked))
	for _, result := range ranked {
		if result.FinalScore < opts.MinSimilarity {
			continue
		}
		if len(keywordTokens) > 0 && !matchesResult(keywordTokens, result) {
			continue
		}
		filtered = append(filtered, result)
	}

	if opts.Order == OrderAsc {
		slices.Reverse(filtered)
	}

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	// Compare page counts before multiplying so a huge page cannot overflow.
	start := total
	if page-1 < totalPages {
		start = (page - 1) * pageSize
	}
	end := min(start+pageSize, total)

	return ExplorePage{
		Results:    filtered[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func matchesResult(keywordTokens []string, result model.ScoredResult) bool {
	if typoutil.MatchesKeyword(keywordTokens, textnorm.Tokenize(result.DisplayName)) {
		return true
	}
	return typoutil.MatchesKeyword(keywordTokens, textnorm.Tokenize(result.Identifier))
}
