package typoutil

import "unicode/utf8"

// Token lengths (in runes) at which one and two typos become acceptable.
const (
	MinWordSizeFor1Typo  = 4
	MinWordSizeFor2Typos = 7
)

// TypoBudget returns how many edits a token of this length may carry and still match.
func TypoBudget(token string) int {
	n := utf8.RuneCountInString(token)
	switch {
	case n >= MinWordSizeFor2Typos:
		return 2
	case n >= MinWordSizeFor1Typo:
		return 1
	default:
		return 0
	}
}

// MatchesToken reports whether candidate is within the typo budget of keyword.
// The budget is taken from the keyword, so short keywords must match exactly.
func MatchesToken(keyword, candidate string) bool {
	if keyword == candidate {
		return true
	}
	budget := TypoBudget(keyword)
	if budget == 0 {
		return false
	}
	return DamerauLevenshteinDistanceWithLimit(keyword, candidate, budget) <= budget
}

// MatchesKeyword reports whether every keyword token matches at least one of
// the candidate tokens. An empty keyword matches everything.
func MatchesKeyword(keywordTokens, candidateTokens []string) bool {
	for _, keyword := range keywordTokens {
		found := false
		for _, candidate := range candidateTokens {
			if MatchesToken(keyword, candidate) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
