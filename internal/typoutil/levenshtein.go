// Package typoutil measures edit distance between tokens and decides whether a
// keyword matches a mark name within a length-dependent typo budget.
package typoutil

// DamerauLevenshteinDistance computes the Damerau-Levenshtein distance between two strings:
// the minimum number of insertions, deletions, substitutions or adjacent transpositions
// required to change one into the other. It works on runes.
func DamerauLevenshteinDistance(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)
	return damerauLevenshtein(runesA, runesB, len(runesA)+len(runesB))
}

// DamerauLevenshteinDistanceWithLimit is DamerauLevenshteinDistance with early termination.
// Returns maxDistance + 1 as soon as the distance is known to exceed maxDistance.
func DamerauLevenshteinDistanceWithLimit(a, b string, maxDistance int) int {
	return damerauLevenshtein([]rune(a), []rune(b), maxDistance)
}

func damerauLevenshtein(runesA, runesB []rune, maxDistance int) int {
	lenA := len(runesA)
	lenB := len(runesB)

	lengthDiff := lenA - lenB
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	if lengthDiff > maxDistance {
		return maxDistance + 1
	}

	if lenA == 0 {
		return lenB
	}
	if lenB == 0 {
		return lenA
	}

	// Three rows: transpositions look back two rows.
	prevPrevRow := make([]int, lenB+1)
	prevRow := make([]int, lenB+1)
	currRow := make([]int, lenB+1)

	for j := 0; j <= lenB; j++ {
		prevRow[j] = j
	}

	for i := 1; i <= lenA; i++ {
		currRow[0] = i
		minInRow := i

		for j := 1; j <= lenB; j++ {
			cost := 0
			if runesA[i-1] != runesB[j-1] {
				cost = 1
			}

			currRow[j] = min3(prevRow[j]+1, currRow[j-1]+1, prevRow[j-1]+cost)

			if i > 1 && j > 1 &&
				runesA[i-1] == runesB[j-2] &&
				runesA[i-2] == runesB[j-1] {
				if transposition := prevPrevRow[j-2] + cost; transposition < currRow[j] {
					currRow[j] = transposition
				}
			}

			if currRow[j] < minInRow {
				minInRow = currRow[j]
			}
		}

		if minInRow > maxDistance {
			return maxDistance + 1
		}

		prevPrevRow, prevRow, currRow = prevRow, currRow, prevPrevRow
	}

	return prevRow[lenB]
}

// min3 is a helper function to find the minimum of three integers
func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
