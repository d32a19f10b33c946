package typoutil

import (
	"testing"
)

func TestDamerauLevenshteinDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"both empty", "", "", 0},
		{"a empty", "", "hello", 5},
		{"b empty", "hello", "", 5},
		{"identical", "hello", "hello", 0},
		{"simple substitution", "kitten", "sitten", 1},
		{"simple insertion", "apple", "applye", 1},
		{"simple deletion", "banana", "banna", 1},
		{"adjacent transposition", "nkie", "nike", 1},
		{"transposition at end", "adidsa", "adidas", 1},
		{"multiple edits", "saturday", "sunday", 3},
		{"unicode chars (same len)", "cliché", "cliche", 1},
		{"unicode chars (diff len)", "résumé", "resume", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DamerauLevenshteinDistance(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("DamerauLevenshteinDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDamerauLevenshteinDistanceWithLimit(t *testing.T) {
	tests := []struct {
		name        string
		a           string
		b           string
		maxDistance int
		want        int
	}{
		{"within limit", "kitten", "sitten", 2, 1},
		{"exactly at limit", "saturday", "sunday", 3, 3},
		{"exceeds limit", "saturday", "sunday", 2, 3},
		{"length difference exceeds limit", "abc", "abcdef", 1, 2},
		{"transposition within limit", "coca", "caco", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DamerauLevenshteinDistanceWithLimit(tt.a, tt.b, tt.maxDistance)
			if got != tt.want {
				t.Errorf("DamerauLevenshteinDistanceWithLimit(%q, %q, %d) = %d, want %d",
					tt.a, tt.b, tt.maxDistance, got, tt.want)
			}
		})
	}
}

func BenchmarkDamerauLevenshteinDistanceWithLimit(b *testing.B) {
	pairs := [][2]string{
		{"starbucks", "starbux"},
		{"microsoft", "microsfot"},
		{"adidas", "abibas"},
		{"coca-cola", "koka-kola"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pair := pairs[i%len(pairs)]
		DamerauLevenshteinDistanceWithLimit(pair[0], pair[1], 2)
	}
}
