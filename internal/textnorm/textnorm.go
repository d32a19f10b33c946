// Package textnorm normalizes OCR text detected in logos and splits display
// names into comparable tokens.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// acronymRegex handles cases like "HTTPRequest" -> "HTTP Request"
var acronymRegex = regexp.MustCompile(`(\p{Lu}+)(\p{Lu}\p{Ll})`)

// camelCaseRegex handles cases like "theOffice" -> "the Office" or "myAPI" -> "my API"
var camelCaseRegex = regexp.MustCompile(`([\p{Ll}\p{Nd}])(\p{Lu})`)

// NormalizeText applies NFKC normalization, drops control characters and trims whitespace.
// Full-width and ligature forms common in OCR output collapse to their plain equivalents.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return strings.TrimSpace(normed)
}

// NormalizeTokens normalizes OCR tokens for display. Empty tokens and
// case-insensitive duplicates are dropped; first-seen order and casing are kept.
// The result is never nil.
func NormalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	if len(tokens) == 0 {
		return out
	}

	// Casers are stateful, so each call gets its own.
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		normed := NormalizeText(token)
		if normed == "" {
			continue
		}
		key := folder.String(normed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, normed)
	}
	return out
}

// Tokenize converts a string into a slice of lowercase tokens.
// It splits camel/PascalCase and splits by anything that is not a letter or digit.
func Tokenize(text string) []string {
	// 1. Normalize compatibility forms
	processedText := norm.NFKC.String(text)

	// 2. Split camelCase/PascalCase
	processedText = acronymRegex.ReplaceAllString(processedText, "$1 $2")
	processedText = camelCaseRegex.ReplaceAllString(processedText, "$1 $2")

	// 3. Lowercase
	lowerText := cases.Lower(language.Und).String(processedText)

	// 4. Split by non-alphanumeric characters
	split := strings.FieldsFunc(lowerText, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(split)) // Initialize as empty slice, not nil
	tokens = append(tokens, split...)
	return tokens
}
