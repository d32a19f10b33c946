package textnorm

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"simple lowercase", "hello world", []string{"hello", "world"}},
		{"with punctuation", "hello, world!", []string{"hello", "world"}},
		{"with numbers", "item123 test", []string{"item123", "test"}},
		{"leading/trailing spaces", "  hello world  ", []string{"hello", "world"}},
		{"camelCase", "theOffice", []string{"the", "office"}},
		{"PascalCase", "TheOffice", []string{"the", "office"}},
		{"mixedCase", "myAPIService", []string{"my", "api", "service"}},
		{"acronym then camelCase", "HTTPRequestManager", []string{"http", "request", "manager"}},
		{"string with hyphen", "state-of-the-art", []string{"state", "of", "the", "art"}},
		{"all caps word", "HELLO WORLD", []string{"hello", "world"}},
		{"mixed with numbers and symbols", "API_v1.0-beta!", []string{"api", "v1", "0", "beta"}},
		{"starts with digit then uppercase", "1Password", []string{"1", "password"}},
		{"only symbols", "!@#$%^", []string{}},
		{"accented letters kept", "Café Olé", []string{"café", "olé"}},
		{"full-width letters", "ＡＢＣ Coffee", []string{"abc", "coffee"}},
		{"ligature", "ﬁne Foods", []string{"fine", "foods"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "ACME", "ACME"},
		{"trims whitespace", "  ACME \n", "ACME"},
		{"drops control characters", "AC\x00ME\x07", "ACME"},
		{"full-width", "ＡＣＭＥ", "ACME"},
		{"only whitespace", " \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeText(tt.input); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeTokens(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil input", nil, []string{}},
		{"empty tokens dropped", []string{"", "  ", "ACME"}, []string{"ACME"}},
		{"case-insensitive duplicates dropped", []string{"Acme", "ACME", "acme", "Corp"}, []string{"Acme", "Corp"}},
		{"full-width duplicate", []string{"ACME", "ＡＣＭＥ"}, []string{"ACME"}},
		{"order preserved", []string{"zeta", "alpha", "mid"}, []string{"zeta", "alpha", "mid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTokens(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTokens(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
