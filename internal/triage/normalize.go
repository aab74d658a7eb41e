package triage

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TokenSet is the normalized, tokenized form of a message.
type TokenSet struct {
	Normalized      string   `json:"normalized"`
	Tokens          []string `json:"tokens"`
	Words           []string `json:"-"`
	HasQuestionMark bool     `json:"has_question_mark"`
}

// Normalize lower-cases text, strips diacritics, replaces punctuation other
// than "?" with spaces, collapses whitespace and splits the result into tokens.
// Words holds the tokens further split on "?" so keywords match on word boundaries.
func Normalize(text string) TokenSet {
	normalized := normalizeText(text)
	tokens := tokenize(normalized)

	return TokenSet{
		Normalized:      normalized,
		Tokens:          tokens,
		Words:           splitWords(tokens),
		HasQuestionMark: strings.Contains(text, "?"),
	}
}

func normalizeText(text string) string {
	lower := strings.ToLower(text)

	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))),
		lower,
	)
	if err != nil {
		stripped = norm.NFD.String(lower)
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case isWordRune(r), r == '?':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// isWordRune matches the ASCII word class [A-Za-z0-9_].
func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

func tokenize(normalized string) []string {
	parts := strings.Split(normalized, " ")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func splitWords(tokens []string) []string {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		words = append(words, strings.FieldsFunc(t, func(r rune) bool {
			return r == '?'
		})...)
	}
	return words
}
