package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes to NFD, drops combining marks, and recomposes.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// stopwords are banking filler terms that carry no categorization signal.
// Stored already normalized (lower-case, no diacritics).
var stopwords = map[string]bool{
	"pago":          true,
	"pagamento":     true,
	"transferencia": true,
	"pix":           true,
	"ted":           true,
	"doc":           true,
	"conta":         true,
	"valor":         true,
	"banco":         true,
	"referencia":    true,
	"numero":        true,
	"recebido":      true,
	"para":          true,
	"com":           true,
	"por":           true,
	"das":           true,
	"dos":           true,
}

const (
	minTokenLen = 3
	maxKeywords = 6
)

// Normalize canonicalizes a free-text transaction description for comparison:
// lower-case, diacritics removed, punctuation reduced to spaces, whitespace
// collapsed, trimmed. Idempotent and side-effect free.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripDiacritics, s); err == nil {
		s = out
	}
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// ExtractKeywords derives a compact ordered keyword set from a description:
// normalized tokens, shorter-than-3 and stop-word tokens dropped, capped at
// six keywords in original order. Both sides of every similarity comparison
// go through this same extraction.
func ExtractKeywords(description string) []string {
	fields := strings.Fields(Normalize(description))
	keywords := make([]string, 0, maxKeywords)
	for _, tok := range fields {
		if len([]rune(tok)) < minTokenLen || stopwords[tok] {
			continue
		}
		keywords = append(keywords, tok)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}
