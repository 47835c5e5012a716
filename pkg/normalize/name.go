// Package normalize canonicalizes names and phone numbers into the
// comparison forms backing the lookup indexes. Name normalization is
// equality-oriented (case fold, accent fold, separator squeeze) and is
// distinct from the locale collation keys used for sorting.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name canonicalizes free text for equality and prefix comparison:
// lowercase, accents stripped, everything that is not a letter or digit
// removed (e.g. "Jean-Luc Picard" -> "jeanlucpicard").
// Blank input yields "", which callers must treat as "do not index".
func Name(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	folded, _, _ := transform.String(stripAccents, strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NameStyle classifies the script of a full name, which decides how name
// parts are joined (CJK names concatenate family+given with no separator).
type NameStyle int

const (
	StyleWestern NameStyle = iota
	StyleCJK
)

// StyleOf returns the full-name style for a string. Any Han, Kana or
// Hangul rune makes the whole name CJK.
func StyleOf(s string) NameStyle {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
			return StyleCJK
		}
	}
	return StyleWestern
}
