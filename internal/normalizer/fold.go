package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const combiningBreve = '\u0306'

// Fold lowercases text, removes diacritics and replaces every rune that is
// not a letter or digit with a space. Compatibility forms are decomposed,
// so "м²" folds to "м2". The breve of "й" is kept and "ё" folds to "е".
func Fold(text string) string {
	decomposed := norm.NFKD.String(strings.ToLower(text))
	var b strings.Builder
	b.Grow(len(decomposed))
	var prev rune
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			if r == combiningBreve && prev == 'и' {
				b.WriteRune(r)
			}
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteByte(' ')
		}
		prev = r
	}
	return norm.NFC.String(b.String())
}

// Tokenize folds text and splits it on whitespace. The catalog index and
// the query normalizer share it, so both sides see the same terms.
func Tokenize(text string) []string {
	return strings.Fields(Fold(text))
}
