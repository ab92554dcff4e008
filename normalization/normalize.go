package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName приводит название к канонической форме для сравнения:
// убирает диакритику, заменяет цифру 0 на букву O (частая опечатка в
// выгрузках), отбрасывает все символы кроме букв и цифр, переводит в верхний
// регистр.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	stripped, _, err := transform.String(accentStripper, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	for _, r := range strings.ToUpper(stripped) {
		switch {
		case r == '0':
			b.WriteRune('O')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokens splits a name into comparison tokens: accent-stripped uppercase
// words longer than three letters, split on non-letter boundaries.
func Tokens(name string) []string {
	stripped, _, err := transform.String(accentStripper, name)
	if err != nil {
		stripped = name
	}

	words := strings.FieldsFunc(strings.ToUpper(stripped), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) > 3 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}
