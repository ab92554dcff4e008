package parsers

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParseAmount converts a raw cell into a monetary amount. Locale noise is
// tolerated: spaces and currency symbols are stripped, a comma decimal
// separator becomes a dot. Unparseable input yields 0, never an error.
func ParseAmount(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}

	s := CellString(raw)
	if s == "" {
		return 0
	}

	s = strings.ReplaceAll(s, ",", ".")

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	amount, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return amount
}

// ParseInt converts a raw cell into an integer, defaulting to 0 on failure.
func ParseInt(raw interface{}) int {
	switch v := raw.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}

	s := CellString(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// Значения вида "2.0" из Excel
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return int(f)
	}
	return 0
}

// ParseBool converts a raw cell into a boolean. Recognized truthy values are
// "true", "1", "oui", "x" (any case), numeric 1 and boolean true.
func ParseBool(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v == 1
	case int:
		return v == 1
	}

	switch strings.ToLower(CellString(raw)) {
	case "true", "1", "oui", "x", "vrai":
		return true
	}
	return false
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldASCII lowercases a string and strips diacritics so that "Numéro" and
// "numero" compare equal.
func foldASCII(s string) string {
	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}
