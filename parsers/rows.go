package parsers

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RawRow представляет одну строку из загруженного файла: имя колонки -> сырое
// значение ячейки (string, float64, time.Time или nil).
type RawRow map[string]interface{}

// CellString converts a raw cell value to a trimmed string. Numeric cells are
// rendered without a trailing ".0" so codes like 1024 survive the round-trip.
func CellString(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return fmt.Sprintf("%d", int64(v))
		}
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	case float32:
		return CellString(float64(v))
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// IsRowEmpty reports whether every mapped column of the row is blank.
func IsRowEmpty(row RawRow, mapping map[string]string) bool {
	for _, column := range mapping {
		if column == "" {
			continue
		}
		if CellString(row[column]) != "" {
			return false
		}
	}
	return true
}

// headerSynonyms are column-title words that identify a repeated header row
// embedded mid-file. Matching is done on the lowercased, accent-stripped cell.
var headerSynonyms = []string{
	"numero", "n°", "date", "montant", "client", "fournisseur",
	"reference", "designation", "quantite", "prix", "total", "tva",
	"telephone", "facture", "libelle", "code", "nom",
}

// IsHeaderRow reports whether the row looks like a spreadsheet header rather
// than data: at least two mapped cells (or more than half of them) textually
// resemble the field's own name or a known column-title word.
func IsHeaderRow(row RawRow, mapping map[string]string) bool {
	mapped := 0
	matches := 0

	for field, column := range mapping {
		if column == "" {
			continue
		}
		cell := CellString(row[column])
		if cell == "" {
			continue
		}
		mapped++
		if cellLooksLikeTitle(cell, field) {
			matches++
		}
	}

	if mapped == 0 {
		return false
	}
	return matches >= 2 || matches*2 > mapped
}

func cellLooksLikeTitle(cell, field string) bool {
	folded := foldASCII(cell)
	if folded == "" {
		return false
	}
	if folded == foldASCII(field) {
		return true
	}
	for _, syn := range headerSynonyms {
		if strings.Contains(folded, syn) {
			return true
		}
	}
	return false
}
