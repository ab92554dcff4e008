package parsers

import "testing"

var testMapping = map[string]string{
	"numeroFacture": "A",
	"fournisseur":   "B",
	"montantTTC":    "C",
	"dateFacture":   "D",
}

func TestIsRowEmpty(t *testing.T) {
	empty := RawRow{"A": "", "B": "   ", "C": nil, "Z": "unmapped value"}
	if !IsRowEmpty(empty, testMapping) {
		t.Error("IsRowEmpty() = false for row with only blank mapped cells")
	}

	notEmpty := RawRow{"A": "", "B": "ACME", "C": ""}
	if IsRowEmpty(notEmpty, testMapping) {
		t.Error("IsRowEmpty() = true for row with a mapped value")
	}
}

func TestIsHeaderRow(t *testing.T) {
	// Повторённая шапка посреди файла
	header := RawRow{"A": "N° Facture", "B": "Fournisseur", "C": "Total", "D": "Date"}
	if !IsHeaderRow(header, testMapping) {
		t.Error("IsHeaderRow() = false for a repeated header row")
	}

	data := RawRow{"A": "INV-1", "B": "ACME", "C": "100", "D": "2023-01-01"}
	if IsHeaderRow(data, testMapping) {
		t.Error("IsHeaderRow() = true for a data row")
	}

	// Один заголовочный токен в строке данных не делает её шапкой
	oneMatch := RawRow{"A": "INV-2", "B": "STE TOTALE", "C": "250", "D": "2023-02-01"}
	if IsHeaderRow(oneMatch, testMapping) {
		t.Error("IsHeaderRow() = true for a data row with a single title-like cell")
	}
}

func TestIsHeaderRow_AccentInsensitive(t *testing.T) {
	header := RawRow{"A": "Numéro", "B": "Téléphone", "C": "", "D": ""}
	if !IsHeaderRow(header, testMapping) {
		t.Error("IsHeaderRow() should match accented column titles")
	}
}
