package mapping

import (
	"strings"

	"importserver/parsers"
)

// FieldMapping — пользовательский маппинг: логическое поле -> имя колонки в
// файле. Частичный: несмапленные поля просто отсутствуют.
type FieldMapping map[string]string

// boolFields — поля, коэрцируемые в булево значение.
var boolFields = map[string]bool{
	"valide":        true,
	"facturee":      true,
	"definitive":    true,
	"typeLentilles": true,
	"paye":          true,
}

// intFields — поля, коэрцируемые в целое.
var intFields = map[string]bool{
	"quantite": true,
	"stock":    true,
}

// numberPrefixes — префиксы полей с денежными суммами.
var numberPrefixes = []string{"montant", "prix", "total", "avance", "plafond", "taux", "solde"}

// MapRow applies the user mapping to one raw row and coerces every mapped,
// non-blank cell per the field policy: date* fields to dates, known boolean
// and integer fields, montant*/prix*/... to numbers, everything else to a
// trimmed string. Unmapped or blank cells are simply absent from the result.
func MapRow(row parsers.RawRow, mapping FieldMapping) Record {
	record := make(Record, len(mapping))

	for field, column := range mapping {
		if column == "" {
			continue
		}
		raw, ok := row[column]
		if !ok {
			continue
		}
		if parsers.CellString(raw) == "" {
			continue
		}
		record[field] = coerce(field, raw)
	}

	return record
}

func coerce(field string, raw interface{}) Value {
	switch {
	case strings.HasPrefix(field, "date"):
		if t := parsers.ParseDate(raw); t != nil {
			return Date(*t)
		}
		return Null()
	case boolFields[field]:
		return Bool(parsers.ParseBool(raw))
	case intFields[field]:
		return Int(parsers.ParseInt(raw))
	case hasNumberPrefix(field):
		return Number(parsers.ParseAmount(raw))
	default:
		return String(parsers.CellString(raw))
	}
}

func hasNumberPrefix(field string) bool {
	for _, prefix := range numberPrefixes {
		if strings.HasPrefix(field, prefix) {
			return true
		}
	}
	return false
}

// BuildSubObject assembles a nested JSON-bound object from scalar fields of
// the record (e.g. the mutuelle coverage from mutuelleNom/tauxMutuelle/
// plafondMutuelle). When every constituent is blank the result is Null;
// a JSON column must never receive an empty object or an empty string.
func BuildSubObject(record Record, fields map[string]string) Value {
	obj := make(map[string]Value, len(fields))
	for key, field := range fields {
		v, ok := record[field]
		if !ok || v.IsBlank() {
			continue
		}
		obj[key] = v
	}
	return Object(obj)
}
