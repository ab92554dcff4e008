package mapping

import "time"

// Kind дискриминатор типизированного значения поля.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindInt
	KindBool
	KindDate
	KindObject
)

// Value — типизированное значение одного логического поля после коэрции.
// Потребители ветвятся по Kind вместо проверки наличия свойств.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Int  int
	Bool bool
	Date time.Time
	Obj  map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// String wraps a trimmed string; empty input becomes null.
func String(s string) Value {
	if s == "" {
		return Null()
	}
	return Value{Kind: KindString, Str: s}
}

// Number wraps a float.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Int wraps an integer.
func Int(n int) Value { return Value{Kind: KindInt, Int: n} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Date wraps a calendar date.
func Date(t time.Time) Value { return Value{Kind: KindDate, Date: t} }

// Object wraps a nested object; empty input becomes null.
func Object(obj map[string]Value) Value {
	if len(obj) == 0 {
		return Null()
	}
	return Value{Kind: KindObject, Obj: obj}
}

// IsNull reports whether the value carries nothing.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Interface returns the plain Go value, suitable for JSON encoding. Dates
// render as calendar dates, null as nil.
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindInt:
		return v.Int
	case KindBool:
		return v.Bool
	case KindDate:
		return v.Date.Format("2006-01-02")
	case KindObject:
		m := make(map[string]interface{}, len(v.Obj))
		for key, val := range v.Obj {
			m[key] = val.Interface()
		}
		return m
	default:
		return nil
	}
}

// IsBlank reports whether the value is null, an empty string or a zero
// number. Merge semantics treat blank values as absent.
func (v Value) IsBlank() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return v.Str == ""
	case KindNumber:
		return v.Num == 0
	case KindInt:
		return v.Int == 0
	default:
		return false
	}
}

// Record — результат применения маппинга к одной строке: логическое поле ->
// типизированное значение. Несмапленные поля отсутствуют.
type Record map[string]Value

// Str returns the string value of a field, or "" when absent or non-string.
func (r Record) Str(field string) string {
	if v, ok := r[field]; ok && v.Kind == KindString {
		return v.Str
	}
	return ""
}

// Num returns the numeric value of a field, or 0.
func (r Record) Num(field string) float64 {
	if v, ok := r[field]; ok && v.Kind == KindNumber {
		return v.Num
	}
	return 0
}

// IntVal returns the integer value of a field, or 0.
func (r Record) IntVal(field string) int {
	if v, ok := r[field]; ok && v.Kind == KindInt {
		return v.Int
	}
	return 0
}

// BoolVal returns the boolean value of a field, or false.
func (r Record) BoolVal(field string) bool {
	if v, ok := r[field]; ok && v.Kind == KindBool {
		return v.Bool
	}
	return false
}

// DateVal returns the date value of a field, or nil.
func (r Record) DateVal(field string) *time.Time {
	if v, ok := r[field]; ok && v.Kind == KindDate {
		t := v.Date
		return &t
	}
	return nil
}

// Has reports whether the field is present and non-blank.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && !v.IsBlank()
}
