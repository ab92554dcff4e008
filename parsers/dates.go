package parsers

import (
	"strconv"
	"strings"
	"time"
)

const (
	// excelEpochOffset — число дней между эпохой Excel (30.12.1899) и эпохой Unix.
	excelEpochOffset = 25569
	secondsPerDay    = 86400

	// maxSerialValue bounds spreadsheet serial dates. Values at or above this
	// are almost certainly amounts or codes misread as dates.
	maxSerialValue = 60000

	// minYear rejects dates produced by misinterpreted serial values.
	minYear = 1980
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"2/1/2006",
}

// ParseDate converts a raw cell into a calendar date. It accepts spreadsheet
// serial-date numbers, ISO strings and French DD/MM/YYYY strings; the
// ambiguity between the two string orders is settled by the length of the
// first token (4 characters means year-first). Implausible results (a year
// before 1980, a serial value out of range) yield nil rather than an error.
func ParseDate(raw interface{}) *time.Time {
	switch v := raw.(type) {
	case nil:
		return nil
	case time.Time:
		return sanityCheck(v)
	case float64:
		return serialToDate(v)
	case int:
		return serialToDate(float64(v))
	case int64:
		return serialToDate(float64(v))
	}

	s := CellString(raw)
	if s == "" {
		return nil
	}

	// Числовая строка — это сериальный номер даты Excel
	if serial, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
		return serialToDate(serial)
	}

	// "2023-03-15" против "15/03/2023": первый токен длиной 4 — это год
	if t, ok := parseDayFirstOrISO(s); ok {
		return sanityCheck(t)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sanityCheck(t)
		}
	}

	return nil
}

func parseDayFirstOrISO(s string) (time.Time, bool) {
	sep := ""
	switch {
	case strings.Contains(s, "/"):
		sep = "/"
	case strings.Contains(s, "-"):
		sep = "-"
	default:
		return time.Time{}, false
	}

	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var yearStr, monthStr, dayStr string
	if len(parts[0]) == 4 {
		yearStr, monthStr, dayStr = parts[0], parts[1], parts[2]
	} else {
		dayStr, monthStr, yearStr = parts[0], parts[1], parts[2]
	}

	// Отсекаем возможное время после года/дня
	if idx := strings.IndexByte(dayStr, ' '); idx > 0 {
		dayStr = dayStr[:idx]
	}

	year, err1 := strconv.Atoi(yearStr)
	month, err2 := strconv.Atoi(monthStr)
	day, err3 := strconv.Atoi(dayStr)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func serialToDate(serial float64) *time.Time {
	if serial <= 0 || serial >= maxSerialValue {
		return nil
	}
	t := time.Unix(int64((serial-excelEpochOffset)*secondsPerDay), 0).UTC()
	return sanityCheck(t)
}

func sanityCheck(t time.Time) *time.Time {
	if t.Year() < minYear {
		return nil
	}
	return &t
}
