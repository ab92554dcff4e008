package fileparse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"importserver/parsers"
)

// Parsed — декодированная таблица: заголовки первой строки и строки данных.
type Parsed struct {
	Headers []string
	Rows    []parsers.RawRow
}

// ParseUpload dispatches on the file extension: xlsx workbooks go through
// the spreadsheet reader, everything else is treated as CSV.
func ParseUpload(filename string, data []byte) (*Parsed, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xls":
		return ParseFile(data)
	default:
		return ParseCSV(data)
	}
}

// ParseFile decodes the first sheet of a workbook. The first row supplies
// the column names, every following row becomes a RawRow keyed by them.
func ParseFile(data []byte) (*Parsed, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	table, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return fromTable(table), nil
}

// ParseCSV decodes a CSV export. The delimiter (; or ,) is sniffed from the
// first line: French spreadsheet exports almost always use the semicolon.
func ParseCSV(data []byte) (*Parsed, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return fromTable(table), nil
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func fromTable(table [][]string) *Parsed {
	if len(table) == 0 {
		return &Parsed{}
	}

	headers := make([]string, len(table[0]))
	for i, h := range table[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("Colonne %d", i+1)
		}
	}

	rows := make([]parsers.RawRow, 0, len(table)-1)
	for _, raw := range table[1:] {
		row := make(parsers.RawRow, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				row[header] = raw[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Parsed{Headers: headers, Rows: rows}
}
