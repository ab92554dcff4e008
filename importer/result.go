package importer

import "fmt"

// maxErrors ограничивает список ошибок в результате импорта.
const maxErrors = 100

const truncationMarker = "... (liste d'erreurs tronquée)"

// Result итог одного вызова импорта. Инвариант: success + skipped + failed
// покрывает каждую входную строку (для группирующего импорта — каждую
// полученную группу).
type Result struct {
	Success int      `json:"success"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

// AddRowError counts one failed row and appends a bounded, human-readable
// message with the 1-based row number.
func (r *Result) AddRowError(rowNum int, err error) {
	r.Failed++
	r.addError(fmt.Sprintf("Row %d: %v", rowNum, err))
}

// FailAll marks every row failed after a batch-level fatal error (shared
// setup broke, per-row recovery is pointless).
func (r *Result) FailAll(rowCount int, err error) {
	r.Failed = rowCount
	r.Success = 0
	r.Updated = 0
	r.Skipped = 0
	r.addError(fmt.Sprintf("critical error: %v", err))
}

func (r *Result) addError(msg string) {
	if len(r.Errors) >= maxErrors {
		if r.Errors[len(r.Errors)-1] != truncationMarker {
			r.Errors = append(r.Errors, truncationMarker)
		}
		return
	}
	r.Errors = append(r.Errors, msg)
}
