package importer

import (
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ImportSuppliers импортирует справочник поставщиков. Нечеткое сопоставление
// склеивает опечатки с уже существующими записями вместо создания дублей.
//
// Поля маппинга: nomFournisseur, telephone, email.
func (imp *Importer) ImportSuppliers(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
	result := &Result{}
	rctx := resolver.NewContext()

	for i, row := range rows {
		rowNum := i + 1
		if isNoiseRow(row, fm) {
			result.Skipped++
			continue
		}

		rec := mapping.MapRow(row, fm)
		name := rec.Str("nomFournisseur")
		if name == "" {
			result.Skipped++
			continue
		}
		phone := rec.Str("telephone")
		email := rec.Str("email")

		existing, err := imp.suppliers.Lookup(rctx, name)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		if existing != nil {
			if err := imp.db.UpdateSupplierContact(existing.ID, phone, email); err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			result.Updated++
			result.Success++
			continue
		}

		_, err = imp.db.CreateSupplier(name, phone, email)
		switch {
		case err == nil:
			result.Success++
		case isDuplicate(err):
			result.Skipped++
		default:
			result.AddRowError(rowNum, err)
		}
	}

	return result
}
