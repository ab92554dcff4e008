package importer

import (
	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ImportExpenses импортирует журнал расходов. Категория берется из файла,
// иначе выводится из описания по ключевым словам.
//
// Поля маппинга: libelle, categorie, montant, dateDepense, fournisseur.
func (imp *Importer) ImportExpenses(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
	result := &Result{}
	rctx := resolver.NewContext()

	for i, row := range rows {
		rowNum := i + 1
		if isNoiseRow(row, fm) {
			result.Skipped++
			continue
		}

		rec := mapping.MapRow(row, fm)
		description := rec.Str("libelle")
		amount := rec.Num("montant")
		date := rec.DateVal("dateDepense")

		if description == "" && amount == 0 && date == nil {
			result.Skipped++
			continue
		}

		var supplierID int64
		if rec.Has("fournisseur") {
			supplier, err := imp.suppliers.ResolveOrCreate(rctx, rec.Str("fournisseur"))
			if err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			supplierID = supplier.ID
		}

		existing, err := imp.db.FindExpenseByKey(description, amount, date)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		if existing != nil {
			// Проверенный дубликат при повторном импорте того же файла
			result.Skipped++
			continue
		}

		category := rec.Str("categorie")
		if category == "" {
			category = string(parsers.InferCategory(description))
		}

		_, err = imp.db.CreateExpense(&database.Expense{
			Description: description,
			Category:    category,
			Amount:      amount,
			Date:        date,
			SupplierID:  supplierID,
		})
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
