package importer

import (
	"time"

	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ImportSupplierInvoices импортирует счета поставщиков. Строка без номера
// счета уходит в общий журнал расходов: многие выписки (CNSS, аренда,
// коммунальные платежи) номеров не имеют.
//
// Поля маппинга: numeroFacture, fournisseur, montantTTC, dateFacture,
// dateEcheance, notes.
func (imp *Importer) ImportSupplierInvoices(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
	result := &Result{}
	rctx := resolver.NewContext()

	for i, row := range rows {
		rowNum := i + 1
		if isNoiseRow(row, fm) {
			result.Skipped++
			continue
		}

		rec := mapping.MapRow(row, fm)
		number := rec.Str("numeroFacture")
		supplierName := rec.Str("fournisseur")
		amount := rec.Num("montantTTC")
		date := rec.DateVal("dateFacture")

		// Мусорная строка: ни одного опознавательного сигнала
		if number == "" && supplierName == "" && amount == 0 && date == nil {
			result.Skipped++
			continue
		}

		supplier, err := imp.suppliers.ResolveOrCreate(rctx, supplierName)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}

		if number == "" {
			imp.importExpenseFallback(result, rowNum, supplierName, amount, date, supplier.ID, rec.Str("notes"))
			continue
		}

		incoming := &database.SupplierInvoice{
			Number:     number,
			SupplierID: supplier.ID,
			Amount:     amount,
			Date:       date,
			DueDate:    rec.DateVal("dateEcheance"),
			Notes:      rec.Str("notes"),
		}

		existing, err := imp.db.FindSupplierInvoiceByNumber(number, supplier.ID)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		if existing != nil {
			if err := imp.db.UpdateSupplierInvoiceFillBlanks(existing.ID, incoming); err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			result.Updated++
			result.Success++
			continue
		}

		_, err = imp.db.CreateSupplierInvoice(incoming)
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

// importExpenseFallback записывает безномерную строку как расход с
// идемпотентным ключом описание+сумма+день.
func (imp *Importer) importExpenseFallback(result *Result, rowNum int, description string, amount float64, date *time.Time, supplierID int64, notes string) {
	if description == "" {
		description = notes
	}
	if description == "" {
		description = resolver.UnknownSupplierName
	}

	existing, err := imp.db.FindExpenseByKey(description, amount, date)
	if err != nil {
		result.AddRowError(rowNum, err)
		return
	}
	if existing != nil {
		// Проверенный дубликат — не ошибка
		result.Success++
		return
	}

	_, err = imp.db.CreateExpense(&database.Expense{
		Description: description,
		Category:    string(parsers.InferCategory(description + " " + notes)),
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
