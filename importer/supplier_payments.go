package importer

import (
	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ImportSupplierPayments импортирует платежи поставщикам и сверяет их с
// графиком рассрочки: сначала гасится самый старый ожидающий взнос, и только
// потом добавляется новый. После каждого платежа статус счета пересчитывается.
//
// Поля маппинга: numeroFacture, fournisseur, reference, montantPaye,
// datePaiement, modePaiement.
func (imp *Importer) ImportSupplierPayments(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
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
		reference := rec.Str("reference")
		amount := rec.Num("montantPaye")
		date := rec.DateVal("datePaiement")
		method := rec.Str("modePaiement")
		supplierName := rec.Str("fournisseur")

		if reference == "" && amount == 0 && date == nil && number == "" {
			result.Skipped++
			continue
		}

		supplier, err := imp.suppliers.ResolveOrCreate(rctx, supplierName)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}

		if number == "" {
			description := supplierName
			if description == "" {
				description = reference
			}
			imp.importExpenseFallback(result, rowNum, description, amount, date, supplier.ID, "")
			continue
		}

		invoice, err := imp.db.FindSupplierInvoiceByNumber(number, supplier.ID)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		if invoice == nil {
			// Платеж пришел раньше счета: заводим счет-оболочку под номером
			invoice, err = imp.db.CreateSupplierInvoice(&database.SupplierInvoice{
				Number:     number,
				SupplierID: supplier.ID,
				Date:       date,
			})
			if err != nil && isDuplicate(err) {
				invoice, err = imp.db.FindSupplierInvoiceByNumber(number, supplier.ID)
			}
			if err != nil || invoice == nil {
				result.AddRowError(rowNum, err)
				continue
			}
		}

		// Идемпотентность: идентичный платеж уже зафиксирован
		duplicate, err := imp.db.FindSupplierPayment(invoice.ID, reference, amount)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		if duplicate != nil {
			result.Skipped++
			continue
		}

		pending, err := imp.db.OldestPendingSupplierPayment(invoice.ID)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		if pending != nil {
			if err := imp.db.MarkSupplierPaymentPaid(pending.ID, reference, amount, date, method); err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			result.Updated++
		} else {
			_, err := imp.db.CreateSupplierPayment(&database.SupplierPayment{
				InvoiceID: invoice.ID,
				Reference: reference,
				Amount:    amount,
				Date:      date,
				Method:    method,
				Status:    database.PaymentStatusPaid,
			})
			if err != nil {
				if isDuplicate(err) {
					result.Skipped++
					continue
				}
				result.AddRowError(rowNum, err)
				continue
			}
		}

		if err := imp.db.RecomputeSupplierInvoiceStatus(invoice.ID); err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		result.Success++
	}

	return result
}
