package importer

import (
	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ImportClientPayments импортирует платежи клиентов. Запись платежа и
// пересчет баланса фактуры выполняются одной транзакцией хранилища.
//
// Поля маппинга: numeroFacture, codeClient, nomClient, telephone, reference,
// montantPaye, datePaiement, modePaiement.
func (imp *Importer) ImportClientPayments(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
	result := &Result{}

	rctx := resolver.NewContext()
	if err := imp.clients.LoadExisting(rctx); err != nil {
		result.FailAll(len(rows), err)
		return result
	}

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

		if reference == "" && amount == 0 && date == nil && number == "" {
			result.Skipped++
			continue
		}

		var invoiceID int64
		if number != "" {
			invoice, err := imp.db.FindSalesInvoiceByNumber(number)
			if err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			if invoice != nil {
				invoiceID = invoice.ID
			}
		}

		// Идемпотентность: идентичный платеж по той же фактуре уже есть
		if invoiceID > 0 {
			duplicate, err := imp.db.FindClientPayment(invoiceID, reference, amount)
			if err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			if duplicate != nil {
				result.Skipped++
				continue
			}
		}

		var clientID int64
		code := rec.Str("codeClient")
		name := rec.Str("nomClient")
		phone := rec.Str("telephone")
		if code != "" || name != "" || phone != "" {
			client, err := imp.clients.ResolveOrProvision(rctx, code, name, phone)
			if err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			clientID = client.ID
		}

		_, err := imp.db.ApplyClientPayment(&database.ClientPayment{
			InvoiceID: invoiceID,
			ClientID:  clientID,
			Reference: reference,
			Amount:    amount,
			Date:      date,
			Method:    rec.Str("modePaiement"),
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
