package importer

import (
	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ImportSalesInvoices импортирует фактуры продаж. Естественный ключ — номер
// фактуры; клиент разрешается по коду либо по имени+телефону, недостающие
// клиенты создаются заглушками.
//
// Поля маппинга: numeroFacture, codeClient, nomClient, telephone,
// dateFacture, montantHT, montantTVA, montantTTC, designation.
func (imp *Importer) ImportSalesInvoices(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
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
		totalTTC := rec.Num("montantTTC")
		date := rec.DateVal("dateFacture")
		code := rec.Str("codeClient")
		name := rec.Str("nomClient")
		phone := rec.Str("telephone")

		if number == "" && totalTTC == 0 && date == nil && code == "" && name == "" {
			result.Skipped++
			continue
		}

		var clientID int64
		if code != "" || name != "" || phone != "" {
			client, err := imp.clients.ResolveOrProvision(rctx, code, name, phone)
			if err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			clientID = client.ID
		}

		incoming := &database.SalesInvoice{
			Number:   number,
			ClientID: clientID,
			Date:     date,
			TotalHT:  rec.Num("montantHT"),
			TotalTVA: rec.Num("montantTVA"),
			TotalTTC: totalTTC,
			Status:   database.SaleStatusInvoice,
		}
		if designation := rec.Str("designation"); designation != "" || totalTTC > 0 {
			if designation == "" {
				designation = "Vente"
			}
			incoming.Lines = []database.SalesInvoiceLine{
				{Designation: designation, Quantity: 1, UnitPrice: totalTTC, Total: totalTTC},
			}
		}

		existing, err := imp.db.FindSalesInvoiceByNumber(number)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		if existing != nil {
			if err := imp.db.UpdateSalesInvoiceFillBlanks(existing.ID, incoming, false); err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			result.Updated++
			result.Success++
			continue
		}

		_, err = imp.db.CreateSalesInvoice(incoming)
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
