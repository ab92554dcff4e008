package importer

import (
	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ImportClients импортирует справочник клиентов. Естественные ключи: код
// (если есть), иначе пара имя+телефон.
//
// Поля маппинга: codeClient, nomClient, telephone, email, adresse,
// dateNaissance, notes.
func (imp *Importer) ImportClients(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
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
		code := rec.Str("codeClient")
		name := rec.Str("nomClient")
		phone := rec.Str("telephone")

		if code == "" && name == "" && phone == "" {
			result.Skipped++
			continue
		}

		incoming := &database.Client{
			Code:        code,
			Name:        name,
			Phone:       phone,
			Email:       rec.Str("email"),
			Address:     rec.Str("adresse"),
			DateOfBirth: rec.DateVal("dateNaissance"),
			Notes:       rec.Str("notes"),
		}

		if existing, ok := imp.clients.Resolve(rctx, code, name, phone); ok {
			if err := imp.db.UpdateClientFillBlanks(existing.ID, incoming); err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			result.Updated++
			result.Success++
			continue
		}

		if incoming.Name == "" {
			// У заглушки должно быть хоть какое-то имя
			if phone != "" {
				incoming.Name = "CLIENT " + phone
			} else {
				incoming.Name = "CLIENT " + code
			}
		}

		created, err := imp.db.CreateClient(incoming)
		switch {
		case err == nil:
			rctx.RegisterClient(created)
			result.Success++
		case isDuplicate(err):
			result.Skipped++
		default:
			result.AddRowError(rowNum, err)
		}
	}

	return result
}
