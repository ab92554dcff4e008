package importer

import (
	"encoding/json"

	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ficheChunkSize ограничивает размер одной порции при финальной записи.
const ficheChunkSize = 500

var mutuelleFields = map[string]string{
	"nom":     "mutuelleNom",
	"taux":    "tauxMutuelle",
	"plafond": "plafondMutuelle",
}

// ImportFiches импортирует клиентские фиши: несколько физических строк
// (оправа, линзы, сопутствующие товары) одного визита собираются в один
// составной документ. Подсчет ведется по группам, а не по сырым строкам.
//
// Поля маппинга: numeroFiche, dateFiche, codeClient, nomClient, telephone,
// typeLentilles, valide, facturee, definitive, numeroFacture, montantTTC,
// avance, marqueMonture, referenceMonture, couleurMonture, prixMonture,
// marqueMonture2, referenceMonture2, prixMonture2, marqueVerres, typeVerres,
// sphereOD/OG, cylindreOD/OG, axeOD/OG, additionOD/OG, prixOD/OG,
// marqueLentilles, prixLentilles, produit, quantite, prixProduit,
// mutuelleNom, tauxMutuelle, plafondMutuelle, notes.
func (imp *Importer) ImportFiches(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
	result := &Result{}

	rctx := resolver.NewContext()
	if err := imp.clients.LoadExisting(rctx); err != nil {
		result.FailAll(len(rows), err)
		return result
	}

	groups := groupFicheRows(rows, fm, result)

	type pendingInvoice struct {
		fiche  *database.Fiche
		number string
		want   bool
	}

	var fiches []*database.Fiche
	var invoices []pendingInvoice

	for _, g := range groups {
		merged := mergeRecords(g.records)

		fiche := imp.buildFiche(g, merged)
		if imp.isJunkGroup(g, fiche) {
			result.Skipped++
			continue
		}

		code := merged.Str("codeClient")
		name := merged.Str("nomClient")
		phone := merged.Str("telephone")
		if code != "" || name != "" || phone != "" {
			client, err := imp.clients.ResolveOrProvision(rctx, code, name, phone)
			if err != nil {
				result.AddRowError(g.firstRow, err)
				continue
			}
			fiche.ClientID = client.ID
		}

		number := merged.Str("numeroFacture")
		validated := merged.BoolVal("valide")
		invoiced := merged.BoolVal("facturee") || merged.BoolVal("definitive")
		hasPayment := fiche.Advance > 0
		fullyPaid := fiche.TotalTTC > 0 && fiche.Advance >= fiche.TotalTTC
		fiche.Status = decideStatus(validated, invoiced, hasPayment, fullyPaid, number != "")

		result.Success++
		fiches = append(fiches, fiche)
		invoices = append(invoices, pendingInvoice{
			fiche:  fiche,
			number: number,
			// Молчаливые черновики фактуру не порождают
			want: validated || invoiced || hasPayment || number != "",
		})
	}

	// Финальная запись: порциями, сбои логируются и не откатывают уже
	// подсчитанный итог группировки. Дубликаты естественного ключа при
	// повторном импорте переезжают из success в skipped.
	for start := 0; start < len(fiches); start += ficheChunkSize {
		end := start + ficheChunkSize
		if end > len(fiches) {
			end = len(fiches)
		}
		_, skipped, errs := imp.db.BulkCreateFiches(fiches[start:end], true)
		for _, err := range errs {
			imp.logger.Error("ошибка записи фиша", "error", err)
		}
		result.Success -= skipped
		result.Skipped += skipped
	}

	for _, p := range invoices {
		if !p.want || p.fiche.ID == 0 {
			continue
		}
		if err := imp.linkFicheInvoice(p.fiche, p.number); err != nil {
			imp.logger.Error("ошибка записи фактуры фиша",
				"external_id", p.fiche.ExternalID, "error", err)
		}
	}

	return result
}

// buildFiche собирает составной документ из слитой записи группы.
func (imp *Importer) buildFiche(g *ficheGroup, merged mapping.Record) *database.Fiche {
	fiche := &database.Fiche{
		ExternalID:    g.externalID,
		DayKey:        g.dayKey,
		Date:          merged.DateVal("dateFiche"),
		TotalTTC:      merged.Num("montantTTC"),
		Advance:       merged.Num("avance"),
		Equipments:    buildEquipments(g, merged),
		Lenses:        buildLenses(merged),
		ContactLenses: buildContactLenses(merged),
		ExtraProducts: buildExtraProducts(merged),
		Notes:         merged.Str("notes"),
	}

	fiche.Type = classifyFicheType(merged,
		len(fiche.Equipments) > 0 || fiche.Lenses != nil,
		fiche.ContactLenses != nil)

	if mutuelle := mapping.BuildSubObject(merged, mutuelleFields); !mutuelle.IsNull() {
		if b, err := json.Marshal(mutuelle.Interface()); err == nil {
			fiche.Mutuelle = b
		}
	}

	return fiche
}

// isJunkGroup: группа без внешнего id, без клиента, без сумм и без единого
// предметного поля не несет никакой информации.
func (imp *Importer) isJunkGroup(g *ficheGroup, fiche *database.Fiche) bool {
	if g.externalID != "" {
		return false
	}
	merged := mergeRecords(g.records)
	hasClient := merged.Str("codeClient") != "" || merged.Str("nomClient") != "" ||
		merged.Str("telephone") != ""
	hasContent := len(fiche.Equipments) > 0 || fiche.Lenses != nil ||
		fiche.ContactLenses != nil || len(fiche.ExtraProducts) > 0
	return !hasClient && !hasContent && fiche.TotalTTC == 0 && fiche.Advance == 0
}

// linkFicheInvoice создает или дозаполняет фактуру, привязанную к фишу.
// Номер присваивается только если он не занят другой фактурой; занятый номер
// пропускается, остальные поля обновляются как обычно.
func (imp *Importer) linkFicheInvoice(fiche *database.Fiche, number string) error {
	existing, err := imp.db.FindSalesInvoiceByFiche(fiche.ID)
	if err != nil {
		return err
	}

	incoming := &database.SalesInvoice{
		Number:     number,
		ClientID:   fiche.ClientID,
		FicheID:    fiche.ID,
		Date:       fiche.Date,
		TotalTTC:   fiche.TotalTTC,
		PaidAmount: fiche.Advance,
		Status:     fiche.Status,
		Lines:      buildInvoiceLines(fiche),
	}

	if existing == nil {
		if number != "" {
			taken, err := imp.db.IsSalesInvoiceNumberTaken(number, 0)
			if err != nil {
				return err
			}
			if taken {
				imp.logger.Warn("номер фактуры уже занят, создаем без номера",
					"number", number, "fiche_id", fiche.ID)
				incoming.Number = ""
			}
		}
		_, err := imp.db.CreateSalesInvoice(incoming)
		if err != nil && isDuplicate(err) {
			return nil
		}
		return err
	}

	setNumber := false
	if number != "" && existing.Number == "" {
		taken, err := imp.db.IsSalesInvoiceNumberTaken(number, existing.ID)
		if err != nil {
			return err
		}
		setNumber = !taken
	}
	return imp.db.UpdateSalesInvoiceFillBlanks(existing.ID, incoming, setNumber)
}
