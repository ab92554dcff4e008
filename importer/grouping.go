package importer

import (
	"fmt"
	"strings"

	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
)

// ficheGroup — строки одного визита: общий внешний id и календарный день.
type ficheGroup struct {
	externalID string
	dayKey     string
	firstRow   int // 1-based, для сообщений об ошибках
	records    []mapping.Record
}

// groupFicheRows partitions the mapped rows into visit groups. Rows with an
// external id share a group per calendar day; rows without one each form a
// singleton group, so unrelated walk-in sales are never merged by accident.
// Noise rows are counted as skipped on the way.
func groupFicheRows(rows []parsers.RawRow, fm mapping.FieldMapping, result *Result) []*ficheGroup {
	var groups []*ficheGroup
	index := make(map[string]*ficheGroup)

	for i, row := range rows {
		rowNum := i + 1
		if isNoiseRow(row, fm) {
			result.Skipped++
			continue
		}

		rec := mapping.MapRow(row, fm)
		externalID := rec.Str("numeroFiche")
		dayKey := ""
		if d := rec.DateVal("dateFiche"); d != nil {
			dayKey = d.Format("2006-01-02")
		}

		var key string
		if externalID != "" {
			key = externalID + "|" + dayKey
		} else {
			key = fmt.Sprintf("row-%d-no-id", rowNum)
		}

		if g, ok := index[key]; ok {
			g.records = append(g.records, rec)
			continue
		}
		g := &ficheGroup{
			externalID: externalID,
			dayKey:     dayKey,
			firstRow:   rowNum,
			records:    []mapping.Record{rec},
		}
		index[key] = g
		groups = append(groups, g)
	}

	return groups
}

// mergeRecords сливает строки группы: по каждому полю побеждает первая
// строка с непустым значением.
func mergeRecords(records []mapping.Record) mapping.Record {
	merged := mapping.Record{}
	for _, rec := range records {
		for field, v := range rec {
			if v.IsBlank() {
				continue
			}
			if existing, ok := merged[field]; !ok || existing.IsBlank() {
				merged[field] = v
			}
		}
	}
	return merged
}

// framePlaceholders — значения, которыми операторы помечают "оправа без
// данных". Такой первичный слот можно дозаполнять из следующих строк.
var framePlaceholders = map[string]bool{
	"-":       true,
	".":       true,
	"N/A":     true,
	"SANS":    true,
	"MONTURE": true,
}

func equipmentFromRecord(rec mapping.Record) database.EquipmentItem {
	return database.EquipmentItem{
		Brand:     rec.Str("marqueMonture"),
		Reference: rec.Str("referenceMonture"),
		Color:     rec.Str("couleurMonture"),
		Price:     rec.Num("prixMonture"),
	}
}

func equipmentEmpty(e database.EquipmentItem) bool {
	return e.Brand == "" && e.Reference == "" && e.Color == "" && e.Price == 0
}

func equipmentIsPlaceholder(e database.EquipmentItem) bool {
	if equipmentEmpty(e) {
		return true
	}
	return e.Reference == "" && framePlaceholders[strings.ToUpper(strings.TrimSpace(e.Brand))]
}

func sameEquipment(a, b database.EquipmentItem) bool {
	return strings.EqualFold(strings.TrimSpace(a.Brand), strings.TrimSpace(b.Brand)) &&
		strings.EqualFold(strings.TrimSpace(a.Reference), strings.TrimSpace(b.Reference))
}

func fillEquipmentBlanks(dst *database.EquipmentItem, src database.EquipmentItem) {
	if dst.Brand == "" || framePlaceholders[strings.ToUpper(strings.TrimSpace(dst.Brand))] {
		dst.Brand = src.Brand
	}
	if dst.Reference == "" {
		dst.Reference = src.Reference
	}
	if dst.Color == "" {
		dst.Color = src.Color
	}
	if dst.Price == 0 {
		dst.Price = src.Price
	}
}

// buildEquipments composes the equipment list of a group. Row 0 owns the
// primary slot; later rows fill it only while it is empty or a placeholder,
// otherwise they become distinct extra items. The explicitly mapped second
// frame columns always form a separate item unless they repeat the primary
// brand+reference, in which case they only patch a missing price.
func buildEquipments(g *ficheGroup, merged mapping.Record) []database.EquipmentItem {
	primary := equipmentFromRecord(g.records[0])
	var extras []database.EquipmentItem

	for _, rec := range g.records[1:] {
		item := equipmentFromRecord(rec)
		if equipmentEmpty(item) {
			continue
		}
		switch {
		case equipmentIsPlaceholder(primary):
			fillEquipmentBlanks(&primary, item)
		case sameEquipment(primary, item):
			if primary.Price == 0 {
				primary.Price = item.Price
			}
		default:
			extras = append(extras, item)
		}
	}

	second := database.EquipmentItem{
		Brand:     merged.Str("marqueMonture2"),
		Reference: merged.Str("referenceMonture2"),
		Price:     merged.Num("prixMonture2"),
	}
	if !equipmentEmpty(second) {
		if sameEquipment(primary, second) {
			if primary.Price == 0 {
				primary.Price = second.Price
			}
		} else {
			extras = append(extras, second)
		}
	}

	if equipmentEmpty(primary) {
		return extras
	}
	return append([]database.EquipmentItem{primary}, extras...)
}

func lensFromFields(rec mapping.Record, sphere, cylinder, axis, addition, price string) *database.LensPrescription {
	lens := &database.LensPrescription{
		Sphere:   rec.Str(sphere),
		Cylinder: rec.Str(cylinder),
		Axis:     rec.Str(axis),
		Addition: rec.Str(addition),
		Price:    rec.Num(price),
	}
	if lens.Sphere == "" && lens.Cylinder == "" && lens.Axis == "" && lens.Addition == "" && lens.Price == 0 {
		return nil
	}
	return lens
}

func buildLenses(merged mapping.Record) *database.Lenses {
	lenses := &database.Lenses{
		Brand: merged.Str("marqueVerres"),
		Type:  merged.Str("typeVerres"),
		Right: lensFromFields(merged, "sphereOD", "cylindreOD", "axeOD", "additionOD", "prixOD"),
		Left:  lensFromFields(merged, "sphereOG", "cylindreOG", "axeOG", "additionOG", "prixOG"),
	}
	if lenses.Brand == "" && lenses.Type == "" && lenses.Right == nil && lenses.Left == nil {
		return nil
	}
	return lenses
}

func buildContactLenses(merged mapping.Record) *database.ContactLenses {
	brand := merged.Str("marqueLentilles")
	price := merged.Num("prixLentilles")
	if brand == "" && price == 0 && !merged.BoolVal("typeLentilles") {
		return nil
	}
	contacts := &database.ContactLenses{Brand: brand}
	if price > 0 {
		contacts.Right = &database.LensPrescription{Price: price}
	}
	return contacts
}

func buildExtraProducts(merged mapping.Record) []database.ExtraProduct {
	designation := merged.Str("produit")
	if designation == "" {
		return nil
	}
	quantity := merged.IntVal("quantite")
	if quantity <= 0 {
		quantity = 1
	}
	return []database.ExtraProduct{{
		Designation: designation,
		Quantity:    quantity,
		Price:       merged.Num("prixProduit"),
	}}
}

// classifyFicheType picks the composite type. An explicit lens/frame flag
// wins; without it contact lenses beat frames beat the generic product
// default. Frame data and lens data are detected independently of each
// other.
func classifyFicheType(merged mapping.Record, hasFrame, hasContacts bool) string {
	if _, ok := merged["typeLentilles"]; ok {
		if merged.BoolVal("typeLentilles") {
			return database.FicheTypeContactLens
		}
		return database.FicheTypeFrame
	}
	switch {
	case hasContacts:
		return database.FicheTypeContactLens
	case hasFrame:
		return database.FicheTypeFrame
	default:
		return database.FicheTypeProduct
	}
}

// decideStatus — таблица решений по трем независимым сигналам строки плюс
// наличию внешнего номера фактуры.
//
//	facturee/numero + оплачено полностью -> PAID
//	facturee/numero + частичная оплата   -> PARTIAL
//	facturee/numero                      -> INVOICE
//	valide или любая оплата              -> ORDER
//	иначе                                -> DRAFT
func decideStatus(validated, invoiced, hasPayment, fullyPaid, hasNumber bool) string {
	switch {
	case (invoiced || hasNumber) && fullyPaid:
		return database.SaleStatusPaid
	case (invoiced || hasNumber) && hasPayment:
		return database.SaleStatusPartial
	case invoiced || hasNumber:
		return database.SaleStatusInvoice
	case validated, hasPayment:
		return database.SaleStatusOrder
	default:
		return database.SaleStatusDraft
	}
}

// buildInvoiceLines synthesizes deterministic invoice lines from the
// composite: one per equipment item, one combined line for both-eye lenses,
// one for contact lenses, one per extra product, and a guaranteed fallback
// line when nothing structured produced a line but a total exists.
func buildInvoiceLines(f *database.Fiche) []database.SalesInvoiceLine {
	var lines []database.SalesInvoiceLine

	for _, e := range f.Equipments {
		designation := strings.TrimSpace("Monture " + strings.TrimSpace(e.Brand+" "+e.Reference))
		lines = append(lines, database.SalesInvoiceLine{
			Designation: designation, Quantity: 1, UnitPrice: e.Price, Total: e.Price,
		})
	}

	if f.Lenses != nil {
		price := 0.0
		if f.Lenses.Right != nil {
			price += f.Lenses.Right.Price
		}
		if f.Lenses.Left != nil {
			price += f.Lenses.Left.Price
		}
		designation := strings.TrimSpace("Verres correcteurs " + f.Lenses.Brand)
		lines = append(lines, database.SalesInvoiceLine{
			Designation: designation, Quantity: 1, UnitPrice: price, Total: price,
		})
	}

	if f.ContactLenses != nil {
		price := 0.0
		if f.ContactLenses.Right != nil {
			price += f.ContactLenses.Right.Price
		}
		if f.ContactLenses.Left != nil {
			price += f.ContactLenses.Left.Price
		}
		designation := strings.TrimSpace("Lentilles de contact " + f.ContactLenses.Brand)
		lines = append(lines, database.SalesInvoiceLine{
			Designation: designation, Quantity: 1, UnitPrice: price, Total: price,
		})
	}

	for _, p := range f.ExtraProducts {
		lines = append(lines, database.SalesInvoiceLine{
			Designation: p.Designation,
			Quantity:    p.Quantity,
			UnitPrice:   p.Price,
			Total:       float64(p.Quantity) * p.Price,
		})
	}

	if len(lines) == 0 && f.TotalTTC > 0 {
		designation := "Vente"
		if f.ExternalID != "" {
			designation = "Fiche " + f.ExternalID
		}
		lines = append(lines, database.SalesInvoiceLine{
			Designation: designation, Quantity: 1, UnitPrice: f.TotalTTC, Total: f.TotalTTC,
		})
	}

	return lines
}
