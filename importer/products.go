package importer

import (
	"importserver/database"
	"importserver/mapping"
	"importserver/parsers"
	"importserver/resolver"
)

// ImportProducts импортирует товары. Естественный ключ — артикул; без
// артикула запись ищется по наименованию.
//
// Поля маппинга: reference, designation, marque, categorie, prixAchat,
// prixVente, quantite, fournisseur.
func (imp *Importer) ImportProducts(rows []parsers.RawRow, fm mapping.FieldMapping) *Result {
	result := &Result{}
	rctx := resolver.NewContext()

	for i, row := range rows {
		rowNum := i + 1
		if isNoiseRow(row, fm) {
			result.Skipped++
			continue
		}

		rec := mapping.MapRow(row, fm)
		reference := rec.Str("reference")
		designation := rec.Str("designation")
		if reference == "" && designation == "" {
			result.Skipped++
			continue
		}

		incoming := &database.Product{
			Reference:     reference,
			Designation:   designation,
			Brand:         rec.Str("marque"),
			Category:      rec.Str("categorie"),
			PurchasePrice: rec.Num("prixAchat"),
			SalePrice:     rec.Num("prixVente"),
			Quantity:      rec.IntVal("quantite"),
		}

		if rec.Has("fournisseur") {
			supplier, err := imp.suppliers.ResolveOrCreate(rctx, rec.Str("fournisseur"))
			if err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			incoming.SupplierID = supplier.ID
		}

		existing, err := imp.findProduct(reference, designation)
		if err != nil {
			result.AddRowError(rowNum, err)
			continue
		}
		if existing != nil {
			// Повторный импорт прихода добавляет количество к остатку
			if err := imp.db.UpdateProductFillBlanks(existing.ID, incoming, incoming.Quantity > 0); err != nil {
				result.AddRowError(rowNum, err)
				continue
			}
			result.Updated++
			result.Success++
			continue
		}

		_, err = imp.db.CreateProduct(incoming)
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

func (imp *Importer) findProduct(reference, designation string) (*database.Product, error) {
	if reference != "" {
		return imp.db.FindProductByReference(reference)
	}
	return imp.db.FindProductByDesignation(designation)
}
