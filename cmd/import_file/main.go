// Консольный импорт одного файла без поднятия сервера:
//
//	go run ./cmd/import_file -db import.db -domain clients -file clients.xlsx -mapping mapping.json
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"importserver/database"
	"importserver/fileparse"
	"importserver/importer"
	"importserver/mapping"
	"importserver/normalization"
	"importserver/parsers"
)

func main() {
	dbPath := flag.String("db", "import.db", "путь к базе данных")
	domain := flag.String("domain", "", "домен импорта (clients, products, suppliers, supplier-invoices, supplier-payments, sales-invoices, client-payments, expenses, fiches)")
	filePath := flag.String("file", "", "файл xlsx или csv")
	mappingPath := flag.String("mapping", "", "JSON-файл маппинга: логическое поле -> колонка")
	flag.Parse()

	if *domain == "" || *filePath == "" || *mappingPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	fm, err := loadMapping(*mappingPath)
	if err != nil {
		log.Fatalf("✗ Ошибка чтения маппинга: %v", err)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("✗ Ошибка чтения файла: %v", err)
	}
	parsed, err := fileparse.ParseUpload(*filePath, data)
	if err != nil {
		log.Fatalf("✗ Ошибка разбора файла: %v", err)
	}
	log.Printf("Файл %s: %d колонок, %d строк", *filePath, len(parsed.Headers), len(parsed.Rows))

	db, err := database.NewStoreDB(*dbPath)
	if err != nil {
		log.Fatalf("✗ Ошибка открытия базы данных: %v", err)
	}
	defer db.Close()

	imp := importer.New(db, normalization.DefaultMatcherConfig(), nil)
	runners := map[string]func([]parsers.RawRow, mapping.FieldMapping) *importer.Result{
		"clients":           imp.ImportClients,
		"products":          imp.ImportProducts,
		"suppliers":         imp.ImportSuppliers,
		"supplier-invoices": imp.ImportSupplierInvoices,
		"supplier-payments": imp.ImportSupplierPayments,
		"sales-invoices":    imp.ImportSalesInvoices,
		"client-payments":   imp.ImportClientPayments,
		"expenses":          imp.ImportExpenses,
		"fiches":            imp.ImportFiches,
	}

	run, ok := runners[*domain]
	if !ok {
		log.Fatalf("✗ Неизвестный домен импорта: %s", *domain)
	}

	result := run(parsed.Rows, fm)

	log.Printf("✓ Импорт завершен: success=%d updated=%d skipped=%d failed=%d",
		result.Success, result.Updated, result.Skipped, result.Failed)
	for _, msg := range result.Errors {
		log.Printf("  %s", msg)
	}
	if result.Failed > 0 {
		os.Exit(1)
	}
}

func loadMapping(path string) (mapping.FieldMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fm mapping.FieldMapping
	if err := json.Unmarshal(data, &fm); err != nil {
		return nil, err
	}
	return fm, nil
}
