package importer

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"importserver/database"
	"importserver/mapping"
	"importserver/normalization"
	"importserver/parsers"
)

var errTest = errors.New("boom")

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func newTestImporter(t *testing.T) (*Importer, *database.StoreDB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_import.db")

	db, err := database.NewStoreDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db, normalization.DefaultMatcherConfig(), nil), db
}

var supplierInvoiceMapping = mapping.FieldMapping{
	"numeroFacture": "num",
	"fournisseur":   "supplier",
	"montantTTC":    "amt",
	"dateFacture":   "date",
}

func TestImportSupplierInvoices_Scenario(t *testing.T) {
	imp, _ := newTestImporter(t)

	rows := []parsers.RawRow{
		{"num": "INV-1", "supplier": "ACME", "amt": "100", "date": "2023-01-01"},
		{"num": "", "supplier": "CNSS", "amt": "1500", "date": "2023-01-05"},
		{"num": "N° Facture", "supplier": "Fournisseur", "amt": "Total", "date": "Date"},
		{"num": "", "supplier": "", "amt": "", "date": ""},
	}

	result := imp.ImportSupplierInvoices(rows, supplierInvoiceMapping)

	if result.Success < 2 {
		t.Errorf("Success = %d, want >= 2", result.Success)
	}
	if result.Skipped < 2 {
		t.Errorf("Skipped = %d, want >= 2 (header + empty row)", result.Skipped)
	}
	if result.Failed != 0 {
		t.Errorf("Failed = %d, errors = %v, want 0", result.Failed, result.Errors)
	}
	if total := result.Success + result.Skipped + result.Failed; total != len(rows) {
		t.Errorf("row accounting: %d, want %d", total, len(rows))
	}
}

func TestImportSupplierInvoices_ExpenseFallbackCategory(t *testing.T) {
	imp, db := newTestImporter(t)

	rows := []parsers.RawRow{
		{"num": "", "supplier": "CNSS", "amt": "1500", "date": "2023-01-05"},
	}
	result := imp.ImportSupplierInvoices(rows, supplierInvoiceMapping)
	if result.Success != 1 {
		t.Fatalf("Success = %d, errors = %v", result.Success, result.Errors)
	}

	expense, err := db.FindExpenseByKey("CNSS", 1500, date(2023, time.January, 5))
	if err != nil || expense == nil {
		t.Fatalf("expense not recorded: %v", err)
	}
	if expense.Category != string(parsers.CategorySocialCharges) {
		t.Errorf("Category = %q, want CHARGES_SOCIALES", expense.Category)
	}
}

func TestImportSupplierInvoices_Idempotent(t *testing.T) {
	imp, db := newTestImporter(t)

	rows := []parsers.RawRow{
		{"num": "INV-1", "supplier": "ACME", "amt": "100", "date": "2023-01-01"},
		{"num": "", "supplier": "CNSS", "amt": "1500", "date": "2023-01-05"},
	}

	first := imp.ImportSupplierInvoices(rows, supplierInvoiceMapping)
	second := imp.ImportSupplierInvoices(rows, supplierInvoiceMapping)

	if first.Failed != 0 || second.Failed != 0 {
		t.Fatalf("Failed = %d/%d, errors = %v", first.Failed, second.Failed, second.Errors)
	}

	// Повторный прогон ничего не создает заново
	suppliers, err := db.ListSuppliers()
	if err != nil {
		t.Fatal(err)
	}
	if len(suppliers) != 2 {
		t.Errorf("suppliers = %d, want 2 (ACME, CNSS)", len(suppliers))
	}
}

func TestImportSupplierInvoices_FuzzySupplierReuse(t *testing.T) {
	imp, db := newTestImporter(t)

	rows := []parsers.RawRow{
		{"num": "T-1", "supplier": "Maroc Telecom", "amt": "500", "date": "2023-02-01"},
		{"num": "T-2", "supplier": "MAROC TELEC0M", "amt": "600", "date": "2023-03-01"},
		{"num": "T-3", "supplier": "MAROC TELECO INTERNET", "amt": "700", "date": "2023-04-01"},
	}

	result := imp.ImportSupplierInvoices(rows, supplierInvoiceMapping)
	if result.Failed != 0 {
		t.Fatalf("errors: %v", result.Errors)
	}

	suppliers, err := db.ListSuppliers()
	if err != nil {
		t.Fatal(err)
	}
	if len(suppliers) != 1 {
		t.Errorf("suppliers = %d, want 1 (typo and alias must resolve to the same one)", len(suppliers))
	}
}

func TestImportClients_SmartMergeNeverRegresses(t *testing.T) {
	imp, db := newTestImporter(t)

	fm := mapping.FieldMapping{
		"codeClient": "code",
		"nomClient":  "nom",
		"telephone":  "tel",
		"email":      "email",
	}

	first := imp.ImportClients([]parsers.RawRow{
		{"code": "C001", "nom": "Alami Hassan", "tel": "0600000001", "email": ""},
	}, fm)
	if first.Success != 1 {
		t.Fatalf("first run: %+v", first)
	}

	second := imp.ImportClients([]parsers.RawRow{
		{"code": "C001", "nom": "Alami Hassan", "tel": "0699999999", "email": "alami@mail.ma"},
	}, fm)
	if second.Updated != 1 {
		t.Fatalf("second run: %+v", second)
	}

	client, err := db.FindClientByCode("C001")
	if err != nil || client == nil {
		t.Fatalf("client lookup: %v", err)
	}
	if client.Phone != "0600000001" {
		t.Errorf("Phone = %q, the populated value must not be overwritten", client.Phone)
	}
	if client.Email != "alami@mail.ma" {
		t.Errorf("Email = %q, the blank field must be filled", client.Email)
	}
}

func TestImportSalesInvoices_ForwardReference(t *testing.T) {
	imp, db := newTestImporter(t)

	fm := mapping.FieldMapping{
		"numeroFacture": "num",
		"codeClient":    "code",
		"nomClient":     "nom",
		"montantTTC":    "ttc",
		"dateFacture":   "date",
	}
	rows := []parsers.RawRow{
		{"num": "F-1", "code": "C100", "nom": "Bennani", "ttc": "800", "date": "2023-05-01"},
		{"num": "F-2", "code": "C100", "nom": "Bennani", "ttc": "200", "date": "2023-05-02"},
	}

	result := imp.ImportSalesInvoices(rows, fm)
	if result.Success != 2 || result.Failed != 0 {
		t.Fatalf("result: %+v", result)
	}

	clients, err := db.ListClients()
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 1 {
		t.Fatalf("clients = %d, want exactly 1 for the shared code", len(clients))
	}

	inv1, _ := db.FindSalesInvoiceByNumber("F-1")
	inv2, _ := db.FindSalesInvoiceByNumber("F-2")
	if inv1 == nil || inv2 == nil || inv1.ClientID != clients[0].ID || inv2.ClientID != clients[0].ID {
		t.Error("both invoices must reference the single provisioned client")
	}
}

func TestImportSupplierPayments_ReconcilesOldestPending(t *testing.T) {
	imp, db := newTestImporter(t)

	supplier, err := db.CreateSupplier("Essilor", "", "")
	if err != nil {
		t.Fatal(err)
	}
	inv, err := db.CreateSupplierInvoice(&database.SupplierInvoice{
		Number: "E-1", SupplierID: supplier.ID, Amount: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Запланированный, но еще не оплаченный взнос
	if _, err := db.CreateSupplierPayment(&database.SupplierPayment{
		InvoiceID: inv.ID, Amount: 500, Status: database.PaymentStatusPending,
	}); err != nil {
		t.Fatal(err)
	}

	fm := mapping.FieldMapping{
		"numeroFacture": "num",
		"fournisseur":   "supplier",
		"reference":     "ref",
		"montantPaye":   "amt",
		"datePaiement":  "date",
	}
	rows := []parsers.RawRow{
		{"num": "E-1", "supplier": "Essilor", "ref": "VIR-77", "amt": "500", "date": "2023-06-01"},
	}

	result := imp.ImportSupplierPayments(rows, fm)
	if result.Success != 1 || result.Updated != 1 {
		t.Fatalf("result: %+v, errors = %v", result, result.Errors)
	}

	inv, _ = db.FindSupplierInvoiceByID(inv.ID)
	if inv.Status != database.InvoiceStatusPartial || inv.PaidAmount != 500 {
		t.Errorf("invoice = %s/%.0f, want PARTIAL/500", inv.Status, inv.PaidAmount)
	}

	// Повторный импорт того же платежа идемпотентен
	again := imp.ImportSupplierPayments(rows, fm)
	if again.Skipped != 1 || again.Failed != 0 {
		t.Errorf("re-import: %+v", again)
	}
}

func TestImportClientPayments_TransactionalBalance(t *testing.T) {
	imp, db := newTestImporter(t)

	inv, err := db.CreateSalesInvoice(&database.SalesInvoice{
		Number: "F-10", TotalTTC: 1000, Status: database.SaleStatusInvoice,
	})
	if err != nil {
		t.Fatal(err)
	}

	fm := mapping.FieldMapping{
		"numeroFacture": "num",
		"reference":     "ref",
		"montantPaye":   "amt",
		"datePaiement":  "date",
	}
	rows := []parsers.RawRow{
		{"num": "F-10", "ref": "R-1", "amt": "400", "date": "2023-07-01"},
		{"num": "F-10", "ref": "R-2", "amt": "600", "date": "2023-07-15"},
	}

	result := imp.ImportClientPayments(rows, fm)
	if result.Success != 2 || result.Failed != 0 {
		t.Fatalf("result: %+v, errors = %v", result, result.Errors)
	}

	inv, _ = db.FindSalesInvoiceByID(inv.ID)
	if inv.Status != database.SaleStatusPaid || inv.PaidAmount != 1000 {
		t.Errorf("invoice = %s/%.0f, want PAID/1000", inv.Status, inv.PaidAmount)
	}
}

func TestResult_ErrorListBounded(t *testing.T) {
	r := &Result{}
	for i := 0; i < maxErrors+50; i++ {
		r.AddRowError(i+1, errTest)
	}
	if r.Failed != maxErrors+50 {
		t.Errorf("Failed = %d", r.Failed)
	}
	if len(r.Errors) != maxErrors+1 {
		t.Errorf("len(Errors) = %d, want %d plus the truncation marker", len(r.Errors), maxErrors)
	}
	if r.Errors[len(r.Errors)-1] != truncationMarker {
		t.Errorf("last entry = %q, want the truncation marker", r.Errors[len(r.Errors)-1])
	}
}
