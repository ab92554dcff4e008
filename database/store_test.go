package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore создает тестовую базу во временной директории
func setupTestStore(t *testing.T) *StoreDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_store.db")

	db, err := NewStoreDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSupplier_NaturalKeyDuplicate(t *testing.T) {
	db := setupTestStore(t)

	if _, err := db.CreateSupplier("Maroc Telecom", "", ""); err != nil {
		t.Fatalf("CreateSupplier() failed: %v", err)
	}

	// Нормализованное имя совпадает — уникальный индекс должен сработать
	_, err := db.CreateSupplier("MAROC TELEC0M", "", "")
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateSupplier() error = %v, want ErrDuplicate", err)
	}
}

func TestSupplier_FindByName(t *testing.T) {
	db := setupTestStore(t)

	created, err := db.CreateSupplier("Essilor", "0522000000", "")
	if err != nil {
		t.Fatalf("CreateSupplier() failed: %v", err)
	}

	found, err := db.FindSupplierByName("  essilor ")
	if err != nil {
		t.Fatalf("FindSupplierByName() failed: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("FindSupplierByName() = %v, want id %d", found, created.ID)
	}
}

func TestClient_CodeUnique(t *testing.T) {
	db := setupTestStore(t)

	if _, err := db.CreateClient(&Client{Code: "C001", Name: "Alami"}); err != nil {
		t.Fatalf("CreateClient() failed: %v", err)
	}

	_, err := db.CreateClient(&Client{Code: "C001", Name: "Autre"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateClient() error = %v, want ErrDuplicate", err)
	}

	// Пустой код не участвует в уникальности
	if _, err := db.CreateClient(&Client{Name: "Sans Code 1"}); err != nil {
		t.Errorf("CreateClient() with empty code failed: %v", err)
	}
	if _, err := db.CreateClient(&Client{Name: "Sans Code 2"}); err != nil {
		t.Errorf("CreateClient() second empty code failed: %v", err)
	}
}

func TestClient_UpdateFillBlanks(t *testing.T) {
	db := setupTestStore(t)

	created, err := db.CreateClient(&Client{Code: "C002", Name: "Bennani", Phone: "0600000001"})
	if err != nil {
		t.Fatalf("CreateClient() failed: %v", err)
	}

	// Заполненный телефон не должен быть перезаписан, пустой email — должен
	err = db.UpdateClientFillBlanks(created.ID, &Client{Phone: "0699999999", Email: "b@mail.ma"})
	if err != nil {
		t.Fatalf("UpdateClientFillBlanks() failed: %v", err)
	}

	updated, err := db.FindClientByID(created.ID)
	if err != nil {
		t.Fatalf("FindClientByID() failed: %v", err)
	}
	if updated.Phone != "0600000001" {
		t.Errorf("Phone = %q, want original 0600000001", updated.Phone)
	}
	if updated.Email != "b@mail.ma" {
		t.Errorf("Email = %q, want b@mail.ma", updated.Email)
	}
}

func TestSupplierInvoice_StatusRecompute(t *testing.T) {
	db := setupTestStore(t)

	supplier, err := db.CreateSupplier("ACME", "", "")
	if err != nil {
		t.Fatalf("CreateSupplier() failed: %v", err)
	}

	inv, err := db.CreateSupplierInvoice(&SupplierInvoice{
		Number:     "INV-1",
		SupplierID: supplier.ID,
		Amount:     1000,
		Date:       date(2023, time.January, 1),
	})
	if err != nil {
		t.Fatalf("CreateSupplierInvoice() failed: %v", err)
	}

	_, err = db.CreateSupplierPayment(&SupplierPayment{
		InvoiceID: inv.ID, Reference: "P-1", Amount: 400, Status: PaymentStatusPaid,
	})
	if err != nil {
		t.Fatalf("CreateSupplierPayment() failed: %v", err)
	}
	if err := db.RecomputeSupplierInvoiceStatus(inv.ID); err != nil {
		t.Fatalf("RecomputeSupplierInvoiceStatus() failed: %v", err)
	}

	inv, _ = db.FindSupplierInvoiceByID(inv.ID)
	if inv.Status != InvoiceStatusPartial || inv.PaidAmount != 400 {
		t.Errorf("invoice = %s/%.0f, want PARTIAL/400", inv.Status, inv.PaidAmount)
	}

	_, err = db.CreateSupplierPayment(&SupplierPayment{
		InvoiceID: inv.ID, Reference: "P-2", Amount: 600, Status: PaymentStatusPaid,
	})
	if err != nil {
		t.Fatalf("CreateSupplierPayment() failed: %v", err)
	}
	if err := db.RecomputeSupplierInvoiceStatus(inv.ID); err != nil {
		t.Fatalf("RecomputeSupplierInvoiceStatus() failed: %v", err)
	}

	inv, _ = db.FindSupplierInvoiceByID(inv.ID)
	if inv.Status != InvoiceStatusPaid || inv.PaidAmount != 1000 {
		t.Errorf("invoice = %s/%.0f, want PAID/1000", inv.Status, inv.PaidAmount)
	}
}

func TestApplyClientPayment_Transactional(t *testing.T) {
	db := setupTestStore(t)

	inv, err := db.CreateSalesInvoice(&SalesInvoice{
		Number:   "F-2023-001",
		TotalTTC: 500,
		Status:   SaleStatusInvoice,
		Lines: []SalesInvoiceLine{
			{Designation: "Monture RayBan", Quantity: 1, UnitPrice: 500, Total: 500},
		},
	})
	if err != nil {
		t.Fatalf("CreateSalesInvoice() failed: %v", err)
	}

	_, err = db.ApplyClientPayment(&ClientPayment{InvoiceID: inv.ID, Reference: "R-1", Amount: 200})
	if err != nil {
		t.Fatalf("ApplyClientPayment() failed: %v", err)
	}

	inv, _ = db.FindSalesInvoiceByID(inv.ID)
	if inv.PaidAmount != 200 || inv.Status != SaleStatusPartial {
		t.Errorf("invoice = %s/%.0f, want PARTIAL/200", inv.Status, inv.PaidAmount)
	}

	_, err = db.ApplyClientPayment(&ClientPayment{InvoiceID: inv.ID, Reference: "R-2", Amount: 300})
	if err != nil {
		t.Fatalf("ApplyClientPayment() failed: %v", err)
	}

	inv, _ = db.FindSalesInvoiceByID(inv.ID)
	if inv.PaidAmount != 500 || inv.Status != SaleStatusPaid {
		t.Errorf("invoice = %s/%.0f, want PAID/500", inv.Status, inv.PaidAmount)
	}
}

func TestFiche_BulkCreateSkipExisting(t *testing.T) {
	db := setupTestStore(t)

	fiches := []*Fiche{
		{ExternalID: "F100", DayKey: "2023-03-15", Type: FicheTypeFrame, TotalTTC: 1200},
		{ExternalID: "F100", DayKey: "2023-03-15", Type: FicheTypeFrame, TotalTTC: 1200}, // дубликат
		{ExternalID: "F101", DayKey: "2023-03-16", Type: FicheTypeContactLens, TotalTTC: 300},
	}

	created, skipped, errs := db.BulkCreateFiches(fiches, true)
	if len(errs) != 0 {
		t.Fatalf("BulkCreateFiches() errors: %v", errs)
	}
	if created != 2 || skipped != 1 {
		t.Errorf("BulkCreateFiches() = (%d, %d), want (2, 1)", created, skipped)
	}
}

func TestFiche_RoundTrip(t *testing.T) {
	db := setupTestStore(t)

	fiche := &Fiche{
		ExternalID: "F200",
		DayKey:     "2023-05-01",
		Date:       date(2023, time.May, 1),
		Type:       FicheTypeFrame,
		Status:     SaleStatusOrder,
		TotalTTC:   1500,
		Equipments: []EquipmentItem{{Brand: "RayBan", Reference: "RB2140", Price: 900}},
		Lenses: &Lenses{
			Brand: "Essilor",
			Right: &LensPrescription{Sphere: "-1.25", Price: 300},
			Left:  &LensPrescription{Sphere: "-1.50", Price: 300},
		},
	}

	if _, err := db.CreateFiche(fiche); err != nil {
		t.Fatalf("CreateFiche() failed: %v", err)
	}

	loaded, err := db.FindFicheByExternalID("F200", "2023-05-01")
	if err != nil {
		t.Fatalf("FindFicheByExternalID() failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("FindFicheByExternalID() = nil")
	}
	if len(loaded.Equipments) != 1 || loaded.Equipments[0].Brand != "RayBan" {
		t.Errorf("Equipments = %v, want RayBan", loaded.Equipments)
	}
	if loaded.Lenses == nil || loaded.Lenses.Right.Sphere != "-1.25" {
		t.Errorf("Lenses = %v, want right sphere -1.25", loaded.Lenses)
	}
	if loaded.Mutuelle != nil {
		t.Errorf("Mutuelle = %s, want nil", loaded.Mutuelle)
	}
}
