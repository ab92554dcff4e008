package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Статусы фактур продаж и фишей.
const (
	SaleStatusDraft   = "DRAFT"
	SaleStatusOrder   = "ORDER"
	SaleStatusInvoice = "INVOICE"
	SaleStatusPartial = "PARTIAL"
	SaleStatusPaid    = "PAID"
)

// SalesInvoice фактура продажи.
type SalesInvoice struct {
	ID         int64
	Number     string
	ClientID   int64
	FicheID    int64
	Date       *time.Time
	TotalHT    float64
	TotalTVA   float64
	TotalTTC   float64
	PaidAmount float64
	Status     string
	CreatedAt  time.Time
	Lines      []SalesInvoiceLine
}

// SalesInvoiceLine строка фактуры.
type SalesInvoiceLine struct {
	ID          int64
	InvoiceID   int64
	Designation string
	Quantity    int
	UnitPrice   float64
	Total       float64
}

const salesInvoiceColumns = "id, number, client_id, fiche_id, invoice_date, total_ht, total_tva, total_ttc, paid_amount, status, created_at"

func scanSalesInvoice(row interface{ Scan(...interface{}) error }) (*SalesInvoice, error) {
	var inv SalesInvoice
	var clientID, ficheID sql.NullInt64
	var date sql.NullTime
	if err := row.Scan(&inv.ID, &inv.Number, &clientID, &ficheID, &date,
		&inv.TotalHT, &inv.TotalTVA, &inv.TotalTTC, &inv.PaidAmount, &inv.Status, &inv.CreatedAt); err != nil {
		return nil, err
	}
	inv.ClientID = nullInt(clientID)
	inv.FicheID = nullInt(ficheID)
	inv.Date = nullTime(date)
	return &inv, nil
}

// CreateSalesInvoice inserts an invoice with its lines.
func (db *StoreDB) CreateSalesInvoice(inv *SalesInvoice) (*SalesInvoice, error) {
	if inv.Status == "" {
		inv.Status = SaleStatusDraft
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var clientID, ficheID interface{}
	if inv.ClientID > 0 {
		clientID = inv.ClientID
	}
	if inv.FicheID > 0 {
		ficheID = inv.FicheID
	}

	res, err := tx.Exec(
		`INSERT INTO sales_invoices (number, client_id, fiche_id, invoice_date, total_ht, total_tva, total_ttc, paid_amount, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.Number, clientID, ficheID, timeOrNil(inv.Date),
		inv.TotalHT, inv.TotalTVA, inv.TotalTTC, inv.PaidAmount, inv.Status,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read sales invoice id: %w", err)
	}

	for _, line := range inv.Lines {
		if _, err := tx.Exec(
			`INSERT INTO sales_invoice_lines (invoice_id, designation, quantity, unit_price, total)
			 VALUES (?, ?, ?, ?, ?)`,
			id, line.Designation, line.Quantity, line.UnitPrice, line.Total,
		); err != nil {
			return nil, fmt.Errorf("failed to insert invoice line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sales invoice: %w", err)
	}
	return db.FindSalesInvoiceByID(id)
}

// FindSalesInvoiceByID возвращает фактуру по id вместе со строками.
func (db *StoreDB) FindSalesInvoiceByID(id int64) (*SalesInvoice, error) {
	row := db.conn.QueryRow(`SELECT `+salesInvoiceColumns+` FROM sales_invoices WHERE id = ?`, id)
	inv, err := scanSalesInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sales invoice: %w", err)
	}
	if err := db.loadInvoiceLines(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// FindSalesInvoiceByNumber ищет фактуру по номеру.
func (db *StoreDB) FindSalesInvoiceByNumber(number string) (*SalesInvoice, error) {
	if number == "" {
		return nil, nil
	}
	row := db.conn.QueryRow(`SELECT `+salesInvoiceColumns+` FROM sales_invoices WHERE number = ?`, number)
	inv, err := scanSalesInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sales invoice by number: %w", err)
	}
	if err := db.loadInvoiceLines(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// FindSalesInvoiceByFiche ищет фактуру, привязанную к фишу.
func (db *StoreDB) FindSalesInvoiceByFiche(ficheID int64) (*SalesInvoice, error) {
	row := db.conn.QueryRow(`SELECT `+salesInvoiceColumns+` FROM sales_invoices WHERE fiche_id = ?`, ficheID)
	inv, err := scanSalesInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find sales invoice by fiche: %w", err)
	}
	if err := db.loadInvoiceLines(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (db *StoreDB) loadInvoiceLines(inv *SalesInvoice) error {
	rows, err := db.conn.Query(
		`SELECT id, invoice_id, designation, quantity, unit_price, total
		 FROM sales_invoice_lines WHERE invoice_id = ? ORDER BY id`, inv.ID)
	if err != nil {
		return fmt.Errorf("failed to load invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line SalesInvoiceLine
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.Designation,
			&line.Quantity, &line.UnitPrice, &line.Total); err != nil {
			return fmt.Errorf("failed to scan invoice line: %w", err)
		}
		inv.Lines = append(inv.Lines, line)
	}
	return rows.Err()
}

// IsSalesInvoiceNumberTaken reports whether the number is used by an invoice
// other than excludeID. Guards against renaming onto an existing number.
func (db *StoreDB) IsSalesInvoiceNumberTaken(number string, excludeID int64) (bool, error) {
	if number == "" {
		return false, nil
	}
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM sales_invoices WHERE number = ? AND id != ?`,
		number, excludeID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check sales invoice number: %w", err)
	}
	return count > 0, nil
}

// UpdateSalesInvoiceFillBlanks fills only blank/zero fields; the number is
// set only when currently empty (renames are the caller's decision).
func (db *StoreDB) UpdateSalesInvoiceFillBlanks(id int64, inv *SalesInvoice, setNumber bool) error {
	numberExpr := "number"
	args := []interface{}{}
	if setNumber {
		numberExpr = "CASE WHEN number = '' THEN ? ELSE number END"
		args = append(args, inv.Number)
	}
	args = append(args,
		timeOrNil(inv.Date), inv.TotalHT, inv.TotalTVA, inv.TotalTTC, id)

	_, err := db.conn.Exec(
		`UPDATE sales_invoices
		 SET number = `+numberExpr+`,
		     invoice_date = COALESCE(invoice_date, ?),
		     total_ht = CASE WHEN total_ht = 0 THEN ? ELSE total_ht END,
		     total_tva = CASE WHEN total_tva = 0 THEN ? ELSE total_tva END,
		     total_ttc = CASE WHEN total_ttc = 0 THEN ? ELSE total_ttc END
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update sales invoice: %w", err)
	}
	return nil
}
