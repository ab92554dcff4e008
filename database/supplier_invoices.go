package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Статусы счетов.
const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPartial = "PARTIAL"
	InvoiceStatusPaid    = "PAID"
)

// Статусы платежей.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
)

// SupplierInvoice счет поставщика.
type SupplierInvoice struct {
	ID         int64
	Number     string
	SupplierID int64
	Amount     float64
	PaidAmount float64
	Date       *time.Time
	DueDate    *time.Time
	Status     string
	Notes      string
	CreatedAt  time.Time
}

// SupplierPayment платеж по счету поставщика.
type SupplierPayment struct {
	ID        int64
	InvoiceID int64
	Reference string
	Amount    float64
	Date      *time.Time
	Method    string
	Status    string
	CreatedAt time.Time
}

const supplierInvoiceColumns = "id, number, supplier_id, amount, paid_amount, invoice_date, due_date, status, notes, created_at"

func scanSupplierInvoice(row interface{ Scan(...interface{}) error }) (*SupplierInvoice, error) {
	var inv SupplierInvoice
	var date, due sql.NullTime
	if err := row.Scan(&inv.ID, &inv.Number, &inv.SupplierID, &inv.Amount, &inv.PaidAmount,
		&date, &due, &inv.Status, &inv.Notes, &inv.CreatedAt); err != nil {
		return nil, err
	}
	inv.Date = nullTime(date)
	inv.DueDate = nullTime(due)
	return &inv, nil
}

// CreateSupplierInvoice inserts an invoice. (number, supplier) is the natural
// key when the number is present.
func (db *StoreDB) CreateSupplierInvoice(inv *SupplierInvoice) (*SupplierInvoice, error) {
	if inv.Status == "" {
		inv.Status = InvoiceStatusPending
	}
	res, err := db.conn.Exec(
		`INSERT INTO supplier_invoices (number, supplier_id, amount, paid_amount, invoice_date, due_date, status, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.Number, inv.SupplierID, inv.Amount, inv.PaidAmount,
		timeOrNil(inv.Date), timeOrNil(inv.DueDate), inv.Status, inv.Notes,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read supplier invoice id: %w", err)
	}
	return db.FindSupplierInvoiceByID(id)
}

// FindSupplierInvoiceByID возвращает счет по id, nil если не найден.
func (db *StoreDB) FindSupplierInvoiceByID(id int64) (*SupplierInvoice, error) {
	row := db.conn.QueryRow(`SELECT `+supplierInvoiceColumns+` FROM supplier_invoices WHERE id = ?`, id)
	inv, err := scanSupplierInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier invoice: %w", err)
	}
	return inv, nil
}

// FindSupplierInvoiceByNumber ищет счет по естественному ключу номер+поставщик.
func (db *StoreDB) FindSupplierInvoiceByNumber(number string, supplierID int64) (*SupplierInvoice, error) {
	if number == "" {
		return nil, nil
	}
	row := db.conn.QueryRow(
		`SELECT `+supplierInvoiceColumns+` FROM supplier_invoices
		 WHERE number = ? AND supplier_id = ?`, number, supplierID)
	inv, err := scanSupplierInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier invoice by number: %w", err)
	}
	return inv, nil
}

// UpdateSupplierInvoiceFillBlanks fills only blank/zero invoice fields.
func (db *StoreDB) UpdateSupplierInvoiceFillBlanks(id int64, inv *SupplierInvoice) error {
	_, err := db.conn.Exec(
		`UPDATE supplier_invoices
		 SET amount = CASE WHEN amount = 0 THEN ? ELSE amount END,
		     invoice_date = COALESCE(invoice_date, ?),
		     due_date = COALESCE(due_date, ?),
		     notes = CASE WHEN notes = '' THEN ? ELSE notes END
		 WHERE id = ?`,
		inv.Amount, timeOrNil(inv.Date), timeOrNil(inv.DueDate), inv.Notes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update supplier invoice: %w", err)
	}
	return nil
}

// CreateSupplierPayment inserts a payment row.
func (db *StoreDB) CreateSupplierPayment(p *SupplierPayment) (*SupplierPayment, error) {
	if p.Status == "" {
		p.Status = PaymentStatusPending
	}
	res, err := db.conn.Exec(
		`INSERT INTO supplier_payments (invoice_id, reference, amount, payment_date, method, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.InvoiceID, p.Reference, p.Amount, timeOrNil(p.Date), p.Method, p.Status,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read supplier payment id: %w", err)
	}
	p.ID = id
	return p, nil
}

// FindSupplierPayment checks the idempotency tuple {invoice, reference,
// amount, status=paid}.
func (db *StoreDB) FindSupplierPayment(invoiceID int64, reference string, amount float64) (*SupplierPayment, error) {
	row := db.conn.QueryRow(
		`SELECT id, invoice_id, reference, amount, payment_date, method, status, created_at
		 FROM supplier_payments
		 WHERE invoice_id = ? AND reference = ? AND amount = ? AND status = ?`,
		invoiceID, reference, amount, PaymentStatusPaid)
	p, err := scanSupplierPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier payment: %w", err)
	}
	return p, nil
}

func scanSupplierPayment(row interface{ Scan(...interface{}) error }) (*SupplierPayment, error) {
	var p SupplierPayment
	var date sql.NullTime
	if err := row.Scan(&p.ID, &p.InvoiceID, &p.Reference, &p.Amount, &date, &p.Method, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Date = nullTime(date)
	return &p, nil
}

// OldestPendingSupplierPayment returns the oldest pending installment for
// the invoice, or nil. Reconciliation prefers updating it over appending.
func (db *StoreDB) OldestPendingSupplierPayment(invoiceID int64) (*SupplierPayment, error) {
	row := db.conn.QueryRow(
		`SELECT id, invoice_id, reference, amount, payment_date, method, status, created_at
		 FROM supplier_payments
		 WHERE invoice_id = ? AND status = ?
		 ORDER BY COALESCE(payment_date, created_at), id
		 LIMIT 1`,
		invoiceID, PaymentStatusPending)
	p, err := scanSupplierPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending supplier payment: %w", err)
	}
	return p, nil
}

// MarkSupplierPaymentPaid settles a pending installment with the actual
// amount, reference and date.
func (db *StoreDB) MarkSupplierPaymentPaid(id int64, reference string, amount float64, date *time.Time, method string) error {
	_, err := db.conn.Exec(
		`UPDATE supplier_payments
		 SET status = ?, amount = ?, payment_date = COALESCE(?, payment_date),
		     reference = CASE WHEN reference = '' THEN ? ELSE reference END,
		     method = CASE WHEN method = '' THEN ? ELSE method END
		 WHERE id = ?`,
		PaymentStatusPaid, amount, timeOrNil(date), reference, method, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark supplier payment paid: %w", err)
	}
	return nil
}

// SumSupplierPayments returns the total of paid installments for an invoice.
func (db *StoreDB) SumSupplierPayments(invoiceID int64) (float64, error) {
	var total sql.NullFloat64
	err := db.conn.QueryRow(
		`SELECT SUM(amount) FROM supplier_payments WHERE invoice_id = ? AND status = ?`,
		invoiceID, PaymentStatusPaid).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum supplier payments: %w", err)
	}
	return nullFloat(total), nil
}

// RecomputeSupplierInvoiceStatus refreshes paid_amount and the
// paid/partial/pending status from the recorded payments.
func (db *StoreDB) RecomputeSupplierInvoiceStatus(invoiceID int64) error {
	paid, err := db.SumSupplierPayments(invoiceID)
	if err != nil {
		return err
	}

	inv, err := db.FindSupplierInvoiceByID(invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return fmt.Errorf("supplier invoice %d not found", invoiceID)
	}

	status := InvoiceStatusPending
	switch {
	case inv.Amount > 0 && paid >= inv.Amount:
		status = InvoiceStatusPaid
	case paid > 0:
		status = InvoiceStatusPartial
	}

	_, err = db.conn.Exec(
		`UPDATE supplier_invoices SET paid_amount = ?, status = ? WHERE id = ?`,
		paid, status, invoiceID,
	)
	if err != nil {
		return fmt.Errorf("failed to recompute supplier invoice status: %w", err)
	}
	return nil
}
