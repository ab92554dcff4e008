package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ClientPayment платеж клиента по фактуре продажи.
type ClientPayment struct {
	ID        int64
	InvoiceID int64
	ClientID  int64
	Reference string
	Amount    float64
	Date      *time.Time
	Method    string
	CreatedAt time.Time
}

func scanClientPayment(row interface{ Scan(...interface{}) error }) (*ClientPayment, error) {
	var p ClientPayment
	var invoiceID, clientID sql.NullInt64
	var date sql.NullTime
	if err := row.Scan(&p.ID, &invoiceID, &clientID, &p.Reference, &p.Amount, &date, &p.Method, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.InvoiceID = nullInt(invoiceID)
	p.ClientID = nullInt(clientID)
	p.Date = nullTime(date)
	return &p, nil
}

// FindClientPayment checks the idempotency tuple {invoice, reference, amount}.
func (db *StoreDB) FindClientPayment(invoiceID int64, reference string, amount float64) (*ClientPayment, error) {
	row := db.conn.QueryRow(
		`SELECT id, invoice_id, client_id, reference, amount, payment_date, method, created_at
		 FROM client_payments
		 WHERE invoice_id = ? AND reference = ? AND amount = ?`,
		invoiceID, reference, amount)
	p, err := scanClientPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client payment: %w", err)
	}
	return p, nil
}

// ApplyClientPayment records a client payment and updates the parent
// invoice's paid amount and status inside one transaction, so the two writes
// are always observed together.
func (db *StoreDB) ApplyClientPayment(p *ClientPayment) (*ClientPayment, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var invoiceID, clientID interface{}
	if p.InvoiceID > 0 {
		invoiceID = p.InvoiceID
	}
	if p.ClientID > 0 {
		clientID = p.ClientID
	}

	res, err := tx.Exec(
		`INSERT INTO client_payments (invoice_id, client_id, reference, amount, payment_date, method)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		invoiceID, clientID, p.Reference, p.Amount, timeOrNil(p.Date), p.Method,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read client payment id: %w", err)
	}
	p.ID = id

	if p.InvoiceID > 0 {
		var total, totalPaid sql.NullFloat64
		if err := tx.QueryRow(
			`SELECT i.total_ttc, (SELECT SUM(amount) FROM client_payments WHERE invoice_id = i.id)
			 FROM sales_invoices i WHERE i.id = ?`, p.InvoiceID,
		).Scan(&total, &totalPaid); err != nil {
			return nil, fmt.Errorf("failed to read invoice balance: %w", err)
		}

		status := SaleStatusPartial
		if total.Valid && total.Float64 > 0 && nullFloat(totalPaid) >= total.Float64 {
			status = SaleStatusPaid
		}

		if _, err := tx.Exec(
			`UPDATE sales_invoices SET paid_amount = ?, status = ? WHERE id = ?`,
			nullFloat(totalPaid), status, p.InvoiceID,
		); err != nil {
			return nil, fmt.Errorf("failed to update invoice balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit client payment: %w", err)
	}
	return p, nil
}
