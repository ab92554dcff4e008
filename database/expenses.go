package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Expense расход (зарплата, аренда, коммунальные платежи и т.д.).
type Expense struct {
	ID          int64
	Description string
	Category    string
	Amount      float64
	Date        *time.Time
	SupplierID  int64
	CreatedAt   time.Time
}

func scanExpense(row interface{ Scan(...interface{}) error }) (*Expense, error) {
	var e Expense
	var date sql.NullTime
	var supplierID sql.NullInt64
	if err := row.Scan(&e.ID, &e.Description, &e.Category, &e.Amount, &date, &supplierID, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Date = nullTime(date)
	e.SupplierID = nullInt(supplierID)
	return &e, nil
}

// CreateExpense inserts an expense record.
func (db *StoreDB) CreateExpense(e *Expense) (*Expense, error) {
	if e.Category == "" {
		e.Category = "AUTRE"
	}
	var supplierID interface{}
	if e.SupplierID > 0 {
		supplierID = e.SupplierID
	}
	res, err := db.conn.Exec(
		`INSERT INTO expenses (description, category, amount, expense_date, supplier_id)
		 VALUES (?, ?, ?, ?, ?)`,
		e.Description, e.Category, e.Amount, timeOrNil(e.Date), supplierID,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read expense id: %w", err)
	}
	e.ID = id
	return e, nil
}

// FindExpenseByKey ищет расход по связке описание+сумма+день — естественный
// ключ для идемпотентного повторного импорта.
func (db *StoreDB) FindExpenseByKey(description string, amount float64, date *time.Time) (*Expense, error) {
	query := `SELECT id, description, category, amount, expense_date, supplier_id, created_at
	          FROM expenses
	          WHERE TRIM(description) = TRIM(?) COLLATE NOCASE AND amount = ?`
	args := []interface{}{description, amount}
	if date != nil {
		query += ` AND DATE(expense_date) = DATE(?)`
		args = append(args, date.UTC())
	} else {
		query += ` AND expense_date IS NULL`
	}

	row := db.conn.QueryRow(query, args...)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find expense: %w", err)
	}
	return e, nil
}
