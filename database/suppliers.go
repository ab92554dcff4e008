package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"importserver/normalization"
)

// Supplier поставщик.
type Supplier struct {
	ID             int64
	Name           string
	NormalizedName string
	Phone          string
	Email          string
	CreatedAt      time.Time
}

const supplierColumns = "id, name, normalized_name, phone, email, created_at"

func scanSupplier(row interface{ Scan(...interface{}) error }) (*Supplier, error) {
	var s Supplier
	var phone, email sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &s.NormalizedName, &phone, &email, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Phone = nullString(phone)
	s.Email = nullString(email)
	return &s, nil
}

// CreateSupplier inserts a supplier; the normalized name is the natural key.
func (db *StoreDB) CreateSupplier(name, phone, email string) (*Supplier, error) {
	normalized := normalization.NormalizeName(name)
	res, err := db.conn.Exec(
		`INSERT INTO suppliers (name, normalized_name, phone, email) VALUES (?, ?, ?, ?)`,
		name, normalized, phone, email,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read supplier id: %w", err)
	}
	return db.FindSupplierByID(id)
}

// FindSupplierByID возвращает поставщика по id, nil если не найден.
func (db *StoreDB) FindSupplierByID(id int64) (*Supplier, error) {
	row := db.conn.QueryRow(`SELECT `+supplierColumns+` FROM suppliers WHERE id = ?`, id)
	s, err := scanSupplier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier by id: %w", err)
	}
	return s, nil
}

// FindSupplierByName ищет точное совпадение по имени без учета регистра.
func (db *StoreDB) FindSupplierByName(name string) (*Supplier, error) {
	row := db.conn.QueryRow(
		`SELECT `+supplierColumns+` FROM suppliers WHERE TRIM(name) = TRIM(?) COLLATE NOCASE`, name)
	s, err := scanSupplier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier by name: %w", err)
	}
	return s, nil
}

// FindSupplierByNormalizedName ищет по нормализованному имени.
func (db *StoreDB) FindSupplierByNormalizedName(normalized string) (*Supplier, error) {
	row := db.conn.QueryRow(
		`SELECT `+supplierColumns+` FROM suppliers WHERE normalized_name = ?`, normalized)
	s, err := scanSupplier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find supplier by normalized name: %w", err)
	}
	return s, nil
}

// ListSuppliers returns all suppliers ordered by id.
func (db *StoreDB) ListSuppliers() ([]*Supplier, error) {
	rows, err := db.conn.Query(`SELECT ` + supplierColumns + ` FROM suppliers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// UpdateSupplierContact fills the phone/email fields that are still blank.
// Populated fields are never overwritten.
func (db *StoreDB) UpdateSupplierContact(id int64, phone, email string) error {
	_, err := db.conn.Exec(
		`UPDATE suppliers
		 SET phone = CASE WHEN phone = '' THEN ? ELSE phone END,
		     email = CASE WHEN email = '' THEN ? ELSE email END
		 WHERE id = ?`,
		phone, email, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update supplier contact: %w", err)
	}
	return nil
}
