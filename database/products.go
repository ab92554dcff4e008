package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Product товар на складе.
type Product struct {
	ID            int64
	Reference     string
	Designation   string
	Brand         string
	Category      string
	PurchasePrice float64
	SalePrice     float64
	Quantity      int
	SupplierID    int64
	CreatedAt     time.Time
}

const productColumns = "id, reference, designation, brand, category, purchase_price, sale_price, quantity, supplier_id, created_at"

func scanProduct(row interface{ Scan(...interface{}) error }) (*Product, error) {
	var p Product
	var supplierID sql.NullInt64
	if err := row.Scan(&p.ID, &p.Reference, &p.Designation, &p.Brand, &p.Category,
		&p.PurchasePrice, &p.SalePrice, &p.Quantity, &supplierID, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.SupplierID = nullInt(supplierID)
	return &p, nil
}

// CreateProduct inserts a product. A non-empty reference is unique.
func (db *StoreDB) CreateProduct(p *Product) (*Product, error) {
	var supplierID interface{}
	if p.SupplierID > 0 {
		supplierID = p.SupplierID
	}
	res, err := db.conn.Exec(
		`INSERT INTO products (reference, designation, brand, category, purchase_price, sale_price, quantity, supplier_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Reference, p.Designation, p.Brand, p.Category, p.PurchasePrice, p.SalePrice, p.Quantity, supplierID,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read product id: %w", err)
	}
	return db.FindProductByID(id)
}

// FindProductByID возвращает товар по id, nil если не найден.
func (db *StoreDB) FindProductByID(id int64) (*Product, error) {
	row := db.conn.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by id: %w", err)
	}
	return p, nil
}

// FindProductByReference ищет товар по артикулу.
func (db *StoreDB) FindProductByReference(reference string) (*Product, error) {
	if reference == "" {
		return nil, nil
	}
	row := db.conn.QueryRow(`SELECT `+productColumns+` FROM products WHERE reference = ?`, reference)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by reference: %w", err)
	}
	return p, nil
}

// FindProductByDesignation ищет товар по наименованию (без учета регистра).
func (db *StoreDB) FindProductByDesignation(designation string) (*Product, error) {
	row := db.conn.QueryRow(
		`SELECT `+productColumns+` FROM products
		 WHERE TRIM(designation) = TRIM(?) COLLATE NOCASE`, designation)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by designation: %w", err)
	}
	return p, nil
}

// UpdateProductFillBlanks fills only blank/zero product fields from the given
// values and adds the incoming quantity to stock.
func (db *StoreDB) UpdateProductFillBlanks(id int64, p *Product, addQuantity bool) error {
	quantityExpr := "quantity"
	if addQuantity {
		quantityExpr = "quantity + ?"
	}
	args := []interface{}{p.Brand, p.Category, p.PurchasePrice, p.SalePrice}
	if addQuantity {
		args = append(args, p.Quantity)
	}
	args = append(args, id)

	_, err := db.conn.Exec(
		`UPDATE products
		 SET brand = CASE WHEN brand = '' THEN ? ELSE brand END,
		     category = CASE WHEN category = '' THEN ? ELSE category END,
		     purchase_price = CASE WHEN purchase_price = 0 THEN ? ELSE purchase_price END,
		     sale_price = CASE WHEN sale_price = 0 THEN ? ELSE sale_price END,
		     quantity = `+quantityExpr+`
		 WHERE id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}
