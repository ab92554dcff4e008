package database

import "fmt"

// migrate создает схему, если она еще не существует. Схема идемпотентна:
// повторное открытие базы ничего не меняет.
func (db *StoreDB) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS suppliers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			normalized_name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_suppliers_normalized_name
			ON suppliers(normalized_name)`,

		`CREATE TABLE IF NOT EXISTS clients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			date_of_birth TIMESTAMP,
			notes TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'ACTIVE',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_clients_code
			ON clients(code) WHERE code != ''`,
		`CREATE INDEX IF NOT EXISTS idx_clients_name_phone
			ON clients(name COLLATE NOCASE, phone)`,

		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			reference TEXT NOT NULL DEFAULT '',
			designation TEXT NOT NULL,
			brand TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			purchase_price REAL NOT NULL DEFAULT 0,
			sale_price REAL NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 0,
			supplier_id INTEGER REFERENCES suppliers(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_products_reference
			ON products(reference) WHERE reference != ''`,

		`CREATE TABLE IF NOT EXISTS supplier_invoices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			number TEXT NOT NULL DEFAULT '',
			supplier_id INTEGER NOT NULL REFERENCES suppliers(id),
			amount REAL NOT NULL DEFAULT 0,
			paid_amount REAL NOT NULL DEFAULT 0,
			invoice_date TIMESTAMP,
			due_date TIMESTAMP,
			status TEXT NOT NULL DEFAULT 'PENDING',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_supplier_invoices_number
			ON supplier_invoices(number, supplier_id) WHERE number != ''`,

		`CREATE TABLE IF NOT EXISTS supplier_payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id INTEGER NOT NULL REFERENCES supplier_invoices(id),
			reference TEXT NOT NULL DEFAULT '',
			amount REAL NOT NULL DEFAULT 0,
			payment_date TIMESTAMP,
			method TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'PENDING',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_supplier_payments_invoice
			ON supplier_payments(invoice_id)`,

		`CREATE TABLE IF NOT EXISTS sales_invoices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			number TEXT NOT NULL DEFAULT '',
			client_id INTEGER REFERENCES clients(id),
			fiche_id INTEGER REFERENCES fiches(id),
			invoice_date TIMESTAMP,
			total_ht REAL NOT NULL DEFAULT 0,
			total_tva REAL NOT NULL DEFAULT 0,
			total_ttc REAL NOT NULL DEFAULT 0,
			paid_amount REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'DRAFT',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sales_invoices_number
			ON sales_invoices(number) WHERE number != ''`,

		`CREATE TABLE IF NOT EXISTS sales_invoice_lines (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id INTEGER NOT NULL REFERENCES sales_invoices(id) ON DELETE CASCADE,
			designation TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1,
			unit_price REAL NOT NULL DEFAULT 0,
			total REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_invoice_lines_invoice
			ON sales_invoice_lines(invoice_id)`,

		`CREATE TABLE IF NOT EXISTS client_payments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			invoice_id INTEGER REFERENCES sales_invoices(id),
			client_id INTEGER REFERENCES clients(id),
			reference TEXT NOT NULL DEFAULT '',
			amount REAL NOT NULL DEFAULT 0,
			payment_date TIMESTAMP,
			method TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_client_payments_invoice
			ON client_payments(invoice_id)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'AUTRE',
			amount REAL NOT NULL DEFAULT 0,
			expense_date TIMESTAMP,
			supplier_id INTEGER REFERENCES suppliers(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_date
			ON expenses(expense_date)`,

		`CREATE TABLE IF NOT EXISTS fiches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			external_id TEXT NOT NULL DEFAULT '',
			day_key TEXT NOT NULL DEFAULT '',
			client_id INTEGER REFERENCES clients(id),
			fiche_date TIMESTAMP,
			fiche_type TEXT NOT NULL DEFAULT 'PRODUIT',
			status TEXT NOT NULL DEFAULT 'DRAFT',
			total_ttc REAL NOT NULL DEFAULT 0,
			advance REAL NOT NULL DEFAULT 0,
			equipments TEXT NOT NULL DEFAULT '[]',
			lenses TEXT,
			contact_lenses TEXT,
			extra_products TEXT NOT NULL DEFAULT '[]',
			mutuelle TEXT,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_fiches_external_id_day
			ON fiches(external_id, day_key) WHERE external_id != ''`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
