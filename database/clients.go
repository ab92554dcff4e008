package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Client клиент магазина.
type Client struct {
	ID          int64
	Code        string
	Name        string
	Phone       string
	Email       string
	Address     string
	DateOfBirth *time.Time
	Notes       string
	Status      string
	CreatedAt   time.Time
}

const clientColumns = "id, code, name, phone, email, address, date_of_birth, notes, status, created_at"

func scanClient(row interface{ Scan(...interface{}) error }) (*Client, error) {
	var c Client
	var dob sql.NullTime
	if err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Phone, &c.Email, &c.Address,
		&dob, &c.Notes, &c.Status, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.DateOfBirth = nullTime(dob)
	return &c, nil
}

// CreateClient inserts a client. A non-empty code is a unique natural key.
func (db *StoreDB) CreateClient(c *Client) (*Client, error) {
	if c.Status == "" {
		c.Status = "ACTIVE"
	}
	res, err := db.conn.Exec(
		`INSERT INTO clients (code, name, phone, email, address, date_of_birth, notes, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Code, c.Name, c.Phone, c.Email, c.Address, timeOrNil(c.DateOfBirth), c.Notes, c.Status,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read client id: %w", err)
	}
	return db.FindClientByID(id)
}

// FindClientByID возвращает клиента по id, nil если не найден.
func (db *StoreDB) FindClientByID(id int64) (*Client, error) {
	row := db.conn.QueryRow(`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client by id: %w", err)
	}
	return c, nil
}

// FindClientByCode ищет клиента по коду (точное совпадение).
func (db *StoreDB) FindClientByCode(code string) (*Client, error) {
	if code == "" {
		return nil, nil
	}
	row := db.conn.QueryRow(`SELECT `+clientColumns+` FROM clients WHERE code = ?`, code)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client by code: %w", err)
	}
	return c, nil
}

// ListClients returns all clients ordered by id. The importers use it for
// the one-shot batch pre-fetch.
func (db *StoreDB) ListClients() ([]*Client, error) {
	rows, err := db.conn.Query(`SELECT ` + clientColumns + ` FROM clients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// UpdateClientFillBlanks fills only the currently blank fields of the client
// from the given values; populated fields stay untouched.
func (db *StoreDB) UpdateClientFillBlanks(id int64, c *Client) error {
	_, err := db.conn.Exec(
		`UPDATE clients
		 SET phone = CASE WHEN phone = '' THEN ? ELSE phone END,
		     email = CASE WHEN email = '' THEN ? ELSE email END,
		     address = CASE WHEN address = '' THEN ? ELSE address END,
		     notes = CASE WHEN notes = '' THEN ? ELSE notes END,
		     date_of_birth = COALESCE(date_of_birth, ?)
		 WHERE id = ?`,
		c.Phone, c.Email, c.Address, c.Notes, timeOrNil(c.DateOfBirth), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}
