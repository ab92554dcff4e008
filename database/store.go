package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// ErrDuplicate возвращается, когда вставка нарушает уникальный естественный
// ключ. Импортеры трактуют его как безобидный дубликат, а не как ошибку.
var ErrDuplicate = errors.New("duplicate natural key")

// DBConfig настройки пула соединений.
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// StoreDB обертка над базой данных магазина.
type StoreDB struct {
	conn *sql.DB
}

// NewStoreDB opens the store database and applies migrations.
func NewStoreDB(dbPath string) (*StoreDB, error) {
	config := DBConfig{}

	// In-memory SQLite должен жить ровно на одном соединении, иначе каждое
	// новое соединение видит пустую схему.
	if isInMemoryPath(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	return NewStoreDBWithConfig(dbPath, config)
}

func isInMemoryPath(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// NewStoreDBWithConfig opens the store database with explicit pool settings.
func NewStoreDBWithConfig(dbPath string, config DBConfig) (*StoreDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store database: %w", err)
	}

	// SQLite плохо переносит большое число одновременных соединений
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		conn.SetMaxOpenConns(10)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping store database: %w", err)
	}

	db := &StoreDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate store database: %w", err)
	}

	return db, nil
}

// Close закрывает соединение с базой.
func (db *StoreDB) Close() error {
	return db.conn.Close()
}

// wrapDuplicate converts sqlite unique-constraint violations into
// ErrDuplicate so callers can branch without importing the driver.
func wrapDuplicate(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}
	return err
}

func nullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullFloat(nf sql.NullFloat64) float64 {
	if nf.Valid {
		return nf.Float64
	}
	return 0
}

func nullInt(ni sql.NullInt64) int64 {
	if ni.Valid {
		return ni.Int64
	}
	return 0
}

func nullTime(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}
