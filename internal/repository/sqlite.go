package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS quotation_counters (
		counter_key    TEXT PRIMARY KEY,
		year           INTEGER NOT NULL,
		sequence_value INTEGER NOT NULL,
		last_updated   INTEGER NOT NULL,
		version        INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS quotations (
		id              TEXT PRIMARY KEY,
		number          TEXT UNIQUE,
		customer_name   TEXT NOT NULL,
		customer_phone  TEXT NOT NULL,
		customer_email  TEXT NOT NULL DEFAULT '',
		interest        TEXT NOT NULL DEFAULT '',
		category        TEXT,
		category_score  REAL,
		category_method TEXT,
		routing_status  TEXT NOT NULL,
		routing_reason  TEXT NOT NULL DEFAULT '',
		lender          TEXT,
		alternatives    TEXT,
		daily_budget    REAL NOT NULL,
		down_payment    REAL NOT NULL,
		term_months     INTEGER NOT NULL,
		affordability   TEXT NOT NULL,
		created_at      INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS quotations_created_at_idx ON quotations (created_at)`,
}

// OpenSQLite abre la base local y aplica el esquema. Una sola conexión:
// SQLite admite un único escritor y así las transacciones se encolan en el pool.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}

	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return db, nil
}

// isSQLiteBusy otra conexión (u otro proceso) mantiene el bloqueo de escritura
func isSQLiteBusy(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code() & 0xff
	return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
}
