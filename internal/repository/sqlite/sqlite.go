// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB     : a connection pool (NOT a single connection!)
//   - sql.Tx     : a transaction
//   - sql.Row    : a single result row
//   - sql.Rows   : multiple result rows (must be closed!)
//
// PRAGMAS PER CONNECTION:
// PRAGMA foreign_keys is a per-connection setting, and sql.DB opens
// connections whenever it likes. Running "PRAGMA foreign_keys=ON" once
// would only cover whichever connection happened to run it. The pragmas
// are therefore passed in the DSN (_pragma=...), which the driver applies
// to every connection it opens. Without foreign_keys the ON DELETE CASCADE
// from users to history_entries would silently do nothing.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/sakif/learninfive/internal/repository/migrations"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database. Handy for tests.
const MemoryPath = ":memory:"

// DB wraps a sql.DB connection pool and hands out the per-table stores.
type DB struct {
	conn    *sql.DB
	users   *UserDB
	history *HistoryDB
}

// New opens (creating if needed) the database at path and applies any
// pending migrations.
//
// path examples:
//   - "data/learninfive.db" → file-based database (persistent)
//   - ":memory:"            → in-memory database, lost on Close
func New(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" is a brand new, empty database.
	// Pin the pool to one connection so all queries see the same data.
	if path == MemoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	db := &DB{conn: conn}
	db.users = &UserDB{conn: conn}
	db.history = &HistoryDB{conn: conn}
	return db, nil
}

// dsn builds a modernc connection string carrying the per-connection pragmas.
//
// _time_format=sqlite stores time.Time as "YYYY-MM-DD HH:MM:SS.fff+00:00",
// which sorts correctly as text as long as every value is UTC.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	if path != MemoryPath {
		// WAL lets readers proceed while a write is in progress.
		q.Add("_pragma", "journal_mode(WAL)")
	}
	q.Set("_time_format", "sqlite")

	path = strings.TrimPrefix(path, "file:")
	return "file:" + path + "?" + q.Encode()
}

// migrate applies the embedded goose migrations.
//
// goose records applied versions in its own goose_db_version table, so
// running this on every start is safe: already-applied files are skipped.
func migrate(ctx context.Context, conn *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, migrations.SQLite())
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Users returns the account store.
func (db *DB) Users() *UserDB {
	return db.users
}

// History returns the history entry store.
func (db *DB) History() *HistoryDB {
	return db.history
}

// Ping checks the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}
