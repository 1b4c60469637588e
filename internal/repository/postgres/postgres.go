// Package postgres implements the repository interfaces on PostgreSQL
// through pgx's native pool.
//
// The schema is the same as the sqlite backend's, created by the goose
// migrations under repository/migrations/postgres. Goose speaks
// database/sql, so migrations run over a *sql.DB borrowed from the pool
// with pgx's stdlib adapter; all queries afterwards use the pool directly.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sakif/learninfive/internal/repository/migrations"
)

// DB owns the connection pool and hands out the per-table stores.
type DB struct {
	pool    *pgxpool.Pool
	users   *UserDB
	history *HistoryDB
}

// New connects to dsn (a postgres:// URL), verifies the connection and
// applies pending migrations.
func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	if err := migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return &DB{
		pool:    pool,
		users:   &UserDB{pool: pool},
		history: &HistoryDB{pool: pool},
	}, nil
}

// migrate runs goose over a database/sql view of the pool. Closing that
// view does not close the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.Postgres())
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

func (db *DB) Users() *UserDB {
	return db.users
}

func (db *DB) History() *HistoryDB {
	return db.history
}

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close releases every pooled connection. It never fails; the error return
// matches the sqlite backend so both fit the same io.Closer slot.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}
