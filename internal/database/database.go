// Package database opens the store selected by a DATABASE_URL-style
// string and exposes it through the repository interfaces.
//
// Supported forms:
//
//	sqlite://data/learninfive.db    → modernc sqlite file
//	sqlite://:memory:               → private in-memory sqlite
//	file:data/learninfive.db        → same as sqlite://
//	data/learninfive.db             → bare path, sqlite
//	postgres://user:pw@host/db      → PostgreSQL via pgx
//	postgresql://...                → same
package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sakif/learninfive/internal/repository"
	"github.com/sakif/learninfive/internal/repository/postgres"
	"github.com/sakif/learninfive/internal/repository/sqlite"
)

// Driver names reported by Store.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is an open database. Its lifecycle belongs to whoever called Open;
// services only ever see the two repositories.
type Store struct {
	Users   repository.UserRepository
	History repository.HistoryRepository
	Driver  string

	ping  func(context.Context) error
	close func() error
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	return s.close()
}

// Open parses rawURL, connects to the matching backend and migrates it.
func Open(ctx context.Context, rawURL string) (*Store, error) {
	driver, target, err := Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		db, err := postgres.New(ctx, target)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:   db.Users(),
			History: db.History(),
			Driver:  DriverPostgres,
			ping:    db.Ping,
			close:   db.Close,
		}, nil

	default:
		if target != sqlite.MemoryPath {
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return nil, fmt.Errorf("database: creating directory for %s: %w", target, err)
			}
		}
		db, err := sqlite.New(ctx, target)
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:   db.Users(),
			History: db.History(),
			Driver:  DriverSQLite,
			ping:    db.Ping,
			close:   db.Close,
		}, nil
	}
}

// Parse splits rawURL into a driver name and the string that driver
// expects: the full URL for postgres, a filesystem path for sqlite.
func Parse(rawURL string) (driver, target string, err error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", "", fmt.Errorf("database: empty database URL")
	}

	switch {
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return DriverPostgres, rawURL, nil
	case strings.HasPrefix(rawURL, "sqlite://"):
		target = strings.TrimPrefix(rawURL, "sqlite://")
	case strings.HasPrefix(rawURL, "file:"):
		target = strings.TrimPrefix(rawURL, "file:")
	case strings.Contains(rawURL, "://"):
		scheme, _, _ := strings.Cut(rawURL, "://")
		return "", "", fmt.Errorf("database: unsupported scheme %q", scheme)
	default:
		target = rawURL
	}

	if target == "" {
		return "", "", fmt.Errorf("database: sqlite URL %q has no path", rawURL)
	}
	return DriverSQLite, target, nil
}
