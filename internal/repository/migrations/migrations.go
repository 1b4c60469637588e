// Package migrations embeds the goose SQL migrations for each backend.
//
// Each dialect gets its own directory because the DDL differs (AUTOINCREMENT
// vs identity columns, DATETIME vs TIMESTAMPTZ). Both describe the same
// schema: users, history_entries with ON DELETE CASCADE, and the
// (user_id, created_at DESC, id DESC) index that backs paging.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// SQLite returns the migrations for modernc.org/sqlite.
func SQLite() fs.FS {
	return sub("sqlite")
}

// Postgres returns the migrations for PostgreSQL.
func Postgres() fs.FS {
	return sub("postgres")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		// Only reachable if the embed pattern above and dir disagree.
		panic("migrations: " + err.Error())
	}
	return f
}
