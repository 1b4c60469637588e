package sqlite

import (
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/learninfive/internal/repository"
)

// classifyUniqueViolation turns a UNIQUE failure on users into the matching
// field conflict. It returns nil for every other error.
//
// SQLite names the column, not the constraint, in the message:
//
//	constraint failed: UNIQUE constraint failed: users.email (2067)
func classifyUniqueViolation(err error) error {
	var se *msqlite.Error
	if !errors.As(err, &se) || se.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return nil
	}

	msg := se.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return repository.EmailTaken()
	case strings.Contains(msg, "users.username"):
		return repository.UsernameTaken()
	}
	return nil
}

// isForeignKeyViolation reports whether err is a failed REFERENCES check.
func isForeignKeyViolation(err error) bool {
	var se *msqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}
