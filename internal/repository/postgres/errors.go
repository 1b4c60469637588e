package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sakif/learninfive/internal/repository"
)

// SQLSTATE codes this package reacts to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// Constraint names from the users migration.
const (
	constraintEmail    = "uq_users_email"
	constraintUsername = "uq_users_username"
)

// classifyUniqueViolation maps a unique violation on users to the matching
// field conflict. Postgres reports the constraint name, which the
// migrations set explicitly so it's stable. Returns nil for anything else.
func classifyUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintEmail:
		return repository.EmailTaken()
	case constraintUsername:
		return repository.UsernameTaken()
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}
