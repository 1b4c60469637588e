package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/model"
	"github.com/sakif/learninfive/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, email, username, hashed_password, created_at, updated_at`

// Create inserts a new user and fills in ID and CreatedAt.
//
// There's no SELECT-then-INSERT here: the UNIQUE constraints on email and
// username are the arbiter. If two registrations race, exactly one INSERT
// succeeds and the other gets a classified conflict.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = nil

	res, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (email, username, hashed_password, created_at)
		 VALUES (?, ?, ?, ?)`,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if conflict := classifyUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id
	return nil
}

// GetByID retrieves a user by their ID.
// Returns an apperror.ErrNotFound error if no user exists with that ID.
func (u *UserDB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.getOne(ctx, `WHERE id = ?`, id)
}

// GetByEmail looks up by canonical email (the caller normalises it).
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.getOne(ctx, `WHERE email = ?`, email)
}

func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return u.getOne(ctx, `WHERE username = ?`, username)
}

func (u *UserDB) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		user    model.User
		updated sql.NullTime
	)

	err := u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users `+where,
		arg,
	).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	if updated.Valid {
		t := updated.Time
		user.UpdatedAt = &t
	}
	return &user, nil
}

// Delete removes a user and everything they own.
//
// The history rows are deleted explicitly inside the same transaction as
// the user row. ON DELETE CASCADE would do it on its own; doing both means
// a connection without foreign_keys enabled still can't leave orphans.
func (u *UserDB) Delete(ctx context.Context, id int64) error {
	tx, err := u.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning user delete: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting history of user %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("user")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user delete: %w", err)
	}
	return nil
}
