package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/model"
	"github.com/sakif/learninfive/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, username, hashed_password, created_at, updated_at`

// now returns the current time at the precision TIMESTAMPTZ keeps, so the
// value set on the model equals what a later read returns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Create inserts a user; the unique constraints decide conflicts.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = now()
	user.UpdatedAt = nil

	err := u.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, hashed_password, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		user.Email, user.Username, user.PasswordHash, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if conflict := classifyUniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("postgres: inserting user: %w", err)
	}
	return nil
}

func (u *UserDB) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return u.getOne(ctx, `WHERE id = $1`, id)
}

func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return u.getOne(ctx, `WHERE email = $1`, email)
}

func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return u.getOne(ctx, `WHERE username = $1`, username)
}

func (u *UserDB) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	var user model.User
	err := u.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users `+where, arg,
	).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("user")
		}
		return nil, fmt.Errorf("postgres: getting user: %w", err)
	}
	return &user, nil
}

// Delete removes the user and their history in one transaction.
func (u *UserDB) Delete(ctx context.Context, id int64) error {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("postgres: beginning user delete: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after Commit

	if _, err := tx.Exec(ctx, `DELETE FROM history_entries WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("postgres: deleting history of user %d: %w", id, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("user")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: committing user delete: %w", err)
	}
	return nil
}
