// Package repository declares the storage contracts the service layer
// depends on. Implementations live in the sqlite and postgres subpackages.
package repository

import (
	"context"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/model"
)

// ListOptions is the page window for list queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository stores accounts.
//
// Create fills in ID and CreatedAt. When the email or username is taken it
// returns an apperror conflict naming the field; the store's unique
// constraint decides, so two racing registrations can't both win.
//
// Lookups return an apperror not-found error when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Delete removes the user and every history entry they own in one
	// transaction. Deleting a missing user is a not-found error.
	Delete(ctx context.Context, id int64) error
}

// HistoryRepository stores history entries. Every method is scoped by the
// owning user's ID; there is deliberately no unscoped read or delete.
type HistoryRepository interface {
	// Create fills in ID and CreatedAt. An owner that doesn't exist fails
	// the foreign key and comes back as a plain (internal) error.
	Create(ctx context.Context, entry *model.HistoryEntry) error
	// ListByOwner returns one page, newest first (ties broken by ID,
	// newest first), plus the owner's total entry count.
	ListByOwner(ctx context.Context, ownerID int64, opts ListOptions) ([]model.HistoryEntry, int, error)
	// GetOwned returns a not-found error both when the entry doesn't exist
	// and when it belongs to someone else.
	GetOwned(ctx context.Context, ownerID, id int64) (*model.HistoryEntry, error)
	// DeleteOwned reports whether a row was removed. Missing and foreign
	// entries both give (false, nil).
	DeleteOwned(ctx context.Context, ownerID, id int64) (bool, error)
}

// Messages for the two registration conflicts. The service's pre-check and
// both stores' constraint classification report the same text.
const (
	EmailTakenMessage    = "Email already registered"
	UsernameTakenMessage = "Username already taken"
)

// EmailTaken is the conflict returned when the email is already in use.
func EmailTaken() *apperror.AppError {
	return apperror.Conflict("email", EmailTakenMessage)
}

// UsernameTaken is the conflict returned when the username is already in use.
func UsernameTaken() *apperror.AppError {
	return apperror.Conflict("username", UsernameTakenMessage)
}
