// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Email is stored canonical (trimmed, lower-cased) so uniqueness and lookup
// are case-insensitive. Username is stored as given after trimming.
//
// WHY PasswordHash HAS json:"-"?
// The hash never leaves the server. Tagging it "-" makes encoding/json skip
// it, so returning a *User from a handler can't leak it by accident.
//
// UpdatedAt is a pointer because nothing in this service updates a profile
// yet; nil encodes as an omitted field instead of the zero time.
type User struct {
	ID           int64      `json:"id"                   db:"id"`
	Email        string     `json:"email"                db:"email"`
	Username     string     `json:"username"             db:"username"`
	PasswordHash string     `json:"-"                    db:"hashed_password"`
	CreatedAt    time.Time  `json:"created_at"           db:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}
