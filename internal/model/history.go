package model

import "time"

// HistoryEntry is one explanation a user chose to keep.
//
// UserID is the owner. It's never serialized: a client only ever sees its
// own entries, so echoing the owner back adds nothing.
type HistoryEntry struct {
	ID          int64     `json:"id"          db:"id"`
	UserID      int64     `json:"-"           db:"user_id"`
	Concept     string    `json:"concept"     db:"concept"`
	Explanation string    `json:"explanation" db:"explanation"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
}
