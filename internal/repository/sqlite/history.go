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

var _ repository.HistoryRepository = (*HistoryDB)(nil)

// HistoryDB is the history_entries table. Every query filters on user_id.
type HistoryDB struct {
	conn *sql.DB
}

// Create inserts a new entry stamped with the current time.
//
// PARAMETERIZED QUERIES (the ? placeholders):
// The driver binds values separately from the SQL text, so concept and
// explanation can contain anything without risking injection.
func (h *HistoryDB) Create(ctx context.Context, entry *model.HistoryEntry) error {
	entry.CreatedAt = time.Now().UTC()

	res, err := h.conn.ExecContext(ctx,
		`INSERT INTO history_entries (user_id, concept, explanation, created_at)
		 VALUES (?, ?, ?, ?)`,
		entry.UserID,
		entry.Concept,
		entry.Explanation,
		entry.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("sqlite: creating history entry: owner %d does not exist: %w", entry.UserID, err)
		}
		return fmt.Errorf("sqlite: creating history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new history entry id: %w", err)
	}
	entry.ID = id
	return nil
}

// ListByOwner returns one page of the owner's entries and their total count.
//
// ORDER BY created_at DESC, id DESC:
// Two entries saved within the same clock tick share created_at. Adding
// id as a second key makes the order total, so LIMIT/OFFSET pages never
// overlap or skip rows. The (user_id, created_at DESC, id DESC) index
// serves the whole query.
//
// Both queries run in one transaction. SQLite takes its read snapshot at
// the first SELECT and keeps it until the transaction ends, so an insert
// from another connection can't land between the count and the page.
func (h *HistoryDB) ListByOwner(ctx context.Context, ownerID int64, opts repository.ListOptions) ([]model.HistoryEntry, int, error) {
	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: beginning history listing: %w", err)
	}
	defer tx.Rollback() // read-only work, nothing to commit

	var total int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history_entries WHERE user_id = ?`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting history entries: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, user_id, concept, explanation, created_at
		 FROM history_entries
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		ownerID,
		opts.Limit,
		opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing history entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.HistoryEntry, 0, max(opts.Limit, 0))
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Concept, &e.Explanation, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning history entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating history entries: %w", err)
	}

	return entries, total, nil
}

// GetOwned fetches one entry. The owner is part of the WHERE clause, so an
// entry belonging to someone else produces sql.ErrNoRows exactly like an
// id that was never used.
func (h *HistoryDB) GetOwned(ctx context.Context, ownerID, id int64) (*model.HistoryEntry, error) {
	var e model.HistoryEntry

	err := h.conn.QueryRowContext(ctx,
		`SELECT id, user_id, concept, explanation, created_at
		 FROM history_entries
		 WHERE id = ? AND user_id = ?`,
		id, ownerID,
	).Scan(&e.ID, &e.UserID, &e.Concept, &e.Explanation, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("History entry")
		}
		return nil, fmt.Errorf("sqlite: getting history entry: %w", err)
	}
	return &e, nil
}

// DeleteOwned removes an entry if ownerID owns it. RowsAffected tells us
// whether anything matched.
func (h *HistoryDB) DeleteOwned(ctx context.Context, ownerID, id int64) (bool, error) {
	res, err := h.conn.ExecContext(ctx,
		`DELETE FROM history_entries WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: deleting history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n > 0, nil
}
