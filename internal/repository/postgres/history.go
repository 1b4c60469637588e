package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/model"
	"github.com/sakif/learninfive/internal/repository"
)

var _ repository.HistoryRepository = (*HistoryDB)(nil)

// HistoryDB is the history_entries table. Every query filters on user_id.
type HistoryDB struct {
	pool *pgxpool.Pool
}

func (h *HistoryDB) Create(ctx context.Context, entry *model.HistoryEntry) error {
	entry.CreatedAt = now()

	err := h.pool.QueryRow(ctx,
		`INSERT INTO history_entries (user_id, concept, explanation, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		entry.UserID, entry.Concept, entry.Explanation, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("postgres: creating history entry: owner %d does not exist: %w", entry.UserID, err)
		}
		return fmt.Errorf("postgres: creating history entry: %w", err)
	}
	return nil
}

// ListByOwner returns one page, newest first with id as the tie-break, and
// the owner's total.
//
// COUNT(*) OVER () rides along on every row, so one round trip gives both.
// An offset past the end returns no rows and therefore no count; a second
// query fills it in for that case only.
func (h *HistoryDB) ListByOwner(ctx context.Context, ownerID int64, opts repository.ListOptions) ([]model.HistoryEntry, int, error) {
	rows, err := h.pool.Query(ctx,
		`SELECT id, user_id, concept, explanation, created_at, COUNT(*) OVER ()
		 FROM history_entries
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		ownerID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: listing history entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.HistoryEntry, 0, max(opts.Limit, 0))
	total := 0
	for rows.Next() {
		var e model.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Concept, &e.Explanation, &e.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("postgres: scanning history entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: iterating history entries: %w", err)
	}

	if len(entries) == 0 {
		if err := h.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM history_entries WHERE user_id = $1`, ownerID,
		).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("postgres: counting history entries: %w", err)
		}
	}

	return entries, total, nil
}

func (h *HistoryDB) GetOwned(ctx context.Context, ownerID, id int64) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	err := h.pool.QueryRow(ctx,
		`SELECT id, user_id, concept, explanation, created_at
		 FROM history_entries
		 WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	).Scan(&e.ID, &e.UserID, &e.Concept, &e.Explanation, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("History entry")
		}
		return nil, fmt.Errorf("postgres: getting history entry: %w", err)
	}
	return &e, nil
}

func (h *HistoryDB) DeleteOwned(ctx context.Context, ownerID, id int64) (bool, error) {
	tag, err := h.pool.Exec(ctx,
		`DELETE FROM history_entries WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: deleting history entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
