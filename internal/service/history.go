package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/learninfive/internal/apperror"
	"github.com/sakif/learninfive/internal/metrics"
	"github.com/sakif/learninfive/internal/model"
	"github.com/sakif/learninfive/internal/repository"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
	MaxConceptLength    = 200
)

// SaveHistoryInput is one explanation the user wants to keep.
type SaveHistoryInput struct {
	Concept     string `json:"concept" validate:"required,max=200"`
	Explanation string `json:"explanation" validate:"required"`
}

// HistoryPage is one page of a user's history plus the unpaged total.
type HistoryPage struct {
	Entries []model.HistoryEntry `json:"entries"`
	Total   int                  `json:"total"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// HistoryService is the only way handlers reach history entries. Every
// method takes the owner id that ResolveSession produced; there is no
// method that reads an entry without one.
type HistoryService struct {
	repo    repository.HistoryRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHistoryService(repo repository.HistoryRepository, m *metrics.Metrics, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		repo:    repo,
		metrics: m,
		logger:  logger,
	}
}

// Save stores an explanation for ownerID. The concept is trimmed; the
// explanation is kept byte for byte.
func (s *HistoryService) Save(ctx context.Context, ownerID int64, in SaveHistoryInput) (*model.HistoryEntry, error) {
	in.Concept = strings.TrimSpace(in.Concept)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	entry := &model.HistoryEntry{
		UserID:      ownerID,
		Concept:     in.Concept,
		Explanation: in.Explanation,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to save history entry",
			slog.Int64("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/history: saving entry: %w", err)
	}

	s.metrics.HistoryOp("save")
	s.logger.Info("history entry saved",
		slog.Int64("user_id", ownerID),
		slog.Int64("entry_id", entry.ID),
		slog.String("concept", entry.Concept),
	)
	return entry, nil
}

// List returns the owner's entries newest first.
//
// limit must be at least 1 and is capped at MaxHistoryLimit; offset must
// not be negative. Callers that have no limit to pass use
// DefaultHistoryLimit.
func (s *HistoryService) List(ctx context.Context, ownerID int64, limit, offset int) (*HistoryPage, error) {
	if limit < 1 {
		return nil, apperror.ValidationFailed("limit", "limit must be at least 1")
	}
	if offset < 0 {
		return nil, apperror.ValidationFailed("offset", "offset must not be negative")
	}
	limit = min(limit, MaxHistoryLimit)

	entries, total, err := s.repo.ListByOwner(ctx, ownerID, repository.ListOptions{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Error("failed to list history",
			slog.Int64("user_id", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/history: listing entries: %w", err)
	}

	s.metrics.HistoryOp("list")
	return &HistoryPage{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// GetOwned returns the entry if ownerID owns it. An entry owned by someone
// else is reported as apperror.ErrNotFound, same as a missing id.
func (s *HistoryService) GetOwned(ctx context.Context, ownerID, id int64) (*model.HistoryEntry, error) {
	entry, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	s.metrics.HistoryOp("get")
	return entry, nil
}

// DeleteOwned reports whether an entry owned by ownerID was removed.
// false with a nil error covers both "no such entry" and "not yours".
func (s *HistoryService) DeleteOwned(ctx context.Context, ownerID, id int64) (bool, error) {
	deleted, err := s.repo.DeleteOwned(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("failed to delete history entry",
			slog.Int64("user_id", ownerID),
			slog.Int64("entry_id", id),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("service/history: deleting entry: %w", err)
	}

	if deleted {
		s.metrics.HistoryOp("delete")
		s.logger.Info("history entry deleted",
			slog.Int64("user_id", ownerID),
			slog.Int64("entry_id", id),
		)
	}
	return deleted, nil
}
