package explain

import (
	"context"
	"log/slog"
)

// Limited bounds how many Generate calls are in flight against the
// backend at once. Callers past the limit wait for a slot or for their
// context to end, whichever comes first.
type Limited struct {
	next   Generator
	slots  chan struct{}
	logger *slog.Logger
}

var _ Generator = (*Limited)(nil)

// NewLimited wraps next with a pool of n slots. n < 1 means 1.
func NewLimited(next Generator, n int, logger *slog.Logger) *Limited {
	return &Limited{
		next:   next,
		slots:  make(chan struct{}, max(n, 1)),
		logger: logger,
	}
}

func (l *Limited) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case l.slots <- struct{}{}:
	default:
		l.logger.Debug("generator busy, waiting for a slot", slog.Int("in_flight", len(l.slots)))
		select {
		case l.slots <- struct{}{}:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	defer func() { <-l.slots }()

	return l.next.Generate(ctx, prompt)
}
