package usecase

import (
	"context"
	"log/slog"
)

// Sweep purges records that expired more than the retention window ago.
func (s *Usecase) Sweep(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	before := s.clock.Now().Add(-s.retention())

	n, err := s.store.DeleteExpired(ctx, before)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired login codes", "before", before, "error", err)
		return 0, err
	}

	if n > 0 {
		slog.InfoContext(ctx, "swept abandoned login codes", "count", n, "before", before)
	}

	return n, nil
}
