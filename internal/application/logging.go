package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/room-reservation/internal/booking"
	"github.com/example/room-reservation/internal/logging"
	"github.com/example/room-reservation/internal/recurrence"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrResourceRestricted):
		return "restricted"
	case errors.Is(err, ErrInvalidUnlockToken):
		return "invalid_unlock_token"
	case errors.Is(err, ErrSnapshotFetchFailed):
		return "snapshot_fetch_failed"
	case errors.Is(err, ErrPartialCommit):
		return "partial_commit"
	case errors.Is(err, ErrAlreadyCancelled):
		return "already_cancelled"
	case errors.Is(err, booking.ErrConflictDetected):
		return "conflict_detected"
	case errors.Is(err, booking.ErrInvalidTimeRange):
		return "invalid_time_range"
	case errors.Is(err, recurrence.ErrTooManyOccurrences):
		return "too_many_occurrences"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
