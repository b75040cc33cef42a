package logger

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/holopack/internal/domain"
)

// LogShop logs a completed shop operation for an account
func LogShop(operation, accountID string, duration time.Duration, err error, attrs ...any) {
	base := []any{
		slog.String("type", "shop"),
		slog.String("operation", operation),
		slog.String("account", accountID),
		slog.Duration("took", duration),
	}

	switch {
	case err == nil:
		slog.Info("Shop operation completed", append(base, attrs...)...)
	case rejected(err):
		slog.Warn("Shop operation rejected", append(append(base, slog.Any("error", err)), attrs...)...)
	default:
		slog.Error("Shop operation failed", append(append(base, slog.Any("error", err)), attrs...)...)
	}
}

// rejected reports whether err is an expected refusal caused by the caller's
// request rather than a fault in the shop.
func rejected(err error) bool {
	return errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrConflict)
}

// LogQuery logs database operations
func LogQuery(query string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "db"),
		slog.Duration("took", duration),
		slog.String("query", query),
	}

	if err != nil {
		slog.Error("Query failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Debug("Query executed", attrs...)
	}
}

// LogSystem logs system events
func LogSystem(msg string, attrs ...any) {
	baseAttrs := []any{slog.String("type", "sys")}
	slog.Info(msg, append(baseAttrs, attrs...)...)
}

// LogError logs error events
func LogError(msg string, err error, attrs ...any) {
	baseAttrs := []any{
		slog.String("type", "error"),
		slog.Any("error", err),
	}
	slog.Error(msg, append(baseAttrs, attrs...)...)
}
