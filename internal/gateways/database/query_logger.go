package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/holopack/holopack/logger"
)

const slowQueryThreshold = 500 * time.Millisecond

// queryHook reports every bun statement through the shared query logger.
type queryHook struct {
	slow time.Duration
}

func newQueryHook() *queryHook {
	return &queryHook{slow: slowQueryThreshold}
}

func (h *queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	logStatement(event.Operation(), event.Query, time.Since(event.StartTime), event.Err, h.slow)
}

// logStatement logs a finished statement. A missing row is an expected
// outcome for lookups, not a failure.
func logStatement(operation, query string, took time.Duration, err error, slow time.Duration) {
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	if err == nil && slow > 0 && took >= slow {
		slog.Warn("Slow query",
			slog.String("type", "db"),
			slog.String("operation", operation),
			slog.String("query", query),
			slog.Duration("took", took))
		return
	}
	logger.LogQuery(query, took, err)
}
