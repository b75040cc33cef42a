package logger

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ellavondegurechaff/holopack/internal/domain"
)

func newTestLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(NewHandlerWithWriter("test", level, buf)), buf
}

func TestCustomHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		log      func(l *slog.Logger)
		contains []string
		excludes []string
	}{
		{
			name: "type attribute picks the tag",
			log: func(l *slog.Logger) {
				l.Info("Pack opened", slog.String("type", "shop"), slog.String("pack", "standard"))
			},
			contains: []string{"[test]", "INFO", "[SHOP]", "Pack opened", "pack=standard"},
			excludes: []string{"type="},
		},
		{
			name: "errors carry their details",
			log: func(l *slog.Logger) {
				l.Error("Query failed", slog.String("type", "db"), slog.Any("error", errors.New("boom")))
			},
			contains: []string{"ERROR", "[DB]", "Query failed", ": boom"},
			excludes: []string{"error=boom"},
		},
		{
			name: "untyped errors are tagged ERR",
			log: func(l *slog.Logger) {
				l.Error("Something broke")
			},
			contains: []string{"[ERR]"},
		},
		{
			name: "duration is appended to the message",
			log: func(l *slog.Logger) {
				l.Info("Catalog loaded", slog.String("type", "feed"), slog.Duration("took", 2*time.Second))
			},
			contains: []string{"[FEED]", "Catalog loaded (took 2s)"},
		},
		{
			name: "groups prefix keys",
			log: func(l *slog.Logger) {
				l.WithGroup("req").Info("Handled", slog.Int("status", 200))
			},
			contains: []string{"[SYS]", "req.status=200"},
		},
		{
			name: "type from WithAttrs",
			log: func(l *slog.Logger) {
				l.With(slog.String("type", "http")).Warn("Slow request")
			},
			contains: []string{"WARN", "[HTTP]", "Slow request"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newTestLogger(slog.LevelDebug)
			tt.log(l)
			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
			assert.True(t, strings.HasSuffix(out, "\n"))
		})
	}
}

func TestCustomHandler_Level(t *testing.T) {
	l, buf := newTestLogger(slog.LevelInfo)

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestGlobalHelpers(t *testing.T) {
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(NewHandlerWithWriter("test", slog.LevelDebug, buf)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	LogShop("purchase", "ash", time.Millisecond, nil, slog.String("pack", "standard"))
	assert.Contains(t, buf.String(), "[SHOP]")
	assert.Contains(t, buf.String(), "account=ash")
	assert.Contains(t, buf.String(), "pack=standard")

	buf.Reset()
	LogQuery("SELECT 1", time.Millisecond, nil)
	assert.Contains(t, buf.String(), "[DB]")
	assert.Contains(t, buf.String(), "query=SELECT 1")

	buf.Reset()
	LogSystem("Started")
	assert.Contains(t, buf.String(), "[SYS]")

	buf.Reset()
	LogError("Failed", errors.New("nope"))
	assert.Contains(t, buf.String(), "[ERR]")
	assert.Contains(t, buf.String(), "nope")
}

func TestLogShop_Levels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
		excludes []string
	}{
		{name: "success", contains: []string{"INFO", "Shop operation completed"}},
		{
			name:     "insufficient funds is a warning",
			err:      fmt.Errorf("purchase: %w", domain.ErrInsufficientFunds),
			contains: []string{"WARN", "Shop operation rejected", "insufficient funds"},
			excludes: []string{"ERROR"},
		},
		{
			name:     "unknown account is a warning",
			err:      fmt.Errorf("account %q: %w", "misty", domain.ErrNotFound),
			contains: []string{"WARN", "not found"},
			excludes: []string{"ERROR"},
		},
		{
			name:     "invalid input is a warning",
			err:      domain.ErrValidation,
			contains: []string{"WARN"},
			excludes: []string{"ERROR"},
		},
		{
			name:     "small catalog is an error",
			err:      fmt.Errorf("open: %w", domain.ErrInsufficientCatalog),
			contains: []string{"ERROR", "Shop operation failed", "insufficient catalog"},
		},
		{
			name:     "storage failure is an error",
			err:      errors.New("connection reset"),
			contains: []string{"ERROR", "Shop operation failed", "connection reset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			prev := slog.Default()
			slog.SetDefault(slog.New(NewHandlerWithWriter("test", slog.LevelDebug, buf)))
			t.Cleanup(func() { slog.SetDefault(prev) })

			LogShop("purchase", "ash", time.Millisecond, tt.err)
			out := buf.String()
			assert.Contains(t, out, "[SHOP]")
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}
