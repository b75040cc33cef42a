package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
)

// ledger is an in-package Repository whose reads can run a hook before
// returning, to interleave a write with an in-flight Aggregate.
type ledger struct {
	mu      sync.Mutex
	entries []Entry
	onList  func()
	listErr error
}

func (l *ledger) Append(_ context.Context, entries []Entry) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(entries))
	for i, e := range entries {
		e.ID = int64(len(l.entries) + 1)
		l.entries = append(l.entries, e)
		out[i] = e
	}
	return out, nil
}

func (l *ledger) ListByAccount(_ context.Context, accountID string) ([]Entry, error) {
	l.mu.Lock()
	var out []Entry
	for _, e := range l.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	hook, err := l.onList, l.listErr
	l.onList = nil
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, err
}

func (l *ledger) CountByCard(context.Context, string, string) (int, error) {
	return 0, errors.New("not used")
}

func (l *ledger) SetFavorite(context.Context, string, int64, bool) (Entry, error) {
	return Entry{}, errors.New("not used")
}

func cacheTestCards() []catalog.Card {
	return []catalog.Card{
		{ID: "x", Name: "Pikachu", Rarity: "Common"},
		{ID: "y", Name: "Charizard", Rarity: "Rare Holo"},
	}
}

func TestAggregate_WriteDuringReadIsNotCached(t *testing.T) {
	ctx := context.Background()
	repo := &ledger{}
	s := NewService(repo, catalog.NewStaticSource(cacheTestCards()))

	_, err := s.RecordAcquisition(ctx, "ash", "x", "")
	require.NoError(t, err)

	repo.onList = func() {
		_, err := s.RecordAcquisition(ctx, "ash", "y", "")
		require.NoError(t, err)
	}
	stale, err := s.Aggregate(ctx, "ash")
	require.NoError(t, err)
	assert.Equal(t, 1, stale.TotalCards)

	fresh, err := s.Aggregate(ctx, "ash")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TotalCards)
	assert.Equal(t, 2, fresh.UniqueCards)

	assert.Empty(t, s.inflight)
	assert.Empty(t, s.dirty)
}

func TestAggregate_BookkeepingIsBounded(t *testing.T) {
	ctx := context.Background()
	repo := &ledger{}
	s := NewService(repo, catalog.NewStaticSource(cacheTestCards()))

	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("acct-%d", i)
		_, err := s.RecordAcquisition(ctx, id, "x", "")
		require.NoError(t, err)
		_, err = s.Aggregate(ctx, id)
		require.NoError(t, err)
	}

	repo.listErr = errors.New("read failed")
	_, err := s.Aggregate(ctx, "acct-unseen")
	require.Error(t, err)

	assert.Empty(t, s.inflight)
	assert.Empty(t, s.dirty)
}

func TestAggregate_CachesUntilWrite(t *testing.T) {
	ctx := context.Background()
	repo := &ledger{}
	s := NewService(repo, catalog.NewStaticSource(cacheTestCards()))

	_, err := s.RecordAcquisition(ctx, "ash", "x", "")
	require.NoError(t, err)

	_, err = s.Aggregate(ctx, "ash")
	require.NoError(t, err)

	// A cached result skips the repository entirely.
	repo.listErr = errors.New("read failed")
	stats, err := s.Aggregate(ctx, "ash")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCards)

	repo.listErr = nil
	_, err = s.RecordAcquisition(ctx, "ash", "y", "")
	require.NoError(t, err)

	stats, err = s.Aggregate(ctx, "ash")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCards)
}
