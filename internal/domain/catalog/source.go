package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

//go:generate mockgen -source=source.go -destination=mock/source.go -package=mock

// Feed fetches the full card list from an upstream provider.
type Feed interface {
	FetchCards(ctx context.Context) ([]Card, error)
}

// SnapshotStore keeps the last catalog fetched successfully so a later boot
// can serve it when the feed is unreachable.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context) ([]Card, error)
	SaveSnapshot(ctx context.Context, cards []Card) error
}

type Origin string

const (
	OriginFeed  Origin = "feed"
	OriginCache Origin = "cache"
	OriginSeed  Origin = "seed"
	OriginEmpty Origin = "empty"
)

var errEmptyFeed = errors.New("feed returned no cards")

type Info struct {
	Origin   Origin    `json:"origin"`
	Size     int       `json:"size"`
	LoadedAt time.Time `json:"loadedAt"`
}

type snapshot struct {
	catalog *Catalog
	info    Info
}

// Source owns the current catalog snapshot. Readers call Current and keep
// using the snapshot they got even if a refresh swaps in a newer one.
type Source struct {
	feed    Feed
	cache   SnapshotStore
	seed    bool
	onLoad  func(Info, error)
	now     func() time.Time
	current atomic.Pointer[snapshot]
	group   singleflight.Group
}

type SourceOption func(*Source)

func WithSnapshotStore(store SnapshotStore) SourceOption {
	return func(s *Source) { s.cache = store }
}

// WithSeed enables the built-in demo cards as the last fallback.
func WithSeed(enabled bool) SourceOption {
	return func(s *Source) { s.seed = enabled }
}

// WithLoadHook is called after every load attempt, used for metrics.
func WithLoadHook(fn func(Info, error)) SourceOption {
	return func(s *Source) { s.onLoad = fn }
}

func WithClock(now func() time.Time) SourceOption {
	return func(s *Source) { s.now = now }
}

// NewSource accepts a nil feed for offline operation.
func NewSource(feed Feed, opts ...SourceOption) *Source {
	s := &Source{feed: feed, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&snapshot{catalog: New(nil), info: Info{Origin: OriginEmpty}})
	return s
}

// NewStaticSource serves a fixed set of cards, mostly for tests.
func NewStaticSource(cards []Card) *Source {
	s := NewSource(nil)
	cat := New(cards)
	s.current.Store(&snapshot{catalog: cat, info: Info{Origin: OriginSeed, Size: cat.Len(), LoadedAt: time.Now()}})
	return s
}

func (s *Source) Current() *Catalog {
	return s.current.Load().catalog
}

func (s *Source) Info() Info {
	return s.current.Load().info
}

// Refresh reloads the catalog. Concurrent callers share one load. The
// returned error reports a feed failure; the catalog stays usable either way.
func (s *Source) Refresh(ctx context.Context) (Info, error) {
	type result struct {
		info Info
		err  error
	}
	v, _, _ := s.group.Do("refresh", func() (any, error) {
		info, err := s.load(ctx)
		return result{info: info, err: err}, nil
	})
	r := v.(result)
	return r.info, r.err
}

func (s *Source) load(ctx context.Context) (Info, error) {
	var feedErr error

	if s.feed != nil {
		cards, err := s.feed.FetchCards(ctx)
		if err == nil && len(cards) == 0 {
			err = errEmptyFeed
		}
		if err == nil {
			info := s.swap(New(cards), OriginFeed)
			if s.cache != nil {
				if err := s.cache.SaveSnapshot(ctx, s.Current().All()); err != nil {
					slog.Warn("Failed to save catalog snapshot",
						slog.String("type", "feed"),
						slog.Any("error", err))
				}
			}
			s.report(info, nil)
			return info, nil
		}
		feedErr = fmt.Errorf("fetch catalog: %w", err)
		slog.Warn("Catalog feed unavailable",
			slog.String("type", "feed"),
			slog.Any("error", err))
	}

	// A previous good load stays in place; stale beats empty.
	if prev := s.current.Load(); prev.catalog.Len() > 0 {
		s.report(prev.info, feedErr)
		return prev.info, feedErr
	}

	if s.cache != nil {
		cards, err := s.cache.LoadSnapshot(ctx)
		switch {
		case err != nil:
			slog.Warn("Failed to load catalog snapshot",
				slog.String("type", "feed"),
				slog.Any("error", err))
		case len(cards) > 0:
			info := s.swap(New(cards), OriginCache)
			s.report(info, feedErr)
			return info, feedErr
		}
	}

	if s.seed {
		info := s.swap(New(SeedCards()), OriginSeed)
		s.report(info, feedErr)
		return info, feedErr
	}

	info := s.swap(New(nil), OriginEmpty)
	s.report(info, feedErr)
	return info, feedErr
}

func (s *Source) swap(cat *Catalog, origin Origin) Info {
	info := Info{Origin: origin, Size: cat.Len(), LoadedAt: s.now()}
	s.current.Store(&snapshot{catalog: cat, info: info})
	slog.Info("Catalog loaded",
		slog.String("type", "feed"),
		slog.String("origin", string(origin)),
		slog.Int("cards", info.Size))
	return info
}

func (s *Source) report(info Info, err error) {
	if s.onLoad != nil {
		s.onLoad(info, err)
	}
}
