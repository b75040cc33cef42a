package collection

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/domain/rarity"
)

type CatalogSource interface {
	Current() *catalog.Catalog
}

type cachedStats struct {
	stats       Stats
	catalogSize int
}

type Service struct {
	repository     Repository
	source         CatalogSource
	completionBase int
	now            func() time.Time

	cache *lru.Cache
	mu    sync.Mutex
	// inflight counts Aggregate reads per account. dirty marks accounts
	// written while a read was in flight; both entries go once reads drain.
	inflight map[string]int
	dirty    map[string]bool
}

type Option func(*Service)

// WithCompletionBase sets the minimum denominator for completion percentage.
func WithCompletionBase(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.completionBase = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repository Repository, source CatalogSource, opts ...Option) *Service {
	cache, _ := lru.New(config.StatsCacheSize)
	s := &Service{
		repository:     repository,
		source:         source,
		completionBase: config.DefaultCollectionTarget,
		now:            time.Now,
		cache:          cache,
		inflight:       make(map[string]int),
		dirty:          make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordAcquisition appends one entry. An empty rarity falls back to the
// card's base rarity.
func (s *Service) RecordAcquisition(ctx context.Context, accountID, cardID, rarityLabel string) (Entry, error) {
	entries, err := s.RecordPulls(ctx, accountID, []Acquisition{{CardID: cardID, Rarity: rarityLabel}})
	if err != nil {
		return Entry{}, err
	}
	return entries[0], nil
}

// RecordPulls validates every acquisition before appending any, so a bad
// card reference leaves the ledger untouched.
func (s *Service) RecordPulls(ctx context.Context, accountID string, acquisitions []Acquisition) ([]Entry, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("account id is required: %w", domain.ErrValidation)
	}
	if len(acquisitions) == 0 {
		return nil, fmt.Errorf("no cards to record: %w", domain.ErrValidation)
	}

	cat := s.source.Current()
	now := s.now()
	entries := make([]Entry, 0, len(acquisitions))
	for _, a := range acquisitions {
		card, err := cat.Get(a.CardID)
		if err != nil {
			return nil, fmt.Errorf("record acquisition: %w", err)
		}
		label := rarity.Label(strings.TrimSpace(a.Rarity))
		if label == "" {
			label = card.Rarity
		}
		entries = append(entries, Entry{
			AccountID:  accountID,
			CardID:     card.ID,
			Rarity:     label,
			AcquiredAt: now,
		})
	}

	s.invalidate(accountID)
	stored, err := s.repository.Append(ctx, entries)
	s.invalidate(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to append %d entries: %w", len(entries), err)
	}
	return stored, nil
}

func (s *Service) GetOwnedCount(ctx context.Context, accountID, cardID string) (int, error) {
	n, err := s.repository.CountByCard(ctx, accountID, cardID)
	if err != nil {
		return 0, fmt.Errorf("failed to count owned copies: %w", err)
	}
	return n, nil
}

// Entries returns the raw ledger for an account.
func (s *Service) Entries(ctx context.Context, accountID string) ([]Entry, error) {
	entries, err := s.repository.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	return entries, nil
}

// Aggregate counts raw ledger rows, including cards the current catalog no
// longer lists.
func (s *Service) Aggregate(ctx context.Context, accountID string) (Stats, error) {
	catalogSize := s.source.Current().Len()

	s.mu.Lock()
	if v, ok := s.cache.Get(accountID); ok {
		if c := v.(cachedStats); c.catalogSize == catalogSize {
			s.mu.Unlock()
			return c.stats, nil
		}
	}
	s.inflight[accountID]++
	s.mu.Unlock()

	entries, err := s.repository.ListByAccount(ctx, accountID)
	if err != nil {
		s.finishRead(accountID, nil)
		return Stats{}, fmt.Errorf("failed to fetch entries: %w", err)
	}

	unique := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		unique[e.CardID] = struct{}{}
	}
	stats := Stats{
		TotalCards:  len(entries),
		UniqueCards: len(unique),
		Completion:  completion(len(unique), max(s.completionBase, catalogSize)),
	}

	s.finishRead(accountID, &cachedStats{stats: stats, catalogSize: catalogSize})
	return stats, nil
}

// finishRead caches c unless the account was written during the read.
func (s *Service) finishRead(accountID string, c *cachedStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c != nil && !s.dirty[accountID] {
		s.cache.Add(accountID, *c)
	}
	if s.inflight[accountID]--; s.inflight[accountID] <= 0 {
		delete(s.inflight, accountID)
		delete(s.dirty, accountID)
	}
}

// View builds the unique-card view in first-acquisition order. Entries whose
// card left the catalog are skipped.
func (s *Service) View(ctx context.Context, accountID string) ([]OwnedCard, error) {
	entries, err := s.repository.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}

	cat := s.source.Current()
	index := make(map[string]int)
	view := make([]OwnedCard, 0)
	for _, e := range entries {
		i, ok := index[e.CardID]
		if !ok {
			card, err := cat.Get(e.CardID)
			if err != nil {
				continue
			}
			index[e.CardID] = len(view)
			view = append(view, OwnedCard{
				Card:       card,
				BaseRarity: card.Rarity,
				Owned:      1,
			})
			i = len(view) - 1
			view[i].Rarity = e.Rarity
			view[i].LastAcquired = e.AcquiredAt
			view[i].Favorite = e.Favorite
			continue
		}

		oc := &view[i]
		oc.Owned++
		if rarity.Weight(e.Rarity) > rarity.Weight(oc.Rarity) {
			oc.Rarity = e.Rarity
		}
		if e.AcquiredAt.After(oc.LastAcquired) {
			oc.LastAcquired = e.AcquiredAt
		}
		oc.Favorite = oc.Favorite || e.Favorite
	}
	return view, nil
}

// Query filters the unique-card view and then sorts the survivors.
func (s *Service) Query(ctx context.Context, accountID string, q Query) ([]OwnedCard, error) {
	view, err := s.View(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return Sort(Filter(view, q.Type, q.Search), q.SortBy), nil
}

func (s *Service) SetFavorite(ctx context.Context, accountID string, entryID int64, favorite bool) (Entry, error) {
	e, err := s.repository.SetFavorite(ctx, accountID, entryID, favorite)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to update favorite: %w", err)
	}
	return e, nil
}

func (s *Service) invalidate(accountID string) {
	s.mu.Lock()
	if s.inflight[accountID] > 0 {
		s.dirty[accountID] = true
	}
	s.cache.Remove(accountID)
	s.mu.Unlock()
}

func completion(unique, denominator int) int {
	if denominator <= 0 {
		return 0
	}
	return int(math.Round(float64(unique) / float64(denominator) * 100))
}
