package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/collection"
)

// sequenceMask covers the low 22 bits of a snowflake below the timestamp.
const sequenceMask = 1<<22 - 1

type ownershipRepository struct {
	mu        sync.RWMutex
	entries   []collection.Entry
	byAccount map[string][]int
	byID      map[int64]int

	lastID int64
	seq    uint64
}

// NewOwnershipRepository returns an append-only in-process ledger. Entry ids
// are snowflakes, so they sort by acquisition time.
func NewOwnershipRepository() collection.Repository {
	return &ownershipRepository{
		byAccount: make(map[string][]int),
		byID:      make(map[int64]int),
	}
}

func (r *ownershipRepository) Append(_ context.Context, entries []collection.Entry) ([]collection.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]collection.Entry, len(entries))
	for i, e := range entries {
		if e.AccountID == "" || e.CardID == "" {
			return nil, fmt.Errorf("entry %d missing account or card: %w", i, domain.ErrValidation)
		}
		if e.AcquiredAt.IsZero() {
			e.AcquiredAt = time.Now()
		}
		stored[i] = e
	}

	for i := range stored {
		stored[i].ID = r.nextID(stored[i].AcquiredAt)
		pos := len(r.entries)
		r.entries = append(r.entries, stored[i])
		r.byAccount[stored[i].AccountID] = append(r.byAccount[stored[i].AccountID], pos)
		r.byID[stored[i].ID] = pos
	}
	return stored, nil
}

func (r *ownershipRepository) ListByAccount(_ context.Context, accountID string) ([]collection.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	positions := r.byAccount[accountID]
	out := make([]collection.Entry, len(positions))
	for i, pos := range positions {
		out[i] = r.entries[pos]
	}
	return out, nil
}

func (r *ownershipRepository) CountByCard(_ context.Context, accountID, cardID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, pos := range r.byAccount[accountID] {
		if r.entries[pos].CardID == cardID {
			n++
		}
	}
	return n, nil
}

func (r *ownershipRepository) SetFavorite(_ context.Context, accountID string, entryID int64, favorite bool) (collection.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, ok := r.byID[entryID]
	if !ok || r.entries[pos].AccountID != accountID {
		return collection.Entry{}, fmt.Errorf("entry %d: %w", entryID, domain.ErrNotFound)
	}
	r.entries[pos].Favorite = favorite
	return r.entries[pos], nil
}

// nextID builds a snowflake from the acquisition time and a rolling sequence,
// bumped past the previous id so ids stay strictly increasing.
func (r *ownershipRepository) nextID(at time.Time) int64 {
	r.seq++
	id := int64(uint64(snowflake.New(at)) | (r.seq & sequenceMask))
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return id
}
