package packs

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/domain/rarity"
)

var ErrPackNotFound = fmt.Errorf("unknown pack: %w", domain.ErrNotFound)

// Pull is one revealed card. The embedded card carries the rarity awarded by
// the pack slot; BaseRarity keeps the catalog's own label.
type Pull struct {
	catalog.Card
	BaseRarity string      `json:"baseRarity"`
	Tier       rarity.Tier `json:"-"`
}

type CatalogSource interface {
	Current() *catalog.Catalog
}

// Opener draws cards for a pack. It has no side effects on accounts or the
// ledger, so opening the same pack twice is just two independent draws.
type Opener struct {
	packs  *catalog.PackCatalog
	source CatalogSource

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Opener)

// WithRand injects the random source, tests pass a seeded PCG.
func WithRand(rng *rand.Rand) Option {
	return func(o *Opener) { o.rng = rng }
}

func NewOpener(packs *catalog.PackCatalog, source CatalogSource, opts ...Option) *Opener {
	o := &Opener{
		packs:  packs,
		source: source,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

// Open returns CardsPerPack distinct cards, slot i stamped with the i-th tier
// from the pack's distribution.
func (o *Opener) Open(packID string) ([]Pull, error) {
	pack, err := o.packs.Get(packID)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", packID, ErrPackNotFound)
	}

	cat := o.source.Current()
	n, k := cat.Len(), pack.CardsPerPack
	if n < k {
		return nil, fmt.Errorf("pack %q needs %d cards, catalog has %d: %w",
			packID, k, n, domain.ErrInsufficientCatalog)
	}

	tiers := o.packs.Resolver().Resolve(pack.ID, k)
	picks := o.draw(n, k)

	pulls := make([]Pull, k)
	for i, idx := range picks {
		card := cat.At(idx)
		pulls[i] = Pull{
			Card:       card,
			BaseRarity: card.Rarity,
			Tier:       tiers[i],
		}
		pulls[i].Card.Rarity = tiers[i].String()
	}
	return pulls, nil
}

// draw runs the first k steps of a Fisher-Yates shuffle over [0, n), giving
// k distinct indices with every subset equally likely.
func (o *Opener) draw(n, k int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	for i := 0; i < k; i++ {
		j := i + o.rng.IntN(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}
