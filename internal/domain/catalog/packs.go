package catalog

import (
	"fmt"

	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/rarity"
)

// PackCatalog holds the pack definitions offered by the shop.
type PackCatalog struct {
	packs    []Pack
	index    map[string]int
	resolver *rarity.Resolver
}

func NewPackCatalog(packs []Pack) (*PackCatalog, error) {
	pc := &PackCatalog{
		packs: make([]Pack, 0, len(packs)),
		index: make(map[string]int, len(packs)),
	}
	sequences := make(map[string][]rarity.Tier, len(packs))

	for _, p := range packs {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("pack without id: %w", domain.ErrValidation)
		case p.Price <= 0:
			return nil, fmt.Errorf("pack %q: price must be positive: %w", p.ID, domain.ErrValidation)
		case p.CardsPerPack < 1:
			return nil, fmt.Errorf("pack %q: cards per pack must be at least 1: %w", p.ID, domain.ErrValidation)
		case len(p.Distribution) > 0 && len(p.Distribution) != p.CardsPerPack:
			return nil, fmt.Errorf("pack %q: distribution has %d slots for %d cards: %w",
				p.ID, len(p.Distribution), p.CardsPerPack, domain.ErrValidation)
		}
		if _, dup := pc.index[p.ID]; dup {
			return nil, fmt.Errorf("pack %q defined twice: %w", p.ID, domain.ErrValidation)
		}

		if len(p.Distribution) == 0 {
			if seq, ok := rarity.DefaultSequences[p.ID]; ok && len(seq) == p.CardsPerPack {
				p.Distribution = seq
			}
		}
		p.Distribution = append([]rarity.Tier(nil), p.Distribution...)
		if len(p.Distribution) > 0 {
			sequences[p.ID] = p.Distribution
		}

		pc.index[p.ID] = len(pc.packs)
		pc.packs = append(pc.packs, p)
	}

	pc.resolver = rarity.NewResolver(sequences)
	for i := range pc.packs {
		if len(pc.packs[i].Distribution) == 0 {
			pc.packs[i].Distribution = pc.resolver.Resolve(pc.packs[i].ID, pc.packs[i].CardsPerPack)
		}
	}
	return pc, nil
}

func (pc *PackCatalog) Get(id string) (Pack, error) {
	if i, ok := pc.index[id]; ok {
		return pc.packs[i], nil
	}
	return Pack{}, fmt.Errorf("pack %q: %w", id, domain.ErrNotFound)
}

func (pc *PackCatalog) All() []Pack {
	return append([]Pack(nil), pc.packs...)
}

// Resolver is built from the configured distributions.
func (pc *PackCatalog) Resolver() *rarity.Resolver {
	return pc.resolver
}
