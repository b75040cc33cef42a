package rarity

import (
	"fmt"
	"strings"
)

// DefaultSequences are the built-in slot layouts for the stock packs.
var DefaultSequences = map[string][]Tier{
	"standard": {Common, Common, Common, Uncommon, Rare},
	"premium":  {Common, Common, Uncommon, RareHolo, UltraRare},
	"cosmic":   {Common, Uncommon, Rare, RareHolo, SecretRare},
}

// Resolver maps a pack id to the ordered tier awarded to each slot.
// It holds no randomness; the same pack always yields the same layout.
type Resolver struct {
	sequences map[string][]Tier
}

// NewResolver copies sequences so later changes by the caller are not seen.
// A nil map falls back to DefaultSequences.
func NewResolver(sequences map[string][]Tier) *Resolver {
	if sequences == nil {
		sequences = DefaultSequences
	}
	r := &Resolver{sequences: make(map[string][]Tier, len(sequences))}
	for id, seq := range sequences {
		r.sequences[id] = append([]Tier(nil), seq...)
	}
	return r
}

// Resolve returns exactly count tiers for packID. Known packs whose layout
// matches count get that layout; everything else gets DefaultRule(count).
func (r *Resolver) Resolve(packID string, count int) []Tier {
	if count <= 0 {
		return nil
	}
	if seq, ok := r.sequences[packID]; ok && len(seq) == count {
		return append([]Tier(nil), seq...)
	}
	return DefaultRule(count)
}

// DefaultRule is majority Common, then one Uncommon, then one Rare in the
// last slot. Packs too small to hold all three drop the Rare first.
func DefaultRule(count int) []Tier {
	if count <= 0 {
		return nil
	}
	tiers := make([]Tier, count)
	for i := range tiers {
		tiers[i] = Common
	}
	switch {
	case count >= 3:
		tiers[count-2] = Uncommon
		tiers[count-1] = Rare
	case count == 2:
		tiers[1] = Uncommon
	}
	return tiers
}

// ParseSequence converts configured labels to tiers, rejecting unknown ones.
func ParseSequence(labels []string) ([]Tier, error) {
	tiers := make([]Tier, 0, len(labels))
	for i, l := range labels {
		t := Parse(l)
		if t == Unknown {
			return nil, fmt.Errorf("slot %d: unknown rarity %q", i, strings.TrimSpace(l))
		}
		tiers = append(tiers, t)
	}
	return tiers, nil
}
