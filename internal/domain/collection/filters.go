package collection

import (
	"sort"
	"strings"

	"github.com/ellavondegurechaff/holopack/internal/domain/rarity"
)

const (
	SortName   = "name"
	SortNumber = "number"
	SortRarity = "rarity"
	SortDate   = "date"
)

// Filter keeps cards matching the type (exact, case-insensitive; "all" or
// empty matches everything) and the search text (substring of name, number
// or set). The input slice is not modified.
func Filter(cards []OwnedCard, cardType, search string) []OwnedCard {
	cardType = strings.TrimSpace(cardType)
	search = strings.ToLower(strings.TrimSpace(search))
	filterType := cardType != "" && !strings.EqualFold(cardType, "all")

	out := make([]OwnedCard, 0, len(cards))
	for _, c := range cards {
		if filterType && !strings.EqualFold(c.Type, cardType) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Number), search) &&
			!strings.Contains(strings.ToLower(c.Set), search) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Sort orders cards in place by key and returns them. Unknown keys keep the
// incoming order. Ties fall back to name, then id.
func Sort(cards []OwnedCard, by string) []OwnedCard {
	var primary func(a, b OwnedCard) int
	switch strings.ToLower(strings.TrimSpace(by)) {
	case SortName:
		primary = func(a, b OwnedCard) int { return 0 }
	case SortNumber:
		primary = func(a, b OwnedCard) int { return strings.Compare(a.Number, b.Number) }
	case SortRarity:
		primary = func(a, b OwnedCard) int { return rarity.Weight(b.Rarity) - rarity.Weight(a.Rarity) }
	case SortDate:
		primary = func(a, b OwnedCard) int { return b.LastAcquired.Compare(a.LastAcquired) }
	default:
		return cards
	}

	sort.SliceStable(cards, func(i, j int) bool {
		if c := primary(cards[i], cards[j]); c != 0 {
			return c < 0
		}
		return byName(cards[i], cards[j]) < 0
	})
	return cards
}

func byName(a, b OwnedCard) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}
