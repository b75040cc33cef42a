package catalog

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain"
)

// Catalog is an immutable snapshot of card definitions. Refreshing the
// catalog builds a new snapshot rather than editing this one.
type Catalog struct {
	cards []Card
	index map[string]int
}

// New normalizes the cards, drops entries without an id and keeps the first
// occurrence of duplicated ids. Feed order is preserved.
func New(cards []Card) *Catalog {
	c := &Catalog{
		cards: make([]Card, 0, len(cards)),
		index: make(map[string]int, len(cards)),
	}
	for _, card := range cards {
		card = Normalize(card)
		if card.ID == "" {
			continue
		}
		if _, dup := c.index[card.ID]; dup {
			continue
		}
		c.index[card.ID] = len(c.cards)
		c.cards = append(c.cards, card)
	}
	return c
}

// Normalize fills the defaults used for incomplete feed records.
func Normalize(card Card) Card {
	card.ID = strings.TrimSpace(card.ID)
	if card.Image == "" {
		card.Image = config.PlaceholderImage
	}
	if card.Type == "" {
		card.Type = config.DefaultCardType
	}
	if card.Rarity == "" {
		card.Rarity = config.DefaultRarity
	}
	if card.Set == "" {
		card.Set = config.DefaultSetName
	}
	if card.Abilities != nil {
		card.Abilities = append([]Ability(nil), card.Abilities...)
	}
	return card
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.cards)
}

func (c *Catalog) Get(id string) (Card, error) {
	if c != nil {
		if i, ok := c.index[id]; ok {
			return c.cards[i], nil
		}
	}
	return Card{}, fmt.Errorf("card %q: %w", id, domain.ErrNotFound)
}

// All returns a copy, callers may reorder it freely.
func (c *Catalog) All() []Card {
	if c == nil {
		return nil
	}
	return append([]Card(nil), c.cards...)
}

// At returns the card at position i in feed order.
func (c *Catalog) At(i int) Card {
	return c.cards[i]
}

type searchSource []Card

func (s searchSource) String(i int) string { return s[i].Name }
func (s searchSource) Len() int            { return len(s) }

// Search ranks cards by fuzzy match on the name. An empty query returns nothing.
func (c *Catalog) Search(query string, limit int) []Card {
	query = strings.TrimSpace(query)
	if c == nil || query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, searchSource(c.cards))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]Card, 0, len(matches))
	for _, m := range matches {
		results = append(results, c.cards[m.Index])
	}
	return results
}
