package catalog

import "github.com/ellavondegurechaff/holopack/internal/domain/rarity"

// Card is a catalog entry. Cards are never mutated after the catalog that
// holds them is built.
type Card struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Number      string    `json:"number"`
	Type        string    `json:"type"`
	Rarity      string    `json:"rarity"`
	Set         string    `json:"set"`
	Image       string    `json:"image"`
	Description string    `json:"description,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	Abilities   []Ability `json:"abilities,omitempty"`
}

// Ability damage is text because feeds mix plain numbers with forms like "60+".
type Ability struct {
	Name        string `json:"name"`
	Damage      string `json:"damage,omitempty"`
	Description string `json:"description,omitempty"`
}

type Pack struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Price        int64         `json:"price"`
	Image        string        `json:"image"`
	CardsPerPack int           `json:"cardsPerPack"`
	Distribution []rarity.Tier `json:"-"`
}

// Slots renders the distribution as labels for API consumers.
func (p Pack) Slots() []string {
	out := make([]string, len(p.Distribution))
	for i, t := range p.Distribution {
		out[i] = t.String()
	}
	return out
}
