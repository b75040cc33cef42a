package rarity

import (
	"strings"
)

// Tier is an ordered rarity level. Higher is rarer; Unknown sorts below Common.
type Tier int

const (
	Unknown Tier = iota
	Common
	Uncommon
	Rare
	RareHolo
	UltraRare
	SecretRare
)

var labels = map[Tier]string{
	Common:     "Common",
	Uncommon:   "Uncommon",
	Rare:       "Rare",
	RareHolo:   "Rare Holo",
	UltraRare:  "Ultra Rare",
	SecretRare: "Secret Rare",
}

// aliases are keyed on the lowercased label with all whitespace removed.
var aliases = map[string]Tier{
	"common":          Common,
	"uncommon":        Uncommon,
	"rare":            Rare,
	"rareholo":        RareHolo,
	"holorare":        RareHolo,
	"holographicrare": RareHolo,
	"ultrarare":       UltraRare,
	"secretrare":      SecretRare,
}

func (t Tier) String() string {
	if l, ok := labels[t]; ok {
		return l
	}
	return "Unknown"
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	*t = Parse(string(text))
	return nil
}

// Weight is the sort key used by the collection view.
func (t Tier) Weight() int {
	return int(t)
}

// Parse maps a free-form label to a Tier. Unrecognized labels yield Unknown.
func Parse(label string) Tier {
	key := strings.ToLower(strings.Join(strings.Fields(label), ""))
	if t, ok := aliases[key]; ok {
		return t
	}
	return Unknown
}

// Weight of a raw label, 0 for unknown labels.
func Weight(label string) int {
	return Parse(label).Weight()
}

// Label normalizes known labels and passes unknown ones through untouched so
// feed-specific rarities survive display.
func Label(label string) string {
	if t := Parse(label); t != Unknown {
		return t.String()
	}
	return label
}
