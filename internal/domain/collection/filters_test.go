package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
)

func owned(id, name, number, cardType, rarity, set string, acquired int) OwnedCard {
	return OwnedCard{
		Card: catalog.Card{
			ID:     id,
			Name:   name,
			Number: number,
			Type:   cardType,
			Rarity: rarity,
			Set:    set,
		},
		Owned:        1,
		LastAcquired: time.Date(2024, 1, acquired, 0, 0, 0, 0, time.UTC),
	}
}

func fixture() []OwnedCard {
	return []OwnedCard{
		owned("a", "pikachu", "58", "Lightning", "Common", "Base Set", 3),
		owned("b", "Charizard", "4", "Fire", "Rare Holo", "Base Set", 1),
		owned("c", "Raichu", "14", "Lightning", "Rare", "Fossil", 2),
		owned("d", "Charmander", "46", "Fire", "Common", "Base Set", 4),
	}
}

func ids(cards []OwnedCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		cardType string
		search   string
		want     []string
	}{
		{name: "no filters", want: []string{"a", "b", "c", "d"}},
		{name: "all type", cardType: "all", want: []string{"a", "b", "c", "d"}},
		{name: "type ignores case", cardType: "fire", want: []string{"b", "d"}},
		{name: "type is exact", cardType: "Fir", want: []string{}},
		{name: "search name", search: "CHAR", want: []string{"b", "d"}},
		{name: "search number", search: "14", want: []string{"c"}},
		{name: "search set", search: "fossil", want: []string{"c"}},
		{name: "type and search", cardType: "Lightning", search: "base", want: []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(fixture(), tt.cardType, tt.search)))
		})
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	in := fixture()
	_ = Filter(in, "Fire", "")
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(in))
}

func TestSort(t *testing.T) {
	tests := []struct {
		by   string
		want []string
	}{
		{by: SortName, want: []string{"b", "d", "a", "c"}},
		{by: SortNumber, want: []string{"c", "b", "d", "a"}},
		{by: SortRarity, want: []string{"b", "c", "d", "a"}},
		{by: SortDate, want: []string{"d", "a", "c", "b"}},
		{by: "unknown", want: []string{"a", "b", "c", "d"}},
		{by: "", want: []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.by, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(fixture(), tt.by)))
		})
	}
}

func TestFilterThenSort(t *testing.T) {
	got := Sort(Filter(fixture(), "Fire", "char"), SortRarity)
	assert.Equal(t, []string{"b", "d"}, ids(got))

	got = Sort(Filter(fixture(), "all", ""), SortName)
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(got))
}
