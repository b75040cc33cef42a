package catalog

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/rarity"
)

func TestNew_NormalizesAndDedupes(t *testing.T) {
	cat := New([]Card{
		{ID: "a", Name: "Alpha"},
		{ID: "", Name: "Nameless"},
		{ID: "b", Name: "Beta", Type: "Fire", Rarity: "Rare", Set: "Jungle", Image: "https://img/b.png"},
		{ID: "a", Name: "Alpha again"},
	})

	if cat.Len() != 2 {
		t.Fatalf("Catalog.Len() = %d, want 2", cat.Len())
	}

	a, err := cat.Get("a")
	if err != nil {
		t.Fatalf("Catalog.Get() error = %v", err)
	}
	want := Card{
		ID:     "a",
		Name:   "Alpha",
		Type:   config.DefaultCardType,
		Rarity: config.DefaultRarity,
		Set:    config.DefaultSetName,
		Image:  config.PlaceholderImage,
	}
	if !reflect.DeepEqual(a, want) {
		t.Errorf("Catalog.Get() got = %+v, want %+v", a, want)
	}

	b, _ := cat.Get("b")
	if b.Type != "Fire" || b.Set != "Jungle" || b.Image != "https://img/b.png" {
		t.Errorf("Catalog.Get() overwrote present fields: %+v", b)
	}
}

func TestCatalog_GetMissing(t *testing.T) {
	cat := New(SeedCards())
	_, err := cat.Get("missingno")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Catalog.Get() error = %v, want ErrNotFound", err)
	}
}

func TestCatalog_AllIsACopy(t *testing.T) {
	cat := New(SeedCards())
	all := cat.All()
	all[0].Name = "Changed"
	if got, _ := cat.Get(all[0].ID); got.Name == "Changed" {
		t.Error("Catalog.All() leaked internal storage")
	}
}

func TestCatalog_Search(t *testing.T) {
	cat := New(SeedCards())

	tests := []struct {
		name  string
		query string
		limit int
		want  string
		count int
	}{
		{name: "exact", query: "Pikachu", limit: 5, want: "pikachu"},
		{name: "fuzzy", query: "chrzd", limit: 5, want: "charizard"},
		{name: "empty", query: "  ", limit: 5, count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cat.Search(tt.query, tt.limit)
			if tt.want == "" {
				if len(got) != tt.count {
					t.Errorf("Catalog.Search() len = %d, want %d", len(got), tt.count)
				}
				return
			}
			if len(got) == 0 || got[0].ID != tt.want {
				t.Errorf("Catalog.Search() got = %v, want first %q", got, tt.want)
			}
		})
	}
}

func TestNewPackCatalog(t *testing.T) {
	pc, err := NewPackCatalog([]Pack{
		{ID: "premium", Name: "Premium Pack", Price: 1000, CardsPerPack: 5},
		{ID: "tiny", Name: "Tiny", Price: 10, CardsPerPack: 3},
		{ID: "custom", Name: "Custom", Price: 10, CardsPerPack: 2, Distribution: []rarity.Tier{rarity.SecretRare, rarity.SecretRare}},
	})
	if err != nil {
		t.Fatalf("NewPackCatalog() error = %v", err)
	}

	premium, _ := pc.Get("premium")
	if !reflect.DeepEqual(premium.Slots(), []string{"Common", "Common", "Uncommon", "Rare Holo", "Ultra Rare"}) {
		t.Errorf("premium slots = %v", premium.Slots())
	}
	tiny, _ := pc.Get("tiny")
	if !reflect.DeepEqual(tiny.Distribution, []rarity.Tier{rarity.Common, rarity.Uncommon, rarity.Rare}) {
		t.Errorf("tiny distribution = %v", tiny.Distribution)
	}
	if got := pc.Resolver().Resolve("custom", 2); !reflect.DeepEqual(got, []rarity.Tier{rarity.SecretRare, rarity.SecretRare}) {
		t.Errorf("custom resolve = %v", got)
	}
	if _, err := pc.Get("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("PackCatalog.Get() error = %v, want ErrNotFound", err)
	}
}

func TestNewPackCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		packs []Pack
	}{
		{name: "zero price", packs: []Pack{{ID: "x", Price: 0, CardsPerPack: 1}}},
		{name: "no cards", packs: []Pack{{ID: "x", Price: 1, CardsPerPack: 0}}},
		{name: "no id", packs: []Pack{{Price: 1, CardsPerPack: 1}}},
		{name: "slot mismatch", packs: []Pack{{ID: "x", Price: 1, CardsPerPack: 2, Distribution: []rarity.Tier{rarity.Rare}}}},
		{name: "duplicate", packs: []Pack{{ID: "x", Price: 1, CardsPerPack: 1}, {ID: "x", Price: 1, CardsPerPack: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPackCatalog(tt.packs); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("NewPackCatalog() error = %v, want ErrValidation", err)
			}
		})
	}
}
