package packs

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/domain/rarity"
)

func testCards(n int) []catalog.Card {
	cards := make([]catalog.Card, n)
	for i := range cards {
		cards[i] = catalog.Card{
			ID:     fmt.Sprintf("card-%02d", i),
			Name:   fmt.Sprintf("Card %02d", i),
			Number: fmt.Sprintf("%03d", i),
			Rarity: "Common",
		}
	}
	return cards
}

func testOpener(t *testing.T, catalogSize int, seed uint64) *Opener {
	t.Helper()
	pc, err := catalog.NewPackCatalog([]catalog.Pack{
		{ID: "standard", Name: "Standard Pack", Price: 500, CardsPerPack: 5},
		{ID: "premium", Name: "Premium Pack", Price: 1000, CardsPerPack: 5},
		{ID: "single", Name: "Single", Price: 50, CardsPerPack: 1},
	})
	if err != nil {
		t.Fatalf("NewPackCatalog() error = %v", err)
	}
	src := catalog.NewStaticSource(testCards(catalogSize))
	return NewOpener(pc, src, WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))))
}

func TestOpener_Open(t *testing.T) {
	tests := []struct {
		name        string
		catalogSize int
		packID      string
		wantLen     int
		wantErr     error
	}{
		{name: "premium pack", catalogSize: 40, packID: "premium", wantLen: 5},
		{name: "exactly enough cards", catalogSize: 5, packID: "premium", wantLen: 5},
		{name: "single card pack", catalogSize: 1, packID: "single", wantLen: 1},
		{name: "catalog too small", catalogSize: 4, packID: "premium", wantErr: domain.ErrInsufficientCatalog},
		{name: "unknown pack", catalogSize: 40, packID: "mystery", wantErr: ErrPackNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOpener(t, tt.catalogSize, 42)
			got, err := o.Open(tt.packID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Opener.Open() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Opener.Open() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("Opener.Open() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestOpener_UnknownPackIsNotFound(t *testing.T) {
	o := testOpener(t, 10, 1)
	if _, err := o.Open("mystery"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Opener.Open() error = %v, want ErrNotFound", err)
	}
}

func TestOpener_NoDuplicatesAcrossManyDraws(t *testing.T) {
	o := testOpener(t, 12, 7)
	for i := 0; i < 500; i++ {
		pulls, err := o.Open("standard")
		if err != nil {
			t.Fatalf("Opener.Open() error = %v", err)
		}
		seen := make(map[string]bool, len(pulls))
		for _, p := range pulls {
			if seen[p.ID] {
				t.Fatalf("draw %d: duplicate card %s in %v", i, p.ID, pulls)
			}
			seen[p.ID] = true
		}
	}
}

func TestOpener_StampsSlotRarity(t *testing.T) {
	o := testOpener(t, 5, 3)
	pulls, err := o.Open("premium")
	if err != nil {
		t.Fatalf("Opener.Open() error = %v", err)
	}

	want := []rarity.Tier{rarity.Common, rarity.Common, rarity.Uncommon, rarity.RareHolo, rarity.UltraRare}
	seen := make(map[string]bool)
	for i, p := range pulls {
		if p.Tier != want[i] {
			t.Errorf("slot %d tier = %v, want %v", i, p.Tier, want[i])
		}
		if p.Rarity != want[i].String() {
			t.Errorf("slot %d rarity label = %q, want %q", i, p.Rarity, want[i].String())
		}
		if p.BaseRarity != "Common" {
			t.Errorf("slot %d base rarity = %q, want Common", i, p.BaseRarity)
		}
		seen[p.ID] = true
	}
	// a five-card catalog and a five-card pack must return every card once
	if len(seen) != 5 {
		t.Errorf("Opener.Open() distinct cards = %d, want 5", len(seen))
	}
}

func TestOpener_DoesNotDepleteCatalog(t *testing.T) {
	o := testOpener(t, 5, 11)
	for i := 0; i < 3; i++ {
		if _, err := o.Open("premium"); err != nil {
			t.Fatalf("open %d: error = %v", i, err)
		}
	}
	if got := o.source.Current().Len(); got != 5 {
		t.Errorf("catalog size after opens = %d, want 5", got)
	}
}

func TestOpener_DrawIsRoughlyUniform(t *testing.T) {
	const (
		size   = 10
		rounds = 20000
	)
	o := testOpener(t, size, 99)

	counts := make(map[string]int, size)
	for i := 0; i < rounds; i++ {
		pulls, err := o.Open("single")
		if err != nil {
			t.Fatalf("Opener.Open() error = %v", err)
		}
		counts[pulls[0].ID]++
	}

	expected := rounds / size
	for id, c := range counts {
		if c < expected*8/10 || c > expected*12/10 {
			t.Errorf("card %s drawn %d times, expected about %d", id, c, expected)
		}
	}
	if len(counts) != size {
		t.Errorf("drew %d distinct cards, want %d", len(counts), size)
	}
}
