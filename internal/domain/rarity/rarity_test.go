package rarity

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		label string
		want  Tier
	}{
		{"Common", Common},
		{"uncommon", Uncommon},
		{" Rare ", Rare},
		{"Rare Holo", RareHolo},
		{"RareHolo", RareHolo},
		{"Holographic Rare", RareHolo},
		{"Ultra Rare", UltraRare},
		{"SecretRare", SecretRare},
		{"Illustration rare", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := Parse(tt.label); got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestWeight(t *testing.T) {
	want := map[string]int{
		"Common":           1,
		"Uncommon":         2,
		"Rare":             3,
		"Holographic Rare": 4,
		"Ultra Rare":       5,
		"Secret Rare":      6,
		"Amazing":          0,
	}
	for label, w := range want {
		if got := Weight(label); got != w {
			t.Errorf("Weight(%q) = %d, want %d", label, got, w)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("holo rare"); got != "Rare Holo" {
		t.Errorf("Label() = %q, want %q", got, "Rare Holo")
	}
	if got := Label("Illustration rare"); got != "Illustration rare" {
		t.Errorf("Label() = %q, want passthrough", got)
	}
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name   string
		packID string
		count  int
		want   []Tier
	}{
		{
			name:   "premium layout",
			packID: "premium",
			count:  5,
			want:   []Tier{Common, Common, Uncommon, RareHolo, UltraRare},
		},
		{
			name:   "standard layout",
			packID: "standard",
			count:  5,
			want:   []Tier{Common, Common, Common, Uncommon, Rare},
		},
		{
			name:   "unknown pack uses default rule",
			packID: "mystery",
			count:  6,
			want:   []Tier{Common, Common, Common, Common, Uncommon, Rare},
		},
		{
			name:   "size mismatch uses default rule",
			packID: "premium",
			count:  3,
			want:   []Tier{Common, Uncommon, Rare},
		},
		{
			name:   "two slots",
			packID: "mystery",
			count:  2,
			want:   []Tier{Common, Uncommon},
		},
		{
			name:   "single slot",
			packID: "mystery",
			count:  1,
			want:   []Tier{Common},
		},
		{
			name:   "empty",
			packID: "mystery",
			count:  0,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.packID, tt.count)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolver.Resolve() got = %v, want %v", got, tt.want)
			}
			if len(got) != tt.count && tt.count > 0 {
				t.Errorf("Resolver.Resolve() len = %d, want %d", len(got), tt.count)
			}
		})
	}
}

func TestResolver_IsDeterministicAndIsolated(t *testing.T) {
	seq := map[string][]Tier{"custom": {Rare, Rare}}
	r := NewResolver(seq)
	seq["custom"][0] = Common

	first := r.Resolve("custom", 2)
	first[1] = Common
	second := r.Resolve("custom", 2)

	if !reflect.DeepEqual(second, []Tier{Rare, Rare}) {
		t.Errorf("Resolver.Resolve() got = %v, want [Rare Rare]", second)
	}
}

func TestParseSequence(t *testing.T) {
	got, err := ParseSequence([]string{"Common", "rare holo"})
	if err != nil {
		t.Fatalf("ParseSequence() error = %v", err)
	}
	if !reflect.DeepEqual(got, []Tier{Common, RareHolo}) {
		t.Errorf("ParseSequence() got = %v", got)
	}
	if _, err := ParseSequence([]string{"Mythic"}); err == nil {
		t.Error("ParseSequence() expected error for unknown label")
	}
}
