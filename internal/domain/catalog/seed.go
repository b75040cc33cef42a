package catalog

// SeedCards is the small offline catalog served when neither the feed nor a
// cached snapshot is available.
func SeedCards() []Card {
	return []Card{
		{
			ID:          "charizard",
			Name:        "Charizard",
			Number:      "006",
			Image:       "https://images.unsplash.com/photo-1605979257913-1704eb7b6246?auto=format&fit=crop&w=300&h=400&q=80",
			Type:        "Fire",
			Rarity:      "Holographic Rare",
			Set:         "Base Set",
			Description: "Charizard flies around the sky in search of powerful opponents.",
			ReleaseDate: "1999-01-09",
			Abilities: []Ability{
				{Name: "Fire Spin", Damage: "100", Description: "Discard 2 Energy cards attached to Charizard in order to use this attack."},
			},
		},
		{
			ID:          "blastoise",
			Name:        "Blastoise",
			Number:      "009",
			Image:       "https://images.unsplash.com/photo-1606041011872-596597976b25?auto=format&fit=crop&w=300&h=400&q=80",
			Type:        "Water",
			Rarity:      "Holographic Rare",
			Set:         "Base Set",
			Description: "A brutal Pokémon with pressurized water jets on its shell.",
			ReleaseDate: "1999-01-09",
			Abilities: []Ability{
				{Name: "Hydro Pump", Damage: "60+", Description: "Does 60 damage plus 10 more for each unused Water Energy attached to Blastoise."},
			},
		},
		{
			ID:          "venusaur",
			Name:        "Venusaur",
			Number:      "003",
			Type:        "Grass",
			Rarity:      "Holographic Rare",
			Set:         "Base Set",
			Description: "The plant blooms when it is absorbing solar energy.",
			ReleaseDate: "1999-01-09",
			Abilities: []Ability{
				{Name: "Solar Beam", Damage: "60", Description: "No additional effect."},
			},
		},
		{
			ID:          "pikachu",
			Name:        "Pikachu",
			Number:      "025",
			Type:        "Electric",
			Rarity:      "Common",
			Set:         "Base Set",
			Description: "When several of these Pokémon gather, their electricity could build and cause lightning storms.",
			ReleaseDate: "1999-01-09",
			Abilities: []Ability{
				{Name: "Thunder Shock", Damage: "30", Description: "Flip a coin. If heads, the Defending Pokémon is now Paralyzed."},
			},
		},
		{
			ID:          "mewtwo",
			Name:        "Mewtwo",
			Number:      "150",
			Image:       "https://images.unsplash.com/photo-1614583224978-f05ce51ef5fa?auto=format&fit=crop&w=300&h=400&q=80",
			Type:        "Psychic",
			Rarity:      "Holographic Rare",
			Set:         "Base Set",
			Description: "A Pokémon created by recombining Mew's genes.",
			ReleaseDate: "1999-01-09",
			Abilities: []Ability{
				{Name: "Psychic", Damage: "10+", Description: "Does 10 damage plus 10 more for each Energy card attached to the Defending Pokémon."},
				{Name: "Barrier", Description: "Discard 1 Psychic Energy card attached to Mewtwo to prevent all damage done to it next turn."},
			},
		},
		{
			ID:          "machamp",
			Name:        "Machamp",
			Number:      "068",
			Type:        "Fighting",
			Rarity:      "Holographic Rare",
			Set:         "Base Set",
			Description: "Using its heavy muscles, it throws powerful punches that can send the victim clear over the horizon.",
			ReleaseDate: "1999-01-09",
			Abilities: []Ability{
				{Name: "Seismic Toss", Damage: "60", Description: "No additional effect."},
			},
		},
	}
}
