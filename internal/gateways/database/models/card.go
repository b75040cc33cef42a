package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CatalogCard is one row of the cached catalog snapshot. Position keeps the
// feed order so a reload rebuilds the same catalog.
type CatalogCard struct {
	bun.BaseModel `bun:"table:catalog_cards,alias:cc"`

	ID          string        `bun:"id,pk,type:text"`
	Position    int           `bun:"position,notnull"`
	Name        string        `bun:"name,notnull"`
	Number      string        `bun:"number,notnull,default:''"`
	Type        string        `bun:"type,notnull"`
	Rarity      string        `bun:"rarity,notnull"`
	SetName     string        `bun:"set_name,notnull"`
	Image       string        `bun:"image,notnull"`
	Description string        `bun:"description,type:text"`
	ReleaseDate string        `bun:"release_date"`
	Abilities   []CardAbility `bun:"abilities,type:jsonb"`
	UpdatedAt   time.Time     `bun:"updated_at,notnull,default:current_timestamp"`
}

type CardAbility struct {
	Name        string `json:"name"`
	Damage      string `json:"damage,omitempty"`
	Description string `json:"description,omitempty"`
}
