package models

import (
	"time"

	"github.com/uptrace/bun"
)

// OwnershipEntry is append-only; favorite is the only column updated in place.
type OwnershipEntry struct {
	bun.BaseModel `bun:"table:ownership_entries,alias:oe"`

	ID         int64     `bun:"id,pk,autoincrement"`
	AccountID  string    `bun:"account_id,notnull,type:text"`
	CardID     string    `bun:"card_id,notnull,type:text"`
	Rarity     string    `bun:"rarity,notnull"`
	AcquiredAt time.Time `bun:"acquired_at,notnull,default:current_timestamp"`
	Favorite   bool      `bun:"favorite,notnull,default:false"`
}
