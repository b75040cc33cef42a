package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID              string     `bun:"id,pk,type:text"`
	Balance         int64      `bun:"balance,notnull,default:0"`
	LastDailyReward *time.Time `bun:"last_daily_reward,nullzero"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// PackInventory counts unopened packs per account.
type PackInventory struct {
	bun.BaseModel `bun:"table:pack_inventory,alias:pi"`

	AccountID string    `bun:"account_id,pk,type:text"`
	PackID    string    `bun:"pack_id,pk,type:text"`
	Quantity  int       `bun:"quantity,notnull,default:0"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
