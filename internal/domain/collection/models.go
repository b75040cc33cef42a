package collection

import (
	"time"

	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
)

// Entry is one owned card unit. Entries are append-only; Favorite is the only
// field that changes after insert.
type Entry struct {
	ID         int64     `json:"id"`
	AccountID  string    `json:"accountId"`
	CardID     string    `json:"cardId"`
	Rarity     string    `json:"rarity"`
	AcquiredAt time.Time `json:"acquiredAt"`
	Favorite   bool      `json:"favorite"`
}

// Acquisition is the input for one ledger append. An empty Rarity records the
// card's base rarity.
type Acquisition struct {
	CardID string
	Rarity string
}

// OwnedCard is the unique-card view row. Rarity on the embedded card is the
// highest tier stamped on any owned copy.
type OwnedCard struct {
	catalog.Card
	BaseRarity   string    `json:"baseRarity"`
	Owned        int       `json:"owned"`
	LastAcquired time.Time `json:"lastAcquired"`
	Favorite     bool      `json:"favorite"`
}

type Stats struct {
	TotalCards  int `json:"totalCards"`
	UniqueCards int `json:"uniqueCards"`
	Completion  int `json:"completion"`
}

type Query struct {
	Type   string
	Search string
	SortBy string
}
