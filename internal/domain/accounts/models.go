package accounts

import "time"

type Account struct {
	ID              string     `json:"id"`
	Balance         int64      `json:"balance"`
	LastDailyReward *time.Time `json:"lastDailyReward,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// PackStock is the count of unopened packs of one kind an account holds.
type PackStock struct {
	PackID   string `json:"packId"`
	Quantity int    `json:"quantity"`
}

type DailyReward struct {
	Granted     bool      `json:"granted"`
	Balance     int64     `json:"balance"`
	Gems        int64     `json:"gems,omitempty"`
	PackID      string    `json:"packId,omitempty"`
	Packs       int       `json:"packs,omitempty"`
	Message     string    `json:"message"`
	NextClaimAt time.Time `json:"nextClaimAt"`
}

// Grant describes what a successful daily claim adds to the account.
type Grant struct {
	Gems   int64
	PackID string
	Packs  int
}
