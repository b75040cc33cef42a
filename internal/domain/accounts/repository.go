package accounts

import (
	"context"
	"time"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

// Repository implementations must make each method atomic on its own:
// Debit never leaves a negative balance and ClaimDaily checks and stamps the
// claim time in one step.
type Repository interface {
	Create(ctx context.Context, account Account) (Account, error)
	Get(ctx context.Context, id string) (Account, error)
	Debit(ctx context.Context, id string, amount int64) (Account, error)
	Credit(ctx context.Context, id string, amount int64) (Account, error)
	// ClaimDaily applies grant and sets LastDailyReward to now only when
	// eligible reports true for the stored claim time.
	ClaimDaily(ctx context.Context, id string, now time.Time, eligible func(last *time.Time) bool, grant Grant) (Account, bool, error)
	// AdjustInventory returns ErrNoUnopenedPack rather than go below zero.
	AdjustInventory(ctx context.Context, id, packID string, delta int) (int, error)
	Inventory(ctx context.Context, id string) ([]PackStock, error)
}
