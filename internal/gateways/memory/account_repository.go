package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/accounts"
)

type accountRepository struct {
	mu        sync.Mutex
	accounts  map[string]*accounts.Account
	inventory map[string]map[string]int
}

// NewAccountRepository returns an empty in-process account store. Every
// method holds the store lock for its whole check-and-write.
func NewAccountRepository() accounts.Repository {
	return &accountRepository{
		accounts:  make(map[string]*accounts.Account),
		inventory: make(map[string]map[string]int),
	}
}

func (r *accountRepository) Create(_ context.Context, account accounts.Account) (accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID]; ok {
		return accounts.Account{}, fmt.Errorf("account %q: %w", account.ID, domain.ErrConflict)
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	stored := account
	r.accounts[account.ID] = &stored
	return copyAccount(&stored), nil
}

func (r *accountRepository) Get(_ context.Context, id string) (accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, err := r.lookup(id)
	if err != nil {
		return accounts.Account{}, err
	}
	return copyAccount(acc), nil
}

func (r *accountRepository) Debit(_ context.Context, id string, amount int64) (accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, err := r.lookup(id)
	if err != nil {
		return accounts.Account{}, err
	}
	if acc.Balance < amount {
		return copyAccount(acc), fmt.Errorf("has %d, needs %d: %w", acc.Balance, amount, domain.ErrInsufficientFunds)
	}
	acc.Balance -= amount
	return copyAccount(acc), nil
}

func (r *accountRepository) Credit(_ context.Context, id string, amount int64) (accounts.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, err := r.lookup(id)
	if err != nil {
		return accounts.Account{}, err
	}
	acc.Balance += amount
	return copyAccount(acc), nil
}

func (r *accountRepository) ClaimDaily(_ context.Context, id string, now time.Time, eligible func(*time.Time) bool, grant accounts.Grant) (accounts.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, err := r.lookup(id)
	if err != nil {
		return accounts.Account{}, false, err
	}
	if !eligible(acc.LastDailyReward) {
		return copyAccount(acc), false, nil
	}

	acc.Balance += grant.Gems
	claimed := now
	acc.LastDailyReward = &claimed
	if grant.Packs > 0 && grant.PackID != "" {
		r.adjust(id, grant.PackID, grant.Packs)
	}
	return copyAccount(acc), true, nil
}

func (r *accountRepository) AdjustInventory(_ context.Context, id, packID string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookup(id); err != nil {
		return 0, err
	}
	if r.inventory[id][packID]+delta < 0 {
		return r.inventory[id][packID], fmt.Errorf("pack %q: %w", packID, accounts.ErrNoUnopenedPack)
	}
	return r.adjust(id, packID, delta), nil
}

func (r *accountRepository) Inventory(_ context.Context, id string) ([]accounts.PackStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookup(id); err != nil {
		return nil, err
	}
	stock := make([]accounts.PackStock, 0, len(r.inventory[id]))
	for packID, qty := range r.inventory[id] {
		if qty > 0 {
			stock = append(stock, accounts.PackStock{PackID: packID, Quantity: qty})
		}
	}
	sort.Slice(stock, func(i, j int) bool { return stock[i].PackID < stock[j].PackID })
	return stock, nil
}

func (r *accountRepository) lookup(id string) (*accounts.Account, error) {
	acc, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", id, domain.ErrNotFound)
	}
	return acc, nil
}

// adjust assumes the lock is held and the result is non-negative.
func (r *accountRepository) adjust(id, packID string, delta int) int {
	inv, ok := r.inventory[id]
	if !ok {
		inv = make(map[string]int)
		r.inventory[id] = inv
	}
	inv[packID] += delta
	return inv[packID]
}

func copyAccount(acc *accounts.Account) accounts.Account {
	out := *acc
	if acc.LastDailyReward != nil {
		t := *acc.LastDailyReward
		out.LastDailyReward = &t
	}
	return out
}
