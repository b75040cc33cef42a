package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/accounts"
	"github.com/ellavondegurechaff/holopack/internal/gateways/database/models"
)

const entityAccount = "account"

type accountRepository struct {
	*BaseRepository
}

// NewAccountRepository returns a PostgreSQL account store. Balance and
// inventory changes lock the account row with SELECT ... FOR UPDATE.
func NewAccountRepository(db *bun.DB) accounts.Repository {
	return &accountRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *accountRepository) Create(ctx context.Context, account accounts.Account) (accounts.Account, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	m := &models.Account{
		ID:              account.ID,
		Balance:         account.Balance,
		LastDailyReward: account.LastDailyReward,
		CreatedAt:       account.CreatedAt,
		UpdatedAt:       now,
	}
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return accounts.Account{}, r.HandleErrorWithID("create", entityAccount, account.ID, err)
	}
	return toAccount(m), nil
}

func (r *accountRepository) Get(ctx context.Context, id string) (accounts.Account, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	m := new(models.Account)
	if err := r.db.NewSelect().Model(m).Where("id = ?", id).Scan(ctx); err != nil {
		return accounts.Account{}, r.HandleErrorWithID("get", entityAccount, id, err)
	}
	return toAccount(m), nil
}

func (r *accountRepository) Debit(ctx context.Context, id string, amount int64) (accounts.Account, error) {
	m := new(models.Account)
	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := lockAccount(ctx, tx, m, id); err != nil {
			return err
		}
		if m.Balance < amount {
			return fmt.Errorf("has %d, needs %d: %w", m.Balance, amount, domain.ErrInsufficientFunds)
		}
		m.Balance -= amount
		return saveBalance(ctx, tx, m)
	})
	if err != nil {
		return accounts.Account{}, r.HandleErrorWithID("debit", entityAccount, id, err)
	}
	return toAccount(m), nil
}

func (r *accountRepository) Credit(ctx context.Context, id string, amount int64) (accounts.Account, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	m := new(models.Account)
	err := r.db.NewUpdate().
		Model(m).
		Set("balance = balance + ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return accounts.Account{}, r.HandleErrorWithID("credit", entityAccount, id, err)
	}
	return toAccount(m), nil
}

func (r *accountRepository) ClaimDaily(ctx context.Context, id string, now time.Time, eligible func(*time.Time) bool, grant accounts.Grant) (accounts.Account, bool, error) {
	m := new(models.Account)
	granted := false
	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		granted = false
		if err := lockAccount(ctx, tx, m, id); err != nil {
			return err
		}
		if !eligible(m.LastDailyReward) {
			return nil
		}

		claimed := now
		m.Balance += grant.Gems
		m.LastDailyReward = &claimed
		m.UpdatedAt = time.Now()
		if _, err := tx.NewUpdate().
			Model(m).
			Column("balance", "last_daily_reward", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}
		if grant.Packs > 0 && grant.PackID != "" {
			if _, err := adjustInventory(ctx, tx, id, grant.PackID, grant.Packs); err != nil {
				return err
			}
		}
		granted = true
		return nil
	})
	if err != nil {
		return accounts.Account{}, false, r.HandleErrorWithID("claim_daily", entityAccount, id, err)
	}
	return toAccount(m), granted, nil
}

func (r *accountRepository) AdjustInventory(ctx context.Context, id, packID string, delta int) (int, error) {
	var quantity int
	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := lockAccount(ctx, tx, new(models.Account), id); err != nil {
			return err
		}
		var err error
		quantity, err = adjustInventory(ctx, tx, id, packID, delta)
		return err
	})
	if err != nil {
		return quantity, r.HandleErrorWithID("adjust_inventory", entityAccount, id, err)
	}
	return quantity, nil
}

func (r *accountRepository) Inventory(ctx context.Context, id string) ([]accounts.PackStock, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return nil, err
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var rows []models.PackInventory
	err := r.db.NewSelect().
		Model(&rows).
		Where("account_id = ?", id).
		Where("quantity > 0").
		Order("pack_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("inventory", entityAccount, id, err)
	}

	stock := make([]accounts.PackStock, len(rows))
	for i, row := range rows {
		stock[i] = accounts.PackStock{PackID: row.PackID, Quantity: row.Quantity}
	}
	return stock, nil
}

func lockAccount(ctx context.Context, tx bun.Tx, m *models.Account, id string) error {
	return tx.NewSelect().
		Model(m).
		Where("id = ?", id).
		For("UPDATE").
		Scan(ctx)
}

func saveBalance(ctx context.Context, tx bun.Tx, m *models.Account) error {
	m.UpdatedAt = time.Now()
	_, err := tx.NewUpdate().
		Model(m).
		Column("balance", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

// adjustInventory expects the account row to be locked already, which keeps
// the update-then-insert below free of races.
func adjustInventory(ctx context.Context, tx bun.Tx, accountID, packID string, delta int) (int, error) {
	row := new(models.PackInventory)
	err := tx.NewSelect().
		Model(row).
		Where("account_id = ? AND pack_id = ?", accountID, packID).
		Scan(ctx)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	quantity := row.Quantity + delta
	if quantity < 0 {
		return row.Quantity, fmt.Errorf("pack %q: %w", packID, accounts.ErrNoUnopenedPack)
	}

	now := time.Now()
	if exists {
		_, err = tx.NewUpdate().
			Model((*models.PackInventory)(nil)).
			Set("quantity = ?", quantity).
			Set("updated_at = ?", now).
			Where("account_id = ? AND pack_id = ?", accountID, packID).
			Exec(ctx)
	} else {
		_, err = tx.NewInsert().
			Model(&models.PackInventory{
				AccountID: accountID,
				PackID:    packID,
				Quantity:  quantity,
				UpdatedAt: now,
			}).
			Exec(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update pack inventory: %w", err)
	}
	return quantity, nil
}

func toAccount(m *models.Account) accounts.Account {
	return accounts.Account{
		ID:              m.ID,
		Balance:         m.Balance,
		LastDailyReward: m.LastDailyReward,
		CreatedAt:       m.CreatedAt,
	}
}
