package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/collection"
	"github.com/ellavondegurechaff/holopack/internal/gateways/database/models"
)

const entityOwnership = "ownership_entry"

type ownershipRepository struct {
	*BaseRepository
}

// NewOwnershipRepository returns the PostgreSQL ledger. Entry ids come from
// the bigserial column, so they increase with insertion order.
func NewOwnershipRepository(db *bun.DB) collection.Repository {
	return &ownershipRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ownershipRepository) Append(ctx context.Context, entries []collection.Entry) ([]collection.Entry, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	rows := make([]models.OwnershipEntry, len(entries))
	for i, e := range entries {
		if e.AccountID == "" || e.CardID == "" {
			return nil, fmt.Errorf("entry %d missing account or card: %w", i, domain.ErrValidation)
		}
		if e.AcquiredAt.IsZero() {
			e.AcquiredAt = time.Now()
		}
		rows[i] = models.OwnershipEntry{
			AccountID:  e.AccountID,
			CardID:     e.CardID,
			Rarity:     e.Rarity,
			AcquiredAt: e.AcquiredAt,
			Favorite:   e.Favorite,
		}
	}

	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&rows).Returning("id").Exec(ctx)
		return err
	})
	if err != nil {
		return nil, r.HandleErrorWithID("append", entityOwnership, entries[0].AccountID, err)
	}

	out := make([]collection.Entry, len(rows))
	for i := range rows {
		out[i] = toEntry(&rows[i])
	}
	return out, nil
}

func (r *ownershipRepository) ListByAccount(ctx context.Context, accountID string) ([]collection.Entry, error) {
	ctx, cancel := r.WithCustomTimeout(ctx, config.BatchQueryTimeout)
	defer cancel()

	var rows []models.OwnershipEntry
	err := r.db.NewSelect().
		Model(&rows).
		Where("account_id = ?", accountID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, r.HandleErrorWithID("list", entityOwnership, accountID, err)
	}

	out := make([]collection.Entry, len(rows))
	for i := range rows {
		out[i] = toEntry(&rows[i])
	}
	return out, nil
}

func (r *ownershipRepository) CountByCard(ctx context.Context, accountID, cardID string) (int, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	n, err := r.db.NewSelect().
		Model((*models.OwnershipEntry)(nil)).
		Where("account_id = ? AND card_id = ?", accountID, cardID).
		Count(ctx)
	if err != nil {
		return 0, r.HandleErrorWithID("count", entityOwnership, cardID, err)
	}
	return n, nil
}

func (r *ownershipRepository) SetFavorite(ctx context.Context, accountID string, entryID int64, favorite bool) (collection.Entry, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	row := new(models.OwnershipEntry)
	err := r.db.NewUpdate().
		Model(row).
		Set("favorite = ?", favorite).
		Where("id = ? AND account_id = ?", entryID, accountID).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return collection.Entry{}, r.HandleErrorWithID("set_favorite", entityOwnership, entryID, err)
	}
	return toEntry(row), nil
}

func toEntry(m *models.OwnershipEntry) collection.Entry {
	return collection.Entry{
		ID:         m.ID,
		AccountID:  m.AccountID,
		CardID:     m.CardID,
		Rarity:     m.Rarity,
		AcquiredAt: m.AcquiredAt,
		Favorite:   m.Favorite,
	}
}
