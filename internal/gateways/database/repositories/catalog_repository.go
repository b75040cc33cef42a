package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/gateways/database/models"
)

const (
	entityCatalogCard = "catalog_card"
	snapshotBatchSize = 500
)

type catalogRepository struct {
	*BaseRepository
}

// NewCatalogSnapshotStore keeps the last good catalog in the catalog_cards
// table. Saving replaces the whole table in one transaction.
func NewCatalogSnapshotStore(db *bun.DB) catalog.SnapshotStore {
	return &catalogRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *catalogRepository) LoadSnapshot(ctx context.Context) ([]catalog.Card, error) {
	ctx, cancel := r.WithCustomTimeout(ctx, config.BatchQueryTimeout)
	defer cancel()

	var rows []models.CatalogCard
	if err := r.db.NewSelect().Model(&rows).Order("position ASC").Scan(ctx); err != nil {
		return nil, r.HandleErrorWithID("load_snapshot", entityCatalogCard, "*", err)
	}

	cards := make([]catalog.Card, len(rows))
	for i, row := range rows {
		cards[i] = catalog.Card{
			ID:          row.ID,
			Name:        row.Name,
			Number:      row.Number,
			Type:        row.Type,
			Rarity:      row.Rarity,
			Set:         row.SetName,
			Image:       row.Image,
			Description: row.Description,
			ReleaseDate: row.ReleaseDate,
		}
		for _, a := range row.Abilities {
			cards[i].Abilities = append(cards[i].Abilities, catalog.Ability(a))
		}
	}
	return cards, nil
}

func (r *catalogRepository) SaveSnapshot(ctx context.Context, cards []catalog.Card) error {
	now := time.Now()
	rows := make([]models.CatalogCard, len(cards))
	for i, c := range cards {
		rows[i] = models.CatalogCard{
			ID:          c.ID,
			Position:    i,
			Name:        c.Name,
			Number:      c.Number,
			Type:        c.Type,
			Rarity:      c.Rarity,
			SetName:     c.Set,
			Image:       c.Image,
			Description: c.Description,
			ReleaseDate: c.ReleaseDate,
			UpdatedAt:   now,
		}
		for _, a := range c.Abilities {
			rows[i].Abilities = append(rows[i].Abilities, models.CardAbility(a))
		}
	}

	timeoutCtx, cancel := r.WithCustomTimeout(ctx, config.BatchQueryTimeout)
	defer cancel()

	err := r.db.RunInTx(timeoutCtx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.CatalogCard)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return err
		}
		for start := 0; start < len(rows); start += snapshotBatchSize {
			end := min(start+snapshotBatchSize, len(rows))
			batch := rows[start:end]
			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	return r.HandleErrorWithID("save_snapshot", entityCatalogCard, len(cards), err)
}
