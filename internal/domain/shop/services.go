package shop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/holopack/holopack/logger"
	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/accounts"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/domain/collection"
	"github.com/ellavondegurechaff/holopack/internal/domain/packs"
)

// Purchase results reported to the observer.
const (
	ResultOK                  = "ok"
	ResultInsufficientFunds   = "insufficient_funds"
	ResultInsufficientCatalog = "insufficient_catalog"
	ResultNotFound            = "not_found"
	ResultError               = "error"
)

// UnknownPack is the observer label for purchases of packs that are not configured.
const UnknownPack = "unknown"

// Observer receives shop outcomes, typically a metrics recorder.
type Observer interface {
	PackOpened(packID, source string, cards int)
	Purchase(packID, result string)
}

type nopObserver struct{}

func (nopObserver) PackOpened(string, string, int) {}
func (nopObserver) Purchase(string, string)        {}

// Receipt is what a buyer gets back from a purchase or an owned-pack opening.
type Receipt struct {
	Pack      catalog.Pack       `json:"pack"`
	Pulls     []packs.Pull       `json:"cards"`
	Entries   []collection.Entry `json:"entries"`
	Balance   int64              `json:"balance"`
	Remaining int                `json:"remaining,omitempty"`
}

type Service struct {
	accounts   *accounts.Service
	collection *collection.Service
	packs      *catalog.PackCatalog
	opener     *packs.Opener
	observer   Observer
}

type Option func(*Service)

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewService(acc *accounts.Service, coll *collection.Service, packCatalog *catalog.PackCatalog, opener *packs.Opener, opts ...Option) *Service {
	s := &Service{
		accounts:   acc,
		collection: coll,
		packs:      packCatalog,
		opener:     opener,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Packs() []catalog.Pack {
	return s.packs.All()
}

func (s *Service) Pack(id string) (catalog.Pack, error) {
	return s.packs.Get(id)
}

// Preview opens a pack without charging or recording anything.
func (s *Service) Preview(packID string) ([]packs.Pull, error) {
	pulls, err := s.opener.Open(packID)
	if err != nil {
		return nil, err
	}
	s.observer.PackOpened(packID, "preview", len(pulls))
	return pulls, nil
}

// Purchase charges the pack price, draws its cards and records them. Either
// every step lands or the account is left as it was: the draw happens before
// the debit and a failed append is refunded.
func (s *Service) Purchase(ctx context.Context, accountID, packID string) (receipt Receipt, err error) {
	start := time.Now()
	label := packID
	defer func() {
		s.observer.Purchase(label, resultOf(err))
		logger.LogShop("purchase", accountID, time.Since(start), err, slog.String("pack", packID))
	}()

	pack, err := s.packs.Get(packID)
	if err != nil {
		// Metric labels stay bounded to the configured packs.
		label = UnknownPack
		return Receipt{}, fmt.Errorf("pack %q: %w", packID, packs.ErrPackNotFound)
	}

	unlock := s.accounts.Lock(accountID)
	defer unlock()

	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return Receipt{}, err
	}

	pulls, err := s.opener.Open(packID)
	if err != nil {
		return Receipt{}, err
	}

	acc, err := s.accounts.Purchase(ctx, accountID, pack.Price)
	if err != nil {
		return Receipt{}, err
	}

	entries, err := s.collection.RecordPulls(ctx, accountID, acquisitions(pulls))
	if err != nil {
		if _, refundErr := s.accounts.Refund(ctx, accountID, pack.Price); refundErr != nil {
			logger.LogError("Failed to refund purchase", refundErr,
				slog.String("account", accountID),
				slog.String("pack", packID),
				slog.Int64("amount", pack.Price))
			return Receipt{}, errors.Join(err, refundErr)
		}
		return Receipt{}, err
	}

	s.observer.PackOpened(packID, "purchase", len(pulls))
	return Receipt{
		Pack:    pack,
		Pulls:   pulls,
		Entries: entries,
		Balance: acc.Balance,
	}, nil
}

// OpenOwned spends one unopened pack from the account's inventory. A failed
// draw or append puts the pack back.
func (s *Service) OpenOwned(ctx context.Context, accountID, packID string) (receipt Receipt, err error) {
	start := time.Now()
	defer func() {
		logger.LogShop("open_owned", accountID, time.Since(start), err, slog.String("pack", packID))
	}()

	pack, err := s.packs.Get(packID)
	if err != nil {
		return Receipt{}, fmt.Errorf("pack %q: %w", packID, packs.ErrPackNotFound)
	}

	unlock := s.accounts.Lock(accountID)
	defer unlock()

	remaining, err := s.accounts.ConsumePack(ctx, accountID, packID)
	if err != nil {
		return Receipt{}, err
	}

	pulls, err := s.opener.Open(packID)
	if err == nil {
		var entries []collection.Entry
		entries, err = s.collection.RecordPulls(ctx, accountID, acquisitions(pulls))
		if err == nil {
			acc, getErr := s.accounts.Get(ctx, accountID)
			if getErr != nil {
				return Receipt{}, getErr
			}
			s.observer.PackOpened(packID, "inventory", len(pulls))
			return Receipt{
				Pack:      pack,
				Pulls:     pulls,
				Entries:   entries,
				Balance:   acc.Balance,
				Remaining: remaining,
			}, nil
		}
	}

	if _, grantErr := s.accounts.GrantPack(ctx, accountID, packID, 1); grantErr != nil {
		logger.LogError("Failed to return unopened pack", grantErr,
			slog.String("account", accountID),
			slog.String("pack", packID))
		return Receipt{}, errors.Join(err, grantErr)
	}
	return Receipt{}, err
}

// Collect records cards handed out directly, outside of a pack.
func (s *Service) Collect(ctx context.Context, accountID string, items []collection.Acquisition) ([]collection.Entry, error) {
	unlock := s.accounts.Lock(accountID)
	defer unlock()

	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	return s.collection.RecordPulls(ctx, accountID, items)
}

func acquisitions(pulls []packs.Pull) []collection.Acquisition {
	out := make([]collection.Acquisition, len(pulls))
	for i, p := range pulls {
		out[i] = collection.Acquisition{CardID: p.ID, Rarity: p.Rarity}
	}
	return out
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrInsufficientFunds):
		return ResultInsufficientFunds
	case errors.Is(err, domain.ErrInsufficientCatalog):
		return ResultInsufficientCatalog
	case errors.Is(err, domain.ErrNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}
