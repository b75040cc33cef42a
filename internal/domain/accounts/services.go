package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain"
)

var validAccountID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var ErrNoUnopenedPack = fmt.Errorf("no unopened pack: %w", domain.ErrNotFound)

type Service struct {
	repository Repository
	locker     *Locker
	location   *time.Location
	now        func() time.Time

	startingBalance int64
	daily           Grant
	dailyMessage    string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the timezone whose calendar day bounds the daily reward.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithStartingBalance(amount int64) Option {
	return func(s *Service) { s.startingBalance = amount }
}

// WithDailyGrant overrides the reward and the message shown on a grant.
func WithDailyGrant(grant Grant, message string) Option {
	return func(s *Service) {
		s.daily = grant
		s.dailyMessage = message
	}
}

func NewService(repository Repository, opts ...Option) *Service {
	s := &Service{
		repository:      repository,
		locker:          NewLocker(),
		location:        time.UTC,
		now:             time.Now,
		startingBalance: config.StartingBalance,
		daily: Grant{
			Gems:   config.DailyGemReward,
			PackID: config.DailyPackID,
			Packs:  config.DailyPackCount,
		},
		dailyMessage: config.DailyRewardMsg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lock serializes multi-step operations on one account.
func (s *Service) Lock(accountID string) func() {
	return s.locker.Lock(accountID)
}

func ValidateID(id string) error {
	if !validAccountID.MatchString(id) {
		return fmt.Errorf("account id %q must be 1-64 letters, digits, '-' or '_': %w", id, domain.ErrValidation)
	}
	return nil
}

// Open creates an account holding the starting balance.
func (s *Service) Open(ctx context.Context, id string) (Account, error) {
	if err := ValidateID(id); err != nil {
		return Account{}, err
	}
	acc, err := s.repository.Create(ctx, Account{
		ID:        id,
		Balance:   s.startingBalance,
		CreatedAt: s.now(),
	})
	if err != nil {
		return Account{}, fmt.Errorf("failed to open account: %w", err)
	}
	return acc, nil
}

// Ensure returns the account, opening it first when it does not exist yet.
func (s *Service) Ensure(ctx context.Context, id string) (Account, error) {
	acc, err := s.repository.Get(ctx, id)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return Account{}, fmt.Errorf("failed to load account: %w", err)
	}
	acc, err = s.Open(ctx, id)
	if err == nil || !isConflict(err) {
		return acc, err
	}
	return s.repository.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	acc, err := s.repository.Get(ctx, id)
	if err != nil {
		return Account{}, fmt.Errorf("failed to load account: %w", err)
	}
	return acc, nil
}

func (s *Service) GetBalance(ctx context.Context, id string) (int64, error) {
	acc, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Purchase debits price atomically. On ErrInsufficientFunds the balance is
// unchanged.
func (s *Service) Purchase(ctx context.Context, id string, price int64) (Account, error) {
	if price <= 0 {
		return Account{}, fmt.Errorf("price must be positive, got %d: %w", price, domain.ErrValidation)
	}
	acc, err := s.repository.Debit(ctx, id, price)
	if err != nil {
		return Account{}, fmt.Errorf("purchase for %d: %w", price, err)
	}
	return acc, nil
}

// Refund credits an amount back, used to undo a purchase whose follow-up
// steps failed.
func (s *Service) Refund(ctx context.Context, id string, amount int64) (Account, error) {
	if amount <= 0 {
		return Account{}, fmt.Errorf("refund must be positive, got %d: %w", amount, domain.ErrValidation)
	}
	acc, err := s.repository.Credit(ctx, id, amount)
	if err != nil {
		return Account{}, fmt.Errorf("refund %d: %w", amount, err)
	}
	return acc, nil
}

// ClaimDailyReward grants the reward at most once per calendar day in the
// service location. A repeat claim is not an error.
func (s *Service) ClaimDailyReward(ctx context.Context, id string) (DailyReward, error) {
	now := s.now()
	eligible := func(last *time.Time) bool {
		return last == nil || !SameDay(*last, now, s.location)
	}

	acc, granted, err := s.repository.ClaimDaily(ctx, id, now, eligible, s.daily)
	if err != nil {
		return DailyReward{}, fmt.Errorf("failed to claim daily reward: %w", err)
	}

	reward := DailyReward{
		Granted:     granted,
		Balance:     acc.Balance,
		Message:     config.DailyRewardRepeat,
		NextClaimAt: NextDay(now, s.location),
	}
	if granted {
		reward.Gems = s.daily.Gems
		reward.PackID = s.daily.PackID
		reward.Packs = s.daily.Packs
		reward.Message = s.dailyMessage
	}
	return reward, nil
}

func (s *Service) GrantPack(ctx context.Context, id, packID string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, fmt.Errorf("quantity must be positive: %w", domain.ErrValidation)
	}
	n, err := s.repository.AdjustInventory(ctx, id, packID, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to grant pack: %w", err)
	}
	return n, nil
}

// ConsumePack removes one unopened pack, failing with ErrNoUnopenedPack when
// none is held.
func (s *Service) ConsumePack(ctx context.Context, id, packID string) (int, error) {
	n, err := s.repository.AdjustInventory(ctx, id, packID, -1)
	if err != nil {
		return 0, fmt.Errorf("failed to consume pack: %w", err)
	}
	return n, nil
}

func (s *Service) Inventory(ctx context.Context, id string) ([]PackStock, error) {
	stock, err := s.repository.Inventory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	return stock, nil
}

// SameDay compares calendar dates of a and b as seen in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// NextDay is the first instant of the calendar day after t in loc.
func NextDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

func isConflict(err error) bool {
	return errors.Is(err, domain.ErrConflict)
}
