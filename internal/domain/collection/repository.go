package collection

import "context"

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock

type Repository interface {
	// Append stores all entries or none, assigning IDs in order.
	Append(ctx context.Context, entries []Entry) ([]Entry, error)
	// ListByAccount returns entries in acquisition order.
	ListByAccount(ctx context.Context, accountID string) ([]Entry, error)
	CountByCard(ctx context.Context, accountID, cardID string) (int, error)
	SetFavorite(ctx context.Context, accountID string, entryID int64, favorite bool) (Entry, error)
}
