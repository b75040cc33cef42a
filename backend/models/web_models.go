package models

import (
	"github.com/ellavondegurechaff/holopack/internal/domain/accounts"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/domain/collection"
)

// Requests

type CreateAccountRequest struct {
	ID string `json:"id" validate:"required,accountid"`
}

// CollectRequest adds cards to a collection directly, outside of a pack.
type CollectRequest struct {
	Cards []CollectCard `json:"cards" validate:"required,min=1,max=50,dive"`
}

type CollectCard struct {
	ID     string `json:"id" validate:"required,max=64"`
	Rarity string `json:"rarity" validate:"omitempty,max=32"`
}

type FavoriteRequest struct {
	Favorite *bool `json:"favorite" validate:"required"`
}

type SearchRequest struct {
	Query string `query:"q" validate:"required,max=100"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=50"`
}

type CollectionQuery struct {
	Type   string `query:"type" validate:"max=32"`
	Search string `query:"search" validate:"max=100"`
	Sort   string `query:"sort" validate:"max=16"`
}

// Responses

type PackResponse struct {
	catalog.Pack
	Slots []string `json:"slots"`
}

type AccountResponse struct {
	accounts.Account
	Inventory []accounts.PackStock `json:"inventory"`
}

type BalanceResponse struct {
	AccountID string `json:"accountId"`
	Balance   int64  `json:"balance"`
}

// OwnedCardResponse is a catalog card with the caller's owned count.
type OwnedCardResponse struct {
	catalog.Card
	Owned int `json:"owned"`
}

type CollectionResponse struct {
	Cards []collection.OwnedCard `json:"cards"`
	Total int                    `json:"total"`
}

type CollectResponse struct {
	Entries []collection.Entry `json:"entries"`
}

func NewPackResponses(packs []catalog.Pack) []PackResponse {
	out := make([]PackResponse, len(packs))
	for i, p := range packs {
		out[i] = PackResponse{Pack: p, Slots: p.Slots()}
	}
	return out
}

func NewCollectionResponse(cards []collection.OwnedCard) CollectionResponse {
	if cards == nil {
		cards = []collection.OwnedCard{}
	}
	return CollectionResponse{Cards: cards, Total: len(cards)}
}

func (r CollectRequest) Acquisitions() []collection.Acquisition {
	out := make([]collection.Acquisition, len(r.Cards))
	for i, c := range r.Cards {
		out[i] = collection.Acquisition{CardID: c.ID, Rarity: c.Rarity}
	}
	return out
}
