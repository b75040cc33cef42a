package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/ellavondegurechaff/holopack/backend/config"
	webmodels "github.com/ellavondegurechaff/holopack/backend/models"
	"github.com/ellavondegurechaff/holopack/backend/utils"
	holoconfig "github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/internal/domain"
	"github.com/ellavondegurechaff/holopack/internal/domain/accounts"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/domain/collection"
	"github.com/ellavondegurechaff/holopack/internal/domain/shop"
	"github.com/ellavondegurechaff/holopack/internal/metrics"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WebApp represents the web application with all dependencies
type WebApp struct {
	Config     *config.WebAppConfig
	Accounts   *accounts.Service
	Collection *collection.Service
	Shop       *shop.Service
	Catalog    *catalog.Source
	Metrics    *metrics.ShopMetrics
	// DB is nil with the memory store.
	DB Pinger
}

func accountID(c *fiber.Ctx) string {
	return c.Params("accountID")
}

// loadAccount resolves the :accountID param, 404 when unknown.
func (w *WebApp) loadAccount(c *fiber.Ctx) (accounts.Account, error) {
	return w.Accounts.Get(c.Context(), accountID(c))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}
	return utils.Validate(req)
}

func parseQuery(c *fiber.Ctx, req any) error {
	if err := c.QueryParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters: "+err.Error())
	}
	return utils.Validate(req)
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Config.Version, webApp.Config.Commit)

		info := webApp.Catalog.Info()
		details := map[string]any{
			"origin":   info.Origin,
			"size":     info.Size,
			"loadedAt": info.LoadedAt,
		}
		switch {
		case info.Size == 0:
			health.AddComponent("catalog", webmodels.StatusUnhealthy, "catalog is empty", details)
		case info.Origin != catalog.OriginFeed:
			health.AddComponent("catalog", webmodels.StatusDegraded, "serving fallback catalog", details)
		default:
			health.AddComponent("catalog", webmodels.StatusHealthy, "", details)
		}

		if webApp.DB != nil {
			if err := webApp.DB.Ping(c.Context()); err != nil {
				health.AddComponent("database", webmodels.StatusUnhealthy, err.Error(), nil)
			} else {
				health.AddComponent("database", webmodels.StatusHealthy, "", nil)
			}
		}

		if !health.Healthy() {
			return utils.SendJSON(c, http.StatusServiceUnavailable, webmodels.NewSuccessResponse(health, "Service unhealthy"))
		}
		return utils.SendSuccess(c, health, "Health check successful")
	}
}

func MetricsHandler(webApp *WebApp) fiber.Handler {
	return adaptor.HTTPHandler(webApp.Metrics.Handler())
}

// Catalog

func ListCards(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cards := nonNil(webApp.Catalog.Current().All())
		return utils.SendSuccess(c, fiber.Map{
			"cards":   cards,
			"total":   len(cards),
			"catalog": webApp.Catalog.Info(),
		}, "Cards retrieved successfully")
	}
}

func SearchCards(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.SearchRequest
		if err := parseQuery(c, &req); err != nil {
			return err
		}
		if req.Limit == 0 {
			req.Limit = holoconfig.DefaultSearchLimit
		}

		cards := nonNil(webApp.Catalog.Current().Search(req.Query, req.Limit))
		return utils.SendSuccess(c, fiber.Map{
			"cards": cards,
			"total": len(cards),
			"query": req.Query,
		}, "Search completed")
	}
}

func GetCard(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		card, err := webApp.Catalog.Current().Get(c.Params("cardID"))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, card, "Card retrieved successfully")
	}
}

func ListPacks(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, webmodels.NewPackResponses(webApp.Shop.Packs()), "Packs retrieved successfully")
	}
}

// Accounts

func CreateAccount(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CreateAccountRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		acc, err := webApp.Accounts.Open(c.Context(), req.ID)
		if err != nil {
			return err
		}
		slog.Info("Account created",
			slog.String("type", "shop"),
			slog.String("account", acc.ID),
			slog.Int64("balance", acc.Balance))
		return utils.SendCreated(c, acc, "Account created")
	}
}

func GetAccount(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, err := webApp.loadAccount(c)
		if err != nil {
			return err
		}
		inventory, err := webApp.Accounts.Inventory(c.Context(), acc.ID)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webmodels.AccountResponse{Account: acc, Inventory: nonNil(inventory)}, "Account retrieved successfully")
	}
}

func GetBalance(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		balance, err := webApp.Accounts.GetBalance(c.Context(), accountID(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webmodels.BalanceResponse{AccountID: accountID(c), Balance: balance}, "Balance retrieved successfully")
	}
}

// ClaimDaily answers 200 for a repeat claim too; granted=false tells the
// client it already claimed today.
func ClaimDaily(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reward, err := webApp.Accounts.ClaimDailyReward(c.Context(), accountID(c))
		if webApp.Metrics != nil {
			webApp.Metrics.DailyClaim(reward.Granted, err)
		}
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, reward, reward.Message)
	}
}

func PackInventory(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := webApp.loadAccount(c); err != nil {
			return err
		}
		inventory, err := webApp.Accounts.Inventory(c.Context(), accountID(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, fiber.Map{"packs": nonNil(inventory)}, "Inventory retrieved successfully")
	}
}

// Packs

// PreviewPack draws a pack for display only. Nothing is charged or recorded.
func PreviewPack(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := webApp.loadAccount(c); err != nil {
			return err
		}
		pulls, err := webApp.Shop.Preview(c.Params("packID"))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, fiber.Map{"cards": pulls}, "Pack opened")
	}
}

func PurchasePack(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		packID := c.Params("packID")
		receipt, err := webApp.Shop.Purchase(c.Context(), accountID(c), packID)
		if errors.Is(err, domain.ErrInsufficientFunds) {
			return insufficientFunds(c, webApp, packID)
		}
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, receipt, fmt.Sprintf("Purchased %s", receipt.Pack.Name))
	}
}

func insufficientFunds(c *fiber.Ctx, webApp *WebApp, packID string) error {
	details := map[string]string{}
	if pack, err := webApp.Shop.Pack(packID); err == nil {
		details["price"] = strconv.FormatInt(pack.Price, 10)
	}
	if balance, err := webApp.Accounts.GetBalance(c.Context(), accountID(c)); err == nil {
		details["balance"] = strconv.FormatInt(balance, 10)
	}
	return utils.SendError(c, http.StatusPaymentRequired, "INSUFFICIENT_FUNDS",
		"Not enough gems to buy this pack", details)
}

func OpenOwnedPack(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		receipt, err := webApp.Shop.OpenOwned(c.Context(), accountID(c), c.Params("packID"))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, receipt, fmt.Sprintf("Opened %s", receipt.Pack.Name))
	}
}

// Collection

func GetOwnedCard(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := webApp.loadAccount(c); err != nil {
			return err
		}
		card, err := webApp.Catalog.Current().Get(c.Params("cardID"))
		if err != nil {
			return err
		}
		owned, err := webApp.Collection.GetOwnedCount(c.Context(), accountID(c), card.ID)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, webmodels.OwnedCardResponse{Card: card, Owned: owned}, "Card retrieved successfully")
	}
}

func GetCollection(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q webmodels.CollectionQuery
		if err := parseQuery(c, &q); err != nil {
			return err
		}
		return queryCollection(c, webApp, collection.Query{Type: q.Type, Search: q.Search, SortBy: q.Sort})
	}
}

func FilterCollection(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return queryCollection(c, webApp, collection.Query{Type: c.Query("type"), Search: c.Query("search")})
	}
}

// SortCollection accepts any sort key; unknown keys keep acquisition order.
func SortCollection(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return queryCollection(c, webApp, collection.Query{SortBy: c.Query("by")})
	}
}

func queryCollection(c *fiber.Ctx, webApp *WebApp, q collection.Query) error {
	if _, err := webApp.loadAccount(c); err != nil {
		return err
	}
	cards, err := webApp.Collection.Query(c.Context(), accountID(c), q)
	if err != nil {
		return err
	}
	return utils.SendSuccess(c, webmodels.NewCollectionResponse(cards), "Collection retrieved successfully")
}

func AddToCollection(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.CollectRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		entries, err := webApp.Shop.Collect(c.Context(), accountID(c), req.Acquisitions())
		if err != nil {
			return err
		}
		return utils.SendCreated(c, webmodels.CollectResponse{Entries: entries},
			fmt.Sprintf("Added %d cards to collection", len(entries)))
	}
}

func CollectionStats(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := webApp.loadAccount(c); err != nil {
			return err
		}
		stats, err := webApp.Collection.Aggregate(c.Context(), accountID(c))
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, stats, "Collection stats retrieved successfully")
	}
}

func SetFavorite(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entryID, err := strconv.ParseInt(c.Params("entryID"), 10, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid entry id")
		}
		var req webmodels.FavoriteRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}

		entry, err := webApp.Collection.SetFavorite(c.Context(), accountID(c), entryID, *req.Favorite)
		if err != nil {
			return err
		}
		return utils.SendSuccess(c, entry, "Favorite updated")
	}
}

// Admin

func RefreshCatalog(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), holoconfig.CatalogLoadTimeout)
		defer cancel()

		info, err := webApp.Catalog.Refresh(ctx)
		if err != nil {
			return utils.SendError(c, http.StatusBadGateway, "FEED_UNAVAILABLE", err.Error(), map[string]string{
				"origin": string(info.Origin),
				"size":   strconv.Itoa(info.Size),
			})
		}
		return utils.SendSuccess(c, info, "Catalog refreshed")
	}
}
