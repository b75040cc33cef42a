package backend

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ellavondegurechaff/holopack/backend/handlers"
	"github.com/ellavondegurechaff/holopack/backend/middleware"
	"github.com/ellavondegurechaff/holopack/backend/utils"
)

// NewApp builds the fiber app with middleware and routes. Background work
// started by the middleware stops when ctx is done.
func NewApp(ctx context.Context, webApp *handlers.WebApp) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "HoloPack API",
		ServerHeader:          "HoloPack",
		ErrorHandler:          middleware.CustomErrorHandler,
		DisableStartupMessage: true,
		// X-Forwarded-For is honored only from trusted proxies.
		EnableTrustedProxyCheck: true,
		TrustedProxies:          webApp.Config.Config.Web.TrustedProxies,
		ProxyHeader:             fiber.HeaderXForwardedFor,
	})

	var observer middleware.RequestObserver
	if webApp.Metrics != nil {
		observer = webApp.Metrics
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware(observer))
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: webApp.Config.AllowOrigins(),
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))

	setupRoutes(ctx, app, webApp)
	return app
}

// setupRoutes configures all application routes
func setupRoutes(ctx context.Context, app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))
	if webApp.Metrics != nil {
		app.Get("/metrics", handlers.MetricsHandler(webApp))
	}

	cfg := webApp.Config
	api := app.Group("/api", middleware.RateLimit(ctx, cfg.Config.Web.RequestsPerWindow(), cfg.RateWindow()))

	api.Get("/cards", handlers.ListCards(webApp))
	api.Get("/cards/search", handlers.SearchCards(webApp))
	api.Get("/cards/:cardID", handlers.GetCard(webApp))
	api.Get("/packs", handlers.ListPacks(webApp))

	api.Post("/accounts", handlers.CreateAccount(webApp))

	account := api.Group("/accounts/:accountID")
	account.Get("/", handlers.GetAccount(webApp))
	account.Get("/balance", handlers.GetBalance(webApp))
	account.Post("/daily", handlers.ClaimDaily(webApp))

	account.Get("/packs", handlers.PackInventory(webApp))
	account.Post("/packs/:packID/open", handlers.PreviewPack(webApp))
	account.Post("/packs/:packID/purchase", handlers.PurchasePack(webApp))
	account.Post("/packs/:packID/open-owned", handlers.OpenOwnedPack(webApp))

	account.Get("/cards/:cardID", handlers.GetOwnedCard(webApp))
	account.Get("/collection", handlers.GetCollection(webApp))
	account.Post("/collection", handlers.AddToCollection(webApp))
	account.Get("/collection/filter", handlers.FilterCollection(webApp))
	account.Get("/collection/sort", handlers.SortCollection(webApp))
	account.Get("/collection/stats", handlers.CollectionStats(webApp))
	account.Patch("/collection/entries/:entryID", handlers.SetFavorite(webApp))

	admin := api.Group("/admin", middleware.AdminRequired(cfg.Config.Web.AdminToken))
	admin.Post("/catalog/refresh", handlers.RefreshCatalog(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("type", "http"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", utils.GetIPAddress(c)),
		)
		return utils.SendNotFound(c, "The requested endpoint does not exist")
	})
}
