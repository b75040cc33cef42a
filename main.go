package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ellavondegurechaff/holopack/backend"
	backendconfig "github.com/ellavondegurechaff/holopack/backend/config"
	"github.com/ellavondegurechaff/holopack/backend/handlers"
	"github.com/ellavondegurechaff/holopack/holopack"
	"github.com/ellavondegurechaff/holopack/holopack/config"
	"github.com/ellavondegurechaff/holopack/holopack/logger"
	"github.com/ellavondegurechaff/holopack/internal/domain/accounts"
	"github.com/ellavondegurechaff/holopack/internal/domain/catalog"
	"github.com/ellavondegurechaff/holopack/internal/domain/collection"
	"github.com/ellavondegurechaff/holopack/internal/domain/packs"
	"github.com/ellavondegurechaff/holopack/internal/domain/rarity"
	"github.com/ellavondegurechaff/holopack/internal/domain/shop"
	"github.com/ellavondegurechaff/holopack/internal/gateways/database"
	"github.com/ellavondegurechaff/holopack/internal/gateways/database/repositories"
	"github.com/ellavondegurechaff/holopack/internal/gateways/memory"
	"github.com/ellavondegurechaff/holopack/internal/gateways/spaces"
	"github.com/ellavondegurechaff/holopack/internal/gateways/tcgdex"
	"github.com/ellavondegurechaff/holopack/internal/metrics"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	seedAccounts := flag.String("seed-accounts", "", "comma separated account ids to create on startup")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := holopack.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	if *debug {
		cfg.Log.Level = slog.LevelDebug
	}
	slog.SetDefault(logger.New("HoloPack", cfg.Log.Format, cfg.Log.Level, cfg.Log.AddSource))

	slog.Info("Starting HoloPack",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, *debug, splitIDs(*seedAccounts)); err != nil {
		logger.LogError("HoloPack stopped with error", err)
		os.Exit(-1)
	}
	slog.Info("HoloPack stopped", slog.String("type", "sys"))
}

func run(ctx context.Context, cfg *holopack.Config, debug bool, extraSeeds []string) error {
	shopMetrics, err := metrics.New()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	var (
		accountRepo   accounts.Repository
		ownershipRepo collection.Repository
		snapshots     catalog.SnapshotStore
		db            *database.DB
	)

	switch cfg.Store.Driver {
	case "postgres":
		dbStartTime := time.Now()
		slog.Info("Initializing database connection...", slog.String("type", "sys"))
		db, err = database.New(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("database connection: %w", err)
		}
		defer db.Close()

		if err = db.InitializeSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
		logger.LogSystem("Database ready",
			slog.String("database", cfg.DB.Database),
			slog.Duration("took", time.Since(dbStartTime)))

		accountRepo = repositories.NewAccountRepository(db.BunDB())
		ownershipRepo = repositories.NewOwnershipRepository(db.BunDB())
	default:
		logger.LogSystem("Using in-memory store; state is lost on restart")
		accountRepo = memory.NewAccountRepository()
		ownershipRepo = memory.NewOwnershipRepository()
	}

	switch cfg.Catalog.Cache {
	case "database":
		snapshots = repositories.NewCatalogSnapshotStore(db.BunDB())
	case "spaces":
		snapshots, err = spaces.NewSnapshotStore(ctx, cfg.Spaces)
		if err != nil {
			return fmt.Errorf("init spaces snapshot store: %w", err)
		}
	}

	source := newCatalogSource(cfg.Catalog, snapshots, shopMetrics)

	loadCtx, loadCancel := context.WithTimeout(ctx, config.CatalogLoadTimeout)
	info, err := source.Refresh(loadCtx)
	loadCancel()
	if err != nil {
		logger.LogError("Initial catalog load incomplete", err,
			slog.String("origin", string(info.Origin)),
			slog.Int("cards", info.Size))
	}
	logger.LogSystem("Catalog loaded",
		slog.String("origin", string(info.Origin)),
		slog.Int("cards", info.Size))

	if cfg.Catalog.RefreshMinutes > 0 {
		go refreshCatalog(ctx, source, time.Duration(cfg.Catalog.RefreshMinutes)*time.Minute)
	}

	packCatalog, err := newPackCatalog(cfg.Packs)
	if err != nil {
		return fmt.Errorf("build pack catalog: %w", err)
	}

	location, err := time.LoadLocation(cfg.Economy.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Economy.Timezone, err)
	}

	grant := accounts.Grant{
		Gems:   cfg.Economy.DailyGems(),
		PackID: cfg.Economy.DailyPackID,
		Packs:  cfg.Economy.DailyPacks(),
	}
	accountService := accounts.NewService(accountRepo,
		accounts.WithLocation(location),
		accounts.WithStartingBalance(cfg.Economy.Starting()),
		accounts.WithDailyGrant(grant, dailyMessage(grant, packCatalog)),
	)
	collectionService := collection.NewService(ownershipRepo, source,
		collection.WithCompletionBase(cfg.Catalog.CompletionBase))
	opener := packs.NewOpener(packCatalog, source)
	shopService := shop.NewService(accountService, collectionService, packCatalog, opener,
		shop.WithObserver(shopMetrics))

	for _, id := range append(cfg.Economy.SeedAccounts, extraSeeds...) {
		if _, err = accountService.Ensure(ctx, id); err != nil {
			return fmt.Errorf("seed account %q: %w", id, err)
		}
		logger.LogSystem("Seeded account", slog.String("account_id", id))
	}

	webApp := &handlers.WebApp{
		Config:     backendconfig.NewWebAppConfig(cfg, debug, version, commit),
		Accounts:   accountService,
		Collection: collectionService,
		Shop:       shopService,
		Catalog:    source,
		Metrics:    shopMetrics,
	}
	if db != nil {
		webApp.DB = db
	}

	app := backend.NewApp(ctx, webApp)

	listenErr := make(chan error, 1)
	go func() {
		logger.LogSystem("HTTP server listening", slog.String("addr", cfg.Web.Address()))
		listenErr <- app.Listen(cfg.Web.Address())
	}()

	select {
	case err = <-listenErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server...", slog.String("type", "sys"))
	if err = app.ShutdownWithTimeout(config.ShutdownTimeout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newCatalogSource(cfg holopack.CatalogConfig, snapshots catalog.SnapshotStore, m *metrics.ShopMetrics) *catalog.Source {
	opts := []catalog.SourceOption{
		catalog.WithSeed(!cfg.DisableSeed),
		catalog.WithLoadHook(m.CatalogLoaded),
	}
	if snapshots != nil {
		opts = append(opts, catalog.WithSnapshotStore(snapshots))
	}

	if cfg.Offline {
		logger.LogSystem("Catalog feed disabled, serving cache or seed cards")
		return catalog.NewSource(nil, opts...)
	}

	feed := tcgdex.NewClient(
		tcgdex.WithBaseURL(cfg.FeedURL),
		tcgdex.WithLanguage(cfg.Language),
		tcgdex.WithLimit(cfg.CardLimit()),
		tcgdex.WithConcurrency(cfg.Concurrency),
		tcgdex.WithRateLimit(cfg.RatePerSecond),
	)
	return catalog.NewSource(feed, opts...)
}

// refreshCatalog reloads the catalog on every tick until ctx is done. A
// failed reload keeps serving the previous snapshot.
func refreshCatalog(ctx context.Context, source *catalog.Source, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, config.CatalogLoadTimeout)
			info, err := source.Refresh(refreshCtx)
			cancel()
			if err != nil {
				logger.LogError("Scheduled catalog refresh failed", err,
					slog.String("origin", string(info.Origin)))
				continue
			}
			slog.Debug("Catalog refreshed",
				slog.String("type", "feed"),
				slog.Int("cards", info.Size))
		case <-ctx.Done():
			return
		}
	}
}

func newPackCatalog(defs []holopack.PackConfig) (*catalog.PackCatalog, error) {
	out := make([]catalog.Pack, 0, len(defs))
	for _, p := range defs {
		dist, err := rarity.ParseSequence(p.Distribution)
		if err != nil {
			return nil, fmt.Errorf("pack %q: %w", p.ID, err)
		}
		out = append(out, catalog.Pack{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Price:        p.Price,
			Image:        p.Image,
			CardsPerPack: p.CardsPerPack,
			Distribution: dist,
		})
	}
	return catalog.NewPackCatalog(out)
}

func dailyMessage(grant accounts.Grant, packCatalog *catalog.PackCatalog) string {
	if grant.Packs <= 0 {
		return fmt.Sprintf("You received %d gems!", grant.Gems)
	}
	name := grant.PackID
	if p, err := packCatalog.Get(grant.PackID); err == nil {
		name = p.Name
	}
	return fmt.Sprintf("You received %d gems and %d %s!", grant.Gems, grant.Packs, name)
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
