package holopack

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/ellavondegurechaff/holopack/holopack/config"
)

// LoadConfig reads the TOML file at path, fills defaults, applies HOLOPACK_*
// environment overrides and validates the result. A missing file is not an
// error: the defaults plus environment are enough to boot the memory store.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		slog.Warn("Config file not found, using defaults",
			slog.String("type", "sys"),
			slog.String("path", path))
	default:
		return nil, fmt.Errorf("failed to open config: %w", err)
	}

	if err = env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Web     WebConfig     `toml:"web"`
	Store   StoreConfig   `toml:"store"`
	DB      DBConfig      `toml:"db"`
	Catalog CatalogConfig `toml:"catalog"`
	Economy EconomyConfig `toml:"economy"`
	Packs   []PackConfig  `toml:"packs" validate:"dive"`
	Spaces  SpacesConfig  `toml:"spaces"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level" env:"HOLOPACK_LOG_LEVEL"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type WebConfig struct {
	Host         string `toml:"host" env:"HOLOPACK_WEB_HOST"`
	Port         int    `toml:"port" env:"HOLOPACK_WEB_PORT" validate:"min=1,max=65535"`
	AllowOrigins string `toml:"allow_origins" env:"HOLOPACK_WEB_ALLOW_ORIGINS"`
	// RateLimit is requests per window and per client; 0 disables limiting.
	RateLimit         *int   `toml:"rate_limit" validate:"omitempty,min=0"`
	RateWindowSeconds int    `toml:"rate_window_seconds" validate:"min=0"`
	AdminToken        string `toml:"admin_token" env:"HOLOPACK_ADMIN_TOKEN"`
	// TrustedProxies may set X-Forwarded-For; IPs or CIDR ranges.
	TrustedProxies []string `toml:"trusted_proxies" env:"HOLOPACK_WEB_TRUSTED_PROXIES" envSeparator:"," validate:"dive,cidr|ip"`
}

type StoreConfig struct {
	Driver string `toml:"driver" env:"HOLOPACK_STORE" validate:"oneof=memory postgres"`
}

type DBConfig struct {
	Host         string `toml:"host" env:"HOLOPACK_DB_HOST"`
	Port         int    `toml:"port" env:"HOLOPACK_DB_PORT"`
	User         string `toml:"user" env:"HOLOPACK_DB_USER"`
	Password     string `toml:"password" env:"HOLOPACK_DB_PASSWORD"`
	Database     string `toml:"database" env:"HOLOPACK_DB_NAME"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
	SSLMode      string `toml:"sslmode" env:"HOLOPACK_DB_SSLMODE"`
}

type CatalogConfig struct {
	FeedURL        string `toml:"feed_url" env:"HOLOPACK_FEED_URL" validate:"omitempty,url"`
	Language       string `toml:"language"`
	// Limit caps how many feed cards are fetched; 0 keeps every card.
	Limit          *int   `toml:"limit" validate:"omitempty,min=0"`
	Concurrency    int    `toml:"concurrency" validate:"min=0"`
	RatePerSecond  int    `toml:"rate_per_second" validate:"min=0"`
	RefreshMinutes int    `toml:"refresh_minutes" env:"HOLOPACK_CATALOG_REFRESH_MINUTES" validate:"min=0"`
	// Cache selects where the last good snapshot is kept: none, database or spaces.
	Cache          string `toml:"cache" env:"HOLOPACK_CATALOG_CACHE" validate:"oneof=none database spaces"`
	// DisableSeed turns off the built-in seed cards used when feed and cache both fail.
	DisableSeed    bool   `toml:"disable_seed"`
	Offline        bool   `toml:"offline" env:"HOLOPACK_CATALOG_OFFLINE"`
	CompletionBase int    `toml:"completion_base" validate:"min=0"`
}

type EconomyConfig struct {
	StartingBalance *int64   `toml:"starting_balance" validate:"omitempty,min=0"`
	DailyReward     *int64   `toml:"daily_reward" validate:"omitempty,min=0"`
	DailyPackID     string   `toml:"daily_pack_id"`
	DailyPackCount  *int     `toml:"daily_pack_count" validate:"omitempty,min=0"`
	Timezone        string   `toml:"timezone" env:"HOLOPACK_TIMEZONE"`
	SeedAccounts    []string `toml:"seed_accounts" env:"HOLOPACK_SEED_ACCOUNTS" envSeparator:","`
}

type PackConfig struct {
	ID           string   `toml:"id" validate:"required"`
	Name         string   `toml:"name" validate:"required"`
	Description  string   `toml:"description"`
	Price        int64    `toml:"price" validate:"gt=0"`
	Image        string   `toml:"image"`
	CardsPerPack int      `toml:"cards_per_pack" validate:"min=1"`
	Distribution []string `toml:"distribution"`
}

type SpacesConfig struct {
	Key         string `toml:"key" env:"HOLOPACK_SPACES_KEY"`
	Secret      string `toml:"secret" env:"HOLOPACK_SPACES_SECRET"`
	Region      string `toml:"region" env:"HOLOPACK_SPACES_REGION"`
	Bucket      string `toml:"bucket" env:"HOLOPACK_SPACES_BUCKET"`
	// Endpoint overrides the DigitalOcean endpoint derived from the region.
	Endpoint    string `toml:"endpoint" env:"HOLOPACK_SPACES_ENDPOINT" validate:"omitempty,url"`
	SnapshotKey string `toml:"snapshot_key"`
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Packs))
	for _, p := range c.Packs {
		if seen[p.ID] {
			return fmt.Errorf("invalid config: duplicate pack id %q", p.ID)
		}
		seen[p.ID] = true
		if len(p.Distribution) > 0 && len(p.Distribution) != p.CardsPerPack {
			return fmt.Errorf("invalid config: pack %q distribution has %d slots, cards_per_pack is %d",
				p.ID, len(p.Distribution), p.CardsPerPack)
		}
	}

	if c.Economy.DailyPacks() > 0 && !seen[c.Economy.DailyPackID] {
		return fmt.Errorf("invalid config: daily pack %q is not a configured pack", c.Economy.DailyPackID)
	}
	if c.Catalog.Cache == "database" && c.Store.Driver != "postgres" {
		return fmt.Errorf("invalid config: catalog cache %q requires the postgres store", c.Catalog.Cache)
	}
	if c.Catalog.Cache == "spaces" && c.Spaces.Bucket == "" {
		return fmt.Errorf("invalid config: catalog cache %q requires spaces.bucket", c.Catalog.Cache)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Web.Host == "" {
		c.Web.Host = config.DefaultWebHost
	}
	if c.Web.Port == 0 {
		c.Web.Port = config.DefaultWebPort
	}
	if c.Web.AllowOrigins == "" {
		c.Web.AllowOrigins = config.DefaultAllowOrigins
	}
	setDefault(&c.Web.RateLimit, config.APIRateLimit)
	if c.Web.RateWindowSeconds == 0 {
		c.Web.RateWindowSeconds = int(config.APIRateWindow.Seconds())
	}

	c.Store.Driver = strings.ToLower(c.Store.Driver)
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.DB.SSLMode == "" {
		c.DB.SSLMode = "disable"
	}

	if c.Catalog.FeedURL == "" {
		c.Catalog.FeedURL = config.DefaultFeedURL
	}
	if c.Catalog.Language == "" {
		c.Catalog.Language = config.DefaultFeedLanguage
	}
	setDefault(&c.Catalog.Limit, config.DefaultFeedLimit)
	if c.Catalog.Concurrency == 0 {
		c.Catalog.Concurrency = config.DefaultFeedConcurrency
	}
	if c.Catalog.RatePerSecond == 0 {
		c.Catalog.RatePerSecond = config.DefaultFeedRatePerSec
	}
	if c.Catalog.Cache == "" {
		c.Catalog.Cache = "none"
	}
	if c.Catalog.CompletionBase == 0 {
		c.Catalog.CompletionBase = config.DefaultCollectionTarget
	}

	setDefault(&c.Economy.StartingBalance, config.StartingBalance)
	setDefault(&c.Economy.DailyReward, config.DailyGemReward)
	if c.Economy.DailyPackID == "" {
		c.Economy.DailyPackID = config.DailyPackID
	}
	setDefault(&c.Economy.DailyPackCount, config.DailyPackCount)
	if c.Economy.Timezone == "" {
		c.Economy.Timezone = config.DefaultTimezone
	}

	if len(c.Packs) == 0 {
		c.Packs = DefaultPacks()
	}

	if c.Spaces.SnapshotKey == "" {
		c.Spaces.SnapshotKey = config.DefaultSnapshotKey
	}
}

// DefaultPacks is the shop offered when the config file lists none.
func DefaultPacks() []PackConfig {
	return []PackConfig{
		{
			ID:           "standard",
			Name:         "Standard Pack",
			Description:  "Contains 5 random cards with at least 1 rare or better",
			Price:        500,
			Image:        "https://images.pokemontcg.io/base1/4_hires.png",
			CardsPerPack: 5,
			Distribution: []string{"Common", "Common", "Common", "Uncommon", "Rare"},
		},
		{
			ID:           "premium",
			Name:         "Premium Pack",
			Description:  "Contains 5 random cards with at least 1 holographic rare or better",
			Price:        1000,
			Image:        "https://images.pokemontcg.io/base1/2_hires.png",
			CardsPerPack: 5,
			Distribution: []string{"Common", "Common", "Uncommon", "Rare Holo", "Ultra Rare"},
		},
		{
			ID:           "cosmic",
			Name:         "Cosmic Eclipse",
			Description:  "Special edition pack with rare cosmic variants and holographic cards",
			Price:        1200,
			Image:        "https://images.pokemontcg.io/sm12/1_hires.png",
			CardsPerPack: 5,
			Distribution: []string{"Common", "Uncommon", "Rare", "Rare Holo", "Secret Rare"},
		},
	}
}

// setDefault fills an unset field. An explicit zero in the file is kept.
func setDefault[T any](field **T, value T) {
	if *field == nil {
		*field = &value
	}
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

func (c WebConfig) RequestsPerWindow() int {
	return valueOr(c.RateLimit, config.APIRateLimit)
}

func (c CatalogConfig) CardLimit() int {
	return valueOr(c.Limit, config.DefaultFeedLimit)
}

func (c EconomyConfig) Starting() int64 {
	return valueOr(c.StartingBalance, config.StartingBalance)
}

func (c EconomyConfig) DailyGems() int64 {
	return valueOr(c.DailyReward, config.DailyGemReward)
}

func (c EconomyConfig) DailyPacks() int {
	return valueOr(c.DailyPackCount, config.DailyPackCount)
}

func (c WebConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
