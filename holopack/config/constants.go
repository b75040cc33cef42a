package config

import "time"

// Application-wide constants organized by domain

// Catalog Constants
const (
	// Feed
	DefaultFeedURL          = "https://api.tcgdex.net"
	DefaultFeedLanguage     = "en"
	DefaultFeedLimit        = 100
	DefaultFeedConcurrency  = 8
	DefaultFeedRatePerSec   = 10
	FeedRequestTimeout      = 30 * time.Second
	FeedMaxRetries          = 3
	FeedInitialBackoff      = 1 * time.Second
	FeedMaxBackoff          = 16 * time.Second
	CatalogLoadTimeout      = 2 * time.Minute
	DefaultSnapshotKey      = "catalog/snapshot.json"
	DefaultCollectionTarget = 500

	// Placeholders for incomplete feed records
	PlaceholderImage = "https://via.placeholder.com/300x400?text=Card+Image"
	DefaultCardType  = "Normal"
	DefaultRarity    = "Common"
	DefaultSetName   = "Base Set"
)

// Economy Constants
const (
	StartingBalance   = 2500
	DailyGemReward    = 500
	DailyPackID       = "standard"
	DailyPackCount    = 1
	DefaultTimezone   = "UTC"
	DailyRewardMsg    = "You received 500 gems and 1 Standard Pack!"
	DailyRewardRepeat = "You have already claimed your daily reward today"
)

// Database and Performance Constants
const (
	DefaultQueryTimeout = 30 * time.Second
	BatchQueryTimeout   = 30 * time.Second
	StatsCacheSize      = 1024
)

// API and Rate Limiting Constants
const (
	DefaultWebHost        = "0.0.0.0"
	DefaultWebPort        = 8080
	DefaultAllowOrigins   = "http://localhost:3000,http://localhost:5173"
	APIRateLimit          = 100
	APIRateWindow         = time.Minute
	ShutdownTimeout       = 15 * time.Second
	DefaultSearchLimit    = 10
	MaxSearchLimit        = 50
	MaxCardsPerCollectAdd = 50
)
