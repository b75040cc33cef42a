package holopack

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/holopack/holopack/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, config.DefaultWebPort, cfg.Web.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Web.Address())
	assert.Equal(t, config.DefaultFeedURL, cfg.Catalog.FeedURL)
	assert.Equal(t, "none", cfg.Catalog.Cache)
	assert.Equal(t, int64(config.StartingBalance), cfg.Economy.Starting())
	assert.Equal(t, config.APIRateLimit, cfg.Web.RequestsPerWindow())
	assert.Equal(t, config.DefaultFeedLimit, cfg.Catalog.CardLimit())
	assert.Equal(t, config.DailyPackCount, cfg.Economy.DailyPacks())
	assert.Equal(t, "UTC", cfg.Economy.Timezone)
	assert.Equal(t, config.DefaultSnapshotKey, cfg.Spaces.SnapshotKey)

	require.Len(t, cfg.Packs, 3)
	assert.Equal(t, "standard", cfg.Packs[0].ID)
	assert.Equal(t, int64(500), cfg.Packs[0].Price)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[web]
port = 9000
admin_token = "tok"

[economy]
starting_balance = 100
timezone = "Asia/Tokyo"
daily_pack_id = "mini"
seed_accounts = ["ash", "misty"]

[[packs]]
id = "mini"
name = "Mini Pack"
price = 50
cards_per_pack = 2
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 9000, cfg.Web.Port)
	assert.Equal(t, "tok", cfg.Web.AdminToken)
	assert.Equal(t, int64(100), cfg.Economy.Starting())
	assert.Equal(t, []string{"ash", "misty"}, cfg.Economy.SeedAccounts)
	require.Len(t, cfg.Packs, 1)
	assert.Equal(t, "mini", cfg.Packs[0].ID)
}

func TestLoadConfig_ExplicitZerosAreKept(t *testing.T) {
	path := writeConfig(t, `
[web]
rate_limit = 0

[catalog]
limit = 0

[economy]
starting_balance = 0
daily_reward = 0
daily_pack_count = 0
daily_pack_id = "not-a-pack"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Web.RequestsPerWindow())
	assert.Equal(t, 0, cfg.Catalog.CardLimit())
	assert.Equal(t, int64(0), cfg.Economy.Starting())
	assert.Equal(t, int64(0), cfg.Economy.DailyGems())
	assert.Equal(t, 0, cfg.Economy.DailyPacks())
}

func TestLoadConfig_TrustedProxies(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[web]\ntrusted_proxies = [\"10.0.0.0/8\", \"127.0.0.1\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Web.TrustedProxies)

	_, err = LoadConfig(writeConfig(t, "[web]\ntrusted_proxies = [\"not-an-ip\"]\n"))
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[web]
port = 9000
`)
	t.Setenv("HOLOPACK_WEB_PORT", "9100")
	t.Setenv("HOLOPACK_ADMIN_TOKEN", "from-env")
	t.Setenv("HOLOPACK_SEED_ACCOUNTS", "brock,gary")
	t.Setenv("HOLOPACK_CATALOG_OFFLINE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Web.Port)
	assert.Equal(t, "from-env", cfg.Web.AdminToken)
	assert.Equal(t, []string{"brock", "gary"}, cfg.Economy.SeedAccounts)
	assert.True(t, cfg.Catalog.Offline)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "bad toml",
			body: `[web`,
			want: "failed to decode config",
		},
		{
			name: "unknown store",
			body: "[store]\ndriver = \"sqlite\"\n",
			want: "invalid config",
		},
		{
			name: "duplicate pack",
			body: `
[[packs]]
id = "a"
name = "A"
price = 1
cards_per_pack = 1
[[packs]]
id = "a"
name = "A again"
price = 1
cards_per_pack = 1
`,
			want: `duplicate pack id "a"`,
		},
		{
			name: "distribution length",
			body: `
[[packs]]
id = "standard"
name = "Standard"
price = 1
cards_per_pack = 3
distribution = ["Common"]
`,
			want: "distribution has 1 slots",
		},
		{
			name: "daily pack not offered",
			body: `
[economy]
daily_pack_id = "missing"
`,
			want: `daily pack "missing"`,
		},
		{
			name: "database cache needs postgres",
			body: "[catalog]\ncache = \"database\"\n",
			want: "requires the postgres store",
		},
		{
			name: "spaces cache needs bucket",
			body: "[catalog]\ncache = \"spaces\"\n",
			want: "requires spaces.bucket",
		},
		{
			name: "negative rate limit",
			body: "[web]\nrate_limit = -1\n",
			want: "invalid config",
		},
		{
			name: "non positive price",
			body: `
[[packs]]
id = "standard"
name = "Standard"
price = 0
cards_per_pack = 1
`,
			want: "invalid config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
