package config

import (
	"strings"
	"time"

	"github.com/ellavondegurechaff/holopack/holopack"
)

// WebAppConfig contains web-specific configuration
type WebAppConfig struct {
	Config      *holopack.Config
	Debug       bool
	Environment string
	Version     string
	Commit      string
}

// NewWebAppConfig creates a new web app configuration
func NewWebAppConfig(cfg *holopack.Config, debug bool, version, commit string) *WebAppConfig {
	environment := "production"
	if debug {
		environment = "development"
	}

	return &WebAppConfig{
		Config:      cfg,
		Debug:       debug,
		Environment: environment,
		Version:     version,
		Commit:      commit,
	}
}

// GetWebConfig returns the web configuration
func (w *WebAppConfig) GetWebConfig() holopack.WebConfig {
	return w.Config.Web
}

func (w *WebAppConfig) Address() string {
	return w.Config.Web.Address()
}

func (w *WebAppConfig) RateWindow() time.Duration {
	return time.Duration(w.Config.Web.RateWindowSeconds) * time.Second
}

// AllowOrigins normalizes the comma separated origin list for the CORS middleware
func (w *WebAppConfig) AllowOrigins() string {
	parts := strings.Split(w.Config.Web.AllowOrigins, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
