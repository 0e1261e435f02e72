// Package config holds the store bot configuration: the shared core
// sections plus catalog, web app and database settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/villagegaming/storebot/core/config"
	coredatabase "github.com/villagegaming/storebot/core/database"
)

const (
	// SourceHTTP reads the catalog from the store API.
	SourceHTTP = "http"
	// SourcePostgres reads the catalog from the games table.
	SourcePostgres = "postgres"

	defaultTimeoutMS = 5000
)

// CatalogConfig selects and tunes the catalog backend.
type CatalogConfig struct {
	Source    string `yaml:"source" envconfig:"CATALOG_SOURCE"`
	BaseURL   string `yaml:"base_url" envconfig:"API_URL"`
	TimeoutMS int    `yaml:"timeout_ms" envconfig:"CATALOG_TIMEOUT_MS"`
	// SeedFile fills an empty games table at start-up (postgres source only).
	SeedFile string `yaml:"seed_file" envconfig:"CATALOG_SEED_FILE"`
}

// Timeout returns the per-request catalog timeout.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// WebAppConfig points at the store web app.
type WebAppConfig struct {
	URL     string `yaml:"url" envconfig:"WEB_APP_URL"`
	Support string `yaml:"support" envconfig:"SUPPORT_CONTACT"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Catalog  CatalogConfig       `yaml:"catalog"`
	WebApp   WebAppConfig        `yaml:"webapp"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// DatabaseConfig returns the database section when the catalog needs one.
func (c *Config) DatabaseConfig() *coredatabase.Config {
	if c == nil || c.Catalog.Source != SourcePostgres {
		return nil
	}
	db := c.Database
	return &db
}

// Load reads path, overlays the environment and validates the result. Every
// section is checked and all problems are reported together.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := errors.Join(coreconfig.Normalize(&cfg.Config), Normalize(&cfg)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the store sections and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	return errors.Join(
		cfg.Catalog.normalize(&cfg.Database),
		cfg.WebApp.normalize(),
	)
}

func (c *CatalogConfig) normalize(db *coredatabase.Config) error {
	var errs []error
	src := strings.ToLower(strings.TrimSpace(c.Source))
	if src == "" {
		src = SourceHTTP
	}
	c.Source = src

	switch {
	case c.TimeoutMS < 0:
		errs = append(errs, errors.New("catalog.timeout_ms must be >= 0"))
	case c.TimeoutMS == 0:
		c.TimeoutMS = defaultTimeoutMS
	}

	switch src {
	case SourceHTTP:
		base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
		if base == "" {
			errs = append(errs, errors.New("catalog.base_url (API_URL) is required for the http source"))
		} else if err := checkURL(base); err != nil {
			errs = append(errs, fmt.Errorf("catalog.base_url: %w", err))
		}
		c.BaseURL = base
	case SourcePostgres:
		normalizeDatabase(db)
		if db.Name == "" {
			errs = append(errs, errors.New("database.name is required for the postgres source"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid catalog.source %q; allowed: http, postgres", src))
	}
	return errors.Join(errs...)
}

func (w *WebAppConfig) normalize() error {
	w.URL = strings.TrimSpace(w.URL)
	w.Support = strings.TrimSpace(w.Support)
	if w.URL == "" {
		return nil
	}
	if err := checkURL(w.URL); err != nil {
		return fmt.Errorf("webapp.url: %w", err)
	}
	return nil
}

func normalizeDatabase(db *coredatabase.Config) {
	db.Name = strings.TrimSpace(db.Name)
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.MaxConnections <= 0 {
		db.MaxConnections = 5
	}
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is missing in %q", raw)
	}
	return nil
}
