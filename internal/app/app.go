// Package app wires the store domain into the Telegram runtime.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/villagegaming/storebot/core/bootstrap"
	"github.com/villagegaming/storebot/core/logger"
	"github.com/villagegaming/storebot/core/netutil"
	coretelegram "github.com/villagegaming/storebot/core/telegram"
	"github.com/villagegaming/storebot/core/telegram/sender"
	"github.com/villagegaming/storebot/internal/auth"
	"github.com/villagegaming/storebot/internal/catalog"
	"github.com/villagegaming/storebot/internal/config"
	"github.com/villagegaming/storebot/internal/router"
	"github.com/villagegaming/storebot/internal/screen"
)

// App holds the bot's long-lived components.
type App struct {
	cfg      *config.Config
	gate     *auth.Gate
	catalog  *catalog.Client
	router   *router.Router
	registry *coretelegram.Registry
	infra    *bootstrap.Result
}

// Bootstrap initializes logging and, for the postgres source, the database,
// then builds the App.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	var modules bootstrap.Modules
	if cfg.Catalog.Source == config.SourcePostgres && cfg.Catalog.SeedFile != "" {
		modules.Seeders = append(modules.Seeders, catalog.FileSeeder{Path: cfg.Catalog.SeedFile})
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.DatabaseConfig(),
		Modules:  modules,
	})
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, res.DB)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	a.infra = res
	return a, nil
}

// New builds the App. db is required only for the postgres catalog source.
func New(cfg *config.Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	src, err := newSource(cfg, db)
	if err != nil {
		return nil, err
	}

	gate := auth.NewGate(auth.NewAdminSet(cfg.Telegram.AdminIDs...))
	client := catalog.NewClient(src, cfg.Catalog.Timeout())
	screens := screen.Builder{WebAppURL: cfg.WebApp.URL, Support: cfg.WebApp.Support}

	a := &App{
		cfg:      cfg,
		gate:     gate,
		catalog:  client,
		router:   router.New(gate, client, screens),
		registry: coretelegram.NewRegistry(),
	}
	if err := a.register(); err != nil {
		return nil, err
	}
	return a, nil
}

func newSource(cfg *config.Config, db *sqlx.DB) (catalog.Source, error) {
	switch cfg.Catalog.Source {
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("app: postgres catalog source needs a database connection")
		}
		return catalog.NewPostgresSource(db), nil
	case config.SourceHTTP, "":
		// Catalog reads are single-attempt; the client timeout is a backstop
		// behind the per-request context deadline.
		httpClient := netutil.NewClient(netutil.ClientOptions{
			Timeout:         cfg.Catalog.Timeout(),
			ResponseTimeout: cfg.Catalog.Timeout(),
		})
		return catalog.NewHTTPSource(cfg.Catalog.BaseURL, httpClient), nil
	}
	return nil, fmt.Errorf("app: unknown catalog source %q", cfg.Catalog.Source)
}

// Catalog exposes the catalog client.
func (a *App) Catalog() *catalog.Client { return a.catalog }

// Router exposes the event router.
func (a *App) Router() *router.Router { return a.router }

// Close releases infrastructure opened by Bootstrap.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.infra.Close()
}

// TelegramRunOptions assembles middlewares and routes for the runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	fb := fallbacks{app: a}
	routes := a.routes(fb)
	return coretelegram.RunOptions{
		Config:   &a.cfg.Config,
		Registry: a.registry,
		DispatcherOptions: sender.Options{
			Workers:    4,
			MaxRetries: 2,
		},
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, fb.RateLimited()),
		Routes:      routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			logger.Info(ctx, "app", "app.start",
				slog.String("source", a.cfg.Catalog.Source),
				slog.String("url", a.cfg.Catalog.BaseURL),
				slog.Int("admins", len(a.gate.Admins())),
				slog.Int("routes", len(routes)),
			)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			logger.Info(ctx, "app", "app.stop",
				slog.Uint64("send_errors", rt.Dispatcher.ErrorCount()),
			)
			return nil
		},
	}, nil
}
