package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/villagegaming/storebot/core/config"
	coretelegram "github.com/villagegaming/storebot/core/telegram"
)

type stubConfig struct{ core *coreconfig.Config }

func (s stubConfig) CoreConfig() *coreconfig.Config { return s.core }

type stubApp struct {
	closed  int
	started bool
	stopped bool
}

func (a *stubApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { a.started = true; return nil },
		OnStop:  func(context.Context, coretelegram.Runtime) error { a.stopped = true; return nil },
	}, nil
}

func (a *stubApp) Close() error { a.closed++; return nil }

func TestResolveConfigPath(t *testing.T) {
	t.Setenv("STORE_CONFIG", "/env.yaml")

	p, err := ResolveConfigPath("/flag.yaml", "STORE_CONFIG", "/default.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/flag.yaml", p)

	p, err = ResolveConfigPath("", "STORE_CONFIG", "/default.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/env.yaml", p)

	t.Setenv("STORE_CONFIG", "")
	p, err = ResolveConfigPath("", "STORE_CONFIG", "/default.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/default.yaml", p)

	_, err = ResolveConfigPath("", "STORE_CONFIG", "")
	assert.Error(t, err)
}

func TestRunWiresLifecycle(t *testing.T) {
	app := &stubApp{}
	var loadedPath string
	err := Run(context.Background(), Options{
		ConfigPath: "/cfg.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loadedPath = path
			return stubConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(context.Context, ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "/cfg.yaml", loadedPath)
	assert.True(t, app.started)
	assert.True(t, app.stopped)
	assert.Equal(t, 1, app.closed)
}

func TestRunStopsOnBootstrapError(t *testing.T) {
	ran := false
	err := Run(context.Background(), Options{
		ConfigPath: "/cfg.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) { return stubConfig{core: &coreconfig.Config{}}, nil },
		Bootstrap: func(context.Context, ConfigCarrier) (TelegramApp, error) {
			return nil, errors.New("db down")
		},
		RunTelegram: func(context.Context, coretelegram.RunOptions) error { ran = true; return nil },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.False(t, ran)
}

func TestRunRejectsMissingCoreConfig(t *testing.T) {
	err := Run(context.Background(), Options{
		ConfigPath: "/cfg.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) { return stubConfig{}, nil },
		Bootstrap:  func(context.Context, ConfigCarrier) (TelegramApp, error) { return &stubApp{}, nil },
	})
	assert.Error(t, err)
}
