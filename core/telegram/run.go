package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	coreconfig "github.com/villagegaming/storebot/core/config"
	"github.com/villagegaming/storebot/core/logger"
	"github.com/villagegaming/storebot/core/netutil"
	tghelpers "github.com/villagegaming/storebot/core/telegram/helpers"
	tgsender "github.com/villagegaming/storebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a named global middleware installed with bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route binds a handler to a telebot endpoint: a "/command" or one of the
// tele.On* constants.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions configures RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	// Dispatcher replaces the one built from DispatcherOptions.
	Dispatcher *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// HTTPClient overrides the Bot API client; nil builds one with retries.
	HTTPClient *http.Client

	// KeepWebhook skips deleteWebhook before long polling.
	KeepWebhook bool
	// DisableCommandMenu skips setMyCommands at start-up.
	DisableCommandMenu bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime is handed to the lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram starts the bot and blocks until ctx is done or the poller
// stops. A cancelled ctx is a clean shutdown and returns nil.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	start := time.Now()
	poller := NewPoller(opts.Config)
	bot, err := tele.NewBot(tele.Settings{
		Token:     opts.Config.Telegram.Token,
		Poller:    poller,
		Client:    apiClient(opts),
		ParseMode: tele.ModeHTML,
		OnError:   logBotError,
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "bot.mode", append(pollerAttrs(poller),
		slog.String("bot", bot.Me.Username),
		slog.Duration("duration", time.Since(start)),
	)...)

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	tghelpers.SetDispatcher(dispatcher)
	defer func() {
		dispatcher.Close()
		tghelpers.SetDispatcher(nil)
	}()
	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: opts.Registry}

	if _, polling := poller.(*tele.LongPoller); polling && !opts.KeepWebhook {
		removeWebhook(ctx, bot)
	}
	install(bot, opts)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}
	runErr := serve(ctx, bot)
	if opts.OnStop != nil {
		if err := opts.OnStop(context.WithoutCancel(ctx), rt); err != nil {
			return err
		}
	}
	return runErr
}

func apiClient(opts RunOptions) *http.Client {
	if opts.HTTPClient != nil {
		return opts.HTTPClient
	}
	poll := longPollTimeout(opts.Config)
	return netutil.NewClient(netutil.ClientOptions{
		Timeout:         poll + 20*time.Second,
		ResponseTimeout: poll + 15*time.Second,
		RetryAttempts:   3,
	})
}

func logBotError(err error, c tele.Context) {
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.Error(ctx, "tg", "tg.error",
		slog.String("err", logger.SanitizeLimit(netutil.Redact(err.Error()), 256)),
		slog.String("err_kind", netutil.Classify(err)),
	)
}

// removeWebhook clears a webhook left by an earlier deployment; Telegram
// refuses getUpdates while one is set.
func removeWebhook(ctx context.Context, bot *tele.Bot) {
	if err := bot.RemoveWebhook(false); err != nil {
		logger.TG.LogAttrs(ctx, slog.LevelWarn, "webhook.delete",
			slog.String("status", "fail"),
			slog.String("err", netutil.Redact(err.Error())),
		)
		return
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "webhook.delete", slog.String("status", "ok"))
}

func install(bot *tele.Bot, opts RunOptions) {
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, r := range opts.Routes {
		if r.Endpoint != nil && r.Handler != nil {
			bot.Handle(r.Endpoint, r.Handler)
		}
	}
	if !opts.DisableCommandMenu {
		InitBotCommands(bot, opts.Registry)
	}
}

func serve(ctx context.Context, bot *tele.Bot) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bot.Start()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		bot.Stop()
		<-done
	}
	if err := ctx.Err(); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
