// Package router binds registry entries to telebot endpoints and writes one
// handler.handled record per routed update.
package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/villagegaming/storebot/core/logger"
	"github.com/villagegaming/storebot/core/netutil"
	tghelpers "github.com/villagegaming/storebot/core/telegram/helpers"
	"github.com/villagegaming/storebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// coder is implemented by errors that carry a stable error code.
type coder interface{ Code() string }

// handled runs h under the handler name and logs its summary. A nil h is
// recorded as skipped.
func handled(c tele.Context, name string, h tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)
	var err error
	if h != nil {
		err = h(c)
	}
	logSummary(ctx, c, summary{name: name, took: time.Since(start), skipped: h == nil, err: err}, extras)
	return err
}

type summary struct {
	name    string
	took    time.Duration
	skipped bool
	err     error
}

func (s summary) status() string {
	switch {
	case s.err != nil:
		return "fail"
	case s.skipped:
		return "skip"
	}
	return "ok"
}

func logSummary(ctx context.Context, c tele.Context, s summary, extras []slog.Attr) {
	stats := middleware.Stats(c)
	outcome := "ok"
	if s.err != nil {
		outcome = "fail"
	}
	attrs := append([]slog.Attr{
		slog.String("status", s.status()),
		slog.String("handler", s.name),
		slog.String("outcome", outcome),
		slog.Int("messages", stats.Messages()),
		slog.Int("edits", stats.Edits()),
		slog.Bool("kb", stats.Keyboard()),
		slog.Bool("webapp", stats.WebApp()),
		slog.Duration("duration", s.took),
	}, extras...)
	level := slog.LevelInfo
	if s.err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(netutil.Redact(s.err.Error()), 256)),
			slog.String("err_code", errorCode(s.err)),
			slog.String("err_kind", netutil.Classify(s.err)),
		)
	}
	logger.LogEvent(ctx, logger.TG, level, "handler.handled", attrs...)
}

// handlerName turns "/Start" or "back to menu" into "start" and "back_to_menu".
func handlerName(name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.Join(strings.Fields(name), "_")
}

func errorCode(err error) string {
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.Join(strings.Fields(code), "_"))
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMEOUT"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	}
	return "HANDLER_ERROR"
}
