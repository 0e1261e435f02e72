package router

import (
	"context"
	"log/slog"

	"github.com/villagegaming/storebot/core/logger"
	tg "github.com/villagegaming/storebot/core/telegram"
	"github.com/villagegaming/storebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	Admins        middleware.AdminChecker
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes binds every registered command, and each of its aliases,
// to one wrapped handler.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	adminOnly := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		Checker:  opts.Admins,
		OnReject: opts.OnAdminReject,
	})

	entries := reg.Commands()
	var routes []tg.Route
	for _, e := range entries {
		name, inner := handlerName(e.Name), e.Handler
		h := func(c tele.Context) error { return handled(c, name, inner) }
		if e.AdminOnly {
			h = adminOnly(h)
		}
		h = middleware.LoggerMiddleware(middleware.RecoverMiddleware(h))
		for _, endpoint := range append([]string{e.Name}, e.Aliases...) {
			routes = append(routes, tg.Route{Endpoint: endpoint, Handler: h})
		}
	}

	logger.Info(context.Background(), "tg.wire", "tg.wire",
		slog.String("status", "complete"),
		slog.Int("commands", len(entries)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
		slog.Int("routes", len(routes)),
	)
	return routes
}
