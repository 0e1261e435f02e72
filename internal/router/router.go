// Package router maps chat events to screens. It holds no per-user state:
// every event is resolved from the event itself, the admin gate and a fresh
// catalog read.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/villagegaming/storebot/core/logger"
	"github.com/villagegaming/storebot/internal/auth"
	"github.com/villagegaming/storebot/internal/catalog"
	"github.com/villagegaming/storebot/internal/screen"
)

const component = "router"

// Gate is the admin check the router needs.
type Gate interface {
	IsAdmin(userID int64) bool
	Grant(ctx context.Context, requester, target int64) error
	Admins() []int64
}

// Catalog is the read side of the catalog client.
type Catalog interface {
	ListItems(ctx context.Context) []catalog.Item
	GetItem(ctx context.Context, id int64) (catalog.Item, bool)
}

// Router turns events into results.
type Router struct {
	gate    Gate
	catalog Catalog
	screens screen.Builder
	newID   func() string
}

// New wires a router.
func New(gate Gate, cat Catalog, screens screen.Builder) *Router {
	return &Router{
		gate:    gate,
		catalog: cat,
		screens: screens,
		newID:   func() string { return uuid.NewString() },
	}
}

// Handle routes one event. It never fails: unknown events and panics
// become the generic error screen.
func (r *Router) Handle(ctx context.Context, ev Event) (res Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res = r.incident(ctx, ev, fmt.Errorf("panic: %v", rec), slog.LevelError)
		}
		if logger.ShouldSampleDebug() {
			logger.Debug(ctx, component, "route",
				slog.String("source", ev.Source.String()),
				slog.String("screen", string(res.Screen.Kind)),
				slog.String("render", res.Mode.String()),
				slog.Duration("duration", logger.Took(start)),
			)
		}
	}()

	switch ev.Source {
	case SourceCommand:
		return r.command(ctx, ev)
	case SourceCallback:
		return r.callback(ctx, ev)
	}
	return r.incident(ctx, ev, errors.New("unhandled event"), slog.LevelWarn)
}

func (r *Router) command(ctx context.Context, ev Event) Result {
	u := ev.User
	switch ev.Command {
	case "start":
		s := r.mainMenu(u)
		if len(ev.Args) > 0 && strings.EqualFold(ev.Args[0], "debug") {
			s = screen.WithUserID(s, u.ID)
		}
		return send(s)
	case "catalog":
		return send(r.catalogList(ctx))
	case "help":
		return send(r.screens.Help(r.isAdmin(u.ID)))
	case "id":
		return send(r.screens.Identity(u.ID, u.FirstName, r.isAdmin(u.ID)))
	case "admin":
		if !r.isAdmin(u.ID) {
			return send(r.denied(ctx, ev))
		}
		return send(r.screens.AdminPanel(u.FirstName, u.ID))
	case "admins":
		if !r.isAdmin(u.ID) {
			return send(r.denied(ctx, ev))
		}
		return send(r.screens.AdminList(r.gate.Admins()))
	case "addadmin":
		return send(r.addAdmin(ctx, ev))
	}
	return r.incident(ctx, ev, fmt.Errorf("unknown command %q", ev.Command), slog.LevelWarn)
}

func (r *Router) addAdmin(ctx context.Context, ev Event) screen.Screen {
	if !r.isAdmin(ev.User.ID) {
		return r.denied(ctx, ev)
	}
	if len(ev.Args) != 1 {
		return r.screens.AddAdminUsage()
	}
	target, ok := auth.ParseUserID(ev.Args[0])
	if !ok {
		return r.screens.AddAdminMalformed(ev.Args[0])
	}
	err := r.gate.Grant(ctx, ev.User.ID, target)
	switch {
	case err == nil:
		return r.screens.AdminGranted(target)
	case errors.Is(err, auth.ErrAlreadyAdmin):
		return r.screens.AlreadyAdmin(target)
	case errors.Is(err, auth.ErrNotAuthorized):
		return r.denied(ctx, ev)
	default:
		return r.screens.AddAdminMalformed(ev.Args[0])
	}
}

func (r *Router) callback(ctx context.Context, ev Event) Result {
	tok, err := ParseToken(ev.Data)
	if errors.Is(err, ErrMalformedToken) {
		logger.Warn(ctx, component, "token.malformed",
			slog.String("data", logger.SanitizeLimit(ev.Data, 64)),
			slog.Int64("user_id", ev.User.ID),
		)
		return edit(r.screens.ErrorMalformed())
	}
	if err != nil {
		return r.incident(ctx, ev, err, slog.LevelWarn)
	}

	switch tok.Kind {
	case TokenCatalog:
		return edit(r.catalogList(ctx))
	case TokenHelp:
		return edit(r.screens.Help(r.isAdmin(ev.User.ID)))
	case TokenBackToMenu:
		return edit(r.mainMenu(ev.User))
	case TokenAdminPanel:
		if !r.isAdmin(ev.User.ID) {
			return edit(r.denied(ctx, ev))
		}
		return edit(r.screens.AdminPanel(ev.User.FirstName, ev.User.ID))
	case TokenGame:
		it, ok := r.catalog.GetItem(ctx, tok.ItemID)
		if !ok {
			return edit(r.notFound(ctx, tok))
		}
		return edit(r.screens.ItemDetail(it))
	case TokenOrder:
		it, ok := r.catalog.GetItem(ctx, tok.ItemID)
		if !ok {
			return edit(r.notFound(ctx, tok))
		}
		logger.Info(ctx, component, "order.confirm",
			slog.Int64("item_id", it.ID),
			slog.Int64("user_id", ev.User.ID),
		)
		return edit(r.screens.OrderConfirmation(it))
	}
	return r.incident(ctx, ev, ErrUnknownToken, slog.LevelWarn)
}

func (r *Router) mainMenu(u User) screen.Screen {
	return r.screens.MainMenu(u.FirstName, r.isAdmin(u.ID))
}

func (r *Router) catalogList(ctx context.Context) screen.Screen {
	return r.screens.CatalogList(r.catalog.ListItems(ctx))
}

func (r *Router) notFound(ctx context.Context, tok Token) screen.Screen {
	logger.Info(ctx, component, "item.not_found",
		slog.String("token", tok.String()),
		slog.Int64("item_id", tok.ItemID),
	)
	return r.screens.NotFound()
}

func (r *Router) denied(ctx context.Context, ev Event) screen.Screen {
	logger.Info(ctx, component, "access.denied",
		slog.String("command", ev.Command),
		slog.Int64("user_id", ev.User.ID),
	)
	return r.screens.AccessDenied(ev.User.ID)
}

func (r *Router) isAdmin(id int64) bool {
	return r.gate != nil && r.gate.IsAdmin(id)
}

// incident logs an unhandled event and renders the generic error screen.
func (r *Router) incident(ctx context.Context, ev Event, err error, level slog.Level) Result {
	id := r.newID()
	logger.Event(ctx, component, level, "event.unhandled",
		slog.String("incident_id", id),
		slog.String("source", ev.Source.String()),
		slog.String("command", ev.Command),
		slog.String("data", logger.SanitizeLimit(ev.Data, 64)),
		slog.Int64("user_id", ev.User.ID),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	mode := ModeSend
	if ev.Source == SourceCallback {
		mode = ModeEdit
	}
	return Result{Screen: r.screens.Error(id), Mode: mode, Incident: id}
}

func send(s screen.Screen) Result { return Result{Screen: s, Mode: ModeSend} }

func edit(s screen.Screen) Result { return Result{Screen: s, Mode: ModeEdit} }
