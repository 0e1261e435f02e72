package helpers

import (
	"context"

	"github.com/villagegaming/storebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Keys shared with the logging middleware through tele.Context.Set.
const (
	ctxKey = "logger_ctx"
	ridKey = "rid"
)

// UpdateMeta identifies the update a handler is serving.
type UpdateMeta struct {
	UpdateID int
	UserID   int64
	ChatID   int64
}

// MetaOf reads ids from the update; missing sender or chat stay zero.
func MetaOf(c tele.Context) UpdateMeta {
	m := UpdateMeta{UpdateID: c.Update().ID}
	if u := c.Sender(); u != nil {
		m.UserID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		m.ChatID = ch.ID
	}
	return m
}

// RID returns the request id of the update, assigning one on first use.
func RID(c tele.Context) string {
	if rid, ok := c.Get(ridKey).(string); ok && rid != "" {
		return rid
	}
	m := MetaOf(c)
	rid := logger.BuildRID(m.UpdateID, m.ChatID, m.UserID)
	c.Set(ridKey, rid)
	return rid
}

// StoreContext caches ctx on the update for later BuildContext calls.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxKey, ctx)
	}
}

// ContextFrom returns the context cached by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok && ctx != nil
}

// BuildContext returns the logging context of the update: rid, update ids
// and the "tg" component logger. The result is cached on c.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}
	m := MetaOf(c)
	ctx := logger.WithRID(context.Background(), RID(c))
	ctx = logger.WithUpdateMeta(ctx, m.UpdateID, m.UserID, m.ChatID)
	ctx = logger.WithLogger(ctx, logger.TG)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the cached context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		StoreContext(c, ctx)
	}
	return ctx
}
