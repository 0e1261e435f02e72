package router

import (
	"log/slog"

	tg "github.com/villagegaming/storebot/core/telegram"
	"github.com/villagegaming/storebot/core/telegram/callbacks"
	"github.com/villagegaming/storebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises callback routing.
type CallbackOptions struct {
	// NotFound overrides the registry fallback for unknown keys.
	NotFound tele.HandlerFunc
	// KeyFunc maps raw callback data to a registry key, e.g. "game_42" -> "game".
	// Nil uses the telebot unique or the whole data.
	KeyFunc func(data string) string
}

// CallbackRoute answers every callback query, then runs the handler the
// registry holds for its key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	resolve := func(c tele.Context) string {
		if opts.KeyFunc != nil {
			return opts.KeyFunc(c.Callback().Data)
		}
		key, _ := callbacks.ParseCallbackData(c.Callback())
		return key
	}
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key := resolve(c)
		_ = c.Respond()

		extras := []slog.Attr{slog.String("cb_key", key)}
		h, ok := reg.GetCallback(key)
		if !ok {
			h = opts.NotFound
			if h == nil {
				h = reg.CallbackNotFound()
			}
			extras = append(extras, slog.String("reason", "not_found"))
		}
		return handled(c, "callback."+handlerName(key), h, extras...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.LoggerMiddleware(middleware.RecoverMiddleware(handler)),
	}
}
