package router

import (
	"strings"

	tg "github.com/villagegaming/storebot/core/telegram"
	"github.com/villagegaming/storebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextOptions holds the handlers for text and documents that match no
// command.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownCommand  tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes handles free text and documents. A message whose first word
// is a registered command or alias runs that command. Admin checks are
// left to the command itself.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	onText := func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())
		if !strings.HasPrefix(text, "/") {
			return handled(c, "unknown_text", opts.UnknownText)
		}
		word := strings.Fields(text)[0]
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(word); ok {
				return handled(c, handlerName(key), cmd.Handler)
			}
		}
		return handled(c, "unknown_command", opts.UnknownCommand)
	}
	onDocument := func(c tele.Context) error {
		return handled(c, "unexpected_document", opts.UnknownDocument)
	}
	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.LoggerMiddleware(middleware.RecoverMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(onText)},
		{Endpoint: tele.OnDocument, Handler: wrap(onDocument)},
	}
}
