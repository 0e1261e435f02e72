package app

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	tgrouter "github.com/villagegaming/storebot/core/telegram/router"
	"github.com/villagegaming/storebot/internal/router"
)

type fallbacks struct {
	app *App
}

var _ tgrouter.Fallbacks = fallbacks{}

// UnknownText routes free text to the router, which answers with the generic error.
func (f fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return f.app.dispatch(c, router.Text(userOf(c), c.Text()))
	}
}

// UnknownCommand routes an unregistered slash command through the router.
func (f fallbacks) UnknownCommand() tele.HandlerFunc {
	return func(c tele.Context) error {
		fields := strings.Fields(c.Text())
		if len(fields) == 0 {
			return f.app.dispatch(c, router.Text(userOf(c), c.Text()))
		}
		return f.app.dispatch(c, router.Command(userOf(c), fields[0], fields[1:]...))
	}
}

func (f fallbacks) UnknownDocument() tele.HandlerFunc {
	return f.UnknownText()
}

// UnknownCallback sends stale or foreign buttons to the router as well.
func (f fallbacks) UnknownCallback() tele.HandlerFunc {
	return f.app.onCallback
}

// RateLimited answers throttled button presses so the client stops spinning.
func (f fallbacks) RateLimited() tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		return c.Respond(&tele.CallbackResponse{Text: "Слишком часто, подожди секунду"})
	}
}
