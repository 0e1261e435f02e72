package app

import (
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/villagegaming/storebot/core/telegram/helpers"
	"github.com/villagegaming/storebot/core/telegram/keyboard"
	"github.com/villagegaming/storebot/internal/router"
	"github.com/villagegaming/storebot/internal/screen"
)

// render delivers a router result. Edit falls back to send when the update
// carries no message to edit.
func render(c tele.Context, res router.Result) error {
	markup := Markup(res.Screen)
	if res.Mode == router.ModeEdit && c.Callback() != nil {
		return tghelpers.EditOrSendHTML(c, res.Screen.Text, markup)
	}
	return tghelpers.SendHTML(c, res.Screen.Text, markup)
}

// Markup converts screen rows into an inline keyboard. Links open the web app.
func Markup(s screen.Screen) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(s.Rows))
	for _, row := range s.Rows {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, act := range row {
			if act.Link != nil {
				btns = append(btns, keyboard.InlineBtn{Text: act.Label, URL: act.Link.Href(), WebApp: true})
				continue
			}
			btns = append(btns, keyboard.InlineBtn{Text: act.Label, Data: act.Token})
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineButtonsRows(rows...)
}
