package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes a convenience wrapper for inline button properties.
// Exactly one of Data, URL or WebApp should be used. Unique, when set, makes
// Data a telebot-style "\f<unique>|<data>" payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
	URL    string
	// WebApp opens URL inside Telegram instead of the browser.
	WebApp bool
}

// Inline converts the wrapper into a Telegram inline button.
func (b InlineBtn) Inline() tele.InlineButton {
	switch {
	case b.URL != "" && b.WebApp:
		return tele.InlineButton{Text: b.Text, WebApp: &tele.WebApp{URL: b.URL}}
	case b.URL != "":
		return tele.InlineButton{Text: b.Text, URL: b.URL}
	case b.Unique != "":
		btn := (&tele.ReplyMarkup{}).Data(b.Text, b.Unique, b.Data)
		return *btn.Inline()
	default:
		return tele.InlineButton{Text: b.Text, Data: b.Data}
	}
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
// Empty rows are dropped; no rows yields nil so Telegram removes the keyboard.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = btn.Inline()
		}
		inline = append(inline, r)
	}
	if len(inline) == 0 {
		return nil
	}
	return &tele.ReplyMarkup{InlineKeyboard: inline}
}
