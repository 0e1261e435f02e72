package router

import tele "gopkg.in/telebot.v4"

// Fallbacks supplies handlers for updates that no registered command or
// callback claims.
type Fallbacks interface {
	UnknownText() tele.HandlerFunc
	UnknownCommand() tele.HandlerFunc
	UnknownDocument() tele.HandlerFunc
	UnknownCallback() tele.HandlerFunc
}

// FallbackOptions splits f into the text and callback route options.
func FallbackOptions(f Fallbacks, keyFunc func(data string) string) (TextOptions, CallbackOptions) {
	text := TextOptions{
		UnknownText:     f.UnknownText(),
		UnknownCommand:  f.UnknownCommand(),
		UnknownDocument: f.UnknownDocument(),
	}
	cb := CallbackOptions{NotFound: f.UnknownCallback(), KeyFunc: keyFunc}
	return text, cb
}
