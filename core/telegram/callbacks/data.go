package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits callback data into a route key and payload.
// Telebot's "\f<unique>|<payload>" encoding is unwrapped; plain data is
// returned whole as the key.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := cb.Data
	if !strings.HasPrefix(raw, "\f") {
		return strings.TrimSpace(raw), ""
	}
	parts := strings.SplitN(strings.TrimPrefix(raw, "\f"), "|", 2)
	key := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return key, payload
}

// Data returns the raw callback data of the current update, trimmed.
func Data(c tele.Context) string {
	if c == nil || c.Callback() == nil {
		return ""
	}
	return strings.TrimSpace(c.Callback().Data)
}
