// Package screen builds the bot's screens: HTML text plus an inline keyboard
// layout. Builders are pure and perform no I/O.
package screen

import (
	"strconv"
	"strings"
)

// Kind names a screen for routing tests and logs.
type Kind string

const (
	KindMainMenu           Kind = "main_menu"
	KindCatalogList        Kind = "catalog_list"
	KindCatalogUnavailable Kind = "catalog_unavailable"
	KindItemDetail         Kind = "item_detail"
	KindOrderConfirmation  Kind = "order_confirmation"
	KindHelp               Kind = "help"
	KindNotFound           Kind = "not_found"
	KindAdminPanel         Kind = "admin_panel"
	KindAccessDenied       Kind = "access_denied"
	KindAddAdminUsage      Kind = "addadmin_usage"
	KindAddAdminMalformed  Kind = "addadmin_malformed"
	KindAdminGranted       Kind = "admin_granted"
	KindAlreadyAdmin       Kind = "already_admin"
	KindAdminList          Kind = "admin_list"
	KindIdentity           Kind = "identity"
	KindError              Kind = "error"
)

// Navigation tokens carried in callback data.
const (
	TokenCatalog    = "catalog"
	TokenHelp       = "help"
	TokenBackToMenu = "back_to_menu"
	TokenAdminPanel = "admin_panel"
	PrefixGame      = "game_"
	PrefixOrder     = "order_"
)

// GameToken returns the token that opens an item's detail screen.
func GameToken(id int64) string { return PrefixGame + strconv.FormatInt(id, 10) }

// OrderToken returns the token that confirms an order for an item.
func OrderToken(id int64) string { return PrefixOrder + strconv.FormatInt(id, 10) }

// Link opens the store web app.
type Link struct {
	URL   string
	Admin bool
}

// Href returns the URL to open; admin links carry ?admin=true.
func (l Link) Href() string {
	if !l.Admin {
		return l.URL
	}
	base := strings.TrimRight(l.URL, "/")
	if strings.Contains(base, "?") {
		return base + "&admin=true"
	}
	return base + "/?admin=true"
}

// Action is one button. Exactly one of Link and Token is set.
type Action struct {
	Label string
	Link  *Link
	Token string
}

// IsLink reports whether the action opens a URL.
func (a Action) IsLink() bool { return a.Link != nil }

// Screen is a message body with its keyboard rows.
type Screen struct {
	Kind     Kind
	Text     string
	Rows     [][]Action
	Terminal bool
}

// Tokens returns every navigation token on the screen, row by row.
func (s Screen) Tokens() []string {
	var out []string
	for _, row := range s.Rows {
		for _, a := range row {
			if a.Link == nil {
				out = append(out, a.Token)
			}
		}
	}
	return out
}

// HasToken reports whether any action carries token.
func (s Screen) HasToken(token string) bool {
	for _, t := range s.Tokens() {
		if t == token {
			return true
		}
	}
	return false
}

func tokenRow(label, token string) []Action {
	return []Action{{Label: label, Token: token}}
}

func linkRow(label, url string, admin bool) []Action {
	return []Action{{Label: label, Link: &Link{URL: url, Admin: admin}}}
}
