package router

import (
	"errors"
	"strconv"
	"strings"

	"github.com/villagegaming/storebot/internal/screen"
)

// TokenKind tags a decoded callback token.
type TokenKind string

const (
	TokenCatalog    TokenKind = "catalog"
	TokenHelp       TokenKind = "help"
	TokenBackToMenu TokenKind = "back_to_menu"
	TokenAdminPanel TokenKind = "admin_panel"
	TokenGame       TokenKind = "game"
	TokenOrder      TokenKind = "order"
)

var (
	// ErrUnknownToken is returned for data that matches no token kind.
	ErrUnknownToken = errors.New("router: unknown token")
	// ErrMalformedToken is returned for a known prefix with a bad item id.
	ErrMalformedToken = errors.New("router: malformed token")
)

// Token is a decoded navigation token. ItemID is set for game and order.
type Token struct {
	Kind   TokenKind
	ItemID int64
}

// ParseToken decodes callback data once at the router boundary.
func ParseToken(data string) (Token, error) {
	data = strings.TrimSpace(data)
	switch data {
	case screen.TokenCatalog:
		return Token{Kind: TokenCatalog}, nil
	case screen.TokenHelp:
		return Token{Kind: TokenHelp}, nil
	case screen.TokenBackToMenu:
		return Token{Kind: TokenBackToMenu}, nil
	case screen.TokenAdminPanel:
		return Token{Kind: TokenAdminPanel}, nil
	}
	if rest, ok := strings.CutPrefix(data, screen.PrefixGame); ok {
		return itemToken(TokenGame, rest)
	}
	if rest, ok := strings.CutPrefix(data, screen.PrefixOrder); ok {
		return itemToken(TokenOrder, rest)
	}
	return Token{}, ErrUnknownToken
}

// itemToken accepts only the canonical decimal form written by GameToken and
// OrderToken: no sign, no leading zeros.
func itemToken(kind TokenKind, raw string) (Token, error) {
	if raw == "" || raw[0] == '0' || strings.TrimLeft(raw, "0123456789") != "" {
		return Token{}, ErrMalformedToken
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Token{}, ErrMalformedToken
	}
	return Token{Kind: kind, ItemID: id}, nil
}

// String encodes the token as callback data.
func (t Token) String() string {
	switch t.Kind {
	case TokenGame:
		return screen.GameToken(t.ItemID)
	case TokenOrder:
		return screen.OrderToken(t.ItemID)
	default:
		return string(t.Kind)
	}
}

// KindKey maps raw callback data to the token kind used as a route key.
// Data that is not a token maps to "".
func KindKey(data string) string {
	data = strings.TrimSpace(data)
	switch {
	case data == screen.TokenCatalog, data == screen.TokenHelp, data == screen.TokenBackToMenu,
		data == screen.TokenAdminPanel:
		return data
	case strings.HasPrefix(data, screen.PrefixGame):
		return string(TokenGame)
	case strings.HasPrefix(data, screen.PrefixOrder):
		return string(TokenOrder)
	}
	return ""
}
