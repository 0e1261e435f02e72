// Package commands describes the slash commands a bot exposes.
package commands

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is one slash command registration.
type Command struct {
	Handler tele.HandlerFunc
	// Description is what Telegram shows in the command menu.
	Description string
	// AdminOnly commands are wrapped with the admin check.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}

// Visible reports whether the command belongs in the public command menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}

// Validate checks that the command can be routed.
func (c Command) Validate() error {
	if c.Handler == nil {
		return errors.New("commands: nil handler")
	}
	if strings.TrimSpace(c.Description) == "" {
		return errors.New("commands: empty description")
	}
	return nil
}

// Normalize returns the "/name" form of a command or alias, lower-cased and
// without a "@botname" suffix.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	name = strings.ToLower(strings.TrimPrefix(name, "/"))
	if name == "" {
		return ""
	}
	return "/" + name
}

// CheckName rejects names Telegram would refuse in setMyCommands.
func CheckName(name string) error {
	bare := strings.TrimPrefix(name, "/")
	if bare == "" || len(bare) > 32 {
		return fmt.Errorf("commands: bad name length %q", name)
	}
	for _, r := range bare {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return fmt.Errorf("commands: bad character %q in %q", r, name)
		}
	}
	return nil
}
