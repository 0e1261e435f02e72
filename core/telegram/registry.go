package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/villagegaming/storebot/core/logger"
	"github.com/villagegaming/storebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// CommandEntry is a registered command with its canonical "/name".
type CommandEntry struct {
	Name string
	commands.Command
}

// Registry maps slash commands and callback keys to handlers. It is safe
// for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	aliases   map[string]string
	callbacks map[string]tele.HandlerFunc

	callbackNotFound tele.HandlerFunc
}

// NewRegistry returns an empty registry. Unknown callbacks get a short
// "Действие недоступно" toast.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			return c.Respond(&tele.CallbackResponse{Text: "Действие недоступно"})
		},
	}
}

func wireWarn(event string, attrs ...slog.Attr) {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, event, attrs...)
}

// RegisterCommand adds cmd under name, which must carry the leading slash.
// Aliases may be given with or without one. A name or alias that is
// already taken is an error.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if len(name) == 0 || name[0] != '/' {
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "no_slash_prefix"))
		return fmt.Errorf("telegram: command %q must start with /", name)
	}
	key := commands.Normalize(name)
	if err := commands.CheckName(key); err != nil {
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "bad_name"))
		return err
	}
	if err := cmd.Validate(); err != nil {
		wireWarn("register.command.skip", slog.String("name", name), slog.String("reason", "invalid"))
		return fmt.Errorf("telegram: %s: %w", key, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.takenLocked(key) {
		wireWarn("register.command.duplicate", slog.String("name", key))
		return fmt.Errorf("telegram: command already registered: %s", key)
	}
	aliases := make([]string, 0, len(cmd.Aliases))
	for _, raw := range cmd.Aliases {
		alias := commands.Normalize(raw)
		if alias == "" || alias == key {
			continue
		}
		if r.takenLocked(alias) {
			wireWarn("register.command.duplicate", slog.String("name", alias), slog.String("alias_of", key))
			return fmt.Errorf("telegram: alias %s of %s already registered", alias, key)
		}
		aliases = append(aliases, alias)
	}
	cmd.Aliases = aliases
	r.commands[key] = cmd
	for _, alias := range aliases {
		r.aliases[alias] = key
	}
	return nil
}

func (r *Registry) takenLocked(name string) bool {
	if _, ok := r.commands[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// LookupCommand resolves a command name or alias, with or without the
// slash, to its canonical name.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	key := commands.Normalize(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if target, ok := r.aliases[key]; ok {
		key = target
	}
	cmd, ok := r.commands[key]
	if !ok {
		return "", commands.Command{}, false
	}
	return key, cmd, true
}

// Commands returns every registered command sorted by name.
func (r *Registry) Commands() []CommandEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CommandEntry, 0, len(r.commands))
	for name, cmd := range r.commands {
		out = append(out, CommandEntry{Name: name, Command: cmd})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ListCommands renders the command menu. visibleOnly drops hidden and
// admin-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var menu []tele.Command
	for _, e := range r.Commands() {
		if visibleOnly && !e.Visible() {
			continue
		}
		menu = append(menu, tele.Command{Text: e.Name, Description: e.Description})
	}
	return menu
}

// RegisterCallback binds a callback key to handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		wireWarn("register.callback.skip", slog.String("key", key), slog.Bool("handler_nil", handler == nil))
		return fmt.Errorf("telegram: invalid callback registration %q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		wireWarn("register.callback.duplicate", slog.String("key", key))
		return fmt.Errorf("telegram: callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

// GetCallback returns the handler bound to key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered keys in sorted order.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CallbackNotFound is the handler used for unregistered callback keys.
func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// InitBotCommands publishes the public command menu through setMyCommands.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	menu := reg.ListCommands(true)
	if err := bot.SetCommands(menu); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.Int("commands", len(menu)),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "register.commands.set",
		slog.Int("commands", len(menu)),
	)
}
