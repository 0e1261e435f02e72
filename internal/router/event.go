package router

import (
	"strings"

	"github.com/villagegaming/storebot/internal/screen"
)

// Source says where an event came from.
type Source int

const (
	SourceCommand Source = iota
	SourceCallback
	SourceText
)

func (s Source) String() string {
	switch s {
	case SourceCommand:
		return "command"
	case SourceCallback:
		return "callback"
	case SourceText:
		return "text"
	}
	return "unknown"
}

// User is the sender of an event. It is never stored.
type User struct {
	ID        int64
	FirstName string
}

// Event is one incoming update, already stripped of transport details.
type Event struct {
	Source  Source
	Command string
	Args    []string
	Data    string
	Text    string
	User    User
}

// Command builds a command event. name may carry a leading slash or a @bot suffix.
func Command(user User, name string, args ...string) Event {
	return Event{Source: SourceCommand, Command: normalizeCommand(name), Args: args, User: user}
}

// Callback builds a button press event.
func Callback(user User, data string) Event {
	return Event{Source: SourceCallback, Data: data, User: user}
}

// Text builds a plain text event.
func Text(user User, text string) Event {
	return Event{Source: SourceText, Text: text, User: user}
}

func normalizeCommand(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

// RenderMode selects between a new message and editing the pressed one.
type RenderMode int

const (
	ModeSend RenderMode = iota
	ModeEdit
)

func (m RenderMode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "send"
}

// Result is the router's only output.
type Result struct {
	Screen screen.Screen
	Mode   RenderMode
	// Incident is set when the event was unhandled or failed.
	Incident string
}
