package logger

import (
	"context"
	"log/slog"
	"strings"
)

// Component returns the root logger tagged with component=name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With(slog.String("component", name))
}

// LogEvent writes one event record through logg. A nil logg falls back to
// the logger stored in ctx.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if logg == nil {
		logg = FromContext(ctx)
	}
	if !logg.Enabled(ctx, level) {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Event logs under the named component.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

type eventFunc func(ctx context.Context, component, event string, attrs ...slog.Attr)

func at(level slog.Level) eventFunc {
	return func(ctx context.Context, component, event string, attrs ...slog.Attr) {
		Event(ctx, component, level, event, attrs...)
	}
}

// Level shorthands for Event.
var (
	Debug = at(slog.LevelDebug)
	Info  = at(slog.LevelInfo)
	Warn  = at(slog.LevelWarn)
	Error = at(slog.LevelError)
)
