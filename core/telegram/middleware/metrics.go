package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const statsKey = "response_stats"

// ResponseStats counts what a handler sent back. Fields are updated from
// dispatcher workers as well as the handler goroutine.
type ResponseStats struct {
	sent     atomic.Int32
	edited   atomic.Int32
	keyboard atomic.Bool
	webApp   atomic.Bool
}

// Messages returns sends plus edits.
func (s *ResponseStats) Messages() int {
	if s == nil {
		return 0
	}
	return int(s.sent.Load() + s.edited.Load())
}

// Edits returns the number of edited messages.
func (s *ResponseStats) Edits() int {
	if s == nil {
		return 0
	}
	return int(s.edited.Load())
}

// Keyboard reports whether any response carried inline buttons.
func (s *ResponseStats) Keyboard() bool { return s != nil && s.keyboard.Load() }

// WebApp reports whether any response carried a web app button.
func (s *ResponseStats) WebApp() bool { return s != nil && s.webApp.Load() }

func (s *ResponseStats) record(edit bool, opts []any) {
	if edit {
		s.edited.Add(1)
	} else {
		s.sent.Add(1)
	}
	rm := markupOf(opts)
	if rm == nil {
		return
	}
	if len(rm.InlineKeyboard) > 0 || len(rm.ReplyKeyboard) > 0 {
		s.keyboard.Store(true)
	}
	for _, row := range rm.InlineKeyboard {
		for _, btn := range row {
			if btn.WebApp != nil {
				s.webApp.Store(true)
				return
			}
		}
	}
}

func markupOf(opts []any) *tele.ReplyMarkup {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return v.ReplyMarkup
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return v
			}
		}
	}
	return nil
}

// statsContext wraps tele.Context and records successful responses.
type statsContext struct {
	tele.Context
	stats *ResponseStats
}

func (m statsContext) Send(what any, opts ...any) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.stats.record(false, opts)
	}
	return err
}

func (m statsContext) Reply(what any, opts ...any) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.stats.record(false, opts)
	}
	return err
}

func (m statsContext) Edit(what any, opts ...any) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.stats.record(true, opts)
	}
	return err
}

// EditOrSend is counted as an edit when the update carries a callback.
func (m statsContext) EditOrSend(what any, opts ...any) error {
	err := m.Context.EditOrSend(what, opts...)
	if err == nil {
		m.stats.record(m.Callback() != nil, opts)
	}
	return err
}

// MessageMetricsMiddleware attaches ResponseStats to the context.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &ResponseStats{}
		c.Set(statsKey, stats)
		return next(statsContext{Context: c, stats: stats})
	}
}

// Stats returns the ResponseStats attached by MessageMetricsMiddleware, or nil.
func Stats(c tele.Context) *ResponseStats {
	if c == nil {
		return nil
	}
	s, _ := c.Get(statsKey).(*ResponseStats)
	return s
}
