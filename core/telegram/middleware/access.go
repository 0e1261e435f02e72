package middleware

import (
	"log/slog"

	"github.com/villagegaming/storebot/core/logger"
	tghelpers "github.com/villagegaming/storebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminChecker answers whether a Telegram user is privileged.
type AdminChecker interface {
	IsAdmin(userID int64) bool
}

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	Checker  AdminChecker
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware lets only admins reach downstream handlers.
// Without a checker every sender is rejected.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			var userID int64
			if u := c.Sender(); u != nil {
				userID = u.ID
			}
			if opts.Checker != nil && opts.Checker.IsAdmin(userID) {
				return next(c)
			}
			logger.Debug(tghelpers.BuildContext(c), "tg", "access.reject",
				slog.Int64("user_id", userID),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
