// Package auth decides which Telegram users may open the admin panel and
// lets existing admins grant that privilege to others.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/villagegaming/storebot/core/logger"
)

// Error is returned by Grant. Code feeds the err_code log field.
type Error struct {
	code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Code returns a stable machine readable identifier.
func (e *Error) Code() string { return e.code }

var (
	// ErrNotAuthorized means the requester is not an admin.
	ErrNotAuthorized = &Error{code: "NOT_AUTHORIZED", msg: "auth: requester is not an admin"}
	// ErrAlreadyAdmin means the target is already in the admin set.
	ErrAlreadyAdmin = &Error{code: "ALREADY_ADMIN", msg: "auth: user is already an admin"}
	// ErrInvalidUserID means the target identifier can never belong to a Telegram user.
	ErrInvalidUserID = &Error{code: "INVALID_USER_ID", msg: "auth: invalid user id"}
)

// AdminSet is a set of privileged user ids. Reads never block; inserts are serialized.
type AdminSet struct {
	mu  sync.Mutex
	ids atomic.Pointer[map[int64]struct{}]
}

// NewAdminSet builds a set seeded with the given ids. Non-positive ids are skipped.
func NewAdminSet(seed ...int64) *AdminSet {
	m := make(map[int64]struct{}, len(seed))
	for _, id := range seed {
		if id > 0 {
			m[id] = struct{}{}
		}
	}
	s := &AdminSet{}
	s.ids.Store(&m)
	return s
}

// Contains reports whether id is in the set.
func (s *AdminSet) Contains(id int64) bool {
	if s == nil {
		return false
	}
	m := s.ids.Load()
	if m == nil {
		return false
	}
	_, ok := (*m)[id]
	return ok
}

// add inserts id and reports whether it was absent. Readers keep seeing the
// previous map until the new copy is published.
func (s *AdminSet) add(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.ids.Load()
	if cur == nil {
		cur = &map[int64]struct{}{}
	}
	if _, ok := (*cur)[id]; ok {
		return false
	}
	next := make(map[int64]struct{}, len(*cur)+1)
	for k := range *cur {
		next[k] = struct{}{}
	}
	next[id] = struct{}{}
	s.ids.Store(&next)
	return true
}

// Snapshot returns the ids in ascending order.
func (s *AdminSet) Snapshot() []int64 {
	if s == nil {
		return nil
	}
	m := s.ids.Load()
	if m == nil {
		return nil
	}
	out := make([]int64, 0, len(*m))
	for id := range *m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Gate answers admin checks against an AdminSet.
type Gate struct {
	set *AdminSet
}

// NewGate wraps set. A nil set behaves as an empty one.
func NewGate(set *AdminSet) *Gate {
	if set == nil {
		set = NewAdminSet()
	}
	return &Gate{set: set}
}

// IsAdmin reports whether userID is privileged. It never fails.
func (g *Gate) IsAdmin(userID int64) bool {
	if g == nil || userID <= 0 {
		return false
	}
	return g.set.Contains(userID)
}

// IsAdminRaw parses raw as a user id; anything unparseable is not an admin.
func (g *Gate) IsAdminRaw(raw string) bool {
	id, ok := ParseUserID(raw)
	if !ok {
		return false
	}
	return g.IsAdmin(id)
}

// Grant adds target to the admin set on behalf of requester.
func (g *Gate) Grant(ctx context.Context, requester, target int64) error {
	if !g.IsAdmin(requester) {
		logger.Warn(ctx, "auth", "grant.denied",
			slog.String("status", "fail"),
			slog.Int64("user_id", requester),
			slog.Int64("admin_id", target),
			slog.String("err_code", ErrNotAuthorized.Code()),
		)
		return ErrNotAuthorized
	}
	if target <= 0 {
		return ErrInvalidUserID
	}
	if !g.set.add(target) {
		logger.Info(ctx, "auth", "grant.skip",
			slog.String("status", "skip"),
			slog.Int64("user_id", requester),
			slog.Int64("admin_id", target),
			slog.String("err_code", ErrAlreadyAdmin.Code()),
		)
		return ErrAlreadyAdmin
	}
	logger.Info(ctx, "auth", "grant.ok",
		slog.String("status", "ok"),
		slog.Int64("user_id", requester),
		slog.Int64("admin_id", target),
		slog.Int("admins", len(g.set.Snapshot())),
	)
	return nil
}

// Admins returns the current admin ids in ascending order.
func (g *Gate) Admins() []int64 {
	if g == nil {
		return nil
	}
	return g.set.Snapshot()
}

// ParseUserID parses a Telegram user id. Only positive base-10 integers are accepted.
func ParseUserID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// IsAuthError reports whether err is one of the Grant errors.
func IsAuthError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
