package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/villagegaming/storebot/core/logger"
	"github.com/villagegaming/storebot/core/netutil"
)

// DefaultTimeout bounds a single catalog fetch.
const DefaultTimeout = 5 * time.Second

// Client serves catalog reads with a degrade-to-empty policy.
type Client struct {
	src     Source
	timeout time.Duration
}

// NewClient wraps src. timeout <= 0 selects DefaultTimeout.
func NewClient(src Source, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{src: src, timeout: timeout}
}

// ListItems returns the catalog in backend order, or an empty slice when the
// backend fails. Failures are logged, never returned.
func (c *Client) ListItems(ctx context.Context) []Item {
	if c == nil || c.src == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	items, err := c.src.Fetch(fetchCtx)
	if err != nil {
		logger.Warn(ctx, "catalog", "catalog.fetch",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", ErrorCode(err)),
			slog.String("err_kind", netutil.Classify(err)),
			slog.Duration("duration", logger.Took(start)),
		)
		return nil
	}
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "catalog", "catalog.fetch",
			slog.String("status", "ok"),
			slog.Int("items", len(items)),
			slog.Duration("duration", logger.Took(start)),
		)
	}
	return items
}

// GetItem returns the first item of ListItems with the given id.
func (c *Client) GetItem(ctx context.Context, id int64) (Item, bool) {
	for _, it := range c.ListItems(ctx) {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ErrorCode classifies a fetch failure for logs.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}
	if errors.Is(err, context.Canceled) {
		return "CANCELLED"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "TIMEOUT"
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Code >= 500 {
			return "UPSTREAM_5XX"
		}
		return "UPSTREAM_4XX"
	}
	if errors.Is(err, ErrMalformedPayload) {
		return "MALFORMED_PAYLOAD"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "NETWORK"
	}
	return "UPSTREAM_UNAVAILABLE"
}
