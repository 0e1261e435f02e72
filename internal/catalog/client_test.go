package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	items []Item
	err   error
	calls int
	seen  context.Context
}

func (s *stubSource) Fetch(ctx context.Context) ([]Item, error) {
	s.calls++
	s.seen = ctx
	return s.items, s.err
}

func TestClientListItems(t *testing.T) {
	src := &stubSource{items: []Item{{ID: 2, Title: "B"}, {ID: 1, Title: "A"}}}
	c := NewClient(src, time.Second)

	items := c.ListItems(context.Background())
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)

	deadline, ok := src.seen.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestClientDegradesToEmpty(t *testing.T) {
	src := &stubSource{err: &StatusError{Code: 503}}
	c := NewClient(src, 0)

	assert.Empty(t, c.ListItems(context.Background()))
	assert.Equal(t, 1, src.calls, "failures are not retried")

	_, ok := c.GetItem(context.Background(), 1)
	assert.False(t, ok)
}

func TestClientGetItemFirstMatch(t *testing.T) {
	src := &stubSource{items: []Item{
		{ID: 7, Title: "first"},
		{ID: 7, Title: "second"},
	}}
	c := NewClient(src, 0)

	it, ok := c.GetItem(context.Background(), 7)
	require.True(t, ok)
	assert.Equal(t, "first", it.Title)

	_, ok = c.GetItem(context.Background(), 99)
	assert.False(t, ok)
}

func TestClientRefetchesEveryCall(t *testing.T) {
	src := &stubSource{items: []Item{{ID: 1}}}
	c := NewClient(src, 0)
	c.ListItems(context.Background())
	c.GetItem(context.Background(), 1)
	assert.Equal(t, 2, src.calls)
}

func TestNilClient(t *testing.T) {
	var c *Client
	assert.Empty(t, c.ListItems(context.Background()))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "CANCELLED", ErrorCode(context.Canceled))
	assert.Equal(t, "TIMEOUT", ErrorCode(context.DeadlineExceeded))
	assert.Equal(t, "UPSTREAM_4XX", ErrorCode(&StatusError{Code: 404}))
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", ErrorCode(errors.New("other")))
}
