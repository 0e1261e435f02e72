package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, gamesPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSourceEndpoint(t *testing.T) {
	src := NewHTTPSource(" https://store.example/ ", nil)
	assert.Equal(t, "https://store.example/api/games", src.Endpoint())
}

func TestHTTPSourceFetch(t *testing.T) {
	srv := serve(t, http.StatusOK, `[
		{"id":1,"title":"Elden Ring","price":2999,"original_price":3999,"description":"Open world","image":"https://img/1.png","platform":["PC","PS5"],"categories":"[\"RPG\"]"},
		{"id":"2","title":"Hades","price":"499.5","originalPrice":"799"},
		{"id":3,"title":"Celeste","price":199,"original_price":null,"description":null},
		{"id":0,"title":"Broken","price":10},
		{"id":4,"title":"Negative","price":-5},
		{"title":"No id","price":1}
	]`)

	items, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	first := items[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Elden Ring", first.Title)
	assert.Equal(t, 2999.0, first.Price)
	require.NotNil(t, first.OriginalPrice)
	assert.Equal(t, 3999.0, *first.OriginalPrice)
	assert.Equal(t, StringList{"PC", "PS5"}, first.Platforms)
	assert.Equal(t, StringList{"RPG"}, first.Categories)

	second := items[1]
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, 499.5, second.Price)
	require.NotNil(t, second.OriginalPrice)
	assert.Equal(t, 799.0, *second.OriginalPrice)

	third := items[2]
	assert.Nil(t, third.OriginalPrice)
	assert.Nil(t, third.Description)
	assert.Nil(t, third.Image)
	assert.Empty(t, third.Platforms)
}

func TestHTTPSourceFetchEmptyList(t *testing.T) {
	srv := serve(t, http.StatusOK, `[]`)
	items, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHTTPSourceFetchStatus(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, `{"error":"down"}`)
	_, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Equal(t, "UPSTREAM_5XX", ErrorCode(err))
}

func TestHTTPSourceFetchMalformed(t *testing.T) {
	for _, body := range []string{`{"games":[]}`, `null`, `not json`} {
		srv := serve(t, http.StatusOK, body)
		_, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(context.Background())
		require.ErrorIs(t, err, ErrMalformedPayload, body)
		assert.Equal(t, "MALFORMED_PAYLOAD", ErrorCode(err))
	}
}

func TestHTTPSourceFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "TIMEOUT", ErrorCode(err))
}

func TestHTTPSourceFetchSkipsBadRows(t *testing.T) {
	srv := serve(t, http.StatusOK, `[
		{"id":1,"title":"A","price":100,"original_price":""},
		{"id":2,"title":"B","price":"n/a"},
		{"id":3,"title":"C","price":300,"description":5},
		{"id":"abc","title":"D","price":400},
		{"id":5,"title":"E","price":"","original_price":900},
		{"id":6,"title":"F","price":"600","original_price":"soon"},
		{"id":7,"title":"G","price":200}
	]`)

	items, err := NewHTTPSource(srv.URL, srv.Client()).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, int64(1), items[0].ID)
	assert.Nil(t, items[0].OriginalPrice)
	assert.Equal(t, int64(6), items[1].ID)
	assert.Equal(t, 600.0, items[1].Price)
	assert.Nil(t, items[1].OriginalPrice)
	assert.Equal(t, int64(7), items[2].ID)
}

func TestDecodeItemsCountsDropped(t *testing.T) {
	items, dropped, err := decodeItems([]byte(`[{"id":1,"title":"A","price":100,"original_price":""},{"id":2,"title":"B","price":200},"junk"]`))
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, dropped)
}
