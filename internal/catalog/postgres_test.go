package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gameColumns = []string{"id", "title", "price", "original_price", "description", "image", "platform", "categories"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

// newExactMockDB matches queries by string equality instead of regexp.
func newExactMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestPostgresSourceFetch(t *testing.T) {
	db, mock := newExactMockDB(t)
	rows := sqlmock.NewRows(gameColumns).
		AddRow(2, "Hades", []byte("499.00"), []byte("799.00"), "Roguelike", nil, []byte(`["PC","Switch"]`), []byte(`["Indie"]`)).
		AddRow(1, "Celeste", 199.0, nil, nil, "https://img/celeste.png", []byte(`[]`), nil).
		AddRow(3, "Broken", -1.0, nil, nil, nil, nil, nil)
	mock.ExpectQuery(listGamesQuery).WillReturnRows(rows)

	items, err := NewPostgresSource(db).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, 499.0, items[0].Price)
	require.NotNil(t, items[0].OriginalPrice)
	assert.Equal(t, 799.0, *items[0].OriginalPrice)
	require.NotNil(t, items[0].Description)
	assert.Equal(t, "Roguelike", *items[0].Description)
	assert.Equal(t, StringList{"PC", "Switch"}, items[0].Platforms)
	assert.Equal(t, StringList{"Indie"}, items[0].Categories)

	assert.Equal(t, "Celeste", items[1].Title)
	assert.Nil(t, items[1].OriginalPrice)
	assert.Nil(t, items[1].Description)
	assert.Empty(t, items[1].Platforms)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSourceFetchError(t *testing.T) {
	db, mock := newExactMockDB(t)
	mock.ExpectQuery(listGamesQuery).WillReturnError(errors.New("connection refused"))

	_, err := NewPostgresSource(db).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "select games")
	require.NoError(t, mock.ExpectationsWereMet())
}
