package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
- title: Elden Ring
  price: 2999
  original_price: 3999
  description: Open world
  platform: [PC, PS5]
  categories: [RPG]
- title: Celeste
  price: 199
`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	items, err := LoadSeedFile(writeSeed(t, seedYAML))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Elden Ring", items[0].Title)
	require.NotNil(t, items[0].OriginalPrice)
	assert.Equal(t, 3999.0, *items[0].OriginalPrice)
	assert.Equal(t, []string{"PC", "PS5"}, items[0].Platform)
	assert.Nil(t, items[1].OriginalPrice)
}

func TestLoadSeedFileRejectsInvalid(t *testing.T) {
	_, err := LoadSeedFile(writeSeed(t, "- price: 10\n"))
	assert.Error(t, err)

	_, err = LoadSeedFile(writeSeed(t, "- title: X\n  price: -1\n"))
	assert.Error(t, err)

	_, err = LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedItemsInsertsInReverseOrder(t *testing.T) {
	db, mock := newMockDB(t)
	items, err := LoadSeedFile(writeSeed(t, seedYAML))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM games`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO games`).
		WithArgs("Celeste", 199.0, nil, "[]", "[]", "", "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO games`).
		WithArgs("Elden Ring", 2999.0, 3999.0, `["PC","PS5"]`, `["RPG"]`, "Open world", "").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, SeedItems(context.Background(), db, items))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedItemsSkipsPopulatedTable(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM games`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	require.NoError(t, SeedItems(context.Background(), db, []SeedItem{{Title: "X", Price: 1}}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedItemsRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM games`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO games`).WillReturnError(errors.New("constraint"))
	mock.ExpectRollback()

	err := SeedItems(context.Background(), db, []SeedItem{{Title: "X", Price: 1}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFileSeederRequiresDatabase(t *testing.T) {
	err := FileSeeder{Path: "seed.yaml"}.Seed(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, "games", FileSeeder{}.Name())

	assert.NoError(t, FileSeeder{}.Seed(context.Background(), nil))
}
