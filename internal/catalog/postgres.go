package catalog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const listGamesQuery = `SELECT id, title, price, original_price, description, image, platform, categories
FROM games
ORDER BY created_at DESC, id DESC`

// PostgresSource reads the games table the store web app writes to.
type PostgresSource struct {
	db *sqlx.DB
}

// NewPostgresSource wraps an open connection pool.
func NewPostgresSource(db *sqlx.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Fetch returns all games, newest first. Rows failing validation are skipped.
func (s *PostgresSource) Fetch(ctx context.Context) ([]Item, error) {
	var rows []Item
	if err := s.db.SelectContext(ctx, &rows, listGamesQuery); err != nil {
		return nil, fmt.Errorf("catalog: select games: %w", err)
	}
	items := rows[:0]
	for _, it := range rows {
		if it.valid() != nil {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}
