package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/villagegaming/storebot/core/bootstrap"
	"github.com/villagegaming/storebot/core/logger"
)

const (
	countGamesQuery = `SELECT COUNT(*) FROM games`
	insertGameQuery = `INSERT INTO games (title, price, original_price, platform, categories, description, image)
VALUES (:title, :price, :original_price, :platform, :categories, :description, :image)`
)

// SeedItem is one entry of a catalog seed file.
type SeedItem struct {
	Title         string   `yaml:"title" db:"title"`
	Price         float64  `yaml:"price" db:"price"`
	OriginalPrice *float64 `yaml:"original_price" db:"original_price"`
	Description   string   `yaml:"description" db:"description"`
	Image         string   `yaml:"image" db:"image"`
	Platform      []string `yaml:"platform" db:"-"`
	Categories    []string `yaml:"categories" db:"-"`
}

type seedRow struct {
	SeedItem
	PlatformJSON   StringList `db:"platform"`
	CategoriesJSON StringList `db:"categories"`
}

// LoadSeedFile parses a YAML list of items.
func LoadSeedFile(path string) ([]SeedItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read seed file: %w", err)
	}
	var items []SeedItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("catalog: parse seed file: %w", err)
	}
	for i, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			return nil, fmt.Errorf("catalog: seed item %d has no title", i)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("catalog: seed item %q has negative price", it.Title)
		}
	}
	return items, nil
}

// FileSeeder fills an empty games table from a YAML seed file.
type FileSeeder struct {
	Path string
}

var _ bootstrap.Seeder = FileSeeder{}

// Name implements bootstrap.Seeder.
func (s FileSeeder) Name() string { return "games" }

// Seed inserts the file's items when the games table is empty.
func (s FileSeeder) Seed(ctx context.Context, db *sqlx.DB) error {
	if strings.TrimSpace(s.Path) == "" {
		return nil
	}
	if db == nil {
		return fmt.Errorf("catalog: seed needs a database")
	}
	items, err := LoadSeedFile(s.Path)
	if err != nil {
		return err
	}
	return SeedItems(ctx, db, items)
}

// SeedItems inserts items in one transaction unless the table already has rows.
// Items are inserted last-to-first so the newest-first listing keeps file order.
func SeedItems(ctx context.Context, db *sqlx.DB, items []SeedItem) error {
	start := time.Now()
	var count int
	if err := db.GetContext(ctx, &count, countGamesQuery); err != nil {
		return fmt.Errorf("catalog: count games: %w", err)
	}
	if count > 0 || len(items) == 0 {
		logger.Info(ctx, "db.seed", "seed.skip",
			slog.String("status", "skip"),
			slog.Int("count", count),
			slog.Int("items", len(items)),
		)
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin seed: %w", err)
	}
	for i := len(items) - 1; i >= 0; i-- {
		row := seedRow{
			SeedItem:       items[i],
			PlatformJSON:   cleanList(items[i].Platform),
			CategoriesJSON: cleanList(items[i].Categories),
		}
		if _, err := tx.NamedExecContext(ctx, insertGameQuery, row); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("catalog: insert %q: %w", items[i].Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit seed: %w", err)
	}
	logger.Info(ctx, "db.seed", "seed.apply",
		slog.String("status", "ok"),
		slog.Int("items", len(items)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
