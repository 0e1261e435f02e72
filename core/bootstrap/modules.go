package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/villagegaming/storebot/core/logger"
)

// Seeder loads reference data once migrations have run.
type Seeder interface {
	Name() string
	Seed(ctx context.Context, db *sqlx.DB) error
}

type seederFunc struct {
	name string
	fn   func(context.Context, *sqlx.DB) error
}

func (s seederFunc) Name() string                                { return s.name }
func (s seederFunc) Seed(ctx context.Context, db *sqlx.DB) error { return s.fn(ctx, db) }

// SeederFunc wraps fn as a Seeder called name.
func SeederFunc(name string, fn func(ctx context.Context, db *sqlx.DB) error) Seeder {
	return seederFunc{name: name, fn: fn}
}

// Modules groups optional hooks run after migrations.
type Modules struct {
	Seeders []Seeder
}

func (m Modules) seed(ctx context.Context, db *sqlx.DB) error {
	for _, s := range m.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeder %s: %w", s.Name(), err)
		}
		logger.Info(ctx, "db.seed", "seed.done",
			slog.String("seeder", s.Name()),
			slog.Duration("duration", time.Since(start)),
		)
	}
	return nil
}
