package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/villagegaming/storebot/core/logger"
)

// DefaultMigrationsPath is used when Config.MigrationsPath is empty.
const DefaultMigrationsPath = "migrations"

const (
	readyTimeout  = 30 * time.Second
	readyInterval = 2 * time.Second
)

// migrationFile is one "<version>_<name>.up.sql" file.
type migrationFile struct {
	version uint64
	name    string
}

// RunMigrations waits for the server, then applies every pending up
// migration found under cfg.MigrationsPath.
func RunMigrations(cfg Config) error {
	ctx := context.Background()
	fail := func(stage string, err error) error {
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "db.migrate",
			slog.String("status", "fail"),
			slog.String("stage", stage),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migrate %s: %w", stage, err)
	}

	if err := WaitForPostgres(ctx, cfg.DSN(), readyTimeout, readyInterval); err != nil {
		return fail("wait", err)
	}
	dir, err := resolveMigrationsPath(cfg.MigrationsPath)
	if err != nil {
		return fail("resolve", err)
	}
	files := listMigrations(dir)
	preview, _ := logger.SummarizeStrings(names(files), 6)
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "db.migrate.resolve",
		slog.String("path", dir),
		slog.Int("files_total", len(files)),
		slog.String("files_preview", preview),
	)

	m, err := migrate.New("file://"+dir, cfg.URL())
	if err != nil {
		return fail("init", err)
	}
	defer func() { _, _ = m.Close() }()

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fail("apply", err)
	}
	to, _, _ := m.Version()

	applied := pending(files, uint64(from), uint64(to))
	preview, truncated := logger.SummarizeStrings(names(applied), 6)
	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "db.migrate",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.String("files_preview", preview),
		slog.Bool("files_truncated", truncated),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func resolveMigrationsPath(p string) (string, error) {
	if p == "" {
		p = DefaultMigrationsPath
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve migrations path: %w", err)
	}
	return abs, nil
}

// listMigrations returns the up migrations in dir ordered by version. A
// missing directory yields nil.
func listMigrations(dir string) []migrationFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []migrationFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(e.Name(), "_")
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, migrationFile{version: v, name: e.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files
}

// pending returns the files with versions in (from, to].
func pending(files []migrationFile, from, to uint64) []migrationFile {
	var out []migrationFile
	for _, f := range files {
		if f.version > from && f.version <= to {
			out = append(out, f)
		}
	}
	return out
}

func names(files []migrationFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.name
	}
	return out
}
