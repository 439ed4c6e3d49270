// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the account schema with golang-migrate before
// the server accepts traffic.
//
// Migrations are read from an [fs.FS]: the copy embedded in the binary by
// default, or a directory on disk when MIGRATION_PATH is set.
package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/serbbisyo/serbbisyo/data"
)

// Source picks the migration files: dir when set, else the embedded copy.
func Source(dir string) fs.FS {
	if dir == "" {
		return data.Migrations()
	}
	return os.DirFS(dir)
}

/*
Up applies every pending migration from files to the database at dsn.

A database left dirty by a failed run is reported, never forced.

Parameters:
  - dsn: postgres:// URL or a pgx5:// URL
  - files: fs.FS holding NNNNNN_name.up.sql / .down.sql pairs
  - logger: *slog.Logger

Returns:
  - error: Source, connection, dirty-state or migration failures
*/
func Up(dsn string, files fs.FS, logger *slog.Logger) error {
	source, err := iofs.New(files, ".")
	if err != nil {
		return fmt.Errorf("migration: read source: %w", err)
	}

	migrator, err := migrate.NewWithSourceInstance("iofs", source, pgx5URL(dsn))
	if err != nil {
		return fmt.Errorf("migration: connect: %w", err)
	}
	defer func() {
		sourceErr, dbErr := migrator.Close()
		if err := errors.Join(sourceErr, dbErr); err != nil {
			logger.Error("migration_close_failed", slog.Any("error", err))
		}
	}()
	migrator.Log = slogBridge{logger: logger}

	// ── 1. Current State ──────────────────────────────────────────────────
	from, dirty, err := migrator.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return fmt.Errorf("migration: read version: %w", err)
	case dirty:
		return fmt.Errorf("migration: version %d is dirty, fix it by hand", from)
	}

	// ── 2. Apply ──────────────────────────────────────────────────────────
	err = migrator.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("migration_up_to_date", slog.Uint64("version", uint64(from)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: up: %w", err)
	}

	to, _, _ := migrator.Version()
	logger.Info("migration_applied", slog.Uint64("from_version", uint64(from)), slog.Uint64("to_version", uint64(to)))
	return nil
}

// pgx5URL rewrites postgres:// and postgresql:// URLs to the pgx5:// scheme
// the driver is registered under. Other values pass through.
func pgx5URL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// slogBridge sends golang-migrate's progress lines to slog at debug level.
type slogBridge struct {
	logger *slog.Logger
}

func (b slogBridge) Printf(format string, args ...any) {
	b.logger.Debug("migration_progress", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

func (b slogBridge) Verbose() bool { return false }
