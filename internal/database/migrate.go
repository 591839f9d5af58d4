package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// MigrationsDir is the migrate source URL. Tests running from a package
// directory point it at the repository root.
var MigrationsDir = "file://migrations"

// ErrDirtySchema means a previous migration stopped half way and needs a
// manual `migrate force`.
var ErrDirtySchema = errors.New("database schema is dirty")

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	log.Debug().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLogger) Verbose() bool { return false }

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	m, err := migrate.New(MigrationsDir, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

// RunMigrations applies every pending up migration. It refuses to run on a
// dirty schema.
func RunMigrations(databaseURL string) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	before, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("%w at version %d", ErrDirtySchema, before)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	after, _, _ := m.Version()
	log.Info().
		Uint("from_version", before).
		Uint("version", after).
		Msg("migrations applied")

	return nil
}

func RollbackMigrations(databaseURL string) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("rollback migrations: %w", err)
	}

	log.Info().Msg("all migrations rolled back")
	return nil
}
