package repository

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite" // modernc-backed sqlite driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationManager applies the embedded schema migrations.
type MigrationManager struct {
	migrate *migrate.Migrate
}

// NewMigrationManager opens its own connection to the database file at dbPath.
func NewMigrationManager(dbPath string) (*MigrationManager, error) {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMigrate, err)
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMigrate, err)
	}

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMigrate, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMigrate, err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+filepath.ToSlash(abs))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMigrate, err)
	}
	return &MigrationManager{migrate: m}, nil
}

// Up applies all pending migrations.
func (mm *MigrationManager) Up() error {
	if err := mm.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: up: %w", ErrMigrate, err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (mm *MigrationManager) Down() error {
	if err := mm.migrate.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: down: %w", ErrMigrate, err)
	}
	return nil
}

// Version returns the applied version. Zero means no migration has run.
func (mm *MigrationManager) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mm.migrate.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, fmt.Errorf("%w: version: %w", ErrMigrate, err)
	}
	return version, dirty, nil
}

// Close releases the source and the migration connection.
func (mm *MigrationManager) Close() error {
	srcErr, dbErr := mm.migrate.Close()
	return errors.Join(srcErr, dbErr)
}

// Migrate brings the database at dbPath to the latest schema.
func Migrate(dbPath string) error {
	mm, err := NewMigrationManager(dbPath)
	if err != nil {
		return err
	}
	return errors.Join(mm.Up(), mm.Close())
}
