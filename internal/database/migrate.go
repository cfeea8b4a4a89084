package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// MigrationStatus describes the schema version of a database.
type MigrationStatus struct {
	Version uint
	Dirty   bool
	Applied bool
}

// SQLiteDSN builds the modernc.org/sqlite connection string for a file.
func SQLiteDSN(path string) string {
	clean := filepath.Clean(strings.TrimSpace(path))
	return "file:" + clean + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
}

// MigrateUp runs all pending migrations
func MigrateUp(driver, dsn string) error {
	m, err := getMigrate(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m)

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.WithField("driver", driver).Info("No new migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.WithFields(log.Fields{"driver": driver, "version": version}).Info("Successfully migrated")
	return nil
}

// MigrateDown rolls back the specified number of migrations
func MigrateDown(driver, dsn string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("invalid steps value: %d", steps)
	}

	m, err := getMigrate(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m)

	err = m.Steps(-steps)
	if errors.Is(err, migrate.ErrNoChange) {
		log.WithField("driver", driver).Info("No migrations to rollback")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}

	version, _, verr := m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		log.WithField("driver", driver).Info("Rolled back every migration")
		return nil
	}
	log.WithFields(log.Fields{"driver": driver, "version": version}).Info("Successfully rolled back")
	return nil
}

// MigrateStatus reports the current migration version
func MigrateStatus(driver, dsn string) (MigrationStatus, error) {
	m, err := getMigrate(driver, dsn)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}

	return MigrationStatus{Version: version, Dirty: dirty, Applied: true}, nil
}

func getMigrate(driver, dsn string) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	switch driver {
	case DriverPostgres:
		config, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}
		db := stdlib.OpenDB(*config.ConnConfig)
		dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create postgres driver: %w", err)
		}
		return migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)

	case DriverSQLite:
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite db: %w", err)
		}
		dbDriver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
		}
		return migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)

	default:
		return nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		log.WithFields(log.Fields{"source_error": srcErr, "database_error": dbErr}).Warn("Failed to close migrate instance")
	}
}
