package main

import (
	"context"
	"fmt"

	"github.com/varo6/wordle-trpc/internal/config"
	"github.com/varo6/wordle-trpc/internal/database"
	"github.com/varo6/wordle-trpc/internal/stats"
	"github.com/varo6/wordle-trpc/internal/stats/postgres"
	"github.com/varo6/wordle-trpc/internal/stats/sqlite"
)

// openStatsStore opens the counter store selected by STATS_DRIVER and
// returns it with a function releasing its resources. Schema migrations run
// before the store is handed out.
func openStatsStore(ctx context.Context, cfg config.Config) (stats.CounterStore, func(), error) {
	switch cfg.StatsDriver {
	case config.DriverMemory:
		logWarn("Using in-memory stats store; counters are lost on restart")
		return stats.NewMemoryStore(), func() {}, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite stats store: %w", err)
		}
		logInfo("Stats stored in SQLite at %s", cfg.SQLitePath)
		return store, func() {
			if err := store.Close(); err != nil {
				logWarn("Failed to close sqlite stats store: %v", err)
			}
		}, nil

	case config.DriverPostgres:
		if err := database.MigrateUp(database.DriverPostgres, cfg.DatabaseURL); err != nil {
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		db, err := database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres stats store: %w", err)
		}
		logInfo("Stats stored in PostgreSQL")
		return postgres.NewStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown stats driver %q", cfg.StatsDriver)
	}
}

// migrationTarget maps the configured driver to a migrate driver and DSN.
func migrationTarget(cfg config.Config) (driver, dsn string, err error) {
	switch cfg.StatsDriver {
	case config.DriverSQLite:
		return database.DriverSQLite, database.SQLiteDSN(cfg.SQLitePath), nil
	case config.DriverPostgres:
		return database.DriverPostgres, cfg.DatabaseURL, nil
	default:
		return "", "", fmt.Errorf("stats driver %q has no schema to migrate", cfg.StatsDriver)
	}
}
