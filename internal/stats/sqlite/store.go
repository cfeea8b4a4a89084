// Package sqlite provides a SQLite-backed counter store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/varo6/wordle-trpc/internal/database"
	"github.com/varo6/wordle-trpc/internal/stats"
)

const (
	incrementGameSQL = `
INSERT INTO game_stats (id, completed_games, wins, losses, updated_at)
VALUES (1, 1, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    completed_games = game_stats.completed_games + 1,
    wins            = game_stats.wins + excluded.wins,
    losses          = game_stats.losses + excluded.losses,
    updated_at      = excluded.updated_at`

	incrementWordSQL = `
INSERT INTO word_stats (word, correct_guesses, incorrect_guesses, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (word) DO UPDATE SET
    correct_guesses   = word_stats.correct_guesses + excluded.correct_guesses,
    incorrect_guesses = word_stats.incorrect_guesses + excluded.incorrect_guesses,
    updated_at        = excluded.updated_at`
)

// Store persists counters in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite counter store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if dir := filepath.Dir(filepath.Clean(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	dsn := database.SQLiteDSN(path)
	if err := database.MigrateUp(database.DriverSQLite, dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serializes writers and avoids SQLITE_BUSY on upgrade.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Increment records one finished game for word in a single transaction.
func (s *Store) Increment(ctx context.Context, word string, won bool) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	wins, losses := 0, 1
	if won {
		wins, losses = 1, 0
	}
	now := time.Now().UTC().UnixMilli()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin increment: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("rollback failed: %v, original error: %w", rbErr, err)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, incrementGameSQL, wins, losses, now); err != nil {
		return fmt.Errorf("increment game stats: %w", err)
	}
	if _, err = tx.ExecContext(ctx, incrementWordSQL, word, wins, losses, now); err != nil {
		return fmt.Errorf("increment word stats for %q: %w", word, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit increment: %w", err)
	}
	return nil
}

// Totals returns the global counters, zero when no game was recorded yet.
func (s *Store) Totals(ctx context.Context) (stats.Totals, error) {
	if err := ctx.Err(); err != nil {
		return stats.Totals{}, err
	}
	if s == nil || s.sqlDB == nil {
		return stats.Totals{}, fmt.Errorf("storage is not configured")
	}

	var totals stats.Totals
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT completed_games, wins, losses FROM game_stats WHERE id = 1`,
	).Scan(&totals.CompletedGames, &totals.Wins, &totals.Losses)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.Totals{}, nil
	}
	if err != nil {
		return stats.Totals{}, fmt.Errorf("query game stats: %w", err)
	}
	return totals, nil
}

// WordCounts returns every stored word row.
func (s *Store) WordCounts(ctx context.Context) ([]stats.WordCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT word, correct_guesses, incorrect_guesses FROM word_stats ORDER BY correct_guesses DESC, word ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query word stats: %w", err)
	}
	defer rows.Close()

	var counts []stats.WordCount
	for rows.Next() {
		var wc stats.WordCount
		if err := rows.Scan(&wc.Word, &wc.CorrectGuesses, &wc.IncorrectGuesses); err != nil {
			return nil, fmt.Errorf("scan word stats: %w", err)
		}
		counts = append(counts, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate word stats: %w", err)
	}
	return counts, nil
}
