// Package postgres provides a PostgreSQL-backed counter store.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/varo6/wordle-trpc/internal/database"
	"github.com/varo6/wordle-trpc/internal/stats"
)

// Store persists counters in PostgreSQL.
type Store struct {
	db *database.DB
}

// NewStore creates a counter store over an open pool
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// Increment records one finished game for word in a single transaction
func (s *Store) Increment(ctx context.Context, word string, won bool) error {
	wins, losses := 0, 1
	if won {
		wins, losses = 1, 0
	}

	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO game_stats (id, completed_games, wins, losses)
			VALUES (1, 1, $1, $2)
			ON CONFLICT (id) DO UPDATE SET
				completed_games = game_stats.completed_games + 1,
				wins            = game_stats.wins + EXCLUDED.wins,
				losses          = game_stats.losses + EXCLUDED.losses,
				updated_at      = NOW()`,
			wins, losses,
		)
		if err != nil {
			return fmt.Errorf("failed to increment game stats: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO word_stats (word, correct_guesses, incorrect_guesses)
			VALUES ($1, $2, $3)
			ON CONFLICT (word) DO UPDATE SET
				correct_guesses   = word_stats.correct_guesses + EXCLUDED.correct_guesses,
				incorrect_guesses = word_stats.incorrect_guesses + EXCLUDED.incorrect_guesses,
				updated_at        = NOW()`,
			word, wins, losses,
		)
		if err != nil {
			return fmt.Errorf("failed to increment word stats for %q: %w", word, err)
		}
		return nil
	})
}

// Totals returns the global counters
func (s *Store) Totals(ctx context.Context) (stats.Totals, error) {
	var totals stats.Totals
	err := s.db.QueryRow(ctx,
		`SELECT completed_games, wins, losses FROM game_stats WHERE id = 1`,
	).Scan(&totals.CompletedGames, &totals.Wins, &totals.Losses)
	if errors.Is(err, pgx.ErrNoRows) {
		return stats.Totals{}, nil
	}
	if err != nil {
		return stats.Totals{}, fmt.Errorf("failed to get game stats: %w", err)
	}
	return totals, nil
}

// WordCounts returns every stored word row
func (s *Store) WordCounts(ctx context.Context) ([]stats.WordCount, error) {
	rows, err := s.db.Query(ctx,
		`SELECT word, correct_guesses, incorrect_guesses FROM word_stats ORDER BY correct_guesses DESC, word ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query word stats: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (stats.WordCount, error) {
		var wc stats.WordCount
		err := row.Scan(&wc.Word, &wc.CorrectGuesses, &wc.IncorrectGuesses)
		return wc, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan word stats: %w", err)
	}
	return counts, nil
}
