// Package statstest holds behaviour checks shared by every CounterStore
// implementation.
package statstest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varo6/wordle-trpc/internal/stats"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) stats.CounterStore

// Run exercises store semantics: counters, per-word rows and concurrent
// increments without lost updates.
func Run(t *testing.T, newStore Factory) {
	t.Run("empty store", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		totals, err := store.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, stats.Totals{}, totals)

		counts, err := store.WordCounts(ctx)
		require.NoError(t, err)
		assert.Empty(t, counts)
	})

	t.Run("increments global and word counters", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Increment(ctx, "route", true))
		require.NoError(t, store.Increment(ctx, "route", false))
		require.NoError(t, store.Increment(ctx, "level", true))

		totals, err := store.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, stats.Totals{CompletedGames: 3, Wins: 2, Losses: 1}, totals)

		counts, err := store.WordCounts(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []stats.WordCount{
			{Word: "route", CorrectGuesses: 1, IncorrectGuesses: 1},
			{Word: "level", CorrectGuesses: 1, IncorrectGuesses: 0},
		}, counts)
	})

	t.Run("cancelled context records nothing", func(t *testing.T) {
		store := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.Error(t, store.Increment(ctx, "route", true))

		totals, err := store.Totals(context.Background())
		require.NoError(t, err)
		assert.Equal(t, stats.Totals{}, totals)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const workers = 8
		const perWorker = 10
		var wg sync.WaitGroup
		errs := make(chan error, workers*perWorker)
		for w := range workers {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := range perWorker {
					won := (w+i)%2 == 0
					if err := store.Increment(ctx, "crane", won); err != nil {
						errs <- fmt.Errorf("worker %d: %w", w, err)
					}
				}
			}(w)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		totals, err := store.Totals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(workers*perWorker), totals.CompletedGames)
		assert.Equal(t, totals.CompletedGames, totals.Wins+totals.Losses)

		counts, err := store.WordCounts(ctx)
		require.NoError(t, err)
		require.Len(t, counts, 1)
		assert.Equal(t, totals.Wins, counts[0].CorrectGuesses)
		assert.Equal(t, totals.Losses, counts[0].IncorrectGuesses)
	})
}
