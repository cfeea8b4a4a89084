package stats_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varo6/wordle-trpc/internal/stats"
	"github.com/varo6/wordle-trpc/internal/stats/statstest"
)

type failingStore struct {
	err error
}

func (f failingStore) Increment(context.Context, string, bool) error { return f.err }
func (f failingStore) Totals(context.Context) (stats.Totals, error) {
	return stats.Totals{}, f.err
}
func (f failingStore) WordCounts(context.Context) ([]stats.WordCount, error) {
	return nil, f.err
}

func TestMemoryStore(t *testing.T) {
	statstest.Run(t, func(t *testing.T) stats.CounterStore {
		return stats.NewMemoryStore()
	})
}

func TestAggregator_RecordOutcome(t *testing.T) {
	store := stats.NewMemoryStore()
	agg := stats.NewAggregator(store, nil)
	ctx := context.Background()

	require.NoError(t, agg.RecordOutcome(ctx, " ROUTE ", true))
	require.NoError(t, agg.RecordOutcome(ctx, "route", false))

	counts, err := store.WordCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []stats.WordCount{{Word: "route", CorrectGuesses: 1, IncorrectGuesses: 1}}, counts)
}

func TestAggregator_RecordOutcomeEmptyWord(t *testing.T) {
	agg := stats.NewAggregator(stats.NewMemoryStore(), nil)

	err := agg.RecordOutcome(context.Background(), "  ", true)
	var perr *stats.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, stats.ErrEmptyWord)
}

func TestAggregator_RecordOutcomeFailure(t *testing.T) {
	boom := errors.New("disk full")
	agg := stats.NewAggregator(failingStore{err: boom}, nil)

	err := agg.RecordOutcome(context.Background(), "route", true)
	var perr *stats.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "route", perr.Word)
	assert.True(t, perr.Won)
	assert.ErrorIs(t, err, boom)
}

func TestAggregator_ConcurrentOutcomes(t *testing.T) {
	store := stats.NewMemoryStore()
	agg := stats.NewAggregator(store, []string{"route"})
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, won := range []bool{true, false} {
		wg.Add(1)
		go func(won bool) {
			defer wg.Done()
			assert.NoError(t, agg.RecordOutcome(ctx, "route", won))
		}(won)
	}
	wg.Wait()

	report := agg.ReadStats(ctx)
	assert.True(t, report.Available)
	assert.Equal(t, stats.Totals{CompletedGames: 2, Wins: 1, Losses: 1}, report.Totals)
	assert.Equal(t, []stats.WordCount{{Word: "route", CorrectGuesses: 1, IncorrectGuesses: 1}}, report.Words)
}

func TestAggregator_ReadStatsRanksAndFills(t *testing.T) {
	store := stats.NewMemoryStore()
	agg := stats.NewAggregator(store, []string{"apple", "crane", "level", "route", "table"})
	ctx := context.Background()

	outcomes := []struct {
		word string
		won  bool
	}{
		{"route", true}, {"route", true}, {"level", true}, {"crane", true},
		{"crane", false}, {"table", false},
	}
	for _, o := range outcomes {
		require.NoError(t, agg.RecordOutcome(ctx, o.word, o.won))
	}

	report := agg.ReadStats(ctx)
	require.True(t, report.Available)
	assert.Equal(t, report.Totals.CompletedGames, report.Totals.Wins+report.Totals.Losses)
	assert.Equal(t, stats.Totals{CompletedGames: 6, Wins: 4, Losses: 2}, report.Totals)
	assert.Equal(t, []stats.WordCount{
		{Word: "route", CorrectGuesses: 2},
		{Word: "crane", CorrectGuesses: 1, IncorrectGuesses: 1},
		{Word: "level", CorrectGuesses: 1},
		{Word: "apple"},
		{Word: "table", IncorrectGuesses: 1},
	}, report.Words)
}

func TestAggregator_ReadStatsUnavailable(t *testing.T) {
	agg := stats.NewAggregator(failingStore{err: errors.New("connection refused")}, []string{"route", "apple"})

	report := agg.ReadStats(context.Background())
	assert.False(t, report.Available)
	assert.Equal(t, stats.Totals{}, report.Totals)
	assert.Equal(t, []stats.WordCount{{Word: "apple"}, {Word: "route"}}, report.Words)
}

func TestRank_WordsOutsideVocabularyKept(t *testing.T) {
	ranked := stats.Rank([]stats.WordCount{{Word: "zebra", CorrectGuesses: 3}}, []string{"apple", "apple"})
	assert.Equal(t, []stats.WordCount{{Word: "zebra", CorrectGuesses: 3}, {Word: "apple"}}, ranked)
}
