// Package stats records finished practice games and reports aggregate
// counters per word and overall.
package stats

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/varo6/wordle-trpc/internal/words"
)

// DefaultTimeout bounds a single call into the counter store.
const DefaultTimeout = 5 * time.Second

// ErrEmptyWord is returned when an outcome is recorded without a word.
var ErrEmptyWord = errors.New("word is required")

// Totals are the global game counters.
type Totals struct {
	CompletedGames int64 `json:"completedGames"`
	Wins           int64 `json:"wins"`
	Losses         int64 `json:"losses"`
}

// WordCount holds the counters of a single word.
type WordCount struct {
	Word             string `json:"word"`
	CorrectGuesses   int64  `json:"correctGuesses"`
	IncorrectGuesses int64  `json:"incorrectGuesses"`
}

// Report is the result of ReadStats. Available is false when the counter
// store could not be read and the numbers are zero defaults.
type Report struct {
	Available bool        `json:"available"`
	Totals    Totals      `json:"totals"`
	Words     []WordCount `json:"words"`
}

// CounterStore persists the counters. Increment must bump the global row and
// the word row in one transaction.
type CounterStore interface {
	Increment(ctx context.Context, word string, won bool) error
	Totals(ctx context.Context) (Totals, error)
	WordCounts(ctx context.Context) ([]WordCount, error)
}

// PersistenceError wraps a failed write to the counter store.
type PersistenceError struct {
	Word string
	Won  bool
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("record outcome for %q (won=%t): %v", e.Word, e.Won, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Aggregator is the entry point for recording and reading statistics.
type Aggregator struct {
	store      CounterStore
	vocabulary []string
	timeout    time.Duration
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTimeout sets the deadline applied to every store call.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAggregator returns an aggregator over store. The vocabulary lists the
// words that always appear in reports, even before anyone played them.
func NewAggregator(store CounterStore, vocabulary []string, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:      store,
		vocabulary: vocabulary,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RecordOutcome counts one finished game for word.
func (a *Aggregator) RecordOutcome(ctx context.Context, word string, won bool) error {
	word = words.Normalize(word)
	if word == "" {
		return &PersistenceError{Word: word, Won: won, Err: ErrEmptyWord}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.store.Increment(ctx, word, won); err != nil {
		log.WithFields(log.Fields{
			"won":   won,
			"error": err,
		}).Error("Failed to record game outcome")
		return &PersistenceError{Word: word, Won: won, Err: err}
	}

	log.WithField("won", won).Debug("Recorded game outcome")
	return nil
}

// ReadStats returns the totals and the per-word ranking. It never fails: if
// the store is unreachable the report is zeroed and marked unavailable.
func (a *Aggregator) ReadStats(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	report := Report{Available: true}

	totals, err := a.store.Totals(ctx)
	if err != nil {
		log.WithError(err).Warn("Stats store unavailable, serving defaults")
		return Report{Available: false, Words: Rank(nil, a.vocabulary)}
	}
	counts, err := a.store.WordCounts(ctx)
	if err != nil {
		log.WithError(err).Warn("Stats store unavailable, serving defaults")
		return Report{Available: false, Words: Rank(nil, a.vocabulary)}
	}

	report.Totals = totals
	report.Words = Rank(counts, a.vocabulary)
	return report
}

// Rank adds a zero row for every vocabulary word missing from counts and
// orders rows by correct guesses descending, then by word.
func Rank(counts []WordCount, vocabulary []string) []WordCount {
	seen := lo.SliceToMap(counts, func(c WordCount) (string, struct{}) {
		return c.Word, struct{}{}
	})
	missing := lo.FilterMap(lo.Uniq(vocabulary), func(w string, _ int) (WordCount, bool) {
		_, ok := seen[w]
		return WordCount{Word: w}, !ok
	})

	ranked := make([]WordCount, 0, len(counts)+len(missing))
	ranked = append(ranked, counts...)
	ranked = append(ranked, missing...)
	slices.SortFunc(ranked, func(a, b WordCount) int {
		if c := cmp.Compare(b.CorrectGuesses, a.CorrectGuesses); c != 0 {
			return c
		}
		return cmp.Compare(a.Word, b.Word)
	})
	return ranked
}
