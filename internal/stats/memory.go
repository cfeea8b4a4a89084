package stats

import (
	"context"
	"sync"
)

// MemoryStore keeps counters in process memory. Counters are lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	totals Totals
	words  map[string]*WordCount
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{words: make(map[string]*WordCount)}
}

func (m *MemoryStore) Increment(ctx context.Context, word string, won bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totals.CompletedGames++
	wc, ok := m.words[word]
	if !ok {
		wc = &WordCount{Word: word}
		m.words[word] = wc
	}
	if won {
		m.totals.Wins++
		wc.CorrectGuesses++
	} else {
		m.totals.Losses++
		wc.IncorrectGuesses++
	}
	return nil
}

func (m *MemoryStore) Totals(ctx context.Context) (Totals, error) {
	if err := ctx.Err(); err != nil {
		return Totals{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals, nil
}

func (m *MemoryStore) WordCounts(ctx context.Context) ([]WordCount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make([]WordCount, 0, len(m.words))
	for _, wc := range m.words {
		counts = append(counts, *wc)
	}
	return counts, nil
}
