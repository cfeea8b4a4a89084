// Package practice runs random-word games. Sessions live only in memory and
// expire after a fixed time-to-live; expiry is applied lazily whenever the
// store is consulted.
package practice

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/varo6/wordle-trpc/internal/game"
	"github.com/varo6/wordle-trpc/internal/words"
)

// DefaultTTL is how long a session survives after creation.
const DefaultTTL = time.Hour

// ErrNoWords is returned by Start when the practice vocabulary is empty.
var ErrNoWords = errors.New("no practice words available")

// OutcomeRecorder persists the result of a finished session.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, word string, won bool) error
}

// Session is one practice game.
type Session struct {
	ID        string
	Word      string
	CreatedAt time.Time
	Completed bool
}

// Expired reports whether s is older than ttl at now.
func Expired(s *Session, now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) > ttl
}

// StartResult is returned to the player. It never carries the word.
type StartResult struct {
	ID     string
	Length int
}

// Store owns every practice session.
type Store struct {
	vocabulary []string
	dictionary words.Set
	recorder   OutcomeRecorder

	ttl    time.Duration
	now    func() time.Time
	newID  func() string
	pickFn func(n int) (int, error)

	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the session time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the session id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithPicker replaces the uniform index source used to choose words.
func WithPicker(fn func(n int) (int, error)) Option {
	return func(s *Store) {
		if fn != nil {
			s.pickFn = fn
		}
	}
}

// NewStore returns a store drawing secrets from vocabulary and accepting
// guesses found in dictionary.
func NewStore(vocabulary []string, dictionary words.Set, recorder OutcomeRecorder, opts ...Option) *Store {
	s := &Store{
		vocabulary: vocabulary,
		dictionary: dictionary,
		recorder:   recorder,
		ttl:        DefaultTTL,
		now:        time.Now,
		newID:      uuid.NewString,
		pickFn:     cryptoPick,
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cryptoPick(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// Start creates a session with a random word.
func (s *Store) Start(ctx context.Context) (StartResult, error) {
	if len(s.vocabulary) == 0 {
		return StartResult{}, ErrNoWords
	}
	if err := ctx.Err(); err != nil {
		return StartResult{}, err
	}

	idx, err := s.pickFn(len(s.vocabulary))
	if err != nil {
		return StartResult{}, fmt.Errorf("pick practice word: %w", err)
	}
	word := s.vocabulary[idx]

	session := &Session{
		ID:        s.newID(),
		Word:      word,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.sweepLocked(session.CreatedAt)
	s.sessions[session.ID] = session
	s.mu.Unlock()

	log.WithFields(log.Fields{"session": session.ID, "length": words.Len(word)}).Info("Practice session started")
	log.WithFields(log.Fields{"session": session.ID, "word": word}).Debug("Practice word chosen")
	return StartResult{ID: session.ID, Length: words.Len(word)}, nil
}

// SubmitGuess scores guess against the session's word.
func (s *Store) SubmitGuess(id, guess string) GuessResult {
	guess = words.Normalize(guess)

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.lookupLocked(id)
	if session == nil {
		return softFailure(GuessNotFound, words.Len(guess))
	}
	length := words.Len(session.Word)
	if session.Completed {
		return softFailure(GuessCompleted, length)
	}
	if words.Len(guess) != length {
		return softFailure(GuessWrongLength, length)
	}
	if !s.dictionary.Contains(guess) {
		return softFailure(GuessNotInDictionary, length)
	}

	verdict, err := game.Score(session.Word, guess)
	if err != nil {
		return softFailure(GuessWrongLength, length)
	}

	result := GuessResult{
		Status:  GuessScored,
		Valid:   true,
		Correct: verdict.Solved(),
		Verdict: verdict,
	}
	if result.Correct {
		session.Completed = true
		log.WithField("session", id).Info("Practice session solved")
	}
	return result
}

// Peek returns the session's word.
func (s *Store) Peek(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.lookupLocked(id)
	if session == nil {
		return "", false
	}
	return session.Word, true
}

// Finalize removes the session and records its outcome. The recorded win is
// claimedWin && the session was solved here. The session is gone afterwards
// even if recording fails, so an outcome is recorded at most once.
func (s *Store) Finalize(ctx context.Context, id string, claimedWin bool) FinalizeResult {
	s.mu.Lock()
	session := s.lookupLocked(id)
	if session != nil {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if session == nil {
		return FinalizeResult{Status: FinalizeNotFound}
	}

	won := claimedWin && session.Completed
	result := FinalizeResult{Status: FinalizeRecorded, Won: won}

	if s.recorder == nil {
		result.Status = FinalizeUnrecorded
		return result
	}
	if err := s.recorder.RecordOutcome(ctx, session.Word, won); err != nil {
		log.WithFields(log.Fields{"session": id, "error": err}).Warn("Practice outcome lost")
		result.Status = FinalizeFailed
		result.Err = err
		return result
	}
	log.WithFields(log.Fields{"session": id, "won": won}).Info("Practice session finalized")
	return result
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
	return len(s.sessions)
}

// TTL returns the session time-to-live.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) lookupLocked(id string) *Session {
	s.sweepLocked(s.now())
	return s.sessions[id]
}

func (s *Store) sweepLocked(now time.Time) {
	removed := 0
	for id, session := range s.sessions {
		if Expired(session, now, s.ttl) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.WithFields(log.Fields{"removed": removed, "remaining": len(s.sessions)}).Debug("Swept expired practice sessions")
	}
}
