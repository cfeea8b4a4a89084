// Package daily picks the word of the day. The pick depends only on a seed and
// the calendar day in a fixed reference time zone, so every instance serves
// the same word and it rolls over at local midnight in that zone.
package daily

import (
	"strconv"
	"sync"
	"time"
	"unicode/utf16"

	log "github.com/sirupsen/logrus"
)

// NoWordsAvailable is served instead of a word when the list is empty.
const NoWordsAvailable = "No words available"

const secondsPerDay = 24 * 60 * 60

// Clock supplies the current time.
type Clock func() time.Time

// State is the cached word of the day.
type State struct {
	Word       string
	Day        int64
	Seed       string
	ComputedAt time.Time
}

// RotationInfo describes the selector's view of the current day.
type RotationInfo struct {
	Word          string    `json:"today"`
	Day           int64     `json:"day"`
	ZoneTime      time.Time `json:"zoneTime"`
	Zone          string    `json:"zone"`
	Seed          string    `json:"wordSeed"`
	Cached        bool      `json:"cached"`
	MinutesToNext int       `json:"minutesToNext"`
}

// Selector owns the word list, the reference zone and the cache.
type Selector struct {
	words []string
	loc   *time.Location
	now   Clock

	mu    sync.Mutex
	seed  string
	cache *State
}

// Option configures a Selector.
type Option func(*Selector)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(s *Selector) {
		if c != nil {
			s.now = c
		}
	}
}

// NewSelector returns a selector over words using seed as the default seed.
// A nil location means UTC.
func NewSelector(words []string, seed string, loc *time.Location, opts ...Option) *Selector {
	if loc == nil {
		loc = time.UTC
	}
	s := &Selector{
		words: words,
		loc:   loc,
		now:   time.Now,
		seed:  seed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DayNumber returns the number of days between 1970-01-01 and the calendar
// date of t in loc.
func DayNumber(t time.Time, loc *time.Location) int64 {
	y, m, d := t.In(loc).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return floorDiv(midnight.Unix(), secondsPerDay)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Hash folds the UTF-16 code units of s into a signed 32-bit value with
// h = h*31 + c.
func Hash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return h
}

// Index maps (seed, day) onto [0, n).
func Index(seed string, day int64, n int) int {
	if n <= 0 {
		return 0
	}
	h := int64(Hash(seed + strconv.FormatInt(day, 10)))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}

// Day returns today's day number in the reference zone.
func (s *Selector) Day() int64 {
	return DayNumber(s.now(), s.loc)
}

// Location returns the reference zone.
func (s *Selector) Location() *time.Location {
	return s.loc
}

// Seed returns the configured seed.
func (s *Selector) Seed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed
}

// WordForDay returns the word for seed on the given day.
func (s *Selector) WordForDay(seed string, day int64) string {
	if len(s.words) == 0 {
		log.WithField("seed", seed).Warn("Word list is empty, serving placeholder")
		return NoWordsAvailable
	}
	return s.words[Index(seed, day, len(s.words))]
}

// WordOfDay returns today's word for seed without touching the cache.
func (s *Selector) WordOfDay(seed string) string {
	return s.WordForDay(seed, s.Day())
}

// Current returns today's word for the configured seed, computing it at most
// once per day and seed.
func (s *Selector) Current() string {
	now := s.now()
	day := DayNumber(now, s.loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil && s.cache.Day == day && s.cache.Seed == s.seed {
		return s.cache.Word
	}

	word := s.WordForDay(s.seed, day)
	s.cache = &State{
		Word:       word,
		Day:        day,
		Seed:       s.seed,
		ComputedAt: now,
	}
	log.WithFields(log.Fields{"day": day, "zone": s.loc.String()}).Info("Computed word of the day")
	return word
}

// State returns the cached entry, if any.
func (s *Selector) State() (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return State{}, false
	}
	return *s.cache, true
}

// Clear drops the cached word.
func (s *Selector) Clear() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()
	log.Info("Cleared word of the day cache")
}

// SetSeed changes the configured seed. The cached word stops matching and is
// recomputed on the next call to Current.
func (s *Selector) SetSeed(seed string) {
	s.mu.Lock()
	s.seed = seed
	s.mu.Unlock()
}

// MinutesUntilNext returns the whole minutes left until the next midnight in
// the reference zone.
func (s *Selector) MinutesUntilNext() int {
	now := s.now()
	local := now.In(s.loc)
	y, m, d := local.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
	return int(next.Sub(now) / time.Minute)
}

// Rotation reports the current word together with the clock and cache state.
func (s *Selector) Rotation() RotationInfo {
	_, cached := s.State()
	word := s.Current()
	now := s.now()
	return RotationInfo{
		Word:          word,
		Day:           DayNumber(now, s.loc),
		ZoneTime:      now.In(s.loc),
		Zone:          s.loc.String(),
		Seed:          s.Seed(),
		Cached:        cached,
		MinutesToNext: s.MinutesUntilNext(),
	}
}
