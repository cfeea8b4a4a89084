// Package game scores guesses against a secret word.
package game

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrLengthMismatch is returned when a guess and the secret differ in length.
var ErrLengthMismatch = errors.New("guess and secret must have the same length")

// Mark is the verdict for a single position of a guess.
type Mark uint8

const (
	Absent Mark = iota
	Present
	Exact
)

// String returns the wire name of the mark.
func (m Mark) String() string {
	switch m {
	case Exact:
		return "correct"
	case Present:
		return "present"
	default:
		return "absent"
	}
}

func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mark) UnmarshalText(text []byte) error {
	switch string(text) {
	case "correct":
		*m = Exact
	case "present":
		*m = Present
	case "absent":
		*m = Absent
	default:
		return fmt.Errorf("unknown mark %q", text)
	}
	return nil
}

// Verdict holds one mark per guessed letter.
type Verdict []Mark

// Solved reports whether every position is an exact match.
func (v Verdict) Solved() bool {
	if len(v) == 0 {
		return false
	}
	for _, m := range v {
		if m != Exact {
			return false
		}
	}
	return true
}

// Count returns how many positions carry the given mark.
func (v Verdict) Count(mark Mark) int {
	n := 0
	for _, m := range v {
		if m == mark {
			n++
		}
	}
	return n
}

// AllAbsent returns a verdict of n absent marks.
func AllAbsent(n int) Verdict {
	if n < 0 {
		n = 0
	}
	return make(Verdict, n)
}

// Score compares guess against secret. Exact positions are removed from the
// pool of letters available for present marks, and repeated guess letters
// claim present credit from left to right.
func Score(secret, guess string) (Verdict, error) {
	if utf8.RuneCountInString(secret) != utf8.RuneCountInString(guess) {
		return nil, fmt.Errorf("%w: secret has %d letters, guess has %d",
			ErrLengthMismatch, utf8.RuneCountInString(secret), utf8.RuneCountInString(guess))
	}

	s := []rune(secret)
	g := []rune(guess)
	verdict := AllAbsent(len(s))

	unmatched := make(map[rune]int, len(s))
	for i := range s {
		if g[i] != s[i] {
			unmatched[s[i]]++
		}
	}

	for i := range s {
		if g[i] == s[i] {
			verdict[i] = Exact
		}
	}

	for i := range g {
		if verdict[i] == Exact {
			continue
		}
		if unmatched[g[i]] > 0 {
			verdict[i] = Present
			unmatched[g[i]]--
		}
	}

	return verdict, nil
}
