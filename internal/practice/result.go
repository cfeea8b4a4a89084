package practice

import (
	"fmt"

	"github.com/varo6/wordle-trpc/internal/game"
)

// MessageNotRecognized is reported for guesses outside the dictionary.
const MessageNotRecognized = "word not recognized"

// GuessStatus tags the outcome of SubmitGuess.
type GuessStatus int

const (
	GuessScored GuessStatus = iota
	GuessNotFound
	GuessCompleted
	GuessWrongLength
	GuessNotInDictionary
)

// GuessResult is the answer to a practice guess. Every status other than
// GuessScored carries an all-absent verdict and leaves the session untouched.
type GuessResult struct {
	Status  GuessStatus
	Valid   bool
	Correct bool
	Verdict game.Verdict
	// Length is the expected guess length, when known.
	Length int
}

// Message explains a soft failure. It is empty for scored guesses.
func (r GuessResult) Message() string {
	switch r.Status {
	case GuessNotInDictionary:
		return MessageNotRecognized
	case GuessNotFound:
		return "game not found or expired"
	case GuessCompleted:
		return "game already completed"
	case GuessWrongLength:
		return fmt.Sprintf("word must have %d letters", r.Length)
	default:
		return ""
	}
}

func softFailure(status GuessStatus, length int) GuessResult {
	return GuessResult{
		Status:  status,
		Verdict: game.AllAbsent(length),
		Length:  length,
	}
}

// FinalizeStatus tags the outcome of Finalize.
type FinalizeStatus int

const (
	FinalizeRecorded FinalizeStatus = iota
	FinalizeNotFound
	FinalizeFailed
	// FinalizeUnrecorded means the store has no recorder to write to.
	FinalizeUnrecorded
)

// FinalizeResult is the answer to Finalize.
type FinalizeResult struct {
	Status FinalizeStatus
	Won    bool
	Err    error
}

// Recorded reports whether the outcome reached the stats store.
func (r FinalizeResult) Recorded() bool {
	return r.Status == FinalizeRecorded
}

// Message explains a non-recorded result.
func (r FinalizeResult) Message() string {
	switch r.Status {
	case FinalizeNotFound:
		return "game not found or expired"
	case FinalizeFailed:
		return "result could not be saved"
	case FinalizeUnrecorded:
		return "results are not being recorded"
	default:
		return ""
	}
}
