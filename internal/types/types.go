// Package types holds the JSON payloads exchanged with clients.
package types

import (
	"github.com/varo6/wordle-trpc/internal/game"
	"github.com/varo6/wordle-trpc/internal/stats"
)

// GuessRequest is the body of both guess routes. An empty guess is scored
// as a length mismatch rather than rejected as a bad body.
type GuessRequest struct {
	Guess string `json:"guess"`
}

// GuessResponse answers a daily or practice guess. Soft failures set
// IsValid to false, carry an all-absent result and explain themselves in Error.
type GuessResponse struct {
	IsValid   bool         `json:"isValid"`
	IsCorrect bool         `json:"isCorrect"`
	Result    game.Verdict `json:"result"`
	Error     string       `json:"error,omitempty"`
}

// WordResponse carries a word, or null when unknown.
type WordResponse struct {
	Word *string `json:"word"`
}

// MinutesResponse answers the next-word countdown.
type MinutesResponse struct {
	Minutes int `json:"minutes"`
}

// ClearCacheResponse acknowledges a daily cache reset.
type ClearCacheResponse struct {
	Cleared bool `json:"cleared"`
}

// PracticeStartResponse is returned when a practice game begins.
type PracticeStartResponse struct {
	GameID string `json:"gameId"`
	Length int    `json:"length"`
}

// ResultRequest is the body of the practice result route.
type ResultRequest struct {
	Won bool `json:"won"`
}

// ResultResponse reports whether a practice outcome was stored.
type ResultResponse struct {
	Recorded bool   `json:"recorded"`
	Won      bool   `json:"won"`
	Error    string `json:"error,omitempty"`
}

// StatsResponse is the aggregate stats report.
type StatsResponse = stats.Report

// ErrorResponse is used for hard failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is served on /healthz.
type HealthResponse struct {
	Status         string `json:"status"`
	Env            string `json:"env"`
	WordsLoaded    int    `json:"words_loaded"`
	PracticeWords  int    `json:"practice_words"`
	ActiveSessions int    `json:"active_sessions"`
	StatsDriver    string `json:"stats_driver"`
	Uptime         string `json:"uptime"`
	Timestamp      string `json:"timestamp"`
}
