package main

import "time"

// Route constants
const (
	RouteHealth         = "/healthz"
	RouteDailyWord      = "/api/daily/word"
	RouteDailyGuess     = "/api/daily/guess"
	RouteDailyNext      = "/api/daily/next"
	RouteDailyClear     = "/api/daily/cache/clear"
	RouteDailyRotation  = "/api/daily/rotation"
	RoutePracticeStart  = "/api/practice"
	RoutePracticeGuess  = "/api/practice/:id/guess"
	RoutePracticeWord   = "/api/practice/:id/word"
	RoutePracticeResult = "/api/practice/:id/result"
	RouteStats          = "/api/stats"
)

// Error message constants
const (
	ErrorInvalidBody      = "invalid request body"
	ErrorNoPracticeWords  = "no practice words available"
	ErrorTooManyRequests  = "Too many requests. Please slow down."
	ErrorSessionNotFound  = "game not found or expired"
	ErrorWordNotAccepted  = "word not recognized"
	ErrorInvalidLengthFmt = "word must have %d letters"
)

// Server timeouts
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type contextKey string

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
