package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/varo6/wordle-trpc/internal/config"
	"github.com/varo6/wordle-trpc/internal/daily"
	"github.com/varo6/wordle-trpc/internal/practice"
	"github.com/varo6/wordle-trpc/internal/stats"
	"github.com/varo6/wordle-trpc/internal/words"
)

// App holds the application's shared state and dependencies.
type App struct {
	Config config.Config

	MainWords     []string
	PracticeWords []string
	DailyWords    words.Set

	Daily    *daily.Selector
	Practice *practice.Store
	Stats    *stats.Aggregator

	LimiterMap     map[string]*rate.Limiter
	LimiterMutex   sync.Mutex
	RateLimitRPS   int
	RateLimitBurst int

	IsProduction bool
	StartTime    time.Time
}
