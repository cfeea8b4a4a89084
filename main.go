package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
	"golang.org/x/time/rate"

	"github.com/varo6/wordle-trpc/internal/config"
	"github.com/varo6/wordle-trpc/internal/daily"
	"github.com/varo6/wordle-trpc/internal/practice"
	"github.com/varo6/wordle-trpc/internal/stats"
	"github.com/varo6/wordle-trpc/internal/words"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logFatal("wordle: %v", err)
	}
}

// newApp wires the game components around a counter store.
func newApp(cfg config.Config, mainWords, practiceWords []string, store stats.CounterStore) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load daily timezone: %w", err)
	}

	aggregator := stats.NewAggregator(store, practiceWords, stats.WithTimeout(cfg.StatsTimeout))
	dictionary := words.NewSet(mainWords, practiceWords)

	return &App{
		Config:         cfg,
		MainWords:      mainWords,
		PracticeWords:  practiceWords,
		DailyWords:     words.NewSet(mainWords),
		Daily:          daily.NewSelector(mainWords, cfg.WordSeed, loc),
		Practice:       practice.NewStore(practiceWords, dictionary, aggregator, practice.WithTTL(cfg.SessionTTL)),
		Stats:          aggregator,
		LimiterMap:     make(map[string]*rate.Limiter),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		IsProduction:   cfg.IsProduction(),
		StartTime:      time.Now(),
	}, nil
}

// loadWordLists reads the main and practice vocabularies.
func loadWordLists(cfg config.Config) (mainWords, practiceWords []string, err error) {
	mainWords, err = words.Load(cfg.WordsFile, cfg.WordLength)
	if err != nil {
		return nil, nil, fmt.Errorf("load main word list: %w", err)
	}
	if len(mainWords) == 0 {
		logWarn("Main word list %s is empty; daily mode serves %q", cfg.WordsFile, daily.NoWordsAvailable)
	}

	practiceWords, err = loadPracticeWords(cfg)
	if err != nil {
		return nil, nil, err
	}
	return mainWords, practiceWords, nil
}

// loadPracticeWords reads the practice vocabulary. A missing file is
// tolerated; practice then has nothing to offer.
func loadPracticeWords(cfg config.Config) ([]string, error) {
	practiceWords, err := words.Load(cfg.PracticeWordsFile, cfg.WordLength)
	if errors.Is(err, os.ErrNotExist) {
		logWarn("Practice word list %s not found; practice mode disabled", cfg.PracticeWordsFile)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load practice word list: %w", err)
	}
	return practiceWords, nil
}

// setupRouter builds the gin engine with middleware and routes.
func setupRouter(app *App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), accessLogMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression))
	router.Use(cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	}))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.GET(RouteHealth, app.healthzHandler)

	router.GET(RouteDailyWord, app.dailyWordHandler)
	router.POST(RouteDailyGuess, app.dailyGuessHandler)
	router.GET(RouteDailyNext, app.dailyNextHandler)
	router.POST(RouteDailyClear, app.dailyClearHandler)
	router.GET(RouteDailyRotation, app.dailyRotationHandler)

	router.POST(RoutePracticeStart, app.rateLimitMiddleware(), app.practiceStartHandler)
	router.POST(RoutePracticeGuess, app.practiceGuessHandler)
	router.GET(RoutePracticeWord, app.practiceWordHandler)
	router.POST(RoutePracticeResult, app.practiceResultHandler)

	router.GET(RouteStats, app.statsHandler)

	return router
}

// runServer serves the API until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, cfg config.Config) error {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	logInfo("Starting wordle in %s mode", envName(cfg.IsProduction()))

	mainWords, practiceWords, err := loadWordLists(cfg)
	if err != nil {
		return err
	}
	logInfo("Loaded %d main words and %d practice words", len(mainWords), len(practiceWords))

	store, closeStore, err := openStatsStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	app, err := newApp(cfg, mainWords, practiceWords, store)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(app),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logInfo("Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logInfo("Shutdown signal received, shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logWarn("HTTP server Shutdown: %v", err)
	}
	logInfo("Server shutdown complete")
	return nil
}
