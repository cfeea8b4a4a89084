package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varo6/wordle-trpc/internal/config"
	"github.com/varo6/wordle-trpc/internal/daily"
	"github.com/varo6/wordle-trpc/internal/game"
	"github.com/varo6/wordle-trpc/internal/stats"
	"github.com/varo6/wordle-trpc/internal/types"
)

// With seed "semilla" on 2024-01-01 (day 19723) this list yields "route".
var testMainWords = []string{"crane", "route", "level", "slate", "outer", "betel", "eerie"}

var testNoon = time.Date(2024, 1, 1, 12, 0, 0, 0, mustLoadLocation("Europe/Madrid"))

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func testConfig() config.Config {
	return config.Config{
		Env:            "development",
		WordSeed:       "semilla",
		DailyTimezone:  "Europe/Madrid",
		WordLength:     5,
		SessionTTL:     time.Hour,
		StatsDriver:    config.DriverMemory,
		StatsTimeout:   time.Second,
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func newTestApp(t *testing.T, practiceWords []string, store stats.CounterStore) *App {
	t.Helper()
	cfg := testConfig()
	app, err := newApp(cfg, testMainWords, practiceWords, store)
	require.NoError(t, err)
	app.Daily = daily.NewSelector(testMainWords, cfg.WordSeed, testNoon.Location(),
		daily.WithClock(func() time.Time { return testNoon }))
	return app
}

func setupTestRouter(t *testing.T, app *App) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return setupRouter(app)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type brokenStore struct{}

func (brokenStore) Increment(context.Context, string, bool) error {
	return errors.New("database is locked")
}

func (brokenStore) Totals(context.Context) (stats.Totals, error) {
	return stats.Totals{}, errors.New("database is locked")
}

func (brokenStore) WordCounts(context.Context) ([]stats.WordCount, error) {
	return nil, errors.New("database is locked")
}

func TestDailyWordHandler(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, stats.NewMemoryStore()))

	w := doJSON(t, router, http.MethodGet, RouteDailyWord, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.WordResponse](t, w)
	require.NotNil(t, resp.Word)
	assert.Equal(t, "route", *resp.Word)
}

func TestDailyGuessHandler(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane", "plumb"}, stats.NewMemoryStore()))

	tests := []struct {
		name        string
		guess       string
		wantValid   bool
		wantCorrect bool
		wantResult  game.Verdict
		wantError   string
	}{
		{
			name:       "anagram is all present",
			guess:      "outer",
			wantValid:  true,
			wantResult: game.Verdict{game.Present, game.Present, game.Present, game.Present, game.Present},
		},
		{
			name:        "uppercase correct guess",
			guess:       " ROUTE ",
			wantValid:   true,
			wantCorrect: true,
			wantResult:  game.Verdict{game.Exact, game.Exact, game.Exact, game.Exact, game.Exact},
		},
		{
			name:       "unknown word",
			guess:      "zzzzz",
			wantResult: game.AllAbsent(5),
			wantError:  ErrorWordNotAccepted,
		},
		{
			name:       "practice-only word is not a daily word",
			guess:      "plumb",
			wantResult: game.AllAbsent(5),
			wantError:  ErrorWordNotAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, RouteDailyGuess, types.GuessRequest{Guess: tt.guess})
			require.Equal(t, http.StatusOK, w.Code)
			resp := decode[types.GuessResponse](t, w)
			assert.Equal(t, tt.wantValid, resp.IsValid)
			assert.Equal(t, tt.wantCorrect, resp.IsCorrect)
			assert.Equal(t, tt.wantResult, resp.Result)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestDailyGuessHandler_WrongLength(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, stats.NewMemoryStore()))

	w := doJSON(t, router, http.MethodPost, RouteDailyGuess, types.GuessRequest{Guess: "rout"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "word must have 5 letters", decode[types.ErrorResponse](t, w).Error)
}

func TestDailyGuessHandler_EmptyGuess(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, stats.NewMemoryStore()))

	w := doJSON(t, router, http.MethodPost, RouteDailyGuess, types.GuessRequest{Guess: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "word must have 5 letters", decode[types.ErrorResponse](t, w).Error)
}

func TestDailyGuessHandler_InvalidBody(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, stats.NewMemoryStore()))

	req := httptest.NewRequest(http.MethodPost, RouteDailyGuess, strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailyNextAndRotation(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, stats.NewMemoryStore()))

	w := doJSON(t, router, http.MethodGet, RouteDailyNext, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 720, decode[types.MinutesResponse](t, w).Minutes)

	w = doJSON(t, router, http.MethodGet, RouteDailyRotation, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rotation := decode[daily.RotationInfo](t, w)
	assert.Equal(t, "route", rotation.Word)
	assert.Equal(t, int64(19723), rotation.Day)
	assert.Equal(t, "semilla", rotation.Seed)
	assert.Equal(t, "Europe/Madrid", rotation.Zone)
}

func TestDailyClearHandler(t *testing.T) {
	app := newTestApp(t, []string{"crane"}, stats.NewMemoryStore())
	router := setupTestRouter(t, app)

	doJSON(t, router, http.MethodGet, RouteDailyWord, nil)
	_, cached := app.Daily.State()
	require.True(t, cached)

	w := doJSON(t, router, http.MethodPost, RouteDailyClear, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.ClearCacheResponse](t, w).Cleared)
	_, cached = app.Daily.State()
	assert.False(t, cached)
}

func TestPracticeFlow(t *testing.T) {
	store := stats.NewMemoryStore()
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, store))

	w := doJSON(t, router, http.MethodPost, RoutePracticeStart, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "crane", "starting a game must not reveal the word")
	started := decode[types.PracticeStartResponse](t, w)
	require.NotEmpty(t, started.GameID)
	assert.Equal(t, 5, started.Length)

	base := "/api/practice/" + started.GameID

	w = doJSON(t, router, http.MethodPost, base+"/guess", types.GuessRequest{Guess: "slate"})
	require.Equal(t, http.StatusOK, w.Code)
	guess := decode[types.GuessResponse](t, w)
	assert.True(t, guess.IsValid)
	assert.False(t, guess.IsCorrect)
	assert.Equal(t, game.Verdict{game.Absent, game.Absent, game.Exact, game.Absent, game.Exact}, guess.Result)

	w = doJSON(t, router, http.MethodPost, base+"/guess", types.GuessRequest{Guess: "crane"})
	guess = decode[types.GuessResponse](t, w)
	assert.True(t, guess.IsCorrect)

	w = doJSON(t, router, http.MethodPost, base+"/guess", types.GuessRequest{Guess: "crane"})
	guess = decode[types.GuessResponse](t, w)
	assert.False(t, guess.IsValid)
	assert.Equal(t, "game already completed", guess.Error)

	w = doJSON(t, router, http.MethodGet, base+"/word", nil)
	word := decode[types.WordResponse](t, w)
	require.NotNil(t, word.Word)
	assert.Equal(t, "crane", *word.Word)

	w = doJSON(t, router, http.MethodPost, base+"/result", types.ResultRequest{Won: true})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[types.ResultResponse](t, w)
	assert.True(t, result.Recorded)
	assert.True(t, result.Won)

	w = doJSON(t, router, http.MethodPost, base+"/result", types.ResultRequest{Won: true})
	result = decode[types.ResultResponse](t, w)
	assert.False(t, result.Recorded)
	assert.Equal(t, ErrorSessionNotFound, result.Error)

	w = doJSON(t, router, http.MethodGet, RouteStats, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[stats.Report](t, w)
	assert.True(t, report.Available)
	assert.Equal(t, stats.Totals{CompletedGames: 1, Wins: 1}, report.Totals)
	assert.Equal(t, []stats.WordCount{{Word: "crane", CorrectGuesses: 1}}, report.Words)
}

func TestPracticeGuess_SoftFailures(t *testing.T) {
	app := newTestApp(t, []string{"crane"}, stats.NewMemoryStore())
	router := setupTestRouter(t, app)

	w := doJSON(t, router, http.MethodPost, "/api/practice/missing/guess", types.GuessRequest{Guess: "crane"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[types.GuessResponse](t, w)
	assert.False(t, resp.IsValid)
	assert.Equal(t, ErrorSessionNotFound, resp.Error)
	assert.Equal(t, game.AllAbsent(5), resp.Result)

	started, err := app.startPracticeSession(context.Background())
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodPost, "/api/practice/"+started.GameID+"/guess", types.GuessRequest{Guess: "cran"})
	resp = decode[types.GuessResponse](t, w)
	assert.False(t, resp.IsValid)
	assert.Equal(t, "word must have 5 letters", resp.Error)
	assert.Equal(t, game.AllAbsent(5), resp.Result)

	w = doJSON(t, router, http.MethodPost, "/api/practice/"+started.GameID+"/guess", types.GuessRequest{Guess: ""})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[types.GuessResponse](t, w)
	assert.False(t, resp.IsValid)
	assert.Equal(t, "word must have 5 letters", resp.Error)
	assert.Equal(t, game.AllAbsent(5), resp.Result)

	w = doJSON(t, router, http.MethodPost, "/api/practice/"+started.GameID+"/guess", types.GuessRequest{Guess: "crane"})
	assert.True(t, decode[types.GuessResponse](t, w).IsCorrect, "rejected guesses leave the session playable")

	w = doJSON(t, router, http.MethodGet, "/api/practice/missing/word", nil)
	assert.JSONEq(t, `{"word":null}`, w.Body.String())
}

func TestPracticeResult_ClaimedWinWithoutSolving(t *testing.T) {
	store := stats.NewMemoryStore()
	app := newTestApp(t, []string{"crane"}, store)
	router := setupTestRouter(t, app)

	started, err := app.startPracticeSession(context.Background())
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodPost, "/api/practice/"+started.GameID+"/result", types.ResultRequest{Won: true})
	result := decode[types.ResultResponse](t, w)
	assert.True(t, result.Recorded)
	assert.False(t, result.Won)

	totals, err := store.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.Totals{CompletedGames: 1, Losses: 1}, totals)
}

func TestPracticeResult_StoreFailure(t *testing.T) {
	app := newTestApp(t, []string{"crane"}, brokenStore{})
	router := setupTestRouter(t, app)

	started, err := app.startPracticeSession(context.Background())
	require.NoError(t, err)
	base := "/api/practice/" + started.GameID

	w := doJSON(t, router, http.MethodPost, base+"/result", types.ResultRequest{Won: false})
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[types.ResultResponse](t, w)
	assert.False(t, result.Recorded)
	assert.Equal(t, "result could not be saved", result.Error)

	w = doJSON(t, router, http.MethodGet, base+"/word", nil)
	assert.JSONEq(t, `{"word":null}`, w.Body.String(), "session is removed even when recording fails")

	w = doJSON(t, router, http.MethodGet, RouteStats, nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[stats.Report](t, w)
	assert.False(t, report.Available)
	assert.Equal(t, []stats.WordCount{{Word: "crane"}}, report.Words)
}

func TestPracticeStart_NoWords(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, nil, stats.NewMemoryStore()))

	w := doJSON(t, router, http.MethodPost, RoutePracticeStart, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, ErrorNoPracticeWords, decode[types.ErrorResponse](t, w).Error)
}

func TestRateLimitMiddleware(t *testing.T) {
	app := newTestApp(t, []string{"crane"}, stats.NewMemoryStore())
	app.RateLimitRPS = 1
	app.RateLimitBurst = 1
	router := setupTestRouter(t, app)

	w := doJSON(t, router, http.MethodPost, RoutePracticeStart, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, RoutePracticeStart, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 1, app.Practice.Len())

	// Guesses are not throttled.
	for range 3 {
		w = doJSON(t, router, http.MethodPost, RouteDailyGuess, types.GuessRequest{Guess: "crane"})
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestHealthzHandler(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, stats.NewMemoryStore()))

	w := doJSON(t, router, http.MethodGet, RouteHealth, nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decode[types.HealthResponse](t, w)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "development", health.Env)
	assert.Equal(t, len(testMainWords), health.WordsLoaded)
	assert.Equal(t, 1, health.PracticeWords)
	assert.Equal(t, config.DriverMemory, health.StatsDriver)
}

func TestRequestIDHeader(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, stats.NewMemoryStore()))

	req := httptest.NewRequest(http.MethodGet, RouteHealth, nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))

	w = doJSON(t, router, http.MethodGet, RouteHealth, nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestResponseHeaders(t *testing.T) {
	router := setupTestRouter(t, newTestApp(t, []string{"crane"}, stats.NewMemoryStore()))

	req := httptest.NewRequest(http.MethodGet, RouteDailyWord, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	gr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	defer gr.Close()
	body, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"word":"route"}`, string(body))
}
