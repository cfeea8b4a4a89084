package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/varo6/wordle-trpc/internal/game"
	"github.com/varo6/wordle-trpc/internal/practice"
	"github.com/varo6/wordle-trpc/internal/types"
)

// dailyWordHandler returns today's word.
func (app *App) dailyWordHandler(c *gin.Context) {
	word := app.getTodaysWord()
	c.JSON(http.StatusOK, types.WordResponse{Word: &word})
}

// dailyGuessHandler scores a guess against today's word.
func (app *App) dailyGuessHandler(c *gin.Context) {
	var req types.GuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: ErrorInvalidBody})
		return
	}

	resp, err := app.tryDailyGuess(c.Request.Context(), req.Guess)
	if errors.Is(err, game.ErrLengthMismatch) {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// dailyNextHandler returns the minutes left until the next daily word.
func (app *App) dailyNextHandler(c *gin.Context) {
	c.JSON(http.StatusOK, types.MinutesResponse{Minutes: app.minutesUntilNextDailyWord()})
}

// dailyClearHandler drops the cached daily word.
func (app *App) dailyClearHandler(c *gin.Context) {
	app.clearDailyWordCache()
	c.JSON(http.StatusOK, types.ClearCacheResponse{Cleared: true})
}

// dailyRotationHandler reports the daily selector state.
func (app *App) dailyRotationHandler(c *gin.Context) {
	c.JSON(http.StatusOK, app.dailyRotation())
}

// practiceStartHandler opens a new practice session.
func (app *App) practiceStartHandler(c *gin.Context) {
	resp, err := app.startPracticeSession(c.Request.Context())
	if err != nil {
		if errors.Is(err, practice.ErrNoWords) {
			c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: ErrorNoPracticeWords})
			return
		}
		requestLogger(c.Request.Context()).WithError(err).Error("Failed to start practice session")
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// practiceGuessHandler scores a guess within a practice session.
func (app *App) practiceGuessHandler(c *gin.Context) {
	var req types.GuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: ErrorInvalidBody})
		return
	}
	c.JSON(http.StatusOK, app.tryPracticeGuess(c.Param("id"), req.Guess))
}

// practiceWordHandler reveals a practice session's word.
func (app *App) practiceWordHandler(c *gin.Context) {
	c.JSON(http.StatusOK, app.peekPracticeWord(c.Param("id")))
}

// practiceResultHandler finalizes a practice session.
func (app *App) practiceResultHandler(c *gin.Context) {
	var req types.ResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: ErrorInvalidBody})
		return
	}
	c.JSON(http.StatusOK, app.recordPracticeResult(c.Request.Context(), c.Param("id"), req.Won))
}

// statsHandler returns the aggregate stats.
func (app *App) statsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, app.getStats(c.Request.Context()))
}

// healthzHandler returns a JSON health check with server stats.
func (app *App) healthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:         "ok",
		Env:            envName(app.IsProduction),
		WordsLoaded:    len(app.MainWords),
		PracticeWords:  len(app.PracticeWords),
		ActiveSessions: app.Practice.Len(),
		StatsDriver:    app.Config.StatsDriver,
		Uptime:         formatUptime(time.Since(app.StartTime)),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}
