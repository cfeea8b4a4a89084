package main

import (
	"context"
	"fmt"

	"github.com/varo6/wordle-trpc/internal/daily"
	"github.com/varo6/wordle-trpc/internal/game"
	"github.com/varo6/wordle-trpc/internal/types"
	"github.com/varo6/wordle-trpc/internal/words"
)

// guessLengthError rejects a daily guess of the wrong length.
type guessLengthError struct {
	want int
}

func (e *guessLengthError) Error() string {
	return fmt.Sprintf(ErrorInvalidLengthFmt, e.want)
}

func (e *guessLengthError) Unwrap() error {
	return game.ErrLengthMismatch
}

// getTodaysWord returns the cached word of the day.
func (app *App) getTodaysWord() string {
	return app.Daily.Current()
}

// tryDailyGuess scores guess against today's word. Only a wrong length is an
// error; unknown words come back as a soft, invalid response.
func (app *App) tryDailyGuess(ctx context.Context, guess string) (types.GuessResponse, error) {
	guess = words.Normalize(guess)
	length := app.Config.WordLength

	if words.Len(guess) != length {
		requestLogger(ctx).WithField("length", words.Len(guess)).Info("Rejected daily guess with invalid length")
		return types.GuessResponse{}, &guessLengthError{want: length}
	}

	resp := types.GuessResponse{Result: game.AllAbsent(length)}
	if !app.DailyWords.Contains(guess) {
		resp.Error = ErrorWordNotAccepted
		return resp, nil
	}

	today := app.getTodaysWord()
	verdict, err := game.Score(today, guess)
	if err != nil {
		// Only reachable when the daily sentinel or a misconfigured list is served.
		requestLogger(ctx).WithError(err).Warn("Daily word cannot be scored")
		resp.Error = ErrorWordNotAccepted
		return resp, nil
	}

	resp.IsValid = true
	resp.IsCorrect = verdict.Solved()
	resp.Result = verdict
	return resp, nil
}

// minutesUntilNextDailyWord returns whole minutes until the daily rollover.
func (app *App) minutesUntilNextDailyWord() int {
	return app.Daily.MinutesUntilNext()
}

// clearDailyWordCache drops the cached daily word.
func (app *App) clearDailyWordCache() {
	app.Daily.Clear()
	logInfo("Daily word cache cleared")
}

// dailyRotation reports the daily selector state.
func (app *App) dailyRotation() daily.RotationInfo {
	return app.Daily.Rotation()
}
