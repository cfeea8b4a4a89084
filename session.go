package main

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/varo6/wordle-trpc/internal/practice"
	"github.com/varo6/wordle-trpc/internal/types"
)

// startPracticeSession opens a practice game and returns its id and length.
func (app *App) startPracticeSession(ctx context.Context) (types.PracticeStartResponse, error) {
	started, err := app.Practice.Start(ctx)
	if err != nil {
		return types.PracticeStartResponse{}, err
	}
	return types.PracticeStartResponse{GameID: started.ID, Length: started.Length}, nil
}

// tryPracticeGuess scores a guess inside a practice session.
func (app *App) tryPracticeGuess(id, guess string) types.GuessResponse {
	result := app.Practice.SubmitGuess(id, guess)
	return types.GuessResponse{
		IsValid:   result.Valid,
		IsCorrect: result.Correct,
		Result:    result.Verdict,
		Error:     result.Message(),
	}
}

// peekPracticeWord reveals a session's word, or nil for unknown sessions.
func (app *App) peekPracticeWord(id string) types.WordResponse {
	word, ok := app.Practice.Peek(id)
	if !ok {
		return types.WordResponse{}
	}
	return types.WordResponse{Word: &word}
}

// recordPracticeResult finalizes a session and stores its outcome. The
// session is removed before the write, so the write outlives a client that
// hangs up; the stats timeout still bounds it.
func (app *App) recordPracticeResult(ctx context.Context, id string, claimedWin bool) types.ResultResponse {
	result := app.Practice.Finalize(context.WithoutCancel(ctx), id, claimedWin)
	if result.Status != practice.FinalizeRecorded {
		requestLogger(ctx).WithFields(log.Fields{
			"session": id,
			"status":  result.Message(),
		}).Warn("Practice result not recorded")
	}
	return types.ResultResponse{
		Recorded: result.Recorded(),
		Won:      result.Won,
		Error:    result.Message(),
	}
}

// getStats returns the aggregate report.
func (app *App) getStats(ctx context.Context) types.StatsResponse {
	return app.Stats.ReadStats(ctx)
}
