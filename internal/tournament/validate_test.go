package tournament_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperr "github.com/stokkerdev/agetracker/internal/errors"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

func validSubmission() *tournament.Submission {
	players := make([]tournament.SubmissionPlayer, 4)
	names := []string{"Arthas", "Jaina", "Thrall", "Uther"}
	for i := range players {
		scores := tournament.CategoryScores{Military: 10, Economy: 10, Technology: 10, Society: 10}
		players[i] = tournament.SubmissionPlayer{
			PlayerID:      names[i],
			PlayerName:    names[i],
			Scores:        scores,
			TotalScore:    scores.Total(),
			FinalPosition: i + 1,
		}
	}
	return &tournament.Submission{
		Date:     time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		Duration: 45,
		Map:      "Arabia",
		GameMode: tournament.ModeFFA,
		Players:  players,
	}
}

func requireValidationError(t *testing.T, err error, contains string) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, contains)
}

func TestValidateSubmission_Accepts(t *testing.T) {
	assert.NoError(t, tournament.ValidateSubmission(validSubmission()))
}

func TestValidateSubmission_FieldConstraints(t *testing.T) {
	t.Run("missing date", func(t *testing.T) {
		sub := validSubmission()
		sub.Date = time.Time{}
		requireValidationError(t, tournament.ValidateSubmission(sub), "date")
	})

	t.Run("duration out of range", func(t *testing.T) {
		sub := validSubmission()
		sub.Duration = 5
		requireValidationError(t, tournament.ValidateSubmission(sub), "duration")

		sub.Duration = 301
		requireValidationError(t, tournament.ValidateSubmission(sub), "duration")
	})

	t.Run("map too short", func(t *testing.T) {
		sub := validSubmission()
		sub.Map = "A"
		requireValidationError(t, tournament.ValidateSubmission(sub), "map")
	})

	t.Run("unknown game mode", func(t *testing.T) {
		sub := validSubmission()
		sub.GameMode = "Regicide"
		requireValidationError(t, tournament.ValidateSubmission(sub), "game mode")
	})

	t.Run("too few players", func(t *testing.T) {
		sub := validSubmission()
		sub.Players = sub.Players[:3]
		requireValidationError(t, tournament.ValidateSubmission(sub), "players")
	})

	t.Run("negative category score", func(t *testing.T) {
		sub := validSubmission()
		sub.Players[1].Scores.Economy = -1
		requireValidationError(t, tournament.ValidateSubmission(sub), "Jaina")
	})
}

func TestValidateSubmission_TotalScoreMismatchNamesParticipant(t *testing.T) {
	sub := validSubmission()
	// military 10 + economy 10 + technology 10 + society 10 = 40, claim 50.
	sub.Players[2].TotalScore = 50

	requireValidationError(t, tournament.ValidateSubmission(sub), "Thrall")
}

func TestValidateSubmission_DuplicatePositions(t *testing.T) {
	sub := validSubmission()
	sub.Players[1].FinalPosition = 1 // positions now [1,1,3,4]

	requireValidationError(t, tournament.ValidateSubmission(sub), "unique")
}

func TestValidateSubmission_NonConsecutivePositions(t *testing.T) {
	sub := validSubmission()
	sub.Players[3].FinalPosition = 5 // positions now [1,2,3,5]

	requireValidationError(t, tournament.ValidateSubmission(sub), "consecutive")
}

func TestValidateSubmission_PositionsNotStartingAtOne(t *testing.T) {
	sub := validSubmission()
	for i := range sub.Players {
		sub.Players[i].FinalPosition = i + 2 // [2,3,4,5]
	}

	requireValidationError(t, tournament.ValidateSubmission(sub), "consecutive")
}

func TestValidatePlayerID(t *testing.T) {
	assert.NoError(t, tournament.ValidatePlayerID("arthas42"))
	requireValidationError(t, tournament.ValidatePlayerID("ab"), "between 3 and 30")
	requireValidationError(t, tournament.ValidatePlayerID("Arthas"), "lowercase")
	requireValidationError(t, tournament.ValidatePlayerID("ar thas"), "lowercase")
}

func TestValidatePlayerProfile(t *testing.T) {
	assert.NoError(t, tournament.ValidatePlayerProfile("Arthas", "", "rush", "teutons"))
	requireValidationError(t, tournament.ValidatePlayerProfile("A", "", "", ""), "name")
}
