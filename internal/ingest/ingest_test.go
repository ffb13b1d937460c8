package ingest_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/stokkerdev/agetracker/internal/errors"
	"github.com/stokkerdev/agetracker/internal/ingest"
	"github.com/stokkerdev/agetracker/internal/metrics"
	"github.com/stokkerdev/agetracker/internal/notifier"
	"github.com/stokkerdev/agetracker/internal/pubsub"
	"github.com/stokkerdev/agetracker/internal/store"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

type fixture struct {
	store    *store.MockStore
	notifier *notifier.Mock
	metrics  *metrics.MockMetrics
	pubsub   *pubsub.MockClient
	ingestor *ingest.Ingestor
}

func setup() *fixture {
	f := &fixture{
		store:    store.NewMock(),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
		pubsub:   pubsub.NewMock(),
	}
	f.store.GetPhaseFunc = func(id string) (*tournament.Phase, error) {
		return &tournament.Phase{ID: id, Status: tournament.PhaseActive}, nil
	}
	f.store.GetPlayerFunc = func(id string) (*tournament.Player, error) {
		return &tournament.Player{ID: id, Name: id, Status: tournament.PlayerActive}, nil
	}
	f.ingestor = ingest.New(f.store, f.notifier, f.metrics, f.pubsub, "fase1")
	return f
}

func submission() *tournament.Submission {
	scores := tournament.CategoryScores{Military: 20, Economy: 10, Technology: 10, Society: 10}
	players := make([]tournament.SubmissionPlayer, 0, 4)
	for i, id := range []string{"thrall", "jaina", "arthas", "uther"} {
		players = append(players, tournament.SubmissionPlayer{
			PlayerID:      id,
			PlayerName:    id,
			Scores:        scores,
			TotalScore:    scores.Total(),
			FinalPosition: i + 1,
		})
	}
	return &tournament.Submission{
		Date:     time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC),
		Duration: 45,
		Map:      "Arabia",
		Players:  players,
	}
}

func TestSubmit_RecordsMatchAndUpdatesPlayers(t *testing.T) {
	f := setup()

	result, err := f.ingestor.Submit(submission())
	require.NoError(t, err)
	require.NotNil(t, result.Match)
	assert.Equal(t, 4, result.PlayersUpdated)

	require.Len(t, f.store.CreateMatchCalls, 1)
	match := f.store.CreateMatchCalls[0]
	assert.NotEmpty(t, match.ID)
	assert.Equal(t, "fase1", match.PhaseID, "empty phase falls back to the default")
	assert.Equal(t, tournament.ModeFFA, match.GameMode, "empty game mode defaults to FFA")
	assert.Equal(t, tournament.MatchCompleted, match.Status)
	assert.Equal(t, "thrall", match.Winner.PlayerID)

	require.Len(t, match.Players, 4)
	for i, mp := range match.Players {
		assert.Equal(t, i+1, mp.FinalPosition)
		assert.Equal(t, 3-i, mp.PointsEarned, "points are totalPlayers minus position")
	}

	require.Len(t, f.store.UpdatePlayerCalls, 4)
	byID := make(map[string]*tournament.Player)
	for _, p := range f.store.UpdatePlayerCalls {
		byID[p.ID] = p
	}
	winner := byID["thrall"]
	require.NotNil(t, winner)
	assert.Equal(t, 1, winner.Matches)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 3, winner.Points)
	require.Len(t, winner.MatchHistory, 1)
	assert.ElementsMatch(t, []string{"jaina", "arthas", "uther"}, winner.MatchHistory[0].Opponents)

	last := byID["uther"]
	require.NotNil(t, last)
	assert.Equal(t, 0, last.Wins)
	assert.Equal(t, 0, last.Points)

	topics := make(map[string]int)
	for _, call := range f.pubsub.SendMessageCalls {
		topics[call.Topic]++
	}
	assert.Equal(t, 1, topics[string(pubsub.EventMatchIngested)])
	assert.Equal(t, 4, topics[string(pubsub.EventPlayerStatsUpdated)], "one event per updated player")
	assert.Len(t, f.notifier.SendResultNotificationCalls, 1)

	assert.Equal(t, 1, f.metrics.MatchesIngestedCount)
	assert.Equal(t, 4, f.metrics.PlayerStatsUpdatedCount)
	assert.Equal(t, 1, f.metrics.NotifSentCount)
	require.Len(t, f.metrics.IngestDurations, 1)
	assert.Less(t, f.metrics.IngestDurations[0], 1.0, "duration is observed in seconds")
}

func TestSubmit_RejectsInvalidSubmissionWithoutPersisting(t *testing.T) {
	f := setup()

	sub := submission()
	sub.Players[3].FinalPosition = 1 // duplicate position

	_, err := f.ingestor.Submit(sub)
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeValidation, appErr.Code)

	assert.Empty(t, f.store.CreateMatchCalls)
	assert.Empty(t, f.store.UpdatePlayerCalls)
	assert.Equal(t, 1, f.metrics.MatchesRejectedCount)
	assert.Equal(t, 0, f.metrics.MatchesIngestedCount)
}

func TestSubmit_RejectsUnregisteredParticipants(t *testing.T) {
	f := setup()
	f.store.CountExistingPlayersFunc = func(ids []string) (int, error) {
		return len(ids) - 2, nil
	}

	_, err := f.ingestor.Submit(submission())
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "2 of 4 participants")
	assert.Empty(t, f.store.CreateMatchCalls)
}

func TestSubmit_RejectsUnknownPhase(t *testing.T) {
	f := setup()
	f.store.GetPhaseFunc = func(id string) (*tournament.Phase, error) {
		return nil, apperr.NewNotFoundError("phase", id)
	}

	sub := submission()
	sub.PhaseID = "fase9"

	_, err := f.ingestor.Submit(sub)
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "fase9")
	assert.Equal(t, 1, f.metrics.MatchesRejectedCount)
}

func TestSubmit_RetriesOnceOnVersionConflict(t *testing.T) {
	f := setup()

	conflicts := 1
	f.store.UpdatePlayerFunc = func(p *tournament.Player) error {
		if p.ID == "jaina" && conflicts > 0 {
			conflicts--
			return apperr.NewConflictError("player jaina was modified concurrently")
		}
		return nil
	}

	result, err := f.ingestor.Submit(submission())
	require.NoError(t, err)
	assert.Equal(t, 4, result.PlayersUpdated)
	// 4 players plus one retried write.
	assert.Len(t, f.store.UpdatePlayerCalls, 5)
}

func TestSubmit_ReportsPartialFailure(t *testing.T) {
	f := setup()
	f.store.UpdatePlayerFunc = func(p *tournament.Player) error {
		if p.ID == "arthas" {
			return apperr.NewPersistenceError("disk full", nil)
		}
		return nil
	}

	result, err := f.ingestor.Submit(submission())
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodePersistence, appErr.Code)
	assert.Contains(t, appErr.Message, "only 2 of 4")

	require.NotNil(t, result, "the stored match is still reported")
	assert.Equal(t, 2, result.PlayersUpdated)
	assert.Len(t, f.store.CreateMatchCalls, 1)
}
