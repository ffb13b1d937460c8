package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stokkerdev/agetracker/internal/database"
	apperr "github.com/stokkerdev/agetracker/internal/errors"
	"github.com/stokkerdev/agetracker/internal/store"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (store.TournamentStore, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	s := store.New(db)
	return s, dbTeardown
}

func newTestPlayer(id, name string) *tournament.Player {
	return &tournament.Player{
		ID:     id,
		Name:   name,
		Status: tournament.PlayerActive,
	}
}

func newTestMatch(id string, date time.Time, playerIDs ...string) *tournament.Match {
	players := make([]tournament.MatchPlayer, len(playerIDs))
	for i, pid := range playerIDs {
		scores := tournament.CategoryScores{Military: 10, Economy: 10, Technology: 10, Society: 10}
		players[i] = tournament.MatchPlayer{
			PlayerID:      pid,
			PlayerName:    pid,
			Scores:        scores,
			TotalScore:    scores.Total(),
			FinalPosition: i + 1,
			PointsEarned:  len(playerIDs) - (i + 1),
		}
	}
	return &tournament.Match{
		ID:           id,
		PhaseID:      "fase1",
		Date:         date,
		Duration:     45,
		Map:          "Arabia",
		GameMode:     tournament.ModeFFA,
		TotalPlayers: len(playerIDs),
		Players:      players,
		Winner:       tournament.Winner{PlayerID: playerIDs[0], PlayerName: playerIDs[0]},
		Status:       tournament.MatchCompleted,
		CreatedAt:    date,
	}
}

func TestCreateAndGetPlayer(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	p := newTestPlayer("arthas", "Arthas")
	p.FavoriteCivilization = "teutons"
	require.NoError(t, s.CreatePlayer(p))

	got, err := s.GetPlayer("arthas")
	require.NoError(t, err)
	assert.Equal(t, "Arthas", got.Name)
	assert.Equal(t, "teutons", got.FavoriteCivilization)
	assert.Equal(t, tournament.PlayerActive, got.Status)
	assert.NotNil(t, got.MatchHistory)
}

func TestCreatePlayer_DuplicateID(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, s.CreatePlayer(newTestPlayer("arthas", "Arthas")))
	err := s.CreatePlayer(newTestPlayer("arthas", "Impostor"))

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeConflict, appErr.Code)
}

func TestGetPlayer_NotFound(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	_, err := s.GetPlayer("ghost")
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeNotFound, appErr.Code)
}

func TestUpdatePlayer_PersistsStatsAndHistory(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	p := newTestPlayer("jaina", "Jaina")
	require.NoError(t, s.CreatePlayer(p))

	p.ApplyMatchOutcome(tournament.MatchOutcome{
		Scores:        tournament.CategoryScores{Military: 40, Economy: 30, Technology: 20, Society: 10},
		FinalPosition: 1,
		TotalPlayers:  4,
	})
	p.PrependHistory(tournament.HistoryEntry{MatchID: "m1", Map: "Arabia", TotalScore: 100})
	require.NoError(t, s.UpdatePlayer(p))

	got, err := s.GetPlayer("jaina")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Matches)
	assert.Equal(t, 1, got.Wins)
	assert.Equal(t, 3, got.Points)
	assert.Equal(t, 40, got.CategoryStats.Military.Best)
	require.Len(t, got.MatchHistory, 1)
	assert.Equal(t, "m1", got.MatchHistory[0].MatchID)
}

func TestUpdatePlayer_VersionConflict(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, s.CreatePlayer(newTestPlayer("thrall", "Thrall")))

	// Two readers load the same version; the second writer must be rejected.
	first, err := s.GetPlayer("thrall")
	require.NoError(t, err)
	second, err := s.GetPlayer("thrall")
	require.NoError(t, err)

	first.Points = 10
	require.NoError(t, s.UpdatePlayer(first))

	second.Points = 99
	err = s.UpdatePlayer(second)
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeConflict, appErr.Code)

	got, err := s.GetPlayer("thrall")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Points, "the stale write must not land")
}

func TestListPlayers_FilterAndOrder(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	active := newTestPlayer("arthas", "Arthas")
	active.Points = 5
	inactive := newTestPlayer("jaina", "Jaina")
	inactive.Status = tournament.PlayerInactive
	inactive.Points = 50
	require.NoError(t, s.CreatePlayer(active))
	require.NoError(t, s.CreatePlayer(inactive))

	players, err := s.ListPlayers(store.PlayerFilter{Status: tournament.PlayerActive})
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "arthas", players[0].ID)

	count, err := s.CountPlayers(store.PlayerFilter{Status: tournament.PlayerActive})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestListPlayers_LeaderboardTieBreaks(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	// Same points and wins; fewer matches must rank higher.
	efficient := newTestPlayer("efficient", "Efficient")
	efficient.Points, efficient.Wins, efficient.Matches = 10, 2, 4
	grinder := newTestPlayer("grinder", "Grinder")
	grinder.Points, grinder.Wins, grinder.Matches = 10, 2, 9
	top := newTestPlayer("top", "Top")
	top.Points, top.Wins, top.Matches = 20, 1, 8

	require.NoError(t, s.CreatePlayer(grinder))
	require.NoError(t, s.CreatePlayer(efficient))
	require.NoError(t, s.CreatePlayer(top))

	players, err := s.ListPlayers(store.PlayerFilter{Status: tournament.PlayerActive})
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, "top", players[0].ID)
	assert.Equal(t, "efficient", players[1].ID)
	assert.Equal(t, "grinder", players[2].ID)
}

func TestCreateAndListMatches(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	date := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	m := newTestMatch("m1", date, "arthas", "jaina", "thrall", "uther")
	require.NoError(t, s.CreateMatch(m))

	got, err := s.GetMatch("m1")
	require.NoError(t, err)
	assert.Equal(t, "Arabia", got.Map)
	assert.Equal(t, date, got.Date)
	assert.Equal(t, "arthas", got.Winner.PlayerID)
	require.Len(t, got.Players, 4)
	assert.Equal(t, 3, got.Players[0].PointsEarned)

	t.Run("filter by participant", func(t *testing.T) {
		matches, err := s.ListMatches(store.MatchFilter{PlayerID: "jaina"})
		require.NoError(t, err)
		assert.Len(t, matches, 1)

		matches, err = s.ListMatches(store.MatchFilter{PlayerID: "ghost"})
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("filter by map substring", func(t *testing.T) {
		matches, err := s.ListMatches(store.MatchFilter{Map: "arab"})
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})

	t.Run("filter by phase and status", func(t *testing.T) {
		matches, err := s.ListMatches(store.MatchFilter{PhaseID: "fase1", Status: tournament.MatchCompleted})
		require.NoError(t, err)
		assert.Len(t, matches, 1)

		count, err := s.CountMatches(store.MatchFilter{PhaseID: "fase2"})
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestListMatches_SortedByDateDesc(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	base := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateMatch(newTestMatch("old", base, "a1", "a2", "a3", "a4")))
	require.NoError(t, s.CreateMatch(newTestMatch("new", base.Add(48*time.Hour), "a1", "a2", "a3", "a4")))

	matches, err := s.ListMatches(store.MatchFilter{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "new", matches[0].ID)
}

func TestUpdateMatchAdmin(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	date := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateMatch(newTestMatch("m1", date, "a1", "a2", "a3", "a4")))

	updated, err := s.UpdateMatchAdmin("m1", tournament.MatchDisputed, "contested result", "pending review")
	require.NoError(t, err)
	assert.Equal(t, tournament.MatchDisputed, updated.Status)
	assert.Equal(t, "contested result", updated.Notes)

	_, err = s.UpdateMatchAdmin("missing", tournament.MatchCompleted, "", "")
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeNotFound, appErr.Code)
}

func TestDeleteMatch(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	date := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateMatch(newTestMatch("m1", date, "a1", "a2", "a3", "a4")))
	require.NoError(t, s.DeleteMatch("m1"))

	_, err := s.GetMatch("m1")
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeNotFound, appErr.Code)

	// Participant index rows go with the match.
	matches, err := s.ListMatches(store.MatchFilter{PlayerID: "a1"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCountExistingPlayers(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, s.CreatePlayer(newTestPlayer("arthas", "Arthas")))
	require.NoError(t, s.CreatePlayer(newTestPlayer("jaina", "Jaina")))

	count, err := s.CountExistingPlayers([]string{"arthas", "jaina", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = s.CountExistingPlayers(nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPhases_SeededAndUpsert(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	phases, err := s.ListPhases(store.PhaseFilter{})
	require.NoError(t, err)
	require.Len(t, phases, 3)
	assert.Equal(t, "fase1", phases[0].ID, "phases come back ordered by start date")

	active, err := s.ListPhases(store.PhaseFilter{Status: tournament.PhaseActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "fase2", active[0].ID)

	phase, err := s.GetPhase("fase2")
	require.NoError(t, err)
	assert.Equal(t, tournament.FormatLeague, phase.Format)
	assert.InDelta(t, 1.5, phase.PointsMultiplier, 1e-9)

	phase.Status = tournament.PhaseCompleted
	require.NoError(t, s.UpsertPhase(phase))
	got, err := s.GetPhase("fase2")
	require.NoError(t, err)
	assert.Equal(t, tournament.PhaseCompleted, got.Status)
}

func TestDeletePlayer(t *testing.T) {
	s, teardown := setupTestDB(t)
	defer teardown()

	require.NoError(t, s.CreatePlayer(newTestPlayer("arthas", "Arthas")))
	require.NoError(t, s.DeletePlayer("arthas"))

	err := s.DeletePlayer("arthas")
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.ErrCodeNotFound, appErr.Code)
}
