package ingest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	apperr "github.com/stokkerdev/agetracker/internal/errors"
	"github.com/stokkerdev/agetracker/internal/metrics"
	"github.com/stokkerdev/agetracker/internal/pubsub"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// New creates a new Ingestor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient, defaultPhaseID string) *Ingestor {
	return &Ingestor{
		store:          store,
		pubsub:         pubsub,
		notifier:       notifier,
		metrics:        metrics,
		defaultPhaseID: defaultPhaseID,
	}
}

// Submit validates a match submission, persists it and folds the outcome
// into every participant's cumulative statistics. The match record is the
// source of truth: once it is stored, player updates proceed best-effort
// and a partial failure is reported rather than rolled back.
func (i *Ingestor) Submit(sub *tournament.Submission) (*Result, error) {
	startTime := time.Now()

	if sub.GameMode == "" {
		sub.GameMode = tournament.ModeFFA
	}
	if sub.PhaseID == "" {
		sub.PhaseID = i.defaultPhaseID
	}

	if err := tournament.ValidateSubmission(sub); err != nil {
		i.metrics.IncMatchesRejected()
		return nil, err
	}

	if _, err := i.store.GetPhase(sub.PhaseID); err != nil {
		i.metrics.IncMatchesRejected()
		var appErr *apperr.AppError
		if errors.As(err, &appErr) && appErr.Code == apperr.ErrCodeNotFound {
			return nil, apperr.NewValidationError(fmt.Sprintf("unknown phase %q", sub.PhaseID))
		}
		return nil, err
	}

	ids := make([]string, 0, len(sub.Players))
	for _, p := range sub.Players {
		ids = append(ids, p.PlayerID)
	}
	found, err := i.store.CountExistingPlayers(ids)
	if err != nil {
		i.metrics.IncMatchesRejected()
		return nil, err
	}
	if found != len(ids) {
		i.metrics.IncMatchesRejected()
		return nil, apperr.NewValidationError(fmt.Sprintf("%d of %d participants are not registered players", len(ids)-found, len(ids)))
	}

	match := buildMatch(sub)
	if err := i.store.CreateMatch(match); err != nil {
		log.Error("Failed to store match", "error", err, "matchID", match.ID)
		return nil, err
	}
	log.Info("Match recorded", "matchID", match.ID, "map", match.Map, "winner", match.Winner.PlayerName)

	result := &Result{Match: match}
	for _, mp := range match.Players {
		player, err := i.applyToPlayer(match, mp)
		if err != nil {
			log.Error("Failed to update player stats", "error", err, "matchID", match.ID, "playerID", mp.PlayerID)
			return result, apperr.NewPersistenceError(
				fmt.Sprintf("match %s recorded but only %d of %d player updates succeeded", match.ID, result.PlayersUpdated, len(match.Players)), err)
		}
		result.PlayersUpdated++
		i.metrics.IncPlayerStatsUpdated()
		if err := i.pubsub.SendMessage(string(pubsub.EventPlayerStatsUpdated), player); err != nil {
			log.Error("Failed to publish player stats event", "error", err, "matchID", match.ID, "playerID", player.ID)
		}
	}

	if err := i.pubsub.SendMessage(string(pubsub.EventMatchIngested), match); err != nil {
		log.Error("Failed to publish match event", "error", err, "matchID", match.ID)
	}
	if _, err := i.notifier.SendResultNotification(match, false); err != nil {
		log.Error("Failed to send result notification", "error", err, "matchID", match.ID)
		i.metrics.IncNotifFailed()
	} else {
		i.metrics.IncNotifSent()
	}

	i.metrics.IncMatchesIngested()
	i.metrics.ObserveIngestDuration(time.Since(startTime).Seconds())
	return result, nil
}

// buildMatch turns a validated submission into a match record, deriving
// points earned and the winner snapshot. Participants are ordered by final
// position so readers see the podium order.
func buildMatch(sub *tournament.Submission) *tournament.Match {
	total := len(sub.Players)
	players := make([]tournament.MatchPlayer, 0, total)
	var winner tournament.Winner
	for _, p := range sub.Players {
		mp := tournament.MatchPlayer{
			PlayerID:      p.PlayerID,
			PlayerName:    p.PlayerName,
			Scores:        p.Scores,
			TotalScore:    p.TotalScore,
			FinalPosition: p.FinalPosition,
			PointsEarned:  tournament.PointsForPosition(p.FinalPosition, total),
		}
		if p.FinalPosition == 1 {
			winner = tournament.Winner{PlayerID: p.PlayerID, PlayerName: p.PlayerName}
		}
		players = append(players, mp)
	}
	sort.Slice(players, func(a, b int) bool {
		return players[a].FinalPosition < players[b].FinalPosition
	})

	return &tournament.Match{
		ID:           uuid.New().String(),
		PhaseID:      sub.PhaseID,
		Date:         sub.Date,
		Duration:     sub.Duration,
		Map:          sub.Map,
		GameMode:     sub.GameMode,
		TotalPlayers: total,
		Players:      players,
		Winner:       winner,
		Status:       tournament.MatchCompleted,
		Notes:        sub.Notes,
		AdminNotes:   sub.AdminNotes,
		CreatedBy:    sub.CreatedBy,
		CreatedAt:    time.Now().UTC(),
	}
}

// applyToPlayer folds one match into one player's record and returns the
// updated player. A version conflict means another ingestion updated the
// same player concurrently; the read-apply-write cycle is retried once on
// fresh state.
func (i *Ingestor) applyToPlayer(match *tournament.Match, mp tournament.MatchPlayer) (*tournament.Player, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		player, err := i.store.GetPlayer(mp.PlayerID)
		if err != nil {
			return nil, err
		}

		player.ApplyMatchOutcome(tournament.MatchOutcome{
			Scores:        mp.Scores,
			FinalPosition: mp.FinalPosition,
			TotalPlayers:  match.TotalPlayers,
		})
		player.PrependHistory(historyEntry(match, mp))

		err = i.store.UpdatePlayer(player)
		if err == nil {
			return player, nil
		}
		lastErr = err

		var appErr *apperr.AppError
		if !errors.As(err, &appErr) || appErr.Code != apperr.ErrCodeConflict {
			return nil, err
		}
		log.Warn("Concurrent player update detected, retrying", "playerID", mp.PlayerID, "matchID", match.ID)
	}
	return nil, lastErr
}

func historyEntry(match *tournament.Match, mp tournament.MatchPlayer) tournament.HistoryEntry {
	opponents := make([]string, 0, len(match.Players)-1)
	for _, other := range match.Players {
		if other.PlayerID != mp.PlayerID {
			opponents = append(opponents, other.PlayerName)
		}
	}
	return tournament.HistoryEntry{
		MatchID:      match.ID,
		Date:         match.Date,
		Map:          match.Map,
		Duration:     match.Duration,
		Position:     mp.FinalPosition,
		TotalPlayers: match.TotalPlayers,
		Scores:       mp.Scores,
		TotalScore:   mp.TotalScore,
		Opponents:    opponents,
	}
}
