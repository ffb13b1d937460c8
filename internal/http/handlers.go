package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	apperr "github.com/stokkerdev/agetracker/internal/errors"
	"github.com/stokkerdev/agetracker/internal/store"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func respondData(w http.ResponseWriter, status int, data any) {
	respondJSON(w, status, envelope{Success: true, Data: data})
}

func respondList(w http.ResponseWriter, data any, total, limit, offset int) {
	respondJSON(w, http.StatusOK, envelope{
		Success:    true,
		Data:       data,
		Pagination: &pagination{Total: total, Limit: limit, Offset: offset},
	})
}

func respondError(w http.ResponseWriter, err error) {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		respondJSON(w, appErr.Status, envelope{Success: false, Error: appErr.Message})
		return
	}
	log.Error("Unhandled error", "error", err)
	respondJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: "internal server error"})
}

func intQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would clear entire store")
			fmt.Fprint(w, "Store clear skipped (dry run).")
			return
		}
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// Players

// playerRequest carries the caller-editable profile fields.
type playerRequest struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Avatar               string `json:"avatar"`
	FavoriteStrategy     string `json:"favoriteStrategy"`
	FavoriteCivilization string `json:"favoriteCivilization"`
	Status               string `json:"status"`
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.PlayerFilter{
			Status: tournament.PlayerStatus(r.URL.Query().Get("status")),
			SortBy: r.URL.Query().Get("sortBy"),
			Order:  r.URL.Query().Get("order"),
			Limit:  intQuery(r, "limit", 50),
			Offset: intQuery(r, "offset", 0),
		}

		players, err := s.Store.ListPlayers(filter)
		if err != nil {
			respondError(w, err)
			return
		}
		total, err := s.Store.CountPlayers(filter)
		if err != nil {
			respondError(w, err)
			return
		}
		respondList(w, players, total, filter.Limit, filter.Offset)
	}
}

func (s *Server) CreatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperr.NewValidationError("invalid JSON body"))
			return
		}

		if err := tournament.ValidatePlayerID(req.ID); err != nil {
			respondError(w, err)
			return
		}
		if err := tournament.ValidatePlayerProfile(req.Name, req.Avatar, req.FavoriteStrategy, req.FavoriteCivilization); err != nil {
			respondError(w, err)
			return
		}

		player := &tournament.Player{
			ID:                   req.ID,
			Name:                 req.Name,
			Avatar:               req.Avatar,
			FavoriteStrategy:     req.FavoriteStrategy,
			FavoriteCivilization: req.FavoriteCivilization,
			Status:               tournament.PlayerActive,
			JoinDate:             time.Now().UTC().Format("2006-01-02"),
		}
		if err := s.Store.CreatePlayer(player); err != nil {
			respondError(w, err)
			return
		}
		log.Info("Player registered", "playerID", player.ID)
		respondData(w, http.StatusCreated, player)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := s.Store.GetPlayer(r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, player)
	}
}

func (s *Server) UpdatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperr.NewValidationError("invalid JSON body"))
			return
		}

		player, err := s.Store.GetPlayer(r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}

		if req.Name != "" {
			player.Name = req.Name
		}
		if req.Avatar != "" {
			player.Avatar = req.Avatar
		}
		if req.FavoriteStrategy != "" {
			player.FavoriteStrategy = req.FavoriteStrategy
		}
		if req.FavoriteCivilization != "" {
			player.FavoriteCivilization = req.FavoriteCivilization
		}
		if req.Status != "" {
			switch tournament.PlayerStatus(req.Status) {
			case tournament.PlayerActive, tournament.PlayerInactive, tournament.PlayerSuspended:
				player.Status = tournament.PlayerStatus(req.Status)
			default:
				respondError(w, apperr.NewValidationError(fmt.Sprintf("unknown player status %q", req.Status)))
				return
			}
		}
		if err := tournament.ValidatePlayerProfile(player.Name, player.Avatar, player.FavoriteStrategy, player.FavoriteCivilization); err != nil {
			respondError(w, err)
			return
		}

		if err := s.Store.UpdatePlayer(player); err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, player)
	}
}

func (s *Server) DeletePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.Store.DeletePlayer(id); err != nil {
			respondError(w, err)
			return
		}
		log.Info("Player deleted", "playerID", id)
		respondData(w, http.StatusOK, map[string]string{"deleted": id})
	}
}

func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		details, err := s.Stats.PlayerDetails(r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, details)
	}
}

func (s *Server) PlayerMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.Store.GetPlayer(id); err != nil {
			respondError(w, err)
			return
		}

		filter := store.MatchFilter{
			PlayerID: id,
			SortBy:   "date",
			Order:    "desc",
			Limit:    intQuery(r, "limit", 20),
			Offset:   intQuery(r, "offset", 0),
		}
		matches, err := s.Store.ListMatches(filter)
		if err != nil {
			respondError(w, err)
			return
		}
		total, err := s.Store.CountMatches(filter)
		if err != nil {
			respondError(w, err)
			return
		}
		respondList(w, matches, total, filter.Limit, filter.Offset)
	}
}

// Matches

func (s *Server) SubmitMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub tournament.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			respondError(w, apperr.NewValidationError("invalid JSON body"))
			return
		}

		result, err := s.Ingestor.Submit(&sub)
		if err != nil {
			var appErr *apperr.AppError
			if errors.As(err, &appErr) && appErr.Code == apperr.ErrCodePersistence && result != nil {
				// The match itself is stored; report what succeeded alongside the error.
				respondJSON(w, appErr.Status, envelope{Success: false, Error: appErr.Message, Details: result})
				return
			}
			respondError(w, err)
			return
		}
		respondData(w, http.StatusCreated, result)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.MatchFilter{
			Status:   tournament.MatchStatus(r.URL.Query().Get("status")),
			PhaseID:  r.URL.Query().Get("phaseId"),
			PlayerID: r.URL.Query().Get("playerId"),
			Map:      r.URL.Query().Get("map"),
			SortBy:   r.URL.Query().Get("sortBy"),
			Order:    r.URL.Query().Get("order"),
			Limit:    intQuery(r, "limit", 20),
			Offset:   intQuery(r, "offset", 0),
		}

		matches, err := s.Store.ListMatches(filter)
		if err != nil {
			respondError(w, err)
			return
		}
		total, err := s.Store.CountMatches(filter)
		if err != nil {
			respondError(w, err)
			return
		}
		respondList(w, matches, total, filter.Limit, filter.Offset)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match, err := s.Store.GetMatch(r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, match)
	}
}

func (s *Server) UpdateMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status     string `json:"status"`
			Notes      string `json:"notes"`
			AdminNotes string `json:"adminNotes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, apperr.NewValidationError("invalid JSON body"))
			return
		}

		current, err := s.Store.GetMatch(r.PathValue("id"))
		if err != nil {
			respondError(w, err)
			return
		}

		status := current.Status
		if req.Status != "" {
			status = tournament.MatchStatus(req.Status)
			switch status {
			case tournament.MatchCompleted, tournament.MatchDisputed, tournament.MatchCancelled:
			default:
				respondError(w, apperr.NewValidationError(fmt.Sprintf("unknown match status %q", req.Status)))
				return
			}
		}
		notes := current.Notes
		if req.Notes != "" {
			notes = req.Notes
		}
		adminNotes := current.AdminNotes
		if req.AdminNotes != "" {
			adminNotes = req.AdminNotes
		}

		match, err := s.Store.UpdateMatchAdmin(current.ID, status, notes, adminNotes)
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, match)
	}
}

func (s *Server) DeleteMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.Store.DeleteMatch(id); err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, map[string]string{"deleted": id})
	}
}

// Phases

func (s *Server) ListPhasesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phases, err := s.Store.ListPhases(store.PhaseFilter{
			Status: tournament.PhaseStatus(r.URL.Query().Get("status")),
			SortBy: r.URL.Query().Get("sortBy"),
			Order:  r.URL.Query().Get("order"),
		})
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, phases)
	}
}

// phaseDetails decorates a phase with how many matches were played in it
// and how many distinct players took part.
type phaseDetails struct {
	*tournament.Phase
	MatchCount  int `json:"matchCount"`
	PlayerCount int `json:"playerCount"`
}

func (s *Server) GetPhaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		phase, err := s.Store.GetPhase(id)
		if err != nil {
			respondError(w, err)
			return
		}

		matches, err := s.Store.ListMatches(store.MatchFilter{PhaseID: id})
		if err != nil {
			respondError(w, err)
			return
		}
		participants := make(map[string]struct{})
		for _, m := range matches {
			for _, p := range m.Players {
				participants[p.PlayerID] = struct{}{}
			}
		}

		respondData(w, http.StatusOK, phaseDetails{
			Phase:       phase,
			MatchCount:  len(matches),
			PlayerCount: len(participants),
		})
	}
}

func (s *Server) UpsertPhaseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var phase tournament.Phase
		if err := json.NewDecoder(r.Body).Decode(&phase); err != nil {
			respondError(w, apperr.NewValidationError("invalid JSON body"))
			return
		}
		phase.ID = r.PathValue("id")
		if phase.Name == "" {
			respondError(w, apperr.NewValidationError("phase name is required"))
			return
		}
		if phase.Status == "" {
			phase.Status = tournament.PhaseUpcoming
		}
		if phase.Format == "" {
			phase.Format = tournament.FormatLeague
		}
		if phase.PointsMultiplier == 0 {
			phase.PointsMultiplier = 1
		}

		if err := s.Store.UpsertPhase(&phase); err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, phase)
	}
}

func (s *Server) PhaseLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := s.Stats.PhaseLeaderboard(r.PathValue("id"), intQuery(r, "limit", 50))
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, board)
	}
}

func (s *Server) PhaseMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := s.Store.GetPhase(id); err != nil {
			respondError(w, err)
			return
		}

		filter := store.MatchFilter{
			PhaseID: id,
			SortBy:  "date",
			Order:   "desc",
			Limit:   intQuery(r, "limit", 20),
			Offset:  intQuery(r, "offset", 0),
		}
		matches, err := s.Store.ListMatches(filter)
		if err != nil {
			respondError(w, err)
			return
		}
		total, err := s.Store.CountMatches(filter)
		if err != nil {
			respondError(w, err)
			return
		}
		respondList(w, matches, total, filter.Limit, filter.Offset)
	}
}

// Stats

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Stats.Leaderboard(intQuery(r, "limit", 50))
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, entries)
	}
}

func (s *Server) TournamentSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := s.Stats.TournamentSummary()
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, summary)
	}
}

func (s *Server) MapStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mapStats, err := s.Stats.MapStatistics()
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, mapStats)
	}
}

func (s *Server) RecentActivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activity, err := s.Stats.RecentActivity(intQuery(r, "limit", 10))
		if err != nil {
			respondError(w, err)
			return
		}
		respondData(w, http.StatusOK, activity)
	}
}

// Slack slash commands

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// LeaderboardCommandHandler returns a handler for the /leaderboard Slack command.
func (s *Server) LeaderboardCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := s.Stats.Leaderboard(10)
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to compute leaderboard", "error", err)
			return
		}

		msg, err := s.Notifier.FormatLeaderboardResponse(entries)
		if err != nil {
			http.Error(w, "Failed to format leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}

		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack command.
func (s *Server) PlayerStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		query := r.FormValue("text")
		if query == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", query)

		player, err := s.findPlayer(query)
		var msg any
		if err != nil {
			log.Warn("Could not find player", "player", query, "error", err)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(query)
		} else {
			msg, err = s.Notifier.FormatPlayerStatsResponse(player)
		}

		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			log.Error("Failed to format player stats", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// NotifyLeaderboardHandler posts the current standings to the notification
// channel. Hit by the scheduler after a round of matches.
func (s *Server) NotifyLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)

		entries, err := s.Stats.Leaderboard(intQuery(r, "limit", 50))
		if err != nil {
			log.Error("Failed to compute leaderboard", "error", err)
			respondError(w, err)
			return
		}

		if err := s.Notifier.SendLeaderboard(entries, isDryRun); err != nil {
			log.Error("Failed to send leaderboard notification", "error", err)
			s.Metrics.IncNotifFailed()
			http.Error(w, "Failed to send leaderboard", http.StatusInternalServerError)
			return
		}
		s.Metrics.IncNotifSent()
		w.Write([]byte("OK"))
	}
}

// NotifyPlayerStatsHandler consumes player-stats-updated push messages and
// posts the player's refreshed statistics to the notification channel. The
// player is re-read so the notification reflects current state rather than
// the event snapshot.
func (s *Server) NotifyPlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received player stats push message", "body", string(bodyBytes))

		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event tournament.Player
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		isDryRun := isDryRunFromContext(r)
		player, err := s.Store.GetPlayer(event.ID)
		if err != nil {
			var appErr *apperr.AppError
			if errors.As(err, &appErr) && appErr.Code == apperr.ErrCodeNotFound {
				log.Warn("Player from event no longer exists", "playerID", event.ID)
				if err := s.Notifier.SendPlayerNotFound(event.ID, isDryRun); err != nil {
					log.Error("Failed to send player not found notification", "error", err, "playerID", event.ID)
					s.Metrics.IncNotifFailed()
				}
				w.Write([]byte("OK"))
				return
			}
			respondError(w, err)
			return
		}

		if err := s.Notifier.SendPlayerStats(player, isDryRun); err != nil {
			log.Error("Failed to send player stats notification", "error", err, "playerID", player.ID)
			s.Metrics.IncNotifFailed()
			http.Error(w, "Failed to send player stats", http.StatusInternalServerError)
			return
		}
		s.Metrics.IncNotifSent()
		w.Write([]byte("OK"))
	}
}

// findPlayer resolves a slash command query: exact id first, then a
// case-insensitive name scan.
func (s *Server) findPlayer(query string) (*tournament.Player, error) {
	if player, err := s.Store.GetPlayer(strings.ToLower(query)); err == nil {
		return player, nil
	}

	players, err := s.Store.ListPlayers(store.PlayerFilter{})
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if strings.EqualFold(p.Name, query) {
			return p, nil
		}
	}
	return nil, apperr.NewNotFoundError("player", query)
}
