package http

import (
	"net/http"

	"github.com/stokkerdev/agetracker/internal/config"
	"github.com/stokkerdev/agetracker/internal/ingest"
	"github.com/stokkerdev/agetracker/internal/metrics"
	"github.com/stokkerdev/agetracker/internal/notifier"
	"github.com/stokkerdev/agetracker/internal/pubsub"
	"github.com/stokkerdev/agetracker/internal/stats"
	"github.com/stokkerdev/agetracker/internal/store"
)

func NewServer(store store.TournamentStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, ingestor *ingest.Ingestor, statsEngine *stats.Engine, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Ingestor:       ingestor,
		Stats:          statsEngine,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))

	s.Router.Handle("GET /api/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("POST /api/players", Chain(s.CreatePlayerHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/players/{id}", Chain(s.GetPlayerHandler(), paramsMiddleware))
	s.Router.Handle("PUT /api/players/{id}", Chain(s.UpdatePlayerHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /api/players/{id}", Chain(s.DeletePlayerHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/players/{id}/stats", Chain(s.PlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/players/{id}/matches", Chain(s.PlayerMatchesHandler(), paramsMiddleware))

	s.Router.Handle("POST /api/matches", Chain(s.SubmitMatchHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("PATCH /api/matches/{id}", Chain(s.UpdateMatchHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /api/matches/{id}", Chain(s.DeleteMatchHandler(), paramsMiddleware))

	s.Router.Handle("GET /api/phases", Chain(s.ListPhasesHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/phases/{id}", Chain(s.GetPhaseHandler(), paramsMiddleware))
	s.Router.Handle("PUT /api/phases/{id}", Chain(s.UpsertPhaseHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/phases/{id}/leaderboard", Chain(s.PhaseLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/phases/{id}/matches", Chain(s.PhaseMatchesHandler(), paramsMiddleware))

	s.Router.Handle("GET /api/stats/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/stats/tournament", Chain(s.TournamentSummaryHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/stats/maps", Chain(s.MapStatsHandler(), paramsMiddleware))
	s.Router.Handle("GET /api/stats/recent-activity", Chain(s.RecentActivityHandler(), paramsMiddleware))

	s.Router.Handle("/notify-leaderboard", Chain(s.NotifyLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/notify-player-stats", Chain(s.NotifyPlayerStatsHandler(), paramsMiddleware))

	s.Router.Handle("/slack/command/leaderboard", Chain(s.LeaderboardCommandHandler(), paramsMiddleware))
	s.Router.Handle("/slack/command/player-stats", Chain(s.PlayerStatsCommandHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
