package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/stokkerdev/agetracker/internal/database"
	"github.com/stokkerdev/agetracker/internal/store"
	"github.com/stokkerdev/agetracker/internal/tournament"
)

// Simplified config loading for the script
func loadConfig() (dbName, migrationsDir string) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName = os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "agetracker.db"
	}
	migrationsDir = os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}
	return dbName, migrationsDir
}

var seedMaps = []string{"Arabia", "Black Forest", "Islands", "Arena", "Nomad"}

var seedPlayers = []struct {
	ID   string
	Name string
	Civ  string
}{
	{"thrall", "Thrall", "Huns"},
	{"jaina", "Jaina", "Britons"},
	{"arthas", "Arthas", "Teutons"},
	{"uther", "Uther", "Byzantines"},
	{"sylvanas", "Sylvanas", "Mongols"},
	{"medivh", "Medivh", "Chinese"},
}

func main() {
	log.Info("Starting database seeder...")
	dbName, migrationsDir := loadConfig()

	db, teardown, err := database.InitDB(dbName, "", "", migrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	s := store.New(db)

	for _, sp := range seedPlayers {
		player := &tournament.Player{
			ID:                   sp.ID,
			Name:                 sp.Name,
			FavoriteCivilization: sp.Civ,
			Status:               tournament.PlayerActive,
			JoinDate:             time.Now().UTC().Format("2006-01-02"),
		}
		if err := s.CreatePlayer(player); err != nil {
			log.Warn("Skipping existing player", "playerID", sp.ID, "error", err)
		}
	}
	log.Info("Ensured seed players exist.")

	const numMatches = 50
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	startTime := time.Now()

	for i := 0; i < numMatches; i++ {
		if err := seedMatch(s, rng, i); err != nil {
			log.Fatalf("Failed to seed match %d: %s", i+1, err)
		}
	}

	log.Info("Successfully seeded matches.", "count", numMatches, "duration", time.Since(startTime))
}

// seedMatch generates one random completed match and folds it into every
// participant's stats, the same way live ingestion does.
func seedMatch(s store.TournamentStore, rng *rand.Rand, n int) error {
	perm := rng.Perm(len(seedPlayers))[:4]
	date := time.Now().Add(-time.Duration(rng.Intn(90*24)) * time.Hour).UTC()
	phase := fmt.Sprintf("fase%d", rng.Intn(3)+1)

	match := &tournament.Match{
		ID:           uuid.NewString(),
		PhaseID:      phase,
		Date:         date,
		Duration:     tournament.MinDuration + rng.Intn(120),
		Map:          seedMaps[rng.Intn(len(seedMaps))],
		GameMode:     tournament.ModeFFA,
		TotalPlayers: 4,
		Status:       tournament.MatchCompleted,
		CreatedBy:    "seeder",
		CreatedAt:    date,
	}

	for pos, idx := range perm {
		sp := seedPlayers[idx]
		scores := tournament.CategoryScores{
			Military:   rng.Intn(100),
			Economy:    rng.Intn(100),
			Technology: rng.Intn(100),
			Society:    rng.Intn(100),
		}
		mp := tournament.MatchPlayer{
			PlayerID:      sp.ID,
			PlayerName:    sp.Name,
			Scores:        scores,
			TotalScore:    scores.Total(),
			FinalPosition: pos + 1,
			PointsEarned:  tournament.PointsForPosition(pos+1, 4),
		}
		match.Players = append(match.Players, mp)
		if pos == 0 {
			match.Winner = tournament.Winner{PlayerID: sp.ID, PlayerName: sp.Name}
		}
	}

	if err := s.CreateMatch(match); err != nil {
		return err
	}

	for _, mp := range match.Players {
		player, err := s.GetPlayer(mp.PlayerID)
		if err != nil {
			return err
		}
		player.ApplyMatchOutcome(tournament.MatchOutcome{
			Scores:        mp.Scores,
			FinalPosition: mp.FinalPosition,
			TotalPlayers:  match.TotalPlayers,
		})
		var opponents []string
		for _, other := range match.Players {
			if other.PlayerID != mp.PlayerID {
				opponents = append(opponents, other.PlayerName)
			}
		}
		player.PrependHistory(tournament.HistoryEntry{
			MatchID:      match.ID,
			Date:         match.Date,
			Map:          match.Map,
			Duration:     match.Duration,
			Position:     mp.FinalPosition,
			TotalPlayers: match.TotalPlayers,
			Scores:       mp.Scores,
			TotalScore:   mp.TotalScore,
			Opponents:    opponents,
		})
		if err := s.UpdatePlayer(player); err != nil {
			return err
		}
	}

	if (n+1)%10 == 0 {
		log.Info("Seeded matches", "completed", n+1)
	}
	return nil
}
