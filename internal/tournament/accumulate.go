package tournament

// MatchOutcome is the slice of a single match that affects one player's
// cumulative statistics.
type MatchOutcome struct {
	Scores        CategoryScores
	FinalPosition int
	TotalPlayers  int
}

// PointsForPosition awards tournament points as totalPlayers - finalPosition,
// so a winner of a 4-player match earns 3 points and the last place earns 0.
func PointsForPosition(finalPosition, totalPlayers int) int {
	return totalPlayers - finalPosition
}

// ApplyMatchOutcome folds one match result into the player's running
// statistics. It touches only the fields derived from match play; profile
// fields and history are left to the caller. The running average is
// maintained incrementally so no per-match raw history is needed for the
// mean.
func (p *Player) ApplyMatchOutcome(o MatchOutcome) {
	p.Matches++

	for _, c := range Categories {
		score := o.Scores.Get(c)
		stats := p.CategoryStats.stat(c)
		if stats.Worst == 0 || score < stats.Worst {
			stats.Worst = score
		}
		if score > stats.Best {
			stats.Best = score
		}
		prevTotal := stats.Average * float64(p.Matches-1)
		stats.Average = (prevTotal + float64(score)) / float64(p.Matches)
	}

	p.Points += PointsForPosition(o.FinalPosition, o.TotalPlayers)
	if o.FinalPosition == 1 {
		p.Wins++
	}

	// Wins never exceed matches. A record that arrives violating this is
	// clamped rather than rejected.
	if p.Wins > p.Matches {
		p.Wins = p.Matches
	}
}

// PrependHistory inserts a match summary at the head of the player's history
// log, keeping the most recent match first.
func (p *Player) PrependHistory(entry HistoryEntry) {
	p.MatchHistory = append([]HistoryEntry{entry}, p.MatchHistory...)
}
