package phase10

import "sort"

// LeadingPlayerNames returns the players at the highest phase with the
// lowest score among them. Before anyone has scored or passed it is empty.
func (g *Game) LeadingPlayerNames() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return leadersOf(g.players)
}

func leadersOf(players []Player) []string {
	if len(players) == 0 || !started(players) {
		return []string{}
	}

	maxPhase := players[0].Phase
	for _, p := range players[1:] {
		if p.Phase > maxPhase {
			maxPhase = p.Phase
		}
	}
	minScore := -1
	for _, p := range players {
		if p.Phase == maxPhase && (minScore < 0 || p.Score < minScore) {
			minScore = p.Score
		}
	}

	names := []string{}
	for _, p := range players {
		if p.Phase == maxPhase && p.Score == minScore {
			names = append(names, p.Name)
		}
	}
	return names
}

// started is false while every player is still on phase 1 with no points.
func started(players []Player) bool {
	for _, p := range players {
		if p.Phase != 1 || p.Score != 0 {
			return true
		}
	}
	return false
}

// Rankings orders players by phase (high first) then score (low first).
// Equal phase and score share a rank; seating order breaks display ties.
func (g *Game) Rankings() []Standing {
	g.mu.Lock()
	players := clonePlayers(g.players)
	g.mu.Unlock()

	sort.SliceStable(players, func(i, j int) bool {
		if players[i].Phase != players[j].Phase {
			return players[i].Phase > players[j].Phase
		}
		return players[i].Score < players[j].Score
	})

	isStarted := started(players)
	leaders := make(map[string]bool)
	for _, n := range leadersOf(players) {
		leaders[n] = true
	}

	out := make([]Standing, 0, len(players))
	for i, p := range players {
		rank := i + 1
		if i > 0 && sameStanding(players[i-1], p) {
			rank = out[i-1].Rank
		}
		s := Standing{Rank: rank, Player: p, Leader: leaders[p.Name]}
		if isStarted {
			s.Medal = medalsByRank[rank]
		}
		out = append(out, s)
	}

	if isStarted && len(players) > 1 {
		last := players[len(players)-1]
		if !sameStanding(players[0], last) {
			for i := range out {
				if sameStanding(out[i].Player, last) {
					out[i].Last = true
				}
			}
		}
	}
	return out
}

func sameStanding(a, b Player) bool {
	return a.Phase == b.Phase && a.Score == b.Score
}
