package phase10

import (
	"fmt"
	"math"
)

// ApplyRound adds one round of results to the ledger and resolves the game
// when somebody finishes the final phase.
func (g *Game) ApplyRound(entries []RoundEntry) (RoundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) == 0 {
		return RoundResult{}, ErrNotEnoughPlayers
	}
	if err := validateRound(g.players, entries); err != nil {
		return RoundResult{}, err
	}

	g.undo = &roundSnapshot{
		players:     clonePlayers(g.players),
		dealerIndex: g.dealerIndex,
	}

	updated := clonePlayers(g.players)
	for i := range updated {
		e, ok := findEntry(entries, updated[i].Name)
		if !ok {
			continue
		}
		played := updated[i].Phase
		passed := e.PassedPhase

		updated[i].Score += e.Score
		if passed {
			updated[i].Phase++
		}
		updated[i].LastPhasePlayed = &played
		updated[i].LastPassedPhase = &passed
	}

	var res RoundResult
	minScore := math.MaxInt
	for _, p := range updated {
		if !p.Completed(g.cfg.FinalPhase) {
			continue
		}
		res.Completed = append(res.Completed, p.Name)
		if p.Score < minScore {
			minScore = p.Score
		}
	}
	if len(res.Completed) == 0 {
		g.players = updated
		return res, nil
	}

	var best []int
	for i, p := range updated {
		if p.Completed(g.cfg.FinalPhase) && p.Score == minScore {
			best = append(best, i)
		}
	}

	if len(best) == 1 {
		w := updated[best[0]].clone()
		g.winner = &Winner{Player: &w}
		g.tieBreakerActive = false
		g.players = updated
		res.Winner = g.winner.clone()
		return res, nil
	}

	// Tie: the tied players replay the final phase, everyone else is out.
	tied := make(map[int]bool, len(best))
	names := make([]string, 0, len(best))
	for _, i := range best {
		tied[i] = true
		names = append(names, updated[i].Name)
	}
	for i := range updated {
		if tied[i] {
			updated[i].Phase = g.cfg.FinalPhase
		} else {
			updated[i].Phase = 0
		}
	}
	g.players = updated
	g.winner = &Winner{Tied: names}
	g.tieBreakerActive = true

	res.Winner = g.winner.clone()
	res.TieBreak = true
	return res, nil
}

// UndoLastRound restores the ledger captured before the most recent round.
// Only one level is kept; it returns false when there is nothing to undo.
func (g *Game) UndoLastRound() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.undo == nil {
		return false
	}
	g.players = g.undo.players
	g.dealerIndex = g.undo.dealerIndex
	g.winner = nil
	g.tieBreakerActive = false
	g.undo = nil
	return true
}

// NextDealer passes the deal to the next seat.
func (g *Game) NextDealer() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) == 0 {
		return
	}
	g.dealerIndex = (g.dealerIndex + 1) % len(g.players)
}

func (g *Game) SetDealer(index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if index < 0 || index >= len(g.players) {
		return fmt.Errorf("%w: index %d", ErrInvalidDealer, index)
	}
	g.dealerIndex = index
	return nil
}

func (g *Game) SetDealerByName(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: %q is not seated", ErrInvalidDealer, name)
	}
	g.dealerIndex = i
	return nil
}

// validateRound only counts entries that reach a seated player; entries
// for unknown names cannot make a round count.
func validateRound(players []Player, entries []RoundEntry) error {
	for _, e := range entries {
		if e.Score < 0 {
			return fmt.Errorf("%w: %s has %d", ErrInvalidScore, e.Name, e.Score)
		}
	}
	progressed := false
	for _, p := range players {
		if e, ok := findEntry(entries, p.Name); ok && (e.PassedPhase || e.Score > 0) {
			progressed = true
			break
		}
	}
	if !progressed {
		return ErrNoRoundResults
	}
	return nil
}

func findEntry(entries []RoundEntry, name string) (RoundEntry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return RoundEntry{}, false
}
