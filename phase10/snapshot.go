package phase10

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Winner is either a single player or the names tied for the win.
// It encodes as a player object or as an array of names.
type Winner struct {
	Player *Player
	Tied   []string
}

func (w *Winner) IsTie() bool { return w != nil && w.Player == nil && len(w.Tied) > 0 }

// Names lists the winning player or the tied players.
func (w *Winner) Names() []string {
	switch {
	case w == nil:
		return nil
	case w.Player != nil:
		return []string{w.Player.Name}
	default:
		return append([]string{}, w.Tied...)
	}
}

func (w *Winner) clone() *Winner {
	if w == nil {
		return nil
	}
	out := &Winner{Tied: append([]string(nil), w.Tied...)}
	if w.Player != nil {
		p := w.Player.clone()
		out.Player = &p
	}
	return out
}

func (w Winner) MarshalJSON() ([]byte, error) {
	switch {
	case w.Player != nil:
		return json.Marshal(w.Player)
	case len(w.Tied) > 0:
		return json.Marshal(w.Tied)
	}
	return []byte("null"), nil
}

func (w *Winner) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*w = Winner{}
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '[':
		return json.Unmarshal(data, &w.Tied)
	case data[0] == '{':
		var p Player
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		w.Player = &p
		return nil
	}
	return fmt.Errorf("winner: unexpected json %q", data)
}

// Snapshot is the full observable ledger state. Its JSON form is the
// save slot format.
type Snapshot struct {
	Players          []Player `json:"players"`
	DealerIndex      int      `json:"dealerIndex"`
	Winner           *Winner  `json:"winner"`
	TieBreakerActive bool     `json:"tieBreakerActive"`
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	return Snapshot{
		Players:          clonePlayers(g.players),
		DealerIndex:      g.dealerIndex,
		Winner:           g.winner.clone(),
		TieBreakerActive: g.tieBreakerActive,
	}
}

// Restore replaces the ledger with s. The undo snapshot is dropped.
func (g *Game) Restore(s Snapshot) error {
	if err := validateRoster(s.Players); err != nil {
		return err
	}
	if len(s.Players) == 0 && s.DealerIndex != 0 {
		return ErrInvalidState(fmt.Sprintf("dealer index %d with no players", s.DealerIndex))
	}
	if len(s.Players) > 0 && (s.DealerIndex < 0 || s.DealerIndex >= len(s.Players)) {
		return ErrInvalidState(fmt.Sprintf("dealer index %d out of range", s.DealerIndex))
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.players = clonePlayers(s.Players)
	g.dealerIndex = s.DealerIndex
	g.winner = s.Winner.clone()
	g.tieBreakerActive = s.TieBreakerActive
	g.undo = nil
	return nil
}

func validateRoster(players []Player) error {
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if normalizeName(p.Name) == "" {
			return ErrInvalidState("player without a name")
		}
		if _, dup := seen[p.Name]; dup {
			return ErrInvalidState(fmt.Sprintf("duplicate player %q", p.Name))
		}
		seen[p.Name] = struct{}{}
		if p.Score < 0 || p.Phase < 0 {
			return ErrInvalidState(fmt.Sprintf("player %q has negative score or phase", p.Name))
		}
	}
	return nil
}
