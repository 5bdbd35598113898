package phase10

import (
	"fmt"
	"strings"
	"sync"
)

// Game is the player ledger: seating order, dealer position, winner state
// and a single-level undo of the last round.
type Game struct {
	cfg Config

	mu sync.Mutex

	players          []Player
	dealerIndex      int
	winner           *Winner
	tieBreakerActive bool

	// state captured by the most recent ApplyRound; any roster or
	// player edit drops it
	undo *roundSnapshot
}

type roundSnapshot struct {
	players     []Player
	dealerIndex int
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Game{cfg: cfg}, nil
}

func (g *Game) Config() Config { return g.cfg }

func (g *Game) Players() []Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return clonePlayers(g.players)
}

func (g *Game) Player(name string) (Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexLocked(name)
	if i < 0 {
		return Player{}, false
	}
	return g.players[i].clone(), true
}

func (g *Game) DealerIndex() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dealerIndex
}

// Dealer returns the current dealer's name, empty when there are no players.
func (g *Game) Dealer() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) == 0 {
		return ""
	}
	return g.players[g.dealerIndex].Name
}

// NextDealerName returns who deals after the current dealer.
func (g *Game) NextDealerName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) == 0 {
		return ""
	}
	return g.players[(g.dealerIndex+1)%len(g.players)].Name
}

func (g *Game) Winner() *Winner {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner.clone()
}

func (g *Game) TieBreakerActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tieBreakerActive
}

func (g *Game) CanUndo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.undo != nil
}

// Reset empties the ledger.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
}

func (g *Game) resetLocked() {
	g.players = nil
	g.dealerIndex = 0
	g.winner = nil
	g.tieBreakerActive = false
	g.undo = nil
}

func (g *Game) indexLocked(name string) int {
	for i, p := range g.players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// AddPlayer appends a fresh player at the end of the seating order.
func (g *Game) AddPlayer(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.indexLocked(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrPlayerExists, name)
	}
	if len(g.players) >= g.cfg.MaxPlayers {
		return fmt.Errorf("%w: %d", ErrTableFull, g.cfg.MaxPlayers)
	}
	g.players = append(g.players, newPlayer(name))
	g.undo = nil
	return nil
}

// RemovePlayer drops a player by name. The dealer keeps the same seat
// position; seats after the removed one shift down.
func (g *Game) RemovePlayer(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	g.players = append(g.players[:i], g.players[i+1:]...)
	g.undo = nil

	switch {
	case len(g.players) == 0:
		g.dealerIndex = 0
	case i < g.dealerIndex:
		g.dealerIndex--
	case g.dealerIndex >= len(g.players):
		g.dealerIndex = 0
	}
	return nil
}

// DealerRole reports whether name deals now or next.
func (g *Game) DealerRole(name string) DealerRole {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.players) == 0 {
		return DealerRoleNone
	}
	switch name {
	case g.players[g.dealerIndex].Name:
		return DealerRoleCurrent
	case g.players[(g.dealerIndex+1)%len(g.players)].Name:
		return DealerRoleNext
	}
	return DealerRoleNone
}

// MovePlayer shifts the player at from by direction seats (-1 up, +1 down).
// Moves that would leave the table are ignored. The dealer index is a seat
// position and is not re-targeted to follow the moved player.
func (g *Game) MovePlayer(from, direction int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	to := from + direction
	if from < 0 || from >= len(g.players) || to < 0 || to >= len(g.players) || from == to {
		return false
	}
	moved := g.players[from]
	g.players = append(g.players[:from], g.players[from+1:]...)
	g.players = append(g.players[:to], append([]Player{moved}, g.players[to:]...)...)
	g.undo = nil
	return true
}

// RenamePlayer changes a player's name. Blank or unchanged names are ignored.
func (g *Game) RenamePlayer(oldName, newName string) error {
	newName = strings.TrimSpace(newName)

	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.indexLocked(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, oldName)
	}
	if newName == "" || newName == oldName {
		return nil
	}
	for j, p := range g.players {
		if j != i && normalizeName(p.Name) == normalizeName(newName) {
			return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
		}
	}
	g.players[i].Name = newName
	g.undo = nil
	return nil
}

// RenamePlayers renames every seat at once; names[i] is the new name for
// seat i. Blank entries keep the old name.
func (g *Game) RenamePlayers(names []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(names) != len(g.players) {
		return ErrInvalidState(fmt.Sprintf("got %d names for %d players", len(names), len(g.players)))
	}
	next := make([]string, len(names))
	for i, raw := range names {
		next[i] = strings.TrimSpace(raw)
		if next[i] == "" {
			next[i] = g.players[i].Name
		}
	}
	if dup, ok := firstDuplicate(next); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, dup)
	}
	for i := range g.players {
		g.players[i].Name = next[i]
	}
	g.undo = nil
	return nil
}

func (g *Game) SetScore(name string, score int) error {
	if score < 0 {
		return fmt.Errorf("score %w", ErrNegativeValue)
	}
	return g.editPlayer(name, func(p *Player) { p.Score = score })
}

func (g *Game) SetPhase(name string, phase int) error {
	if phase < 0 {
		return fmt.Errorf("phase %w", ErrNegativeValue)
	}
	return g.editPlayer(name, func(p *Player) { p.Phase = phase })
}

func (g *Game) editPlayer(name string, fn func(p *Player)) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexLocked(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	fn(&g.players[i])
	g.undo = nil
	return nil
}

func newPlayer(name string) Player {
	return Player{Name: name, Score: 0, Phase: 1}
}
