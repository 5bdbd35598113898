package phase10

import (
	"fmt"
	"strings"
)

// StartGame replaces the roster with fresh players seated in the given
// order and makes dealerName the first dealer.
func (g *Game) StartGame(names []string, dealerName string) error {
	roster := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return ErrEmptyName
		}
		roster = append(roster, n)
	}
	if len(roster) < g.cfg.MinPlayers {
		return fmt.Errorf("%w: %d < %d", ErrNotEnoughPlayers, len(roster), g.cfg.MinPlayers)
	}
	if len(roster) > g.cfg.MaxPlayers {
		return fmt.Errorf("%w: %d", ErrTableFull, g.cfg.MaxPlayers)
	}
	if dup, ok := firstDuplicate(roster); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, dup)
	}

	dealer := -1
	dealerName = strings.TrimSpace(dealerName)
	for i, n := range roster {
		if n == dealerName {
			dealer = i
			break
		}
	}
	if dealer < 0 {
		return fmt.Errorf("%w: %q is not seated", ErrInvalidDealer, dealerName)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
	for _, n := range roster {
		g.players = append(g.players, newPlayer(n))
	}
	g.dealerIndex = dealer
	return nil
}

// DefaultPlayerName names the n-th seat for the add-player shortcut.
func DefaultPlayerName(n int) string {
	return fmt.Sprintf("Player %d", n)
}

// NextDefaultName returns "Player N" for the next free seat, skipping
// names already taken.
func (g *Game) NextDefaultName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for n := len(g.players) + 1; ; n++ {
		name := DefaultPlayerName(n)
		if g.indexLocked(name) < 0 {
			return name
		}
	}
}

// firstDuplicate finds the first case-insensitive, whitespace-trimmed repeat.
func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		key := normalizeName(n)
		if _, ok := seen[key]; ok {
			return strings.TrimSpace(n), true
		}
		seen[key] = struct{}{}
	}
	return "", false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
