package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"phase10-tracker/apps/server/internal/store"
	"phase10-tracker/phase10"
)

const storeTimeout = 3 * time.Second

var ErrNoSavedGame = errors.New("no saved game found")

// View is what the presentation layer renders after every change.
type View struct {
	Version     uint64           `json:"version"`
	Players     []phase10.Player `json:"players"`
	DealerIndex int              `json:"dealerIndex"`
	Dealer      string           `json:"dealer"`
	NextDealer  string           `json:"nextDealer"`
	Winner      *phase10.Winner  `json:"winner"`
	// Winner or tied players, for the banner.
	WinnerNames      []string           `json:"winnerNames"`
	TieBreakerActive bool               `json:"tieBreakerActive"`
	Leaders          []string           `json:"leaders"`
	Rankings         []phase10.Standing `json:"rankings"`
	CanUndo          bool               `json:"canUndo"`
	// Requirement text of each player's current phase, keyed by player name.
	PhaseRequirements map[string]string `json:"phaseRequirements"`
}

// Tracker owns the single live ledger. Every committed change is written
// to the live store keys and pushed to subscribers.
type Tracker struct {
	mu sync.Mutex
	// notifyMu is taken before mu is released so listeners see views in
	// version order. Listeners must not call back into the tracker.
	notifyMu sync.Mutex

	game  *phase10.Game
	store store.Service
	log   *logrus.Entry

	version   uint64
	listeners []func(View)
}

// New restores the live ledger from st and returns a tracker around it.
func New(ctx context.Context, game *phase10.Game, st store.Service, logger *logrus.Logger) (*Tracker, error) {
	t := &Tracker{
		game:  game,
		store: st,
		log:   logger.WithField("component", "tracker"),
	}
	if err := t.restoreLive(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) restoreLive(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	var snap phase10.Snapshot
	if err := store.GetJSON(ctx, t.store, store.KeyPlayers, &snap.Players); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("restore players: %w", err)
	}
	if err := store.GetJSON(ctx, t.store, store.KeyDealerIndex, &snap.DealerIndex); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("restore dealer: %w", err)
	}
	if err := t.game.Restore(snap); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	t.log.WithField("players", len(snap.Players)).Info("live ledger restored")
	return nil
}

// Subscribe registers fn to receive the view after every committed change.
func (t *Tracker) Subscribe(fn func(View)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

func (t *Tracker) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

func (t *Tracker) viewLocked() View {
	snap := t.game.Snapshot()
	reqs := make(map[string]string, len(snap.Players))
	for _, p := range snap.Players {
		reqs[p.Name] = phase10.PhaseRequirement(p.Phase)
	}
	return View{
		Version:           t.version,
		Players:           snap.Players,
		DealerIndex:       snap.DealerIndex,
		Dealer:            t.game.Dealer(),
		NextDealer:        t.game.NextDealerName(),
		Winner:            snap.Winner,
		WinnerNames:       snap.Winner.Names(),
		TieBreakerActive:  snap.TieBreakerActive,
		Leaders:           t.game.LeadingPlayerNames(),
		Rankings:          t.game.Rankings(),
		CanUndo:           t.game.CanUndo(),
		PhaseRequirements: reqs,
	}
}

// mutate runs fn under the tracker lock. When fn succeeds and reports a
// change, the live keys are persisted and subscribers are notified.
func (t *Tracker) mutate(ctx context.Context, op string, fn func() (bool, error)) error {
	t.mu.Lock()
	changed, err := fn()
	if err != nil || !changed {
		t.mu.Unlock()
		return err
	}
	t.version++
	persistErr := t.persistLiveLocked(ctx)
	view := t.viewLocked()
	t.unlockAndNotify(view)

	t.log.WithFields(logrus.Fields{"op": op, "version": view.Version}).Debug("ledger updated")
	if persistErr != nil {
		t.log.WithError(persistErr).WithField("op", op).Error("persist live state failed")
		return persistErr
	}
	return nil
}

// unlockAndNotify releases mu and delivers view to every listener.
func (t *Tracker) unlockAndNotify(view View) {
	listeners := append([]func(View){}, t.listeners...)
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	t.mu.Unlock()
	for _, fn := range listeners {
		fn(view)
	}
}

func (t *Tracker) persistLiveLocked(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	snap := t.game.Snapshot()
	if err := store.PutJSON(ctx, t.store, store.KeyPlayers, snap.Players); err != nil {
		return fmt.Errorf("persist players: %w", err)
	}
	if err := store.PutJSON(ctx, t.store, store.KeyDealerIndex, snap.DealerIndex); err != nil {
		return fmt.Errorf("persist dealer: %w", err)
	}
	return nil
}

func (t *Tracker) StartGame(ctx context.Context, names []string, dealer string) error {
	return t.mutate(ctx, "start_game", func() (bool, error) {
		return true, t.game.StartGame(names, dealer)
	})
}

// AddPlayer seats name, or the next "Player N" when name is blank.
func (t *Tracker) AddPlayer(ctx context.Context, name string) (string, error) {
	var added string
	err := t.mutate(ctx, "add_player", func() (bool, error) {
		added = strings.TrimSpace(name)
		if added == "" {
			added = t.game.NextDefaultName()
		}
		return true, t.game.AddPlayer(added)
	})
	return added, err
}

func (t *Tracker) RemovePlayer(ctx context.Context, name string) error {
	return t.mutate(ctx, "remove_player", func() (bool, error) {
		return true, t.game.RemovePlayer(name)
	})
}

// DealerRole reports whether name deals now or next, for delete confirmation.
func (t *Tracker) DealerRole(name string) phase10.DealerRole {
	return t.game.DealerRole(name)
}

// MovePlayer moves name one seat up (direction -1) or down (+1).
func (t *Tracker) MovePlayer(ctx context.Context, name string, direction int) error {
	if direction != -1 && direction != 1 {
		return phase10.ErrInvalidState("direction must be -1 or 1")
	}
	return t.mutate(ctx, "move_player", func() (bool, error) {
		from := -1
		for i, p := range t.game.Players() {
			if p.Name == name {
				from = i
				break
			}
		}
		if from < 0 {
			return false, fmt.Errorf("%w: %q", phase10.ErrPlayerNotFound, name)
		}
		return t.game.MovePlayer(from, direction), nil
	})
}

// PlayerEdit carries raw score table input. Nil fields are left alone.
type PlayerEdit struct {
	Name  *string
	Score *string
	Phase *string
}

// EditPlayer applies score table edits to one player. Non-numeric score or
// phase input is stored as 0.
func (t *Tracker) EditPlayer(ctx context.Context, name string, edit PlayerEdit) error {
	var score, phase *int
	if edit.Score != nil {
		v := phase10.ParseEditValue(*edit.Score)
		if v < 0 {
			return fmt.Errorf("score %w", phase10.ErrNegativeValue)
		}
		score = &v
	}
	if edit.Phase != nil {
		v := phase10.ParseEditValue(*edit.Phase)
		if v < 0 {
			return fmt.Errorf("phase %w", phase10.ErrNegativeValue)
		}
		phase = &v
	}

	return t.mutate(ctx, "edit_player", func() (bool, error) {
		if _, ok := t.game.Player(name); !ok {
			return false, fmt.Errorf("%w: %q", phase10.ErrPlayerNotFound, name)
		}
		if edit.Name != nil {
			if err := t.game.RenamePlayer(name, *edit.Name); err != nil {
				return false, err
			}
			if n := strings.TrimSpace(*edit.Name); n != "" {
				name = n
			}
		}
		if score != nil {
			if err := t.game.SetScore(name, *score); err != nil {
				return true, err
			}
		}
		if phase != nil {
			if err := t.game.SetPhase(name, *phase); err != nil {
				return true, err
			}
		}
		return true, nil
	})
}

func (t *Tracker) RenamePlayers(ctx context.Context, names []string) error {
	return t.mutate(ctx, "rename_players", func() (bool, error) {
		return true, t.game.RenamePlayers(names)
	})
}

func (t *Tracker) SetDealer(ctx context.Context, name string) error {
	return t.mutate(ctx, "set_dealer", func() (bool, error) {
		return true, t.game.SetDealerByName(name)
	})
}

func (t *Tracker) NextDealer(ctx context.Context) error {
	return t.mutate(ctx, "next_dealer", func() (bool, error) {
		t.game.NextDealer()
		return true, nil
	})
}

// SubmitRound applies a round and passes the deal, as the round form does.
func (t *Tracker) SubmitRound(ctx context.Context, entries []phase10.RoundEntry) (phase10.RoundResult, error) {
	var res phase10.RoundResult
	err := t.mutate(ctx, "submit_round", func() (bool, error) {
		var err error
		res, err = t.game.ApplyRound(entries)
		if err != nil {
			return false, err
		}
		t.game.NextDealer()
		return true, nil
	})
	if err != nil {
		return res, err
	}

	entry := t.log.WithFields(logrus.Fields{
		"completed": res.Completed,
		"winners":   res.Winner.Names(),
	})
	switch {
	case res.GameOver():
		entry.Info("game won")
	case res.Winner.IsTie():
		entry.Info("tie-breaker activated")
	}
	return res, nil
}

// UndoLastRound reports false when there was no round to undo.
func (t *Tracker) UndoLastRound(ctx context.Context) (bool, error) {
	var undone bool
	err := t.mutate(ctx, "undo_round", func() (bool, error) {
		undone = t.game.UndoLastRound()
		return undone, nil
	})
	return undone, err
}

// Save overwrites the single save slot with the current ledger.
func (t *Tracker) Save(ctx context.Context) error {
	t.mu.Lock()
	snap := t.game.Snapshot()
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := store.PutJSON(ctx, t.store, store.KeySavedGame, snap); err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	t.log.WithField("players", len(snap.Players)).Info("game saved")
	return nil
}

// Load replaces the ledger with the save slot. ErrNoSavedGame leaves the
// ledger untouched.
func (t *Tracker) Load(ctx context.Context) error {
	return t.mutate(ctx, "load_game", func() (bool, error) {
		lctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()

		var snap phase10.Snapshot
		if err := store.GetJSON(lctx, t.store, store.KeySavedGame, &snap); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return false, ErrNoSavedGame
			}
			return false, fmt.Errorf("load game: %w", err)
		}
		if err := t.game.Restore(snap); err != nil {
			return false, fmt.Errorf("load game: %w", err)
		}
		return true, nil
	})
}

// HasSavedGame reports whether the save slot is filled.
func (t *Tracker) HasSavedGame(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	_, err := t.store.Get(ctx, store.KeySavedGame)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Reset clears the ledger and the live keys. The save slot survives.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	t.game.Reset()
	t.version++
	view := t.viewLocked()

	dctx, cancel := context.WithTimeout(ctx, storeTimeout)
	err := t.store.Delete(dctx, store.KeyPlayers, store.KeyDealerIndex)
	cancel()
	t.unlockAndNotify(view)
	if err != nil {
		t.log.WithError(err).Error("clear live state failed")
		return fmt.Errorf("reset: %w", err)
	}
	t.log.WithField("version", view.Version).Info("game reset")
	return nil
}
