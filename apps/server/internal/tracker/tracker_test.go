package tracker

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phase10-tracker/apps/server/internal/store"
	"phase10-tracker/phase10"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestTracker(t *testing.T, st store.Service) *Tracker {
	t.Helper()
	if st == nil {
		st = store.NewMemoryService()
	}
	game, err := phase10.NewGame(phase10.DefaultConfig())
	require.NoError(t, err)
	tr, err := New(context.Background(), game, st, quietLogger())
	require.NoError(t, err)
	return tr
}

func TestTracker_PersistsLiveStateAcrossRestart(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryService()
	tr := newTestTracker(t, st)

	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob", "Cy"}, "Bob"))
	_, err := tr.SubmitRound(ctx, []phase10.RoundEntry{
		{Name: "Ann", Score: 0, PassedPhase: true},
		{Name: "Bob", Score: 25},
		{Name: "Cy", Score: 40},
	})
	require.NoError(t, err)

	restarted := newTestTracker(t, st)
	v := restarted.View()
	require.Len(t, v.Players, 3)
	assert.Equal(t, 2, v.Players[0].Phase)
	assert.Equal(t, 25, v.Players[1].Score)
	assert.Equal(t, 2, v.DealerIndex, "deal passes after a round")
	assert.Equal(t, "Cy", v.Dealer)
	assert.False(t, v.CanUndo, "undo does not survive a restart")
}

func TestTracker_SubmitRoundAndUndo(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob"}, "Ann"))

	_, err := tr.SubmitRound(ctx, []phase10.RoundEntry{{Name: "Ann"}, {Name: "Bob"}})
	require.ErrorIs(t, err, phase10.ErrNoRoundResults)
	assert.Equal(t, 0, tr.View().DealerIndex)

	_, err = tr.SubmitRound(ctx, []phase10.RoundEntry{{Name: "Zed", Score: 10, PassedPhase: true}})
	require.ErrorIs(t, err, phase10.ErrNoRoundResults)
	assert.Equal(t, 0, tr.View().DealerIndex, "a round for unseated names does not pass the deal")

	_, err = tr.SubmitRound(ctx, []phase10.RoundEntry{
		{Name: "Ann", PassedPhase: true},
		{Name: "Bob", Score: 15},
	})
	require.NoError(t, err)
	v := tr.View()
	assert.Equal(t, 1, v.DealerIndex)
	assert.True(t, v.CanUndo)
	assert.Equal(t, []string{"Ann"}, v.Leaders)

	undone, err := tr.UndoLastRound(ctx)
	require.NoError(t, err)
	assert.True(t, undone)
	v = tr.View()
	assert.Equal(t, 0, v.DealerIndex)
	assert.Equal(t, 1, v.Players[0].Phase)
	assert.Equal(t, 0, v.Players[1].Score)

	undone, err = tr.UndoLastRound(ctx)
	require.NoError(t, err)
	assert.False(t, undone)
}

func TestTracker_WinnerReported(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryService()
	require.NoError(t, store.PutJSON(ctx, st, store.KeyPlayers, []phase10.Player{
		{Name: "Ann", Score: 100, Phase: 10},
		{Name: "Bob", Score: 50, Phase: 9},
	}))
	tr := newTestTracker(t, st)

	res, err := tr.SubmitRound(ctx, []phase10.RoundEntry{
		{Name: "Ann", PassedPhase: true},
		{Name: "Bob", Score: 10, PassedPhase: true},
	})
	require.NoError(t, err)
	require.True(t, res.GameOver())
	assert.Equal(t, "Ann", res.Winner.Player.Name)
	assert.Equal(t, "Ann", tr.View().Winner.Player.Name)
}

func TestTracker_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, nil)

	require.ErrorIs(t, tr.Load(ctx), ErrNoSavedGame)
	saved, err := tr.HasSavedGame(ctx)
	require.NoError(t, err)
	assert.False(t, saved)

	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob"}, "Bob"))
	require.NoError(t, tr.Save(ctx))

	require.NoError(t, tr.Reset(ctx))
	assert.Empty(t, tr.View().Players)

	saved, err = tr.HasSavedGame(ctx)
	require.NoError(t, err)
	assert.True(t, saved, "reset keeps the save slot")

	require.NoError(t, tr.Load(ctx))
	v := tr.View()
	require.Len(t, v.Players, 2)
	assert.Equal(t, "Bob", v.Dealer)
}

func TestTracker_ResetClearsLiveKeys(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryService()
	tr := newTestTracker(t, st)
	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob"}, "Ann"))
	require.NoError(t, tr.Reset(ctx))

	_, err := st.Get(ctx, store.KeyPlayers)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.Get(ctx, store.KeyDealerIndex)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTracker_AddPlayerDefaultsName(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, nil)

	name, err := tr.AddPlayer(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, "Player 1", name)

	name, err = tr.AddPlayer(ctx, "Dana")
	require.NoError(t, err)
	assert.Equal(t, "Dana", name)

	_, err = tr.AddPlayer(ctx, "Dana")
	assert.ErrorIs(t, err, phase10.ErrPlayerExists)
}

func TestTracker_EditPlayer(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob"}, "Ann"))

	newName, score, phase := "Anna", "35", "abc"
	require.NoError(t, tr.EditPlayer(ctx, "Ann", PlayerEdit{Name: &newName, Score: &score, Phase: &phase}))

	p := tr.View().Players[0]
	assert.Equal(t, "Anna", p.Name)
	assert.Equal(t, 35, p.Score)
	assert.Equal(t, 0, p.Phase, "non-numeric input becomes 0")

	neg := "-4"
	err := tr.EditPlayer(ctx, "Bob", PlayerEdit{Score: &neg})
	assert.ErrorIs(t, err, phase10.ErrNegativeValue)

	err = tr.EditPlayer(ctx, "Zed", PlayerEdit{Score: &score})
	assert.ErrorIs(t, err, phase10.ErrPlayerNotFound)
}

func TestTracker_MovePlayer(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob", "Cy"}, "Ann"))

	require.NoError(t, tr.MovePlayer(ctx, "Cy", -1))
	v := tr.View()
	assert.Equal(t, "Cy", v.Players[1].Name)
	assert.Equal(t, "Bob", v.Players[2].Name)

	assert.True(t, phase10.IsValidation(tr.MovePlayer(ctx, "Cy", 2)))
	assert.ErrorIs(t, tr.MovePlayer(ctx, "Zed", 1), phase10.ErrPlayerNotFound)

	before := tr.View().Version
	require.NoError(t, tr.MovePlayer(ctx, "Ann", -1), "moving off the top is a no-op")
	assert.Equal(t, before, tr.View().Version)
}

func TestTracker_SubscribersSeeEveryChange(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, nil)

	var versions []uint64
	tr.Subscribe(func(v View) { versions = append(versions, v.Version) })

	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob"}, "Ann"))
	require.NoError(t, tr.NextDealer(ctx))
	require.Error(t, tr.SetDealer(ctx, "Zed"))
	require.NoError(t, tr.Reset(ctx))

	assert.Equal(t, []uint64{1, 2, 3}, versions)
}

func TestTracker_DealerRole(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob", "Cy"}, "Bob"))

	assert.Equal(t, phase10.DealerRoleCurrent, tr.DealerRole("Bob"))
	assert.Equal(t, phase10.DealerRoleNext, tr.DealerRole("Cy"))
	assert.Equal(t, phase10.DealerRoleNone, tr.DealerRole("Ann"))
}

func TestTracker_ConcurrentChangesNotifyInOrder(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(t, nil)
	require.NoError(t, tr.StartGame(ctx, []string{"Ann", "Bob", "Cy"}, "Ann"))

	var versions []uint64
	tr.Subscribe(func(v View) { versions = append(versions, v.Version) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, tr.NextDealer(ctx))
		}()
	}
	wg.Wait()

	require.Len(t, versions, 50)
	for i, v := range versions {
		assert.Equal(t, uint64(i+2), v)
	}
}
