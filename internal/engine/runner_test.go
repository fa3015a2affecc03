package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/tribute-arena/internal/arena"
)

func TestRunnerPlaysUntilWinner(t *testing.T) {
	store := newMemStore()
	s := NewSession(1, store, rand.New(rand.NewSource(77)))
	s.Catalog = mustCatalog(t, arena.NewEvent(1, "#TRIBUTE attacks #OPPRESSED", 1.0, 100))
	s.Roster = mustRoster(t, "A", "B", "C", "D", "E")

	var numbers []int
	r := NewRunner(s)
	r.OnRound = func(b Batch) { numbers = append(numbers, b.Number) }

	played, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Positive(t, played)
	require.Len(t, numbers, played)
	require.Equal(t, played, store.saves)
	require.Equal(t, 1, numbers[0])

	w, ok := s.Winner()
	require.True(t, ok)
	require.True(t, w.Alive)
	require.Equal(t, 1, s.Roster.AliveCount())
}

func TestRunnerStopsAtMaxRounds(t *testing.T) {
	s := NewSession(1, newMemStore(), rand.New(rand.NewSource(1)))
	s.Catalog = mustCatalog(t, arena.NewEvent(1, "#OPPRESSED gets a light cut", 1.0, 1))
	s.Roster = mustRoster(t, "A", "B", "C")

	r := NewRunner(s)
	r.MinEvents, r.MaxEvents = 1, 1
	r.MaxRounds = 4

	played, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, played)
	require.Len(t, s.History, 4)
}

func TestRunnerDetectsStall(t *testing.T) {
	s := NewSession(1, newMemStore(), rand.New(rand.NewSource(1)))
	s.Catalog = mustCatalog(t, arena.NewEvent(1, "#TRIBUTE sings a song", 1.0, 0))
	s.Roster = mustRoster(t, "A", "B")

	r := NewRunner(s)
	r.StallRounds = 3

	played, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, played)
	_, ok := s.Winner()
	require.False(t, ok)
}

func TestRunnerHonoursContext(t *testing.T) {
	s := newDuelSession(t, newMemStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	played, err := NewRunner(s).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, played)
}

func TestRunnerEmptyCatalog(t *testing.T) {
	s := NewSession(1, newMemStore(), rand.New(rand.NewSource(1)))
	s.Roster = mustRoster(t, "A", "B")

	played, err := NewRunner(s).Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, played)
}
