package engine

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/tribute-arena/internal/arena"
)

// scriptedSource replays fixed draws. Intn values are reduced modulo n.
type scriptedSource struct {
	ints   []int
	floats []float64
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func mustCatalog(t *testing.T, events ...arena.ArenaEvent) *arena.Catalog {
	t.Helper()
	c, err := arena.NewCatalog(events...)
	require.NoError(t, err)
	return c
}

func mustRoster(t *testing.T, names ...string) *arena.Roster {
	t.Helper()
	r := arena.NewRoster()
	for i, name := range names {
		require.NoError(t, r.Enroll(arena.Tribute{
			ID:       i + 1,
			Name:     name,
			District: "D" + string(rune('1'+i%9)),
			Health:   arena.MaxHealth,
			Alive:    true,
		}))
	}
	return r
}

func TestSingleLethalEvent(t *testing.T) {
	catalog := mustCatalog(t, arena.NewEvent(1, "#TRIBUTE attacks #OPPRESSED", 1.0, 100))
	roster := mustRoster(t, "A", "B")

	round, err := NewExecutor(catalog, rand.New(rand.NewSource(1))).Execute(roster, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, round.Attempts)
	require.Len(t, round.Outcomes, 1)

	o := round.Outcomes[0]
	require.Len(t, o.Actors, 1)
	require.Len(t, o.Targets, 1)
	require.NotEqual(t, o.Actors[0].ID, o.Targets[0].ID)

	dead, _ := roster.Get(o.Targets[0].ID)
	require.Zero(t, dead.Health)
	require.False(t, dead.Alive)
	survivor, _ := roster.Get(o.Actors[0].ID)
	require.Equal(t, arena.MaxHealth, survivor.Health)
	require.True(t, survivor.Alive)
	require.Equal(t, []arena.Tribute{dead}, round.Fallen)
	require.Equal(t, []arena.Tribute{dead}, o.Eliminated)

	text := arena.Render(o)
	require.Contains(t, text, "A")
	require.Contains(t, text, "B")
	require.NotContains(t, text, "#")
	require.Equal(t, o.Actors[0].Name+" attacks "+o.Targets[0].Name, text)
}

func TestNoAliveTributes(t *testing.T) {
	catalog := mustCatalog(t,
		arena.NewEvent(1, "A storm rolls over the arena", 1.0, 0),
		arena.NewEvent(2, "#TRIBUTE attacks #OPPRESSED", 1.0, 100),
	)
	roster := arena.NewRoster()
	require.NoError(t, roster.Enroll(arena.Tribute{ID: 1, Name: "Rue", Health: 0}))

	round, err := NewExecutor(catalog, rand.New(rand.NewSource(3))).Execute(roster, 6, 12)
	require.NoError(t, err)
	require.Empty(t, round.Outcomes)
	require.Empty(t, round.Fallen)
}

func TestEventNeedingTooManyTributesNeverCommits(t *testing.T) {
	catalog := mustCatalog(t, arena.NewEvent(1, "#TRIBUTE and #TRIBUTE corner #OPPRESSED", 1.0, 50))
	roster := mustRoster(t, "A", "B")
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 20; i++ {
		round, err := NewExecutor(catalog, rng).Execute(roster, 10, 30)
		require.NoError(t, err)
		require.Empty(t, round.Outcomes)
	}
	require.Equal(t, 2, roster.AliveCount())
}

func TestDeciderGate(t *testing.T) {
	catalog := mustCatalog(t, arena.NewEvent(1, "#OPPRESSED steps on a branch", 0.5, 10))

	// Attempts draw, pick, one sample draw, then the decider.
	rejected := &scriptedSource{ints: []int{0, 0, 0}, floats: []float64{0.51}}
	roster := mustRoster(t, "A")
	round, err := NewExecutor(catalog, rejected).Execute(roster, 1, 1)
	require.NoError(t, err)
	require.Empty(t, round.Outcomes)
	a, _ := roster.Get(1)
	require.Equal(t, arena.MaxHealth, a.Health)

	// A decider equal to the probability commits.
	accepted := &scriptedSource{ints: []int{0, 0, 0}, floats: []float64{0.5}}
	round, err = NewExecutor(catalog, accepted).Execute(roster, 1, 1)
	require.NoError(t, err)
	require.Len(t, round.Outcomes, 1)
	a, _ = roster.Get(1)
	require.Equal(t, 90, a.Health)
}

func TestSelectionOrderIsTargetsThenActors(t *testing.T) {
	catalog := mustCatalog(t, arena.NewEvent(1, "#TRIBUTE and #TRIBUTE rob #OPPRESSED", 1.0, 20))
	roster := mustRoster(t, "A", "B", "C", "D")

	// Pool A B C D: draw 2 swaps A<->C, draw 0 keeps B, draw 1 swaps A<->D.
	rng := &scriptedSource{ints: []int{0, 0, 2, 0, 1}, floats: []float64{0}}
	round, err := NewExecutor(catalog, rng).Execute(roster, 1, 1)
	require.NoError(t, err)
	require.Len(t, round.Outcomes, 1)

	o := round.Outcomes[0]
	require.Equal(t, "C", o.Targets[0].Name)
	require.Equal(t, []string{"B", "D"}, []string{o.Actors[0].Name, o.Actors[1].Name})
	require.Equal(t, "B and D rob C", arena.Render(o))
}

func TestInvalidEventRange(t *testing.T) {
	catalog := mustCatalog(t, arena.NewEvent(1, "#TRIBUTE waits", 1, 0))
	x := NewExecutor(catalog, rand.New(rand.NewSource(1)))

	_, err := x.Execute(mustRoster(t, "A"), 5, 4)
	require.ErrorIs(t, err, ErrInvalidEventRange)
	_, err = x.Execute(mustRoster(t, "A"), -1, 4)
	require.ErrorIs(t, err, ErrInvalidEventRange)
}

func TestEmptyCatalogCommitsNothing(t *testing.T) {
	round, err := NewExecutor(&arena.Catalog{}, rand.New(rand.NewSource(1))).Execute(mustRoster(t, "A", "B"), 3, 3)
	require.NoError(t, err)
	require.Equal(t, 3, round.Attempts)
	require.Empty(t, round.Outcomes)
}

func TestRoundInvariants(t *testing.T) {
	catalog := mustCatalog(t,
		arena.NewEvent(1, "#TRIBUTE attacks #OPPRESSED", 0.7, 60),
		arena.NewEvent(2, "#TRIBUTE and #TRIBUTE ambush #OPPRESSED and #OPPRESSED", 0.4, 45),
		arena.NewEvent(3, "#OPPRESSED eats poisonous berries", 0.2, 100),
		arena.NewEvent(4, "#TRIBUTE sings a song", 1.0, 0),
		arena.NewEvent(5, "#TRIBUTE, #TRIBUTE, #TRIBUTE and #TRIBUTE form an alliance", 0.9, 0),
		arena.NewEvent(6, "#OPPRESSED gets a light cut", 0.9, 15),
	)
	names := strings.Split("Katniss Peeta Rue Thresh Cato Clove Glimmer Marvel Foxface Finch", " ")
	roster := mustRoster(t, names...)
	rng := rand.New(rand.NewSource(2024))

	const minEvents, maxEvents = 6, 12
	everDead := make(map[int]bool)

	for r := 0; r < 40; r++ {
		aliveBefore := roster.AliveCount()
		round, err := NewExecutor(catalog, rng).Execute(roster, minEvents, maxEvents)
		require.NoError(t, err)
		require.GreaterOrEqual(t, round.Attempts, minEvents)
		require.LessOrEqual(t, round.Attempts, maxEvents)
		require.LessOrEqual(t, len(round.Outcomes), round.Attempts)

		for _, o := range round.Outcomes {
			require.Len(t, o.Actors, o.Event.Actors)
			require.Len(t, o.Targets, o.Event.Targets)
			require.LessOrEqual(t, o.Event.Participants(), aliveBefore)

			seen := make(map[int]bool)
			for _, tr := range append(append([]arena.Tribute{}, o.Actors...), o.Targets...) {
				require.False(t, seen[tr.ID], "tribute %d selected twice", tr.ID)
				seen[tr.ID] = true
				require.True(t, tr.Alive, "dead tribute %d selected", tr.ID)
			}
		}

		for _, tr := range roster.Tributes() {
			require.GreaterOrEqual(t, tr.Health, 0)
			require.LessOrEqual(t, tr.Health, arena.MaxHealth)
			require.Equal(t, tr.Health > 0, tr.Alive)
			if everDead[tr.ID] {
				require.False(t, tr.Alive, "tribute %d came back", tr.ID)
			}
			if !tr.Alive {
				everDead[tr.ID] = true
			}
		}
	}
	require.NotEmpty(t, everDead)
}

func TestSampleIsBoundedAndDistinct(t *testing.T) {
	pool := mustRoster(t, "A", "B", "C", "D", "E").Alive()
	rng := rand.New(rand.NewSource(5))

	for k := 0; k <= len(pool); k++ {
		got := sample(rng, append([]arena.Tribute(nil), pool...), k)
		require.Len(t, got, k)
		seen := make(map[int]bool)
		for _, tr := range got {
			require.False(t, seen[tr.ID])
			seen[tr.ID] = true
		}
	}
}
