// Package engine runs contest rounds: it draws events from the catalog,
// assigns tributes to their roles, gates each event on its probability, and
// applies the damage of committed events to the roster.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/tribute-arena/internal/arena"
)

// Default bounds for the number of event attempts in a round.
const (
	DefaultMinEvents = 6
	DefaultMaxEvents = 12
)

// ErrInvalidEventRange is returned for a negative or inverted attempt range.
var ErrInvalidEventRange = errors.New("invalid event range")

// Source is the randomness a round consumes. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// Round is the result of one executor run.
type Round struct {
	Attempts int             `json:"attempts"`
	Outcomes []arena.Outcome `json:"outcomes"`
	Fallen   []arena.Tribute `json:"fallen,omitempty"` // eliminated this round, in order
}

// Executor runs rounds against a catalog with an injected random source.
type Executor struct {
	catalog *arena.Catalog
	rng     Source
}

// NewExecutor creates an executor. The catalog is only read.
func NewExecutor(catalog *arena.Catalog, rng Source) *Executor {
	return &Executor{catalog: catalog, rng: rng}
}

// Execute runs one round against roster, mutating it in place. The number of
// attempts is drawn uniformly from [minEvents, maxEvents]; every attempt
// consumes one draw whether or not its event commits.
func (x *Executor) Execute(roster *arena.Roster, minEvents, maxEvents int) (Round, error) {
	if minEvents < 0 || maxEvents < minEvents {
		return Round{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidEventRange, minEvents, maxEvents)
	}

	round := Round{Attempts: minEvents + x.rng.Intn(maxEvents-minEvents+1)}
	if roster.AliveCount() == 0 {
		slog.Debug("round skipped, no tributes alive")
		return round, nil
	}

	for i := 0; i < round.Attempts; i++ {
		event, ok := x.catalog.Pick(x.rng)
		if !ok {
			continue
		}

		alive := roster.Alive()
		if event.Participants() > len(alive) {
			slog.Debug("event abandoned, not enough tributes",
				"event", event.ID, "needs", event.Participants(), "alive", len(alive))
			continue
		}

		// Targets first, then actors, from one draw without replacement.
		picked := sample(x.rng, alive, event.Participants())
		outcome := arena.Outcome{
			Event:   event,
			Targets: picked[:event.Targets:event.Targets],
			Actors:  picked[event.Targets:],
		}

		decider := x.rng.Float64()
		if decider > event.Probability {
			continue
		}

		for _, target := range outcome.Targets {
			after, err := roster.ApplyDamage(target.ID, event.Severity)
			if err != nil {
				return Round{}, fmt.Errorf("apply event %d: %w", event.ID, err)
			}
			if target.Alive && !after.Alive {
				outcome.Eliminated = append(outcome.Eliminated, after)
				round.Fallen = append(round.Fallen, after)
			}
		}
		round.Outcomes = append(round.Outcomes, outcome)
	}

	return round, nil
}

// sample moves k uniformly chosen tributes to the front of pool with a
// partial Fisher–Yates shuffle and returns a copy of them in draw order.
// pool is reordered; k must not exceed len(pool).
func sample(rng Source, pool []arena.Tribute, k int) []arena.Tribute {
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := make([]arena.Tribute, k)
	copy(out, pool[:k])
	return out
}
