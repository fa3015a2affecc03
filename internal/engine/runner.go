// Runner plays rounds back to back until the contest is decided.
package engine

import (
	"context"
	"log/slog"
)

// Runner drives a session forward one saved round at a time.
type Runner struct {
	Session   *Session
	MinEvents int
	MaxEvents int
	MaxRounds int // 0 = until decided

	// Stop after this many consecutive rounds in which no health was lost.
	// 0 disables the check.
	StallRounds int

	// Called after every saved round.
	OnRound func(batch Batch)
}

// NewRunner creates a runner with the default attempt range.
func NewRunner(s *Session) *Runner {
	return &Runner{
		Session:     s,
		MinEvents:   DefaultMinEvents,
		MaxEvents:   DefaultMaxEvents,
		StallRounds: 25,
	}
}

// Run plays rounds until at most one tribute is alive, MaxRounds rounds have
// been played, or ctx is done. It returns the number of rounds played. ctx is
// only checked between rounds.
func (r *Runner) Run(ctx context.Context) (int, error) {
	s := r.Session
	slog.Info("contest started",
		"session", s.ID,
		"alive", s.Roster.AliveCount(),
		"events", s.Catalog.Len(),
		"max_rounds", r.MaxRounds,
	)

	played, stalled := 0, 0
	for r.MaxRounds == 0 || played < r.MaxRounds {
		if err := ctx.Err(); err != nil {
			return played, err
		}
		if s.Roster.AliveCount() <= 1 {
			break
		}
		// An empty catalog can never change the roster.
		if s.Catalog.Len() == 0 {
			slog.Warn("contest stalled, catalog is empty", "session", s.ID)
			break
		}

		before := totalHealth(s)
		batch, err := s.PlayRound(ctx, r.MinEvents, r.MaxEvents)
		if err != nil {
			return played, err
		}
		played++
		if r.OnRound != nil {
			r.OnRound(batch)
		}

		if totalHealth(s) < before {
			stalled = 0
			continue
		}
		stalled++
		if r.StallRounds > 0 && stalled >= r.StallRounds {
			slog.Warn("contest stalled, no damage dealt", "session", s.ID, "rounds", stalled)
			break
		}
	}

	if w, ok := s.Winner(); ok {
		slog.Info("contest decided", "session", s.ID, "winner", w.Name, "district", w.District, "rounds", played)
	} else {
		slog.Info("contest paused", "session", s.ID, "alive", s.Roster.AliveCount(), "rounds", played)
	}
	return played, nil
}

func totalHealth(s *Session) int {
	total := 0
	for _, t := range s.Roster.Tributes() {
		total += t.Health
	}
	return total
}
