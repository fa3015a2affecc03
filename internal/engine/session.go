// Session ties a catalog, a roster, and the round history to a store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/tribute-arena/internal/arena"
	"github.com/talgya/tribute-arena/internal/persistence"
)

var (
	// ErrRoundPending is returned when a round is executed while another one
	// is still waiting to be saved.
	ErrRoundPending = errors.New("round pending save")
	// ErrAlreadyLoaded is returned when a catalog or roster would be replaced.
	ErrAlreadyLoaded = errors.New("already loaded")
)

// Store persists session documents.
type Store interface {
	Save(ctx context.Context, doc persistence.Document) error
	Load(ctx context.Context, id int) (persistence.Document, error)
}

// Batch is the outcome of one round together with its rendered lines.
type Batch struct {
	Number int      `json:"number"` // 1-based position in the history
	Round  Round    `json:"round"`
	Lines  []string `json:"lines"`
}

// Session is one contest. It is not safe for concurrent use.
type Session struct {
	ID      int
	Catalog *arena.Catalog
	Roster  *arena.Roster
	History [][]string

	store Store
	rng   Source

	// Staged round, applied to Roster and History only once saved.
	pending *pendingRound
}

type pendingRound struct {
	roster *arena.Roster
	batch  Batch
}

// NewSession creates an empty session.
func NewSession(id int, store Store, rng Source) *Session {
	return &Session{
		ID:      id,
		Catalog: &arena.Catalog{},
		Roster:  arena.NewRoster(),
		store:   store,
		rng:     rng,
	}
}

// Resume loads a session's roster and history from the store. An unknown
// session comes back empty.
func Resume(ctx context.Context, store Store, id int, rng Source) (*Session, error) {
	doc, err := store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %d: %w", id, err)
	}

	s := NewSession(id, store, rng)
	for _, p := range doc.Players {
		t := arena.Tribute{ID: p.ID, Name: p.Name, District: p.District, Health: p.HP, Alive: p.Alive}
		if err := s.Roster.Enroll(t); err != nil {
			slog.Warn("skipping stored tribute", "session", id, "tribute", p.ID, "error", err)
		}
	}
	s.History = doc.History

	slog.Info("session resumed",
		"session", id,
		"tributes", s.Roster.Len(),
		"alive", s.Roster.AliveCount(),
		"rounds", len(s.History),
	)
	return s, nil
}

// LoadCatalog populates the session's catalog from a file. The catalog can
// only be loaded once.
func (s *Session) LoadCatalog(path string) (arena.LoadReport, error) {
	if s.Catalog.Len() > 0 {
		return arena.LoadReport{}, fmt.Errorf("catalog: %w", ErrAlreadyLoaded)
	}
	c, report := arena.LoadCatalog(path)
	s.Catalog = c
	return report, nil
}

// LoadRoster populates the session's roster from a file. A roster that
// already has tributes, for example a resumed one, is not replaced.
func (s *Session) LoadRoster(path string) (arena.LoadReport, error) {
	if s.Roster.Len() > 0 {
		return arena.LoadReport{}, fmt.Errorf("roster: %w", ErrAlreadyLoaded)
	}
	r, report := arena.LoadRoster(path)
	s.Roster = r
	return report, nil
}

// Pending reports whether a round is waiting to be saved.
func (s *Session) Pending() bool {
	return s.pending != nil
}

// ExecuteRound runs a round on a copy of the roster and stages the result.
// Nothing is final until Save succeeds.
func (s *Session) ExecuteRound(minEvents, maxEvents int) (Batch, error) {
	if s.pending != nil {
		return Batch{}, ErrRoundPending
	}

	work := s.Roster.Clone()
	round, err := NewExecutor(s.Catalog, s.rng).Execute(work, minEvents, maxEvents)
	if err != nil {
		return Batch{}, err
	}

	batch := Batch{
		Number: len(s.History) + 1,
		Round:  round,
		Lines:  arena.RenderAll(round.Outcomes),
	}
	s.pending = &pendingRound{roster: work, batch: batch}

	slog.Info("round executed",
		"session", s.ID,
		"round", batch.Number,
		"attempts", round.Attempts,
		"committed", len(round.Outcomes),
		"fallen", len(round.Fallen),
		"alive", work.AliveCount(),
	)
	return batch, nil
}

// Discard drops a staged round.
func (s *Session) Discard() {
	s.pending = nil
}

// Save writes the roster and history, including any staged round. On
// failure the staged round is kept so the save can be retried.
func (s *Session) Save(ctx context.Context) error {
	roster, history := s.Roster, s.History
	if s.pending != nil {
		roster = s.pending.roster
		history = make([][]string, len(s.History), len(s.History)+1)
		copy(history, s.History)
		history = append(history, s.pending.batch.Lines)
	}

	if err := s.store.Save(ctx, document(s.ID, roster, history)); err != nil {
		return fmt.Errorf("save session %d: %w", s.ID, err)
	}

	s.Roster, s.History = roster, history
	s.pending = nil
	return nil
}

// PlayRound executes a round and saves it. A round that cannot be saved is
// discarded and the error returned.
func (s *Session) PlayRound(ctx context.Context, minEvents, maxEvents int) (Batch, error) {
	batch, err := s.ExecuteRound(minEvents, maxEvents)
	if err != nil {
		return Batch{}, err
	}
	if err := s.Save(ctx); err != nil {
		s.Discard()
		return Batch{}, err
	}
	return batch, nil
}

// Winner returns the sole surviving tribute, if there is exactly one.
func (s *Session) Winner() (arena.Tribute, bool) {
	alive := s.Roster.Alive()
	if len(alive) != 1 {
		return arena.Tribute{}, false
	}
	return alive[0], true
}

func document(id int, roster *arena.Roster, history [][]string) persistence.Document {
	tributes := roster.Tributes()
	doc := persistence.Document{
		ID:      id,
		Players: make([]persistence.Player, 0, len(tributes)),
		History: history,
	}
	for _, t := range tributes {
		doc.Players = append(doc.Players, persistence.Player{
			ID:       t.ID,
			Name:     t.Name,
			District: t.District,
			HP:       t.Health,
			Alive:    t.Alive,
		})
	}
	if len(history) > 0 {
		doc.Latest = history[len(history)-1]
	}
	return doc
}
