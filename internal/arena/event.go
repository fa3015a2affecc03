// Package arena provides the contest data model: the event catalog, the
// tribute roster, input record decoding, and narrative rendering.
package arena

import (
	"fmt"
	"math"
	"strings"
)

// Role markers used in event description templates.
const (
	ActorMarker  = "#TRIBUTE"   // a tribute who performs the event and takes no damage
	TargetMarker = "#OPPRESSED" // a tribute who suffers the event's severity
)

// MaxSeverity is the highest damage a single event can deal to one target.
const MaxSeverity = 100

// Band classifies an event by how much health it removes.
type Band string

const (
	BandInformation Band = "information" // 0
	BandLight       Band = "light"       // 1–30
	BandMedium      Band = "medium"      // 31–70
	BandSevere      Band = "severe"      // 71–100
)

// ArenaEvent is an author-supplied event template. It is immutable once
// loaded into a Catalog.
type ArenaEvent struct {
	ID          int     `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Probability float64 `json:"probability" yaml:"probability"`
	Severity    int     `json:"severity" yaml:"severity"`

	// Role counts. These are the single source of truth for how many
	// tributes an event needs; they always match the markers in Description.
	Actors  int `json:"actors" yaml:"actors"`
	Targets int `json:"targets" yaml:"targets"`
}

// NewEvent builds an event, deriving its role counts from the template.
func NewEvent(id int, description string, probability float64, severity int) ArenaEvent {
	actors, targets := CountRoles(description)
	return ArenaEvent{
		ID:          id,
		Description: description,
		Probability: probability,
		Severity:    severity,
		Actors:      actors,
		Targets:     targets,
	}
}

// CountRoles counts the actor and target markers in a template.
func CountRoles(description string) (actors, targets int) {
	return strings.Count(description, ActorMarker), strings.Count(description, TargetMarker)
}

// Participants returns the number of distinct tributes the event needs.
func (e ArenaEvent) Participants() int {
	return e.Actors + e.Targets
}

// Band returns the severity band of the event.
func (e ArenaEvent) Band() Band {
	switch {
	case e.Severity <= 0:
		return BandInformation
	case e.Severity <= 30:
		return BandLight
	case e.Severity <= 70:
		return BandMedium
	default:
		return BandSevere
	}
}

// Validate checks value ranges and that the stored role counts agree with
// the template.
func (e ArenaEvent) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("%w: empty description", ErrMalformedRecord)
	}
	if math.IsNaN(e.Probability) || e.Probability < 0 || e.Probability > 1 {
		return fmt.Errorf("%w: probability %v outside [0, 1]", ErrMalformedRecord, e.Probability)
	}
	if e.Severity < 0 || e.Severity > MaxSeverity {
		return fmt.Errorf("%w: severity %d outside [0, %d]", ErrMalformedRecord, e.Severity, MaxSeverity)
	}
	actors, targets := CountRoles(e.Description)
	if e.Actors != actors || e.Targets != targets {
		return fmt.Errorf("%w: role counts %d/%d disagree with template (%d/%d)",
			ErrMalformedRecord, e.Actors, e.Targets, actors, targets)
	}
	return nil
}

// Intner is the slice of a random source the catalog needs.
type Intner interface {
	Intn(n int) int
}

// Catalog is the pool of events available to a session.
type Catalog struct {
	events []ArenaEvent
	index  map[int]int // event ID → position in events
}

// NewCatalog creates a catalog from already-built events. Unlike the
// loaders it rejects the whole set on the first invalid or duplicate event.
func NewCatalog(events ...ArenaEvent) (*Catalog, error) {
	c := &Catalog{index: make(map[int]int, len(events))}
	for _, e := range events {
		if err := c.add(e); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.ID, err)
		}
	}
	return c, nil
}

func (c *Catalog) add(e ArenaEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, dup := c.index[e.ID]; dup {
		return fmt.Errorf("%w: duplicate event id %d", ErrMalformedRecord, e.ID)
	}
	c.index[e.ID] = len(c.events)
	c.events = append(c.events, e)
	return nil
}

// Len returns the number of events in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.events)
}

// Events returns a copy of the catalog's events in load order.
func (c *Catalog) Events() []ArenaEvent {
	if c == nil {
		return nil
	}
	out := make([]ArenaEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Get looks up an event by ID.
func (c *Catalog) Get(id int) (ArenaEvent, bool) {
	if c == nil {
		return ArenaEvent{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return ArenaEvent{}, false
	}
	return c.events[i], true
}

// Pick returns a uniformly chosen event. It reports false when the catalog
// is empty, in which case the returned event must not be used.
func (c *Catalog) Pick(rng Intner) (ArenaEvent, bool) {
	if c.Len() == 0 {
		return ArenaEvent{}, false
	}
	return c.events[rng.Intn(len(c.events))], true
}
