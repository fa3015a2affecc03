package arena

import (
	"fmt"
	"strings"
)

// MaxHealth is the health of an unharmed tribute.
const MaxHealth = 100

// Tribute is a contest participant.
type Tribute struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
	Health   int    `json:"hp"`
	Alive    bool   `json:"alive"`
}

// normalize enforces Alive == (Health > 0). A tribute already marked dead
// stays dead with zero health.
func (t *Tribute) normalize() {
	if !t.Alive || t.Health <= 0 {
		t.Health = 0
		t.Alive = false
	}
}

// Roster holds the tributes of a session in enrollment order. It owns its
// records; every accessor hands out copies.
type Roster struct {
	tributes []Tribute
	index    map[int]int // tribute ID → position in tributes
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{index: make(map[int]int)}
}

// Enroll appends a tribute. Health outside [0, MaxHealth], a blank name, or
// an ID already on the roster is rejected.
func (r *Roster) Enroll(t Tribute) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrMalformedRecord)
	}
	if t.Health < 0 || t.Health > MaxHealth {
		return fmt.Errorf("%w: health %d outside [0, %d]", ErrMalformedRecord, t.Health, MaxHealth)
	}
	if _, dup := r.index[t.ID]; dup {
		return fmt.Errorf("%w: %d", ErrDuplicateTribute, t.ID)
	}
	t.normalize()
	r.index[t.ID] = len(r.tributes)
	r.tributes = append(r.tributes, t)
	return nil
}

// Len returns the number of enrolled tributes, dead or alive.
func (r *Roster) Len() int {
	return len(r.tributes)
}

// Get looks up a tribute by ID.
func (r *Roster) Get(id int) (Tribute, bool) {
	i, ok := r.index[id]
	if !ok {
		return Tribute{}, false
	}
	return r.tributes[i], true
}

// Tributes returns every tribute in enrollment order.
func (r *Roster) Tributes() []Tribute {
	out := make([]Tribute, len(r.tributes))
	copy(out, r.tributes)
	return out
}

// Alive returns the living tributes in enrollment order.
func (r *Roster) Alive() []Tribute {
	var out []Tribute
	for _, t := range r.tributes {
		if t.Alive {
			out = append(out, t)
		}
	}
	return out
}

// AliveCount returns the number of living tributes.
func (r *Roster) AliveCount() int {
	n := 0
	for _, t := range r.tributes {
		if t.Alive {
			n++
		}
	}
	return n
}

// NextID returns an ID greater than every enrolled ID.
func (r *Roster) NextID() int {
	next := 1
	for _, t := range r.tributes {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return next
}

// ApplyDamage removes amount health from a tribute, clamping at zero. This is
// the only way a tribute dies. Negative amounts are ignored; dead tributes
// are left untouched.
func (r *Roster) ApplyDamage(id, amount int) (Tribute, error) {
	i, ok := r.index[id]
	if !ok {
		return Tribute{}, fmt.Errorf("%w: %d", ErrUnknownTribute, id)
	}
	t := &r.tributes[i]
	if !t.Alive || amount <= 0 {
		return *t, nil
	}
	t.Health -= amount
	if t.Health <= 0 {
		t.Health = 0
		t.Alive = false
	}
	return *t, nil
}

// Clone returns an independent copy of the roster.
func (r *Roster) Clone() *Roster {
	c := &Roster{
		tributes: make([]Tribute, len(r.tributes)),
		index:    make(map[int]int, len(r.index)),
	}
	copy(c.tributes, r.tributes)
	for id, i := range r.index {
		c.index[id] = i
	}
	return c
}
