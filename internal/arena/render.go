package arena

import "strings"

// Outcome is one committed event with the tributes it involved, captured at
// selection time and kept in selection order.
type Outcome struct {
	Event   ArenaEvent `json:"event"`
	Actors  []Tribute  `json:"actors"`
	Targets []Tribute  `json:"targets"`

	// Targets this event eliminated, with their post-damage state.
	Eliminated []Tribute `json:"eliminated,omitempty"`
}

// Render substitutes the i-th actor's name for the i-th actor marker and the
// i-th target's name for the i-th target marker. The template is scanned once,
// so names are never themselves treated as markers. Markers without a
// matching tribute are left in place.
func Render(o Outcome) string {
	var b strings.Builder
	desc := o.Event.Description
	b.Grow(len(desc))

	actor, target := 0, 0
	for {
		i := strings.IndexByte(desc, '#')
		if i < 0 {
			b.WriteString(desc)
			break
		}
		b.WriteString(desc[:i])
		desc = desc[i:]

		switch {
		case strings.HasPrefix(desc, ActorMarker) && actor < len(o.Actors):
			b.WriteString(o.Actors[actor].Name)
			actor++
			desc = desc[len(ActorMarker):]
		case strings.HasPrefix(desc, TargetMarker) && target < len(o.Targets):
			b.WriteString(o.Targets[target].Name)
			target++
			desc = desc[len(TargetMarker):]
		default:
			b.WriteByte('#')
			desc = desc[1:]
		}
	}
	return b.String()
}

// RenderAll renders a batch of outcomes in order.
func RenderAll(outcomes []Outcome) []string {
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		lines = append(lines, Render(o))
	}
	return lines
}
