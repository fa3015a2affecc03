package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderPositional(t *testing.T) {
	o := Outcome{
		Event: NewEvent(1, "#TRIBUTE and #TRIBUTE chase #OPPRESSED into #OPPRESSED's camp", 1, 20),
		Actors: []Tribute{
			{ID: 1, Name: "Cato"},
			{ID: 2, Name: "Clove"},
		},
		Targets: []Tribute{
			{ID: 3, Name: "Rue"},
			{ID: 4, Name: "Thresh"},
		},
	}

	require.Equal(t, "Cato and Clove chase Rue into Thresh's camp", Render(o))
}

func TestRenderIsDeterministic(t *testing.T) {
	o := Outcome{
		Event:   NewEvent(1, "#TRIBUTE attacks #OPPRESSED", 1, 100),
		Actors:  []Tribute{{ID: 1, Name: "A"}},
		Targets: []Tribute{{ID: 2, Name: "B"}},
	}
	first := Render(o)
	require.Equal(t, first, Render(o))
	require.Equal(t, "A attacks B", first)
	require.Equal(t, "#TRIBUTE attacks #OPPRESSED", o.Event.Description)
}

func TestRenderNamesAreNotRescanned(t *testing.T) {
	o := Outcome{
		Event:   NewEvent(1, "#TRIBUTE waves at #TRIBUTE", 1, 0),
		Actors:  []Tribute{{ID: 1, Name: "#TRIBUTE"}, {ID: 2, Name: "Glimmer"}},
		Targets: nil,
	}
	require.Equal(t, "#TRIBUTE waves at Glimmer", Render(o))
}

func TestRenderLeavesUnmatchedMarkers(t *testing.T) {
	o := Outcome{
		Event:  NewEvent(1, "#TRIBUTE meets #OPPRESSED #hashtag", 1, 0),
		Actors: []Tribute{{ID: 1, Name: "Foxface"}},
	}
	require.Equal(t, "Foxface meets #OPPRESSED #hashtag", Render(o))
}

func TestRenderAll(t *testing.T) {
	outcomes := []Outcome{
		{Event: NewEvent(1, "#TRIBUTE sings", 1, 0), Actors: []Tribute{{Name: "Rue"}}},
		{Event: NewEvent(2, "#OPPRESSED slips", 1, 5), Targets: []Tribute{{Name: "Peeta"}}},
	}
	require.Equal(t, []string{"Rue sings", "Peeta slips"}, RenderAll(outcomes))
	require.Empty(t, RenderAll(nil))
}
