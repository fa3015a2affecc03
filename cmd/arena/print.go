package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/talgya/tribute-arena/internal/engine"
)

func printBatch(w io.Writer, batch engine.Batch) {
	fmt.Fprintf(w, "\n── The %s round ──\n", humanize.Ordinal(batch.Number))
	if len(batch.Lines) == 0 {
		fmt.Fprintln(w, "The arena is quiet.")
	}
	for _, line := range batch.Lines {
		fmt.Fprintln(w, "  "+line)
	}
	for _, t := range batch.Round.Fallen {
		fmt.Fprintf(w, "  A cannon sounds for %s of district %s.\n", t.Name, t.District)
	}
}

func printOutcome(w io.Writer, s *engine.Session) {
	if winner, ok := s.Winner(); ok {
		fmt.Fprintf(w, "\n%s of district %s is the last tribute standing.\n", winner.Name, winner.District)
		return
	}
	fmt.Fprintf(w, "\n%s of %s tributes remain after %s.\n",
		humanize.Comma(int64(s.Roster.AliveCount())),
		humanize.Comma(int64(s.Roster.Len())),
		rounds(len(s.History)),
	)
}

func printRoster(w io.Writer, s *engine.Session) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDISTRICT\tHP\tSTATUS")
	for _, t := range s.Roster.Tributes() {
		status := "alive"
		if !t.Alive {
			status = "fallen"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", t.ID, t.Name, t.District, t.Health, status)
	}
	tw.Flush()
	printOutcome(w, s)
}

func printHistory(w io.Writer, s *engine.Session) {
	if len(s.History) == 0 {
		fmt.Fprintln(w, "No rounds played yet.")
		return
	}
	for i, lines := range s.History {
		printBatch(w, engine.Batch{Number: i + 1, Lines: lines})
	}
}

func rounds(n int) string {
	if n == 1 {
		return "1 round"
	}
	return humanize.Comma(int64(n)) + " rounds"
}
