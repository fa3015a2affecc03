// Command eventmanager converts spreadsheet exports into arena source files.
//
// Usage:
//
//	eventmanager events  <events.csv>  <events.json>
//	eventmanager players <players.csv> <players.json>
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/talgya/tribute-arena/internal/importer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: eventmanager events|players <input.csv> <output.json>")
		os.Exit(2)
	}
	kind, src, dst := os.Args[1], os.Args[2], os.Args[3]

	var (
		report importer.Report
		err    error
	)
	switch kind {
	case "events":
		report, err = importer.ConvertEvents(src, dst)
	case "players":
		report, err = importer.ConvertPlayers(src, dst)
	default:
		fmt.Fprintf(os.Stderr, "unknown kind %q (want events or players)\n", kind)
		os.Exit(2)
	}

	for _, p := range report.Problems {
		slog.Warn("row skipped", "source", src, "error", p)
	}
	if err != nil {
		slog.Error("conversion failed", "source", src, "error", err)
		os.Exit(1)
	}
	slog.Info("conversion done", "kind", kind, "rows", report.Converted, "skipped", len(report.Problems), "output", dst)
}
