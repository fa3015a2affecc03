// Command arena plays rounds of a tribute contest and keeps the results.
//
// Usage:
//
//	arena [play|run|status|history]
//
// play runs and saves one round (the default), run plays rounds until one
// tribute is left or the round limit is reached, status prints the roster,
// and history prints every saved round. Settings come from ARENA_* variables
// or the TOML file named by ARENA_CONFIG.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talgya/tribute-arena/internal/config"
	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/entropy"
	"github.com/talgya/tribute-arena/internal/persistence"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "arena:", err)
		os.Exit(2)
	}
	setupLogging(cfg)

	command := "play"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, command, os.Stdout); err != nil {
		slog.Error("arena failed", "command", command, "error", err)
		stop()
		os.Exit(1)
	}
}

func setupLogging(cfg config.Config) {
	level, _ := cfg.Level() // validated by config.Load

	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func run(ctx context.Context, cfg config.Config, command string, out io.Writer) error {
	switch command {
	case "play", "run", "status", "history":
	default:
		return fmt.Errorf("unknown command %q (want play, run, status or history)", command)
	}

	// ── Storage ───────────────────────────────────────────────────────
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── Session ───────────────────────────────────────────────────────
	rng, seed, err := entropy.NewRand(cfg.Seed)
	if err != nil {
		return err
	}
	slog.Info("random source ready", "seed", seed)

	session, err := engine.Resume(ctx, store, cfg.SessionID, rng)
	if err != nil {
		return err
	}

	if session.Roster.Len() == 0 {
		slog.Info("no saved roster, enrolling tributes", "source", cfg.PlayersFile)
		if _, err := session.LoadRoster(cfg.PlayersFile); err != nil {
			return err
		}
		if session.Roster.Len() > 0 {
			if err := session.Save(ctx); err != nil {
				return err
			}
		}
	}

	switch command {
	case "status":
		printRoster(out, session)
		return nil
	case "history":
		printHistory(out, session)
		return nil
	}

	// ── Rounds ────────────────────────────────────────────────────────
	if _, err := session.LoadCatalog(cfg.EventsFile); err != nil {
		return err
	}
	if session.Catalog.Len() == 0 {
		return fmt.Errorf("no events loaded from %s", cfg.EventsFile)
	}

	if command == "play" {
		batch, err := session.PlayRound(ctx, cfg.MinEvents, cfg.MaxEvents)
		if err != nil {
			return err
		}
		printBatch(out, batch)
		printOutcome(out, session)
		return nil
	}

	runner := engine.NewRunner(session)
	runner.MinEvents = cfg.MinEvents
	runner.MaxEvents = cfg.MaxEvents
	runner.MaxRounds = cfg.MaxRounds
	runner.OnRound = func(batch engine.Batch) { printBatch(out, batch) }

	if _, err := runner.Run(ctx); err != nil {
		return err
	}
	printOutcome(out, session)
	return nil
}

func openStore(cfg config.Config) (engine.Store, func(), error) {
	switch cfg.Store {
	case config.StoreJSON:
		fs, err := persistence.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("json store opened", "dir", cfg.DataDir)
		return fs, func() {}, nil
	default:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err := persistence.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("database opened", "path", cfg.DBPath)
		return db, func() { db.Close() }, nil
	}
}
