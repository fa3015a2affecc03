// Package config loads arena settings. Values come from built-in defaults,
// then an optional TOML file named by ARENA_CONFIG, then the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// PathEnv names the environment variable holding the TOML config path.
const PathEnv = "ARENA_CONFIG"

// Store kinds.
const (
	StoreSQLite = "sqlite"
	StoreJSON   = "json"
)

// Config holds every setting of the arena commands.
type Config struct {
	SessionID   int    `toml:"session_id" env:"ARENA_SESSION_ID"`
	EventsFile  string `toml:"events_file" env:"ARENA_EVENTS_FILE"`
	PlayersFile string `toml:"players_file" env:"ARENA_PLAYERS_FILE"`

	Store   string `toml:"store" env:"ARENA_STORE"`       // "sqlite" or "json"
	DBPath  string `toml:"db_path" env:"ARENA_DB_PATH"`   // sqlite store
	DataDir string `toml:"data_dir" env:"ARENA_DATA_DIR"` // json store

	MinEvents int   `toml:"min_events" env:"ARENA_MIN_EVENTS"`
	MaxEvents int   `toml:"max_events" env:"ARENA_MAX_EVENTS"`
	MaxRounds int   `toml:"max_rounds" env:"ARENA_MAX_ROUNDS"`
	Seed      int64 `toml:"seed" env:"ARENA_SEED"` // 0 = random

	LogLevel string `toml:"log_level" env:"ARENA_LOG_LEVEL"`
	LogFile  string `toml:"log_file" env:"ARENA_LOG_FILE"` // rotated; empty = stdout only
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SessionID:   1,
		EventsFile:  "data/events.json",
		PlayersFile: "data/players.json",
		Store:       StoreSQLite,
		DBPath:      "data/arena.db",
		DataDir:     "data/sessions",
		MinEvents:   6,
		MaxEvents:   12,
		MaxRounds:   50,
		LogLevel:    "info",
	}
}

// Load builds the configuration and validates it.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(PathEnv); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile decodes a TOML file over cfg. Keys it does not know are logged.
func LoadFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	for _, key := range meta.Undecoded() {
		slog.Warn("unknown config key", "file", path, "key", key.String())
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.MinEvents < 0 || c.MaxEvents < c.MinEvents {
		return fmt.Errorf("event range [%d, %d] is invalid", c.MinEvents, c.MaxEvents)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("max rounds %d is negative", c.MaxRounds)
	}
	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("sqlite store needs a db path")
		}
	case StoreJSON:
		if c.DataDir == "" {
			return fmt.Errorf("json store needs a data dir")
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
