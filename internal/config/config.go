// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "OLIVE_"

// Config holds settings shared by every command. LLM settings live in
// llm.Config and are read from the same environment.
type Config struct {
	// DBPath overrides the default database location.
	DBPath string `env:"DB"`

	// User pins the learner profile. Empty resumes the most recent one.
	User string `env:"USER"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogFile receives log output. Empty means stderr for the server and
	// <data dir>/olive.log for the TUI.
	LogFile string `env:"LOG_FILE"`

	// Addr is the listen address for `olive serve`.
	Addr string `env:"ADDR" envDefault:"127.0.0.1:8080"`

	// AllowedOrigins lists extra WebSocket origins, e.g. "example.com".
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// SessionIdle is how long `olive serve` keeps an unused learner
	// session in memory.
	SessionIdle time.Duration `env:"SESSION_IDLE" envDefault:"30m"`

	// HistoryWindow caps how many stored messages go into each prompt.
	HistoryWindow int `env:"HISTORY_WINDOW" envDefault:"40"`
}

// Load reads files into the environment (".env" when none are given),
// without overriding variables that are already set, then parses Config.
// Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads Config from the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.HistoryWindow < 0 {
		return Config{}, fmt.Errorf("parse config: %sHISTORY_WINDOW must not be negative", EnvPrefix)
	}
	return cfg, nil
}
