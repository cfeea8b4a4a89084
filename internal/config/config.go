// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Stats storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every tunable of the service.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	WordSeed          string `env:"WORD_SEED" envDefault:"semilla"`
	DailyTimezone     string `env:"DAILY_TIMEZONE" envDefault:"Europe/Madrid"`
	WordLength        int    `env:"WORD_LENGTH" envDefault:"5"`
	WordsFile         string `env:"WORDS_FILE" envDefault:"data/words.json"`
	PracticeWordsFile string `env:"PRACTICE_WORDS_FILE" envDefault:"data/practice_words.json"`

	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	RateLimitRPS   int           `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST" envDefault:"10"`

	StatsDriver  string        `env:"STATS_DRIVER" envDefault:"sqlite"`
	SQLitePath   string        `env:"SQLITE_PATH" envDefault:"data/stats.db"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	StatsTimeout time.Duration `env:"STATS_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("No .env file loaded")
	}
	return Parse()
}

// Parse reads the environment without touching .env files.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.StatsDriver = strings.ToLower(strings.TrimSpace(cfg.StatsDriver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.WordLength <= 0 {
		errs = append(errs, fmt.Errorf("WORD_LENGTH must be positive, got %d", c.WordLength))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.StatsTimeout <= 0 {
		errs = append(errs, fmt.Errorf("STATS_TIMEOUT must be positive, got %s", c.StatsTimeout))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if _, err := time.LoadLocation(c.DailyTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DAILY_TIMEZONE: %w", err))
	}
	switch c.StatsDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STATS_DRIVER %q", c.StatsDriver))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether ENV selects production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Location resolves DailyTimezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.DailyTimezone)
}

// Level parses LogLevel, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
