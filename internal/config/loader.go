package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/example/room-reservation/internal/slot"
)

// EnvPrefix is prepended to every configuration variable.
const EnvPrefix = "RESERVATION_"

// Store backends accepted by RESERVATION_STORE.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config captures environment driven configuration values for the reservation service.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Store       string `env:"STORE" envDefault:"sqlite"`
	SQLiteDSN   string `env:"SQLITE_DSN" envDefault:"data/reservations.db"`
	PostgresURL string `env:"POSTGRES_URL"`

	OpenTime  string `env:"OPEN_TIME" envDefault:"08:00"`
	CloseTime string `env:"CLOSE_TIME" envDefault:"22:00"`

	MaxOccurrences      int           `env:"MAX_OCCURRENCES" envDefault:"366"`
	DetectorParallelism int           `env:"DETECTOR_PARALLELISM" envDefault:"4"`
	ResourceCacheSize   int           `env:"RESOURCE_CACHE_SIZE" envDefault:"256"`
	ResourceCacheTTL    time.Duration `env:"RESOURCE_CACHE_TTL" envDefault:"5m"`

	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"reservations"`
	RedisAddr    string `env:"REDIS_ADDR"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"reservations"`

	SubmitRate      float64       `env:"SUBMIT_RATE" envDefault:"5"`
	SubmitBurst     int           `env:"SUBMIT_BURST" envDefault:"10"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	window slot.Window
}

// Window returns the operating window built from OpenTime and CloseTime.
func (c Config) Window() slot.Window {
	if c.window == (slot.Window{}) {
		return slot.DefaultWindow()
	}
	return c.window
}

// Load parses configuration values from the current process environment.
//
// Defaults are applied by the env tags. Values that parse but do not make
// sense are collected and reported together.
func Load() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix, UseFieldNameByDefault: true})
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreSQLite:
		if strings.TrimSpace(c.SQLiteDSN) == "" {
			missing = append(missing, EnvPrefix+"SQLITE_DSN")
		}
	case StorePostgres:
		if strings.TrimSpace(c.PostgresURL) == "" {
			missing = append(missing, EnvPrefix+"POSTGRES_URL")
		}
	case StoreMemory:
	default:
		invalid = append(invalid, EnvPrefix+"STORE")
	}

	open, openErr := slot.ParseTimeOfDay(c.OpenTime)
	if openErr != nil {
		invalid = append(invalid, EnvPrefix+"OPEN_TIME")
	}
	closing, closeErr := slot.ParseTimeOfDay(c.CloseTime)
	if closeErr != nil {
		invalid = append(invalid, EnvPrefix+"CLOSE_TIME")
	}
	if openErr == nil && closeErr == nil {
		window, err := slot.NewWindow(open, closing)
		if err != nil {
			invalid = append(invalid, EnvPrefix+"CLOSE_TIME")
		} else {
			c.window = window
		}
	}

	if c.MaxOccurrences <= 0 {
		invalid = append(invalid, EnvPrefix+"MAX_OCCURRENCES")
	}
	if c.DetectorParallelism <= 0 {
		invalid = append(invalid, EnvPrefix+"DETECTOR_PARALLELISM")
	}
	if c.ResourceCacheSize <= 0 {
		invalid = append(invalid, EnvPrefix+"RESOURCE_CACHE_SIZE")
	}
	if c.SubmitRate <= 0 {
		invalid = append(invalid, EnvPrefix+"SUBMIT_RATE")
	}
	if c.SubmitBurst <= 0 {
		invalid = append(invalid, EnvPrefix+"SUBMIT_BURST")
	}
	if c.ShutdownTimeout <= 0 {
		invalid = append(invalid, EnvPrefix+"SHUTDOWN_TIMEOUT")
	}
	if _, err := c.SlogLevel(); err != nil {
		invalid = append(invalid, EnvPrefix+"LOG_LEVEL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// SlogLevel converts LogLevel into a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
