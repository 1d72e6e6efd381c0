// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/talentboard/profiledir/internal/services/clubhistory"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds all server configuration parsed from environment variables
type Config struct {
	Port     int        `env:"PORT" envDefault:"8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Storage
	StorageType     string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL        string `env:"REDIS_URL"`
	DatabaseURL     string `env:"DATABASE_URL"`
	DatabaseMaxConn int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	SkipMigrations  bool   `env:"SKIP_MIGRATIONS" envDefault:"false"`

	// Profiles
	ClubDirectoryPath     string        `env:"CLUB_DIRECTORY_PATH"`
	IncompleteEntryPolicy string        `env:"INCOMPLETE_ENTRY_POLICY" envDefault:"reject"`
	SessionDuration       time.Duration `env:"SESSION_DURATION" envDefault:"24h"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"profiledir.commits"`
}

// Load reads optional .env files and then parses the process environment
func Load(dotenv ...string) (*Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && len(dotenv) > 0 {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageType {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", c.StorageType))
	}
	if _, err := clubhistory.ParsePolicy(c.IncompleteEntryPolicy); err != nil {
		errs = append(errs, fmt.Errorf("INCOMPLETE_ENTRY_POLICY: %w", err))
	}
	if c.SessionDuration <= 0 {
		errs = append(errs, errors.New("SESSION_DURATION must be positive"))
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS required when KAFKA_ENABLED=true"))
	}
	return errors.Join(errs...)
}

// Policy returns the parsed incomplete club history entry policy
func (c *Config) Policy() clubhistory.Policy {
	p, _ := clubhistory.ParsePolicy(c.IncompleteEntryPolicy)
	return p
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
