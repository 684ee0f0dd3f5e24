package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DefaultPort     = 3318
	DefaultDuration = time.Hour
	DefaultSQLite   = "quickly-elect.db"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	VoteSecret   string
	AdminKeySalt string
	WebhookURL   string

	DefaultDuration  time.Duration
	DefaultThreshold float64
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("quickly-elect", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.WebhookURL, "webhook", "", "URL that receives final results")

	// Election defaults
	fs.DurationVar(&cfg.DefaultDuration, "duration", 0, "Default election duration")
	fs.Float64Var(&cfg.DefaultThreshold, "threshold", 0, "Default run-off threshold in (0, 1]")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.VoteSecret, "vote-secret", "", "Voter anonymization secret (prefer env)")
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLite
	}

	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("PUBLISH_WEBHOOK_URL")
	}

	if cfg.DefaultDuration == 0 {
		if raw := os.Getenv("DEFAULT_DURATION"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return Config{}, fmt.Errorf("invalid DEFAULT_DURATION env variable: %w", err)
			}
			cfg.DefaultDuration = d
		} else {
			cfg.DefaultDuration = DefaultDuration
		}
	}
	if cfg.DefaultDuration <= 0 {
		return Config{}, errors.New("default duration must be positive")
	}

	if cfg.DefaultThreshold == 0 {
		if raw := os.Getenv("DEFAULT_THRESHOLD"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Config{}, fmt.Errorf("invalid DEFAULT_THRESHOLD env variable: %w", err)
			}
			cfg.DefaultThreshold = v
		} else {
			cfg.DefaultThreshold = 0.5
		}
	}
	if cfg.DefaultThreshold <= 0 || cfg.DefaultThreshold > 1 {
		return Config{}, fmt.Errorf("default threshold must be in (0, 1], got %v", cfg.DefaultThreshold)
	}

	// Secrets - MUST be provided
	if cfg.VoteSecret == "" {
		cfg.VoteSecret = os.Getenv("VOTE_SECRET")
	}
	if cfg.VoteSecret == "" {
		return Config{}, errors.New("VOTE_SECRET required")
	}

	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	return cfg, nil
}
