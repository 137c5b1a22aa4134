package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application configuration from environment variables.
type Config struct {
	Port        int           `validate:"gt=0,lte=65535"`
	DBPath      string        // observation archive; empty disables archiving
	WebWatchURL string        `validate:"required,url"`
	HTTPTimeout time.Duration `validate:"gt=0"`
	LogLevel    string        `validate:"oneof=debug info warn error"`

	PollInterval time.Duration `validate:"gt=0"` // how often the poller refreshes every route
	PollWorkers  int           `validate:"gt=0"` // concurrent route requests per poll
	SSEInterval  time.Duration `validate:"gt=0"`
	Retention    time.Duration `validate:"gte=0"` // archive age limit; zero keeps everything

	GeocodeURL string `validate:"required,url"` // Nominatim instance for address lookups
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:         envInt("MADMETRO_PORT", 8080),
		DBPath:       envStr("MADMETRO_DB_PATH", ""),
		WebWatchURL:  envStr("MADMETRO_WEBWATCH_URL", "http://webwatch.cityofmadison.com/webwatch"),
		HTTPTimeout:  envDuration("MADMETRO_HTTP_TIMEOUT", 10*time.Second),
		LogLevel:     strings.ToLower(envStr("MADMETRO_LOG_LEVEL", "info")),
		PollInterval: envDuration("MADMETRO_POLL_INTERVAL", 30*time.Second),
		PollWorkers:  envInt("MADMETRO_POLL_WORKERS", 4),
		SSEInterval:  envDuration("MADMETRO_SSE_INTERVAL", 30*time.Second),
		Retention:    envDuration("MADMETRO_RETENTION", 7*24*time.Hour),
		GeocodeURL:   envStr("MADMETRO_GEOCODE_URL", "https://nominatim.openstreetmap.org"),
	}
}

// LoadEnvFile copies variables from a dotenv file into the environment.
// Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare numbers are seconds.
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
