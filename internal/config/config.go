package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Scraper   ScraperConfig
	OpenAI    OpenAIConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	URL string
}

// ScraperConfig controls the scrape pipeline.
type ScraperConfig struct {
	Timezone         string        // reference timezone for current-day filtering
	PerSourceLimit   int           // max entries examined per feed
	FetchTimeout     time.Duration // per-feed HTTP timeout
	FilterCurrentDay bool          // default for scheduled runs
	RetentionDays    int           // articles older than this are cleaned up
}

// OpenAIConfig holds LLM scoring parameters. An empty APIKey disables the
// LLM path; the scraper then uses the deterministic fallback scorer.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// SchedulerConfig controls the cron-driven scrape cycle.
type SchedulerConfig struct {
	Enabled        bool
	ScrapeInterval time.Duration
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultLogFormat = "json"

	defaultTimezone       = "Asia/Kolkata"
	defaultPerSourceLimit = 10
	defaultFetchTimeout   = 20 * time.Second
	defaultRetentionDays  = 30

	defaultOpenAIModel       = "gpt-4o-mini"
	defaultOpenAITemperature = 0.3
	defaultOpenAIMaxTokens   = 300
	defaultOpenAITimeout     = 30 * time.Second

	defaultScrapeInterval = 12 * time.Hour
)

// Load reads configuration from environment variables, applying defaults when
// values are not provided and failing on values that cannot be parsed.
func Load() (Config, error) {
	// Cloud platforms set PORT, but allow SERVER_PORT override for local dev
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Scraper: ScraperConfig{
			Timezone:         getEnv("SCRAPER_TIMEZONE", defaultTimezone),
			PerSourceLimit:   defaultPerSourceLimit,
			FetchTimeout:     defaultFetchTimeout,
			FilterCurrentDay: true,
			RetentionDays:    defaultRetentionDays,
		},
		OpenAI: OpenAIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			Model:       getEnv("OPENAI_MODEL", defaultOpenAIModel),
			Temperature: defaultOpenAITemperature,
			MaxTokens:   defaultOpenAIMaxTokens,
			Timeout:     defaultOpenAITimeout,
		},
		Scheduler: SchedulerConfig{
			Enabled:        true,
			ScrapeInterval: defaultScrapeInterval,
		},
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if v := os.Getenv("SCRAPER_PER_SOURCE_LIMIT"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_PER_SOURCE_LIMIT: %w", err)
		}
		cfg.Scraper.PerSourceLimit = n
	}

	if v := os.Getenv("SCRAPER_FETCH_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_FETCH_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Scraper.FetchTimeout = d
	}

	if v := os.Getenv("SCRAPER_FILTER_CURRENT_DAY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_FILTER_CURRENT_DAY: %w", err)
		}
		cfg.Scraper.FilterCurrentDay = b
	}

	if v := os.Getenv("SCRAPER_RETENTION_DAYS"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCRAPER_RETENTION_DAYS: %w", err)
		}
		cfg.Scraper.RetentionDays = n
	}

	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OPENAI_TEMPERATURE: %w", err)
		}
		cfg.OpenAI.Temperature = float32(f)
	}

	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OPENAI_TIMEOUT_SECONDS: %w", err)
		}
		cfg.OpenAI.Timeout = d
	}

	if v := os.Getenv("SCHEDULER_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCHEDULER_ENABLED: %w", err)
		}
		cfg.Scheduler.Enabled = b
	}

	if v := os.Getenv("SCHEDULER_SCRAPE_INTERVAL_HOURS"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCHEDULER_SCRAPE_INTERVAL_HOURS: %w", err)
		}
		cfg.Scheduler.ScrapeInterval = time.Duration(n) * time.Hour
	}

	return cfg, nil
}

// LLMAvailable reports whether the LLM scoring path is configured. Decided
// once at startup rather than probed via call failures.
func (c Config) LLMAvailable() bool {
	return c.OpenAI.APIKey != ""
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
