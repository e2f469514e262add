package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the agent configuration, loaded from YAML and overridden by environment variables
type Config struct {
	Env         string          `yaml:"env" env:"AGENT_ENV" env-default:"local"`
	StoragePath string          `yaml:"storage_path" env:"AGENT_STORAGE_PATH" env-default:"activity.db"`
	Log         LogConfig       `yaml:"log"`
	Watch       WatchConfig     `yaml:"watch"`
	Tracking    TrackingConfig  `yaml:"tracking"`
	Collector   CollectorConfig `yaml:"collector"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"AGENT_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"AGENT_LOG_FORMAT" env-default:"console"`
}

// WatchConfig controls which files are watched and how change notifications are filtered.
// Empty Extensions or IgnorePatterns fall back to the built-in sets.
type WatchConfig struct {
	Paths          []string `yaml:"paths" env:"AGENT_WATCH_PATHS" env-separator:"," env-default:"."`
	DebounceMS     int      `yaml:"debounce_ms" env:"AGENT_DEBOUNCE_MS" env-default:"100"`
	Extensions     []string `yaml:"extensions" env:"AGENT_WATCH_EXTENSIONS" env-separator:","`
	IgnorePatterns []string `yaml:"ignore_patterns" env:"AGENT_WATCH_IGNORE" env-separator:","`
}

// TrackingConfig durations are in seconds
type TrackingConfig struct {
	IdleThreshold     int `yaml:"idle_threshold" env:"AGENT_IDLE_THRESHOLD" env-default:"20"`
	IdleCheckInterval int `yaml:"idle_check_interval" env:"AGENT_IDLE_CHECK_INTERVAL" env-default:"1"`
	FileTimeout       int `yaml:"file_timeout" env:"AGENT_FILE_TIMEOUT" env-default:"300"`
	SweepInterval     int `yaml:"sweep_interval" env:"AGENT_SWEEP_INTERVAL" env-default:"30"`
	InputBuffer       int `yaml:"input_buffer" env:"AGENT_INPUT_BUFFER" env-default:"256"`
	EventBuffer       int `yaml:"event_buffer" env:"AGENT_EVENT_BUFFER" env-default:"100"`
}

type CollectorConfig struct {
	BatchSize     int `yaml:"batch_size" env:"AGENT_BATCH_SIZE" env-default:"20"`
	FlushInterval int `yaml:"flush_interval" env:"AGENT_FLUSH_INTERVAL" env-default:"30"`
}

// LoadConfig reads the YAML file at path. A missing file is not an error:
// defaults and environment variables are used instead.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	_, statErr := os.Stat(path)
	switch {
	case path != "" && statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	case path == "" || errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the tracking engine cannot run with
func (c *Config) Validate() error {
	switch {
	case c.StoragePath == "":
		return errors.New("storage_path must not be empty")
	case len(c.Watch.Paths) == 0:
		return errors.New("watch.paths must name at least one directory")
	case c.Watch.DebounceMS < 0:
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMS)
	case c.Tracking.IdleThreshold <= 0:
		return fmt.Errorf("tracking.idle_threshold must be positive, got %d", c.Tracking.IdleThreshold)
	case c.Tracking.IdleCheckInterval <= 0:
		return fmt.Errorf("tracking.idle_check_interval must be positive, got %d", c.Tracking.IdleCheckInterval)
	case c.Tracking.FileTimeout <= 0:
		return fmt.Errorf("tracking.file_timeout must be positive, got %d", c.Tracking.FileTimeout)
	case c.Tracking.SweepInterval <= 0:
		return fmt.Errorf("tracking.sweep_interval must be positive, got %d", c.Tracking.SweepInterval)
	case c.Tracking.InputBuffer <= 0 || c.Tracking.EventBuffer <= 0:
		return errors.New("tracking.input_buffer and tracking.event_buffer must be positive")
	case c.Collector.BatchSize <= 0 || c.Collector.FlushInterval <= 0:
		return errors.New("collector.batch_size and collector.flush_interval must be positive")
	}
	return nil
}
