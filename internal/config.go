package internal

import (
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/recall/internal/archive"
	"github.com/starford/recall/internal/index"
	"github.com/starford/recall/internal/schedule"
)

// Config represents the application configuration.
type Config struct {
	LogLevel slog.Level    `yaml:"log_level"`
	Archive  ArchiveConfig `yaml:"archive"`
	Watch    WatchConfig   `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Archive.Validate(); err != nil {
		return err
	}
	return c.Watch.Validate()
}

// ArchiveConfig holds the archival thresholds.
type ArchiveConfig struct {
	ThresholdDays float64 `yaml:"threshold_days"`
	MaxActive     int     `yaml:"max_active"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ThresholdDays, validation.Min(0.0)),
		validation.Field(&c.MaxActive, validation.Required, validation.Min(1)),
	)
}

// Policy converts the thresholds into an archive policy.
func (c *ArchiveConfig) Policy() archive.Policy {
	return archive.Policy{ThresholdDays: c.ThresholdDays, MaxActive: c.MaxActive}
}

// WatchConfig holds settings for the long-running watch mode.
//
// ArchiveSchedule is a cron expression ("0 3 * * *", "@daily"). When empty
// the watcher only keeps the index current and never archives on its own.
// Ignore lists base-name globs whose changes are not acted on.
type WatchConfig struct {
	Debounce        time.Duration `yaml:"debounce"`
	ArchiveSchedule string        `yaml:"archive_schedule"`
	Ignore          []string      `yaml:"ignore"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.ArchiveSchedule, validation.By(func(v any) error {
			expr, _ := v.(string)
			if expr == "" {
				return nil
			}
			return schedule.Validate(expr)
		})),
		validation.Field(&c.Ignore, validation.By(func(v any) error {
			patterns, _ := v.([]string)
			_, err := index.CompileIgnore(patterns)
			return err
		})),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: slog.LevelWarn,
		Archive: ArchiveConfig{
			ThresholdDays: archive.DefaultThresholdDays,
			MaxActive:     archive.DefaultMaxActive,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
			Ignore:   index.DefaultIgnore,
		},
	}
}
