// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors are wrapped against this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RankingsCSV, AbilitiesCSV and RecordsCSV locate the source tables.
	RankingsCSV  string `koanf:"rankings_csv"`
	AbilitiesCSV string `koanf:"abilities_csv"`
	RecordsCSV   string `koanf:"records_csv"`

	// ReloadSeconds re-reads the tables periodically; 0 disables reloading.
	ReloadSeconds int `koanf:"reload_seconds"`

	// RecordYears is the fixed year set shown by the record chart.
	RecordYears []string `koanf:"record_years"`

	// RankFloor is the minimum bottom value of the rank axis.
	RankFloor int `koanf:"rank_floor"`

	// AbilityMax is the value drawn on the outer radar ring.
	AbilityMax float64 `koanf:"ability_max"`

	// AbilityLevels is the number of concentric radar grid rings.
	AbilityLevels int `koanf:"ability_levels"`

	// Animation durations in milliseconds.
	TrendPathMS  int `koanf:"trend_path_ms"`
	TrendPointMS int `koanf:"trend_point_ms"`
	RadarMS      int `koanf:"radar_ms"`
	BarMS        int `koanf:"bar_ms"`

	// AspectRatio derives container height from width.
	AspectRatio float64 `koanf:"aspect_ratio"`

	// DefaultWidth is used when a request does not name a width; MaxWidth caps it.
	DefaultWidth int `koanf:"default_width"`
	MaxWidth     int `koanf:"max_width"`

	// MaxPanels caps the number of open player panels.
	MaxPanels int `koanf:"max_panels"`

	// DefaultPlayers seeds the pinned panels.
	DefaultPlayers []string `koanf:"default_players"`
}

// New creates a Config populated with defaults. The context is reserved
// for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		RankingsCSV:    "data/players_rankings.csv",
		AbilitiesCSV:   "data/players_ability.csv",
		RecordsCSV:     "data/players_wins.csv",
		RecordYears:    []string{"2017", "2018", "2019", "2020"},
		RankFloor:      20,
		AbilityMax:     5,
		AbilityLevels:  5,
		TrendPathMS:    2000,
		TrendPointMS:   800,
		RadarMS:        1000,
		BarMS:          800,
		AspectRatio:    0.6,
		DefaultWidth:   800,
		MaxWidth:       4000,
		MaxPanels:      5,
		DefaultPlayers: []string{"FAN Zhendong", "XU Xin"},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RankFloor < 1:
		return fmt.Errorf("%w: rank_floor must be at least 1", ErrInvalidConfig)
	case c.AbilityMax <= 0:
		return fmt.Errorf("%w: ability_max must be positive", ErrInvalidConfig)
	case c.AbilityLevels < 1:
		return fmt.Errorf("%w: ability_levels must be at least 1", ErrInvalidConfig)
	case c.TrendPathMS <= 0 || c.TrendPointMS <= 0 || c.RadarMS <= 0 || c.BarMS <= 0:
		return fmt.Errorf("%w: animation durations must be positive", ErrInvalidConfig)
	case c.TrendPointMS > c.TrendPathMS:
		return fmt.Errorf("%w: trend_point_ms must not exceed trend_path_ms", ErrInvalidConfig)
	case c.AspectRatio <= 0:
		return fmt.Errorf("%w: aspect_ratio must be positive", ErrInvalidConfig)
	case c.DefaultWidth <= 0 || c.MaxWidth < c.DefaultWidth:
		return fmt.Errorf("%w: default_width must be positive and not exceed max_width", ErrInvalidConfig)
	case c.MaxPanels < len(c.DefaultPlayers):
		return fmt.Errorf("%w: max_panels must cover default_players", ErrInvalidConfig)
	case c.ReloadSeconds < 0:
		return fmt.Errorf("%w: reload_seconds must not be negative", ErrInvalidConfig)
	case len(c.RecordYears) == 0:
		return fmt.Errorf("%w: record_years must not be empty", ErrInvalidConfig)
	}
	return nil
}

// Duration converts a millisecond setting to a time.Duration.
func Duration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
