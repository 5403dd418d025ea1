// Package config loads dragboard settings from an optional TOML file,
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dori/dragboard/internal/model"
)

// Config holds all configuration settings
type Config struct {
	Theme string      `toml:"theme"`
	Drag  DragConfig  `toml:"drag"`
	Log   LogConfig   `toml:"log"`
	Board BoardConfig `toml:"board"`
}

// DragConfig holds gesture and reorder settings
type DragConfig struct {
	Hold        Duration `toml:"hold"`         // press duration before a drag starts
	Slop        int      `toml:"slop"`         // cells the pointer may move during the hold
	HitTest     string   `toml:"hit_test"`     // "uniform" or "measured"
	StartPolicy string   `toml:"start_policy"` // "restart" or "ignore"
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
	File  string `toml:"file"`  // empty discards output
}

// BoardConfig describes the board seeded at startup
type BoardConfig struct {
	Columns []ColumnConfig `toml:"columns"`
}

// ColumnConfig is one seeded column
type ColumnConfig struct {
	Title string   `toml:"title"`
	Cards []string `toml:"cards"`
}

// Duration is a time.Duration that can be unmarshaled from TOML strings.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String returns the duration as a string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Themes, hit-test modes and start policies accepted by Validate
var (
	Themes        = []string{"nord", "dracula", "gruvbox", "catppuccin"}
	HitTests      = []string{"uniform", "measured"}
	StartPolicies = []string{"restart", "ignore"}
	LogLevels     = []string{"debug", "info", "warn", "error"}
)

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		Theme: "nord",
		Drag: DragConfig{
			Hold:        Duration(400 * time.Millisecond),
			Slop:        1,
			HitTest:     "uniform",
			StartPolicy: "restart",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".dragboard", "config.toml")
	}
	return filepath.Join(dir, "dragboard", "config.toml")
}

// Load reads the TOML file at path over the defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies environment variable overrides.
func (c *Config) applyEnv() error {
	if v := os.Getenv("DRAGBOARD_THEME"); v != "" {
		c.Theme = v
	}
	if v := os.Getenv("DRAGBOARD_HOLD"); v != "" {
		if err := c.Drag.Hold.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("DRAGBOARD_HOLD: %w", err)
		}
	}
	if v := os.Getenv("DRAGBOARD_HIT_TEST"); v != "" {
		c.Drag.HitTest = v
	}
	if v := os.Getenv("DRAGBOARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DRAGBOARD_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

// Validate checks every enumerated setting
func (c *Config) Validate() error {
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if !oneOf(c.Theme, Themes) {
		return fmt.Errorf("unknown theme %q (want one of %s)", c.Theme, strings.Join(Themes, ", "))
	}
	if c.Drag.Hold.Duration() <= 0 {
		return fmt.Errorf("drag.hold must be positive, got %s", c.Drag.Hold)
	}
	if c.Drag.Slop < 0 {
		return fmt.Errorf("drag.slop must not be negative, got %d", c.Drag.Slop)
	}
	if !oneOf(c.Drag.HitTest, HitTests) {
		return fmt.Errorf("unknown drag.hit_test %q (want one of %s)", c.Drag.HitTest, strings.Join(HitTests, ", "))
	}
	if !oneOf(c.Drag.StartPolicy, StartPolicies) {
		return fmt.Errorf("unknown drag.start_policy %q (want one of %s)", c.Drag.StartPolicy, strings.Join(StartPolicies, ", "))
	}
	if !oneOf(c.Log.Level, LogLevels) {
		return fmt.Errorf("unknown log.level %q (want one of %s)", c.Log.Level, strings.Join(LogLevels, ", "))
	}
	for i, col := range c.Board.Columns {
		if strings.TrimSpace(col.Title) == "" {
			return fmt.Errorf("board.columns[%d] has no title", i)
		}
	}
	return nil
}

// Seed returns the configured board, or the default board when none is
// configured.
func (c *Config) Seed() []model.ColumnSeed {
	if len(c.Board.Columns) == 0 {
		return model.DefaultSeed()
	}
	seeds := make([]model.ColumnSeed, len(c.Board.Columns))
	for i, col := range c.Board.Columns {
		seeds[i] = model.ColumnSeed{Title: col.Title, Cards: col.Cards}
	}
	return seeds
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
