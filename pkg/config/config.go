// Package config loads lattice settings from YAML files and LATTICE_*
// environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	lerrors "github.com/odvcencio/lattice/pkg/errors"
	"github.com/odvcencio/lattice/pkg/logging"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// Config holds every lattice setting.
type Config struct {
	UI      UIConfig      `yaml:"ui"`
	Theme   ThemeConfig   `yaml:"theme"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	Persist PersistConfig `yaml:"persist"`
}

// UIConfig controls the render loop and terminal handling.
type UIConfig struct {
	TickRate      time.Duration `yaml:"tick_rate"`      // Tick message interval; 0 disables ticks
	MaxFPS        int           `yaml:"max_fps"`        // Pass rate limit; 0 is unlimited
	MessageBuffer int           `yaml:"message_buffer"` // Queued messages before Post blocks
	AltScreen     bool          `yaml:"alt_screen"`     // Render on the alternate screen
	InlineHeight  int           `yaml:"inline_height"`  // Rows used when not on the alt screen (0 = full height)
	HideCursor    bool          `yaml:"hide_cursor"`
}

// ThemeConfig selects the palette.
type ThemeConfig struct {
	Name string `yaml:"name"` // dark, light, mono or auto
}

// LoggingConfig sets where structured logs go.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // Empty discards logs
}

// MetricsConfig controls the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// TracingConfig controls pass span export.
type TracingConfig struct {
	File string `yaml:"file"` // Empty disables export
}

// PersistConfig locates stored view state.
type PersistConfig struct {
	Dir string `yaml:"dir"`
}

// ThemeAuto picks dark or light from the terminal background.
const ThemeAuto = "auto"

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			TickRate:      0,
			MaxFPS:        60,
			MessageBuffer: 64,
			AltScreen:     true,
			HideCursor:    true,
		},
		Theme: ThemeConfig{
			Name: ThemeAuto,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9464",
		},
		Persist: PersistConfig{
			Dir: filepath.Join("~", ".lattice", "state"),
		},
	}
}

// Load merges ~/.lattice/config.yaml, then ./.lattice/config.yaml, over the
// defaults, applies environment overrides and validates the result.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	if home != "" {
		userConfigPath := filepath.Join(home, ".lattice", "config.yaml")
		if err := loadAndMerge(cfg, userConfigPath); err != nil && !os.IsNotExist(err) {
			return nil, wrapLoadError(err, userConfigPath)
		}
	}

	projectConfigPath := filepath.Join(".", ".lattice", "config.yaml")
	if err := loadAndMerge(cfg, projectConfigPath); err != nil && !os.IsNotExist(err) {
		return nil, wrapLoadError(err, projectConfigPath)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadAndMerge(cfg, path); err != nil {
		return nil, wrapLoadError(err, path)
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func wrapLoadError(err error, path string) error {
	if lerrors.GetCode(err) == lerrors.ErrCodeConfigParse {
		return err
	}
	return lerrors.Wrap(err, lerrors.ErrCodeConfigLoad, "loading config").WithContext("path", path)
}

// ApplyEnvOverridesForTest exposes env override logic for tests without file I/O.
func ApplyEnvOverridesForTest(cfg *Config) error {
	return applyEnvOverrides(cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LATTICE_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	if v := os.Getenv("LATTICE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LATTICE_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("LATTICE_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
	if v := os.Getenv("LATTICE_TRACE_FILE"); v != "" {
		cfg.Tracing.File = v
	}
	if v := os.Getenv("LATTICE_PERSIST_DIR"); v != "" {
		cfg.Persist.Dir = v
	}

	if val, ok := envBool("LATTICE_ALT_SCREEN"); ok {
		cfg.UI.AltScreen = val
	}
	if val, ok := envBool("LATTICE_HIDE_CURSOR"); ok {
		cfg.UI.HideCursor = val
	}
	if val, ok := envBool("LATTICE_METRICS_ENABLED"); ok {
		cfg.Metrics.Enabled = val
	}

	if v := os.Getenv("LATTICE_MAX_FPS"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return envError("LATTICE_MAX_FPS", v, err)
		}
		cfg.UI.MaxFPS = n
	}
	if v := os.Getenv("LATTICE_INLINE_HEIGHT"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return envError("LATTICE_INLINE_HEIGHT", v, err)
		}
		cfg.UI.InlineHeight = n
	}
	if v := os.Getenv("LATTICE_TICK_RATE"); v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return envError("LATTICE_TICK_RATE", v, err)
		}
		cfg.UI.TickRate = d
	}
	return nil
}

func envError(key, value string, err error) error {
	return lerrors.Wrap(err, lerrors.ErrCodeConfigInvalid, "invalid environment override").
		WithContext("key", key).
		WithContext("value", value)
}

func envBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.UI.TickRate < 0 {
		return invalid("ui.tick_rate", c.UI.TickRate, "must not be negative")
	}
	if c.UI.MaxFPS < 0 {
		return invalid("ui.max_fps", c.UI.MaxFPS, "must not be negative")
	}
	if c.UI.MessageBuffer < 1 {
		return invalid("ui.message_buffer", c.UI.MessageBuffer, "must be at least 1")
	}
	if c.UI.InlineHeight < 0 {
		return invalid("ui.inline_height", c.UI.InlineHeight, "must not be negative")
	}

	name := strings.ToLower(strings.TrimSpace(c.Theme.Name))
	if name != ThemeAuto {
		if _, err := theme.ByName(name); err != nil {
			return invalid("theme.name", c.Theme.Name, fmt.Sprintf("valid: %s, %s", ThemeAuto, strings.Join(theme.Names(), ", ")))
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level", c.Logging.Level, "valid: debug, info, warn, error")
	}

	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(strings.TrimSpace(c.Metrics.Listen)); err != nil {
			return invalid("metrics.listen", c.Metrics.Listen, "must be host:port")
		}
	}
	return nil
}

func invalid(field string, value any, reason string) error {
	return lerrors.Newf(lerrors.ErrCodeConfigInvalid, "invalid %s: %v (%s)", field, value, reason).
		WithContext("field", field)
}

// Interval returns the pass interval implied by MaxFPS, or 0 when
// unlimited.
func (u UIConfig) Interval() time.Duration {
	if u.MaxFPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(u.MaxFPS)
}

// ResolvedTheme returns the configured theme. For "auto", darkBackground
// picks between dark and light.
func (c *Config) ResolvedTheme(darkBackground bool) *theme.Theme {
	name := strings.ToLower(strings.TrimSpace(c.Theme.Name))
	if name == ThemeAuto {
		return theme.ForBackground(darkBackground)
	}
	th, err := theme.ByName(name)
	if err != nil {
		return theme.DefaultTheme()
	}
	return th
}

// PersistDir returns the persist directory with ~ expanded.
func (c *Config) PersistDir() string {
	return ExpandHomeDir(c.Persist.Dir)
}

// ExpandHomeDir replaces a leading ~ with the user's home directory.
func ExpandHomeDir(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
