package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all trustscore configuration.
type Config struct {
	DataDir string `toml:"data_dir"`
	// Now pins the scoring date (YYYY-MM-DD or RFC 3339). Empty means the
	// wall clock at startup.
	Now string `toml:"now"`

	Log    LogConfig    `toml:"log"`
	Policy PolicyConfig `toml:"policy"`
	Server ServerConfig `toml:"server"`

	// Source is the file the config was read from, empty for defaults.
	Source string `toml:"-"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type PolicyConfig struct {
	EstimateUnvetted   bool     `toml:"estimate_unvetted"`
	AdSurveillanceTags []string `toml:"ad_surveillance_tags"`
}

type ServerConfig struct {
	Addr             string `toml:"addr"`
	Watch            bool   `toml:"watch"`
	ReloadDebounceMS int    `toml:"reload_debounce_ms"`
}

// Environment variables that override the file.
const (
	EnvDataDir  = "TRUSTSCORE_DATA_DIR"
	EnvLogLevel = "TRUSTSCORE_LOG_LEVEL"
	EnvJSONLog  = "TRUSTSCORE_JSON_LOG"
)

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir: "./data",
		Log: LogConfig{
			Level: "info",
		},
		Policy: PolicyConfig{
			EstimateUnvetted: true,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			ReloadDebounceMS: 250,
		},
	}
}

// Load reads config from path, or from the standard locations when path is
// empty, falling back to defaults. An explicit path must exist.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config.Load: parse %s: %w", path, err)
		}
		cfg.Source = path
	} else {
		for _, p := range configPaths() {
			if _, err := os.Stat(p); err == nil {
				if _, err := toml.DecodeFile(p, &cfg); err != nil {
					return cfg, fmt.Errorf("config.Load: parse %s: %w", p, err)
				}
				cfg.Source = p
				break
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("config.Load: %w", err)
	}
	cfg.DataDir = expandHome(cfg.DataDir)
	if _, err := cfg.ScoringTime(time.Time{}); err != nil {
		return cfg, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvJSONLog); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvJSONLog, err)
		}
		cfg.Log.JSON = b
	}
	return nil
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "trustscore", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "trustscore", "config.toml"))
	}

	return paths
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// ErrBadDate is returned for a scoring date in neither accepted layout.
var ErrBadDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

// ParseDate parses a scoring date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, ErrBadDate)
}

// ScoringTime returns the configured scoring date, or fallback when none is set.
func (c Config) ScoringTime(fallback time.Time) (time.Time, error) {
	if c.Now == "" {
		return fallback, nil
	}
	return ParseDate(c.Now)
}

// ReloadDebounce returns the server's reload debounce interval.
func (c Config) ReloadDebounce() time.Duration {
	return time.Duration(c.Server.ReloadDebounceMS) * time.Millisecond
}
