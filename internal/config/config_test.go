package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvJSONLog, "")
	return xdg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Log.JSON {
		t.Error("Log.JSON should default to false")
	}
	if !cfg.Policy.EstimateUnvetted {
		t.Error("Policy.EstimateUnvetted should default to true")
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.ReloadDebounce() != 250*time.Millisecond {
		t.Errorf("ReloadDebounce = %v", cfg.ReloadDebounce())
	}
}

func TestLoad_NoConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
}

func TestLoad_XDGConfig(t *testing.T) {
	xdg := isolate(t)

	configDir := filepath.Join(xdg, "trustscore")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `data_dir = "~/catalog"
now = "2025-06-01"

[log]
level = "debug"
json = true

[policy]
estimate_unvetted = false
ad_surveillance_tags = ["advertising", "tracking"]

[server]
addr = "127.0.0.1:9000"
watch = true
reload_debounce_ms = 50
`
	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source != path {
		t.Errorf("Source = %q, want %q", cfg.Source, path)
	}
	if strings.HasPrefix(cfg.DataDir, "~/") || !strings.HasSuffix(cfg.DataDir, "catalog") {
		t.Errorf("DataDir not expanded: %q", cfg.DataDir)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Policy.EstimateUnvetted {
		t.Error("Policy.EstimateUnvetted should be false")
	}
	if len(cfg.Policy.AdSurveillanceTags) != 2 {
		t.Errorf("AdSurveillanceTags = %v", cfg.Policy.AdSurveillanceTags)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || !cfg.Server.Watch {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.ReloadDebounce() != 50*time.Millisecond {
		t.Errorf("ReloadDebounce = %v", cfg.ReloadDebounce())
	}

	now, err := cfg.ScoringTime(time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if !now.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ScoringTime = %v", now)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("data_dir = [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_BadNow(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(path, []byte(`now = "yesterday"`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, ErrBadDate) {
		t.Errorf("err = %v, want ErrBadDate", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDataDir, "/srv/catalog")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvJSONLog, "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/srv/catalog" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Log.Level != "warn" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_BadEnvBool(t *testing.T) {
	isolate(t)
	t.Setenv(EnvJSONLog, "sometimes")
	if _, err := Load(""); err == nil {
		t.Error("expected error for bad boolean")
	}
}

func TestScoringTimeFallback(t *testing.T) {
	fallback := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := DefaultConfig().ScoringTime(fallback)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(fallback) {
		t.Errorf("ScoringTime = %v, want %v", got, fallback)
	}
}

func TestParseDateRFC3339(t *testing.T) {
	got, err := ParseDate("2025-06-01T12:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if got.Hour() != 12 {
		t.Errorf("ParseDate = %v", got)
	}
}
