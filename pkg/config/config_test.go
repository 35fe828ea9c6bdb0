package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[popup]
rows = 7
margin = 1

[session]
cycle = true
auto = true
auto_prefix = 2

[dict]
max_words = 1000
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Popup.Rows != 7 || cfg.Popup.Margin != 1 {
		t.Errorf("popup = %+v", cfg.Popup)
	}
	if !cfg.Session.Cycle || !cfg.Session.Auto || cfg.Session.AutoPrefix != 2 {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Dict.MaxWords != 1000 {
		t.Errorf("dict = %+v", cfg.Dict)
	}
	// unspecified keys keep defaults
	if cfg.Popup.MinWidth != 15 {
		t.Errorf("MinWidth = %d, want default 15", cfg.Popup.MinWidth)
	}
}

// a file with one broken section still yields the valid sections,
// defaults fill the rest
func TestLoadConfigPartialRecovery(t *testing.T) {
	path := writeConfig(t, `
[popup]
rows = 5
margin = "not a number"

[session]
cycle = true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("partial parse should not fail: %v", err)
	}
	if cfg.Popup.Rows != 5 {
		t.Errorf("Rows = %d, want 5", cfg.Popup.Rows)
	}
	if cfg.Popup.Margin != 2 {
		t.Errorf("Margin = %d, want default 2", cfg.Popup.Margin)
	}
	if !cfg.Session.Cycle {
		t.Error("valid session section lost")
	}
}

func TestLoadConfigGarbage(t *testing.T) {
	path := writeConfig(t, "%% not toml at all {{")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("garbage config should fall back to defaults: %v", err)
	}
	if cfg.Popup.Rows != DefaultConfig().Popup.Rows {
		t.Errorf("Rows = %d", cfg.Popup.Rows)
	}
}

func TestInitConfigCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Popup.Rows != 10 {
		t.Errorf("Rows = %d", cfg.Popup.Rows)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		mutate      func(*Config)
		check       func(*Config) bool
		description string
	}{
		{
			func(c *Config) { c.Popup.Rows = 0 },
			func(c *Config) bool { return c.Popup.Rows == 1 },
			"Rows floor at one",
		},
		{
			func(c *Config) { c.Popup.Rows = 10; c.Popup.Margin = 9 },
			func(c *Config) bool { return c.Popup.Margin == 5 },
			"Margin capped at half the rows",
		},
		{
			func(c *Config) { c.Popup.Margin = -3 },
			func(c *Config) bool { return c.Popup.Margin == 0 },
			"Negative margin floors at zero",
		},
		{
			func(c *Config) { c.Popup.MinWidth = 50; c.Popup.MaxWidth = 10 },
			func(c *Config) bool { return c.Popup.MaxWidth == 50 },
			"Max width raised to min width",
		},
		{
			func(c *Config) { c.Session.AutoPrefix = 0 },
			func(c *Config) bool { return c.Session.AutoPrefix == 1 },
			"Auto prefix floor at one",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			cfg.Normalize()
			if !tc.check(cfg) {
				t.Errorf("normalized config: %+v", cfg.Popup)
			}
		})
	}
}

func TestNoMatchPolicy(t *testing.T) {
	testCases := []struct {
		value          string
		expectedQuit   bool
		expectedLinger time.Duration
		description    string
	}{
		{"always", true, 0, "Always quits"},
		{"", true, 0, "Empty means always"},
		{"never", false, 0, "Never quits"},
		{"1s", true, time.Second, "Duration window"},
		{"250ms", true, 250 * time.Millisecond, "Millisecond window"},
		{"soon", true, 0, "Unparseable falls back to always"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Session.QuitNoMatch = tc.value
			quit, linger := cfg.NoMatchPolicy()
			if quit != tc.expectedQuit || linger != tc.expectedLinger {
				t.Errorf("NoMatchPolicy() = %v, %v; want %v, %v",
					quit, linger, tc.expectedQuit, tc.expectedLinger)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Popup.Rows = 12
	cfg.Session.QuitNoMatch = "never"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Popup.Rows != 12 || loaded.Session.QuitNoMatch != "never" {
		t.Errorf("reloaded config = %+v", loaded)
	}
}
