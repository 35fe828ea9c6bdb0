/*
Package config manages TOML config for the corfu completion engine.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/anticomputer/corfu/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Popup   PopupConfig   `toml:"popup"`
	Session SessionConfig `toml:"session"`
	Dict    DictConfig    `toml:"dict"`
}

// PopupConfig has popup geometry options.
type PopupConfig struct {
	Rows     int `toml:"rows"`
	Margin   int `toml:"margin"`
	MinWidth int `toml:"min_width"`
	MaxWidth int `toml:"max_width"`
}

// SessionConfig holds session behavior options.
type SessionConfig struct {
	Cycle            bool     `toml:"cycle"`
	PreselectFirst   bool     `toml:"preselect_first"`
	Auto             bool     `toml:"auto"`
	AutoPrefix       int      `toml:"auto_prefix"`
	AutoDelayMs      int      `toml:"auto_delay_ms"`
	QuitNoMatch      string   `toml:"quit_no_match"`
	ContinueCommands []string `toml:"continue_commands"`
}

// DictConfig holds builtin dictionary provider options.
type DictConfig struct {
	WordList         string `toml:"word_list"`
	MaxWords         int    `toml:"max_words"`
	MinFreqThreshold int    `toml:"min_frequency_threshold"`
	MinFreqShort     int    `toml:"min_frequency_short_prefix"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/corfu
// 2. Current executable dir
// 3. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execPath, execErr := os.Executable()
		if execErr != nil {
			return "", execErr
		}
		return filepath.Dir(execPath), nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "corfu")
	if err := utils.EnsureDir(primaryPath); err == nil {
		return primaryPath, nil
	}
	execPath, err := os.Executable()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return filepath.Dir(execPath), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: ~/.config/corfu/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Popup: PopupConfig{
			Rows:     10,
			Margin:   2,
			MinWidth: 15,
			MaxWidth: 100,
		},
		Session: SessionConfig{
			Cycle:          false,
			PreselectFirst: true,
			Auto:           false,
			AutoPrefix:     3,
			AutoDelayMs:    200,
			QuitNoMatch:    "1s",
		},
		Dict: DictConfig{
			WordList:         "",
			MaxWords:         50000,
			MinFreqThreshold: 20,
			MinFreqShort:     24,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := utils.SaveTOMLFile(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.Normalize()
	return config, nil
}

// tryPartialParse attempts to salvage valid sections from a broken TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if popupSection, ok := utils.ExtractSection(tempConfig, "popup"); ok {
		extractPopupConfig(popupSection, &config.Popup)
	}
	if sessionSection, ok := utils.ExtractSection(tempConfig, "session"); ok {
		extractSessionConfig(sessionSection, &config.Session)
	}
	if dictSection, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(dictSection, &config.Dict)
	}
	config.Normalize()
	return config, nil
}

// extractPopupConfig extracts popup configuration from a map
func extractPopupConfig(data map[string]any, popup *PopupConfig) {
	if val, ok := utils.ExtractInt64(data, "rows"); ok {
		popup.Rows = val
	}
	if val, ok := utils.ExtractInt64(data, "margin"); ok {
		popup.Margin = val
	}
	if val, ok := utils.ExtractInt64(data, "min_width"); ok {
		popup.MinWidth = val
	}
	if val, ok := utils.ExtractInt64(data, "max_width"); ok {
		popup.MaxWidth = val
	}
}

// extractSessionConfig extracts session config from a map
func extractSessionConfig(data map[string]any, session *SessionConfig) {
	if val, ok := utils.ExtractBool(data, "cycle"); ok {
		session.Cycle = val
	}
	if val, ok := utils.ExtractBool(data, "preselect_first"); ok {
		session.PreselectFirst = val
	}
	if val, ok := utils.ExtractBool(data, "auto"); ok {
		session.Auto = val
	}
	if val, ok := utils.ExtractInt64(data, "auto_prefix"); ok {
		session.AutoPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "auto_delay_ms"); ok {
		session.AutoDelayMs = val
	}
	if val, ok := utils.ExtractString(data, "quit_no_match"); ok {
		session.QuitNoMatch = val
	}
	if val, ok := utils.ExtractStringSlice(data, "continue_commands"); ok {
		session.ContinueCommands = val
	}
}

// extractDictConfig extracts dictionary configuration from a map
func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractString(data, "word_list"); ok {
		dict.WordList = val
	}
	if val, ok := utils.ExtractInt64(data, "max_words"); ok {
		dict.MaxWords = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency_threshold"); ok {
		dict.MinFreqThreshold = val
	}
	if val, ok := utils.ExtractInt64(data, "min_frequency_short_prefix"); ok {
		dict.MinFreqShort = val
	}
}

// Normalize clamps out-of-range values instead of rejecting them.
// A bad config never prevents startup.
func (c *Config) Normalize() {
	if c.Popup.Rows < 1 {
		c.Popup.Rows = 1
	}
	if c.Popup.Margin < 0 {
		c.Popup.Margin = 0
	}
	if c.Popup.Margin > c.Popup.Rows/2 {
		c.Popup.Margin = c.Popup.Rows / 2
	}
	if c.Popup.MinWidth < 1 {
		c.Popup.MinWidth = 1
	}
	if c.Popup.MaxWidth < c.Popup.MinWidth {
		c.Popup.MaxWidth = c.Popup.MinWidth
	}
	if c.Session.AutoPrefix < 1 {
		c.Session.AutoPrefix = 1
	}
	if c.Session.AutoDelayMs < 0 {
		c.Session.AutoDelayMs = 0
	}
}

// NoMatchPolicy decodes the quit_no_match option: "always" quits as
// soon as a refresh yields nothing, "never" keeps the session alive
// with a "No match" indicator, and a duration string keeps it alive
// only within that window after the session auto-started.
func (c *Config) NoMatchPolicy() (quit bool, linger time.Duration) {
	switch c.Session.QuitNoMatch {
	case "", "always":
		return true, 0
	case "never":
		return false, 0
	}
	d, err := time.ParseDuration(c.Session.QuitNoMatch)
	if err != nil {
		log.Warnf("Invalid quit_no_match duration %q: %v. Treating as 'always'.", c.Session.QuitNoMatch, err)
		return true, 0
	}
	return true, d
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}
