// Package config loads and saves the lifeshock TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all lifeshock configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Appearance AppearanceConfig `toml:"appearance"`
	Serve      ServeConfig      `toml:"serve"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds gameplay preferences.
type GeneralConfig struct {
	ScenarioFile  string `toml:"scenario_file,omitempty"`
	RecordHistory bool   `toml:"record_history"`
	Player        string `toml:"player,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServeConfig holds HTTP embedding surface settings.
type ServeConfig struct {
	Addr         string `toml:"addr"`
	EventsBuffer int    `toml:"events_buffer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// Environment overrides, applied by ApplyEnv.
const (
	EnvScenario = "LIFESHOCK_SCENARIO"
	EnvLogLevel = "LIFESHOCK_LOG_LEVEL"
	EnvAddr     = "LIFESHOCK_ADDR"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			RecordHistory: true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Serve: ServeConfig{
			Addr:         "127.0.0.1:8788",
			EventsBuffer: 200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lifeshock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lifeshock")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Path is an alias for ConfigPath.
func Path() string {
	return ConfigPath()
}

// DataDir returns the XDG-compliant directory for history and logs.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "lifeshock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "lifeshock")
}

// HistoryPath returns the run history database path.
func HistoryPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// DefaultLogPath is where the TUI logs, since stdout belongs to the screen.
func DefaultLogPath() string {
	return filepath.Join(DataDir(), "lifeshock.log")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv(EnvScenario); v != "" {
		cfg.General.ScenarioFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Serve.Addr = v
	}
	return cfg
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
