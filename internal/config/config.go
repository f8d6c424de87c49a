// Package config loads the deck configuration file. Everything has a
// sensible default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"agentrpg/internal/storage"
)

// Config is the on-disk configuration, ~/.agentrpg.yaml by default.
type Config struct {
	DBPath string `yaml:"db_path"`

	// SweepIntervalSeconds controls the manager's garbage collection of
	// old events and dismissed notifications.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`

	// PollIntervalSeconds is the dashboard's reconciliation cadence.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`

	// Streak multipliers, applied at 3/5/10 recent positive-XP entries.
	// The reward curve treats these as policy, not law.
	Streak StreakConfig `yaml:"streak"`
}

type StreakConfig struct {
	Short  float64 `yaml:"short"`
	Medium float64 `yaml:"medium"`
	Long   float64 `yaml:"long"`
}

// DefaultPath returns the standard config location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".agentrpg.yaml"), nil
}

// Default returns the stock configuration.
func Default() (Config, error) {
	dbPath, err := storage.DefaultDBPath()
	if err != nil {
		return Config{}, err
	}
	return Config{
		DBPath:               dbPath,
		SweepIntervalSeconds: 60,
		PollIntervalSeconds:  1,
		Streak:               StreakConfig{Short: 1.05, Medium: 1.15, Long: 1.30},
	}, nil
}

// Load reads the config at path, filling gaps with defaults. An empty
// path means the default location; a missing file yields pure defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return Config{}, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.DBPath != "" {
		cfg.DBPath = file.DBPath
	}
	if file.SweepIntervalSeconds > 0 {
		cfg.SweepIntervalSeconds = file.SweepIntervalSeconds
	}
	if file.PollIntervalSeconds > 0 {
		cfg.PollIntervalSeconds = file.PollIntervalSeconds
	}
	if file.Streak.Short > 0 {
		cfg.Streak.Short = file.Streak.Short
	}
	if file.Streak.Medium > 0 {
		cfg.Streak.Medium = file.Streak.Medium
	}
	if file.Streak.Long > 0 {
		cfg.Streak.Long = file.Streak.Long
	}

	return cfg, nil
}

// SweepInterval returns the sweep cadence as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// PollInterval returns the dashboard poll cadence as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
