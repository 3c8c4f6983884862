// Package config handles loading prepline.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the prepline.toml configuration file.
type Config struct {
	Data   Data   `toml:"data"`
	Day    Day    `toml:"day"`
	Labor  Labor  `toml:"labor"`
	Notify Notify `toml:"notify"`
}

// Data contains storage configuration.
type Data struct {
	// Dir is where task and session files live.
	// Defaults to ~/.local/share/prepline.
	Dir string `toml:"dir"`

	// EventsDir is where lifecycle event logs are appended.
	// Defaults to <dir>/events.
	EventsDir string `toml:"events-dir"`
}

// Day contains day-file configuration.
type Day struct {
	// File is the default path to the day input file.
	File string `toml:"file"`
}

// Labor contains labor costing configuration.
type Labor struct {
	// DefaultHourlyRate is used for workers without a wage in the day file.
	DefaultHourlyRate float64 `toml:"default-hourly-rate"`
}

// Notify contains notification configuration.
type Notify struct {
	// WebhookURL receives lifecycle events as JSON POSTs when set.
	WebhookURL string `toml:"webhook-url"`
}

// Load loads configuration from the working directory and the global config
// file. Project values override global ones per key.
// Returns an empty config if no config files exist.
func Load(projectPath string) (*Config, error) {
	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(projectPath, "prepline.toml"))
	if err != nil {
		return nil, err
	}

	return mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta), nil
}

// DataDir returns the configured data directory, falling back to the
// default under the user's home.
func (c *Config) DataDir() (string, error) {
	if c.Data.Dir != "" {
		return c.Data.Dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "prepline"), nil
}

// EventsDir returns the configured events directory, falling back to
// "events" under the data directory.
func (c *Config) EventsDir() (string, error) {
	if c.Data.EventsDir != "" {
		return c.Data.EventsDir, nil
	}
	dataDir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "events"), nil
}

func globalConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "prepline", "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Data.Dir = mergeString(projectMeta.IsDefined("data", "dir"), projectCfg.Data.Dir, globalCfg.Data.Dir)
	merged.Data.EventsDir = mergeString(projectMeta.IsDefined("data", "events-dir"), projectCfg.Data.EventsDir, globalCfg.Data.EventsDir)
	merged.Day.File = mergeString(projectMeta.IsDefined("day", "file"), projectCfg.Day.File, globalCfg.Day.File)
	merged.Notify.WebhookURL = mergeString(projectMeta.IsDefined("notify", "webhook-url"), projectCfg.Notify.WebhookURL, globalCfg.Notify.WebhookURL)
	if projectMeta.IsDefined("labor", "default-hourly-rate") {
		merged.Labor.DefaultHourlyRate = projectCfg.Labor.DefaultHourlyRate
	} else {
		merged.Labor.DefaultHourlyRate = globalCfg.Labor.DefaultHourlyRate
	}

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}
