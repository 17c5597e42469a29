package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultConfigFile is looked up in the working directory when no
// -config flag is given.
const DefaultConfigFile = "basicc.json"

// Config holds settings shared by every subcommand. Flags override the
// values loaded from file.
type Config struct {
	OutDir     string    `json:"out_dir,omitempty"`
	Workers    int       `json:"workers,omitempty"`
	Color      ColorMode `json:"color,omitempty"`
	ServerAddr string    `json:"server_addr,omitempty"`
	Requires   string    `json:"requires,omitempty"`
	Verbose    bool      `json:"verbose"`
	Debug      bool      `json:"debug"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Color:      ColorAuto,
		ServerAddr: "127.0.0.1:8443",
	}
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Default config if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// Validate checks field values and the version requirement.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := ParseColorMode(string(c.Color)); err != nil {
		return err
	}
	return CheckRequirement(c.Requires)
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
