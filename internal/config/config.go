// Package config provides unified configuration loading for diner.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/diner/internal/simulation"
)

// DinerConfig contains all diner configuration settings.
type DinerConfig struct {
	// Simulation holds the defaults for `diner run`. Flags override them.
	Simulation simulation.Config `json:"simulation" yaml:"simulation"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// LoggingConfig configures diner's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "trace" additionally logs every failed acquisition attempt.
	Level string `json:"level" yaml:"level"`
}

// Default returns a DinerConfig with the classic five-agent table.
func Default() *DinerConfig {
	return &DinerConfig{
		Simulation: simulation.DefaultConfig(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns ~/.diner/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".diner", "config.yaml"), nil
}

// Load loads configuration from the default location and environment variables.
// Order: defaults -> ~/.diner/config.yaml -> environment variables
func Load() (*DinerConfig, error) {
	config := Default()

	if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadPath is Load with an explicit file. An empty path falls back to Load.
// Unlike the default location, an explicit file must exist.
func LoadPath(path string) (*DinerConfig, error) {
	if path == "" {
		return Load()
	}
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Keys missing
// from the file keep their default values.
func LoadFromFile(path string) (*DinerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *DinerConfig) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ToSimulation returns the simulation settings.
func (c *DinerConfig) ToSimulation() simulation.Config {
	return c.Simulation
}

// applyEnvOverrides applies environment variable overrides to the config.
// Values that do not parse are ignored.
func applyEnvOverrides(config *DinerConfig) {
	if v := os.Getenv("DINER_AGENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Agents = n
		}
	}

	if v := os.Getenv("DINER_DURATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Duration = n
		}
	}

	if v := os.Getenv("DINER_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Simulation.Seed = n
		}
	}

	if v := os.Getenv("DINER_TIME_UNIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Simulation.TimeUnit = d
		}
	}

	if v := os.Getenv("DINER_POLICY"); v != "" {
		config.Simulation.Policy = v
	}

	if v := os.Getenv("DINER_DEBUG"); v != "" {
		config.Simulation.Debug = v == "true" || v == "1"
	}

	if v := os.Getenv("DINER_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
