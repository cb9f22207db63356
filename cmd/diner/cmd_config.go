package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/diner/internal/config"
)

// configKeys lists every key understood by `diner config get`, in display order.
var configKeys = []string{
	"simulation.agents",
	"simulation.duration",
	"simulation.seed",
	"simulation.time_unit",
	"simulation.max_draw",
	"simulation.launch_delay",
	"simulation.join_timeout",
	"simulation.retry_backoff",
	"simulation.policy",
	"simulation.debug",
	"simulation.record_draws",
	"logging.level",
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show diner configuration",
		Long: `View the effective diner configuration.

Configuration is read from ~/.diner/config.yaml (or --config) and
DINER_* environment variables.

Examples:
  diner config list                       # Show all settings
  diner config get simulation.agents      # Get a specific setting`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := config.LoadPath(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}

			fmt.Fprintf(out, "Configuration (%s):\n\n", valueOrDefault(configPath, "~/.diner/config.yaml"))
			for _, key := range configKeys {
				value, _ := getConfigValue(cfg, key)
				fmt.Fprintf(out, "  %-26s %v\n", key+":", value)
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			configPath, _ := cmd.Flags().GetString("config")
			key := args[0]

			cfg, err := config.LoadPath(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			value, found := getConfigValue(cfg, key)
			if !found {
				if jsonOut {
					json.NewEncoder(out).Encode(map[string]interface{}{
						"error": "key not found",
						"key":   key,
					})
				} else {
					fmt.Fprintf(out, "Unknown configuration key: %s\n", key)
				}
				return nil
			}

			if jsonOut {
				json.NewEncoder(out).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			} else {
				fmt.Fprintf(out, "%s = %v\n", key, value)
			}

			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.DinerConfig, key string) (interface{}, bool) {
	sim := cfg.Simulation
	switch key {
	case "simulation.agents":
		return sim.Agents, true
	case "simulation.duration":
		return sim.Duration, true
	case "simulation.seed":
		return sim.Seed, true
	case "simulation.time_unit":
		return sim.TimeUnit.String(), true
	case "simulation.max_draw":
		return sim.MaxDraw, true
	case "simulation.launch_delay":
		return sim.LaunchDelay.String(), true
	case "simulation.join_timeout":
		return sim.EffectiveJoinTimeout().String(), true
	case "simulation.retry_backoff":
		return sim.RetryBackoff.String(), true
	case "simulation.policy":
		return sim.Policy, true
	case "simulation.debug":
		return sim.Debug, true
	case "simulation.record_draws":
		return sim.RecordDraws, true
	case "logging.level":
		return valueOrDefault(cfg.Logging.Level, "info"), true
	default:
		return nil, false
	}
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
