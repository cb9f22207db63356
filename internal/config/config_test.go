package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvandessel/diner/internal/constants"
	"github.com/nvandessel/diner/internal/simulation"
)

// clearEnv blanks every DINER_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DINER_AGENTS", "DINER_DURATION", "DINER_SEED", "DINER_TIME_UNIT",
		"DINER_POLICY", "DINER_DEBUG", "DINER_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	config := Default()

	sim := config.Simulation
	if sim.Agents != constants.DefaultAgentCount {
		t.Errorf("expected %d agents, got %d", constants.DefaultAgentCount, sim.Agents)
	}
	if sim.TimeUnit != time.Millisecond {
		t.Errorf("expected TimeUnit 1ms, got %v", sim.TimeUnit)
	}
	if sim.Policy != constants.PolicyRetry {
		t.Errorf("expected policy %q, got %q", constants.PolicyRetry, sim.Policy)
	}
	if sim.Debug {
		t.Error("expected Debug to be false by default")
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
simulation:
  agents: 7
  duration: 500
  seed: 42
  time_unit: 10us
  join_timeout: 5s
  policy: ordered
  debug: true
logging:
  level: trace
`)

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	sim := config.Simulation
	if sim.Agents != 7 || sim.Duration != 500 || sim.Seed != 42 {
		t.Errorf("unexpected counts: %+v", sim)
	}
	if sim.TimeUnit != 10*time.Microsecond {
		t.Errorf("expected TimeUnit 10us, got %v", sim.TimeUnit)
	}
	if sim.JoinTimeout != 5*time.Second {
		t.Errorf("expected JoinTimeout 5s, got %v", sim.JoinTimeout)
	}
	if sim.Policy != constants.PolicyOrdered || !sim.Debug {
		t.Errorf("expected ordered policy with debug, got %q debug=%v", sim.Policy, sim.Debug)
	}
	// Keys absent from the file keep their defaults.
	if sim.MaxDraw != constants.DefaultMaxDraw {
		t.Errorf("expected MaxDraw default %d, got %d", constants.DefaultMaxDraw, sim.MaxDraw)
	}
	if sim.LaunchDelay != constants.DefaultLaunchDelay {
		t.Errorf("expected LaunchDelay default, got %v", sim.LaunchDelay)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected Logging.Level 'trace', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeConfig(t, dir, "simulation: [not a map")
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DINER_AGENTS", "3")
	t.Setenv("DINER_DURATION", "250")
	t.Setenv("DINER_SEED", "-9")
	t.Setenv("DINER_TIME_UNIT", "2ms")
	t.Setenv("DINER_POLICY", "ordered")
	t.Setenv("DINER_DEBUG", "1")
	t.Setenv("DINER_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	sim := config.Simulation
	if sim.Agents != 3 || sim.Duration != 250 || sim.Seed != -9 {
		t.Errorf("unexpected counts: %+v", sim)
	}
	if sim.TimeUnit != 2*time.Millisecond {
		t.Errorf("expected TimeUnit 2ms, got %v", sim.TimeUnit)
	}
	if sim.Policy != "ordered" || !sim.Debug {
		t.Errorf("expected ordered policy with debug, got %q debug=%v", sim.Policy, sim.Debug)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestEnvOverrides_IgnoresUnparsable(t *testing.T) {
	clearEnv(t)
	t.Setenv("DINER_AGENTS", "five")
	t.Setenv("DINER_TIME_UNIT", "soon")

	config := Default()
	applyEnvOverrides(config)

	if config.Simulation.Agents != constants.DefaultAgentCount {
		t.Errorf("expected default agents, got %d", config.Simulation.Agents)
	}
	if config.Simulation.TimeUnit != constants.DefaultTimeUnit {
		t.Errorf("expected default time unit, got %v", config.Simulation.TimeUnit)
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	dinerDir := filepath.Join(home, ".diner")
	if err := os.MkdirAll(dinerDir, 0700); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dinerDir, "simulation:\n  agents: 9\n  seed: 4\n")
	t.Setenv("DINER_SEED", "11")

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Simulation.Agents != 9 {
		t.Errorf("file should set agents to 9, got %d", config.Simulation.Agents)
	}
	if config.Simulation.Seed != 11 {
		t.Errorf("env should override seed to 11, got %d", config.Simulation.Seed)
	}
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Simulation != simulation.DefaultConfig() {
		t.Errorf("expected defaults, got %+v", config.Simulation)
	}
}

func TestLoadPath(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := writeConfig(t, dir, "simulation:\n  duration: 77\n")
	t.Setenv("DINER_AGENTS", "2")

	config, err := LoadPath(path)
	if err != nil {
		t.Fatalf("LoadPath failed: %v", err)
	}
	if config.Simulation.Duration != 77 || config.Simulation.Agents != 2 {
		t.Errorf("unexpected simulation config: %+v", config.Simulation)
	}

	if _, err := LoadPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("an explicit path that does not exist should fail")
	}

	if _, err := LoadPath(""); err != nil {
		t.Errorf("empty path should fall back to Load: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*DinerConfig)
		wantErr bool
		wantSim bool
	}{
		{"default", func(c *DinerConfig) {}, false, false},
		{"empty level", func(c *DinerConfig) { c.Logging.Level = "" }, false, false},
		{"bad level", func(c *DinerConfig) { c.Logging.Level = "verbose" }, true, false},
		{"zero agents", func(c *DinerConfig) { c.Simulation.Agents = 0 }, true, true},
		{"bad policy", func(c *DinerConfig) { c.Simulation.Policy = "polite" }, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSim && !errors.Is(err, simulation.ErrInvalidConfig) {
				t.Errorf("expected simulation.ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestToSimulation(t *testing.T) {
	config := Default()
	config.Simulation.Seed = 123
	if got := config.ToSimulation(); got.Seed != 123 || got.Agents != config.Simulation.Agents {
		t.Errorf("ToSimulation() = %+v", got)
	}
}
