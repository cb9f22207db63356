package simulation

import (
	"errors"
	"fmt"
	"time"

	"github.com/nvandessel/diner/internal/constants"
)

// ErrInvalidConfig is returned for a Config that cannot be run.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config controls a simulation run.
type Config struct {
	// Agents is the number of agents and resources around the ring.
	Agents int `json:"agents" yaml:"agents"`

	// Duration is how many time units pass before the stop signal.
	Duration int `json:"duration" yaml:"duration"`

	// Seed is the base seed; agent i draws from Seed + i.
	Seed int64 `json:"seed" yaml:"seed"`

	// TimeUnit is the wall-clock length of one time unit.
	TimeUnit time.Duration `json:"time_unit" yaml:"time_unit"`

	// MaxDraw bounds thinking and eating draws to [0, MaxDraw) units.
	MaxDraw int `json:"max_draw" yaml:"max_draw"`

	// LaunchDelay is the pause after each agent launch.
	LaunchDelay time.Duration `json:"launch_delay" yaml:"launch_delay"`

	// JoinTimeout bounds the wait for agents after the stop signal. Zero
	// derives it from MaxDraw and TimeUnit; an explicit value must exceed one
	// think plus one eat.
	JoinTimeout time.Duration `json:"join_timeout" yaml:"join_timeout"`

	// RetryBackoff is the pause between failed acquisition attempts.
	RetryBackoff time.Duration `json:"retry_backoff" yaml:"retry_backoff"`

	// Policy selects how agents acquire their hands: "retry" or "ordered".
	Policy string `json:"policy" yaml:"policy"`

	// Debug turns on the per-event log lines.
	Debug bool `json:"debug" yaml:"debug"`

	// RecordDraws keeps every agent's think and eat draws.
	RecordDraws bool `json:"record_draws" yaml:"record_draws"`
}

// DefaultConfig returns the classic five-agent table.
func DefaultConfig() Config {
	return Config{
		Agents:       constants.DefaultAgentCount,
		Duration:     constants.DefaultDuration,
		Seed:         constants.DefaultSeed,
		TimeUnit:     constants.DefaultTimeUnit,
		MaxDraw:      constants.DefaultMaxDraw,
		LaunchDelay:  constants.DefaultLaunchDelay,
		RetryBackoff: constants.DefaultRetryBackoff,
		Policy:       constants.PolicyRetry,
	}
}

// withDefaults fills zero-valued timing fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TimeUnit == 0 {
		c.TimeUnit = d.TimeUnit
	}
	if c.MaxDraw == 0 {
		c.MaxDraw = d.MaxDraw
	}
	if c.JoinTimeout == 0 {
		c.JoinTimeout = constants.JoinTimeoutFor(c.MaxDraw, c.TimeUnit)
	}
	if c.RetryBackoff == 0 {
		c.RetryBackoff = d.RetryBackoff
	}
	if c.Policy == "" {
		c.Policy = d.Policy
	}
	return c
}

// Validate checks that the configuration can be run.
func (c Config) Validate() error {
	if c.Agents < 1 {
		return fmt.Errorf("%w: agents must be at least 1, got %d", ErrInvalidConfig, c.Agents)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must be non-negative, got %d", ErrInvalidConfig, c.Duration)
	}
	if c.TimeUnit <= 0 {
		return fmt.Errorf("%w: time_unit must be positive, got %v", ErrInvalidConfig, c.TimeUnit)
	}
	if c.MaxDraw <= 0 {
		return fmt.Errorf("%w: max_draw must be positive, got %d", ErrInvalidConfig, c.MaxDraw)
	}
	if c.JoinTimeout < 0 {
		return fmt.Errorf("%w: join_timeout must be non-negative, got %v", ErrInvalidConfig, c.JoinTimeout)
	}
	if cycle := c.longestCycle(); c.JoinTimeout > 0 && c.JoinTimeout <= cycle {
		return fmt.Errorf("%w: join_timeout %v does not cover one think and eat (%v)", ErrInvalidConfig, c.JoinTimeout, cycle)
	}
	if c.LaunchDelay < 0 || c.RetryBackoff < 0 {
		return fmt.Errorf("%w: negative launch_delay or retry_backoff", ErrInvalidConfig)
	}
	if !constants.IsValidPolicy(c.Policy) {
		return fmt.Errorf("%w: invalid policy %q (valid: %v)", ErrInvalidConfig, c.Policy, constants.ValidPolicies)
	}
	return nil
}

// EffectiveJoinTimeout is the join timeout a run with this configuration uses.
func (c Config) EffectiveJoinTimeout() time.Duration {
	return c.withDefaults().JoinTimeout
}

// longestCycle is the worst-case think plus eat after the stop signal.
func (c Config) longestCycle() time.Duration {
	return 2 * time.Duration(c.MaxDraw) * c.TimeUnit
}

// RunTime is the wall-clock length of the run before the stop signal.
func (c Config) RunTime() time.Duration {
	return time.Duration(c.Duration) * c.TimeUnit
}
