// Package constants provides named defaults used throughout the diner codebase.
package constants

import "time"

// Table and timing defaults for a simulation run.
const (
	// DefaultAgentCount is the number of agents seated around the ring.
	DefaultAgentCount = 5

	// DefaultMaxDraw bounds every thinking and eating draw to [0, DefaultMaxDraw) time units.
	DefaultMaxDraw = 1000

	// DefaultDuration is how many time units the controller lets a run go on
	// before asking every agent to stop.
	DefaultDuration = 10000

	// DefaultSeed is the base seed. Agent i draws from DefaultSeed + i.
	DefaultSeed = 0

	// DefaultTimeUnit is the wall-clock length of one simulated time unit.
	DefaultTimeUnit = time.Millisecond
)

// Controller pacing defaults.
const (
	// DefaultLaunchDelay separates consecutive agent launches so that the
	// first agents are mid-cycle before later ones start.
	DefaultLaunchDelay = 50 * time.Millisecond

	// DefaultJoinTimeout is the floor of the wait for agents to reach
	// Finished after the stop signal. See JoinTimeoutFor.
	DefaultJoinTimeout = 3 * time.Second

	// DefaultRetryBackoff is the yield between failed acquisition attempts.
	DefaultRetryBackoff = time.Millisecond
)

// JoinTimeoutFor returns the join timeout for a table drawing up to maxDraw
// units of length unit: three worst-case draws, never below
// DefaultJoinTimeout. An agent that sees the stop signal mid-cycle still has
// at most one think and one eat ahead of it.
func JoinTimeoutFor(maxDraw int, unit time.Duration) time.Duration {
	return max(DefaultJoinTimeout, 3*time.Duration(maxDraw)*unit)
}

// Acquisition policy names.
const (
	// PolicyRetry tries the first hand, then the second; on a miss it puts the
	// first hand back and restarts the attempt.
	PolicyRetry = "retry"

	// PolicyOrdered acquires both hands with blocking waits in global
	// resource-id order.
	PolicyOrdered = "ordered"
)

// ValidPolicies lists the accepted acquisition policy names.
var ValidPolicies = []string{PolicyRetry, PolicyOrdered}

// IsValidPolicy reports whether name is a known acquisition policy.
func IsValidPolicy(name string) bool {
	for _, p := range ValidPolicies {
		if p == name {
			return true
		}
	}
	return false
}
