package simulation

import (
	"time"

	"github.com/nvandessel/diner/internal/agent"
)

// Result is the outcome of one run.
type Result struct {
	// RunID correlates log lines of one run.
	RunID string `json:"run_id"`

	// Config is the effective configuration of the run.
	Config Config `json:"config"`

	// Elapsed is the wall-clock time from first launch to the end of the join.
	Elapsed time.Duration `json:"elapsed"`

	// Stats holds the final snapshot of every agent, indexed by agent id.
	Stats []agent.Stats `json:"stats"`

	// Draws holds each agent's recorded draws when Config.RecordDraws is set.
	// Entries for unfinished agents are nil.
	Draws [][]agent.Draw `json:"-"`

	// Unfinished lists agents still running when the join timed out.
	Unfinished []int `json:"unfinished,omitempty"`

	// Leaked lists resources still held after every agent finished.
	Leaked []int `json:"leaked,omitempty"`
}

// TotalEatingTurns sums eating turns across agents.
func (r *Result) TotalEatingTurns() int {
	total := 0
	for _, s := range r.Stats {
		total += s.EatingTurns
	}
	return total
}

// Clean reports whether every agent finished and no resource was left held.
func (r *Result) Clean() bool {
	return len(r.Unfinished) == 0 && len(r.Leaked) == 0
}
