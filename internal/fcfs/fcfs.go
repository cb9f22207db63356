// Package fcfs computes first-come-first-served CPU schedules and renders
// them as a table and an ASCII Gantt chart.
package fcfs

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrInvalidProcess is returned for processes that cannot be scheduled.
var ErrInvalidProcess = errors.New("invalid process")

// Process is one job in the ready queue. ID, Arrival and Burst are inputs;
// the remaining fields are filled in by Schedule.
type Process struct {
	ID      int `json:"id" yaml:"id"`
	Arrival int `json:"arrival" yaml:"arrival"`
	Burst   int `json:"burst" yaml:"burst"`

	Start      int `json:"start" yaml:"-"`
	Completed  int `json:"completed" yaml:"-"`
	Turnaround int `json:"turnaround" yaml:"-"`
	Waiting    int `json:"waiting" yaml:"-"`
}

// Workload is the YAML document read by LoadFile.
type Workload struct {
	Processes []Process `yaml:"processes"`
}

// DefaultWorkload returns the demo queue used when no file is given.
func DefaultWorkload() []Process {
	return []Process{
		{ID: 1, Arrival: 0, Burst: 18},
		{ID: 2, Arrival: 3, Burst: 2},
		{ID: 3, Arrival: 25, Burst: 5},
		{ID: 4, Arrival: 29, Burst: 2},
		{ID: 5, Arrival: 33, Burst: 7},
	}
}

// LoadFile reads a workload from a YAML file.
func LoadFile(path string) ([]Process, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload file: %w", err)
	}

	var w Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parsing workload file: %w", err)
	}
	if len(w.Processes) == 0 {
		return nil, fmt.Errorf("workload file %s has no processes", path)
	}
	return w.Processes, nil
}

// Schedule runs the processes in arrival order; ties keep input order.
// Each process starts when it has arrived and the previous one completed.
// The input slice is not modified.
func Schedule(procs []Process) ([]Process, error) {
	out := slices.Clone(procs)
	for _, p := range out {
		if p.Arrival < 0 {
			return nil, fmt.Errorf("%w: P%d arrives at %d", ErrInvalidProcess, p.ID, p.Arrival)
		}
		if p.Burst <= 0 {
			return nil, fmt.Errorf("%w: P%d has burst %d", ErrInvalidProcess, p.ID, p.Burst)
		}
	}

	slices.SortStableFunc(out, func(a, b Process) int {
		return cmp.Compare(a.Arrival, b.Arrival)
	})

	clock := 0
	for i := range out {
		p := &out[i]
		p.Start = max(clock, p.Arrival)
		p.Completed = p.Start + p.Burst
		p.Turnaround = p.Completed - p.Arrival
		p.Waiting = p.Turnaround - p.Burst
		clock = p.Completed
	}
	return out, nil
}

// AverageWaiting returns the mean waiting time, or 0 for an empty schedule.
func AverageWaiting(procs []Process) float64 {
	if len(procs) == 0 {
		return 0
	}
	total := 0
	for _, p := range procs {
		total += p.Waiting
	}
	return float64(total) / float64(len(procs))
}

// AverageTurnaround returns the mean turnaround time, or 0 for an empty schedule.
func AverageTurnaround(procs []Process) float64 {
	if len(procs) == 0 {
		return 0
	}
	total := 0
	for _, p := range procs {
		total += p.Turnaround
	}
	return float64(total) / float64(len(procs))
}
