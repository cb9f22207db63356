package agent

import "time"

// Stats is an immutable copy of an agent's counters.
type Stats struct {
	ID            int           `json:"id"`
	Phase         Phase         `json:"phase"`
	ThinkingTurns int           `json:"thinking_turns"`
	HungryTurns   int           `json:"hungry_turns"`
	EatingTurns   int           `json:"eating_turns"`
	ThinkingTime  time.Duration `json:"thinking_time"`
	HungryTime    time.Duration `json:"hungry_time"`
	EatingTime    time.Duration `json:"eating_time"`
	TimeUnit      time.Duration `json:"time_unit"`
}

// AverageThinking is the mean thinking turn in time units, NaN before the first turn.
func (s Stats) AverageThinking() float64 {
	return average(s.ThinkingTime, s.ThinkingTurns, s.TimeUnit)
}

// AverageEating is the mean eating turn in time units, NaN before the first turn.
func (s Stats) AverageEating() float64 {
	return average(s.EatingTime, s.EatingTurns, s.TimeUnit)
}

// AverageHungry is the mean wait for both hands in time units, NaN before the first turn.
func (s Stats) AverageHungry() float64 {
	return average(s.HungryTime, s.HungryTurns, s.TimeUnit)
}

// Finished reports whether the agent had stopped when the snapshot was taken.
func (s Stats) Finished() bool {
	return s.Phase == Finished
}
