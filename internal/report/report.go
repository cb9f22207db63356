// Package report renders the final per-agent statistics of a run.
//
// It only reads completed snapshots; it never touches a running agent.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nvandessel/diner/internal/agent"
	"github.com/nvandessel/diner/internal/simulation"
)

// Row is one line of the statistics table. Averages are in time units and
// NaN when the matching turn count is zero.
type Row struct {
	ID              int
	AverageThinking float64
	AverageEating   float64
	AverageHungry   float64
	ThinkingTurns   int
	EatingTurns     int
	HungryTurns     int
}

// BuildRows converts agent snapshots to table rows, keeping their order.
func BuildRows(stats []agent.Stats) []Row {
	rows := make([]Row, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, Row{
			ID:              s.ID,
			AverageThinking: s.AverageThinking(),
			AverageEating:   s.AverageEating(),
			AverageHungry:   s.AverageHungry(),
			ThinkingTurns:   s.ThinkingTurns,
			EatingTurns:     s.EatingTurns,
			HungryTurns:     s.HungryTurns,
		})
	}
	return rows
}

const rule = "---------------------------------------------------------------"

// WriteTable prints the PID/ATT/AET/AHT/#TT/#ET/#HT table.
func WriteTable(w io.Writer, rows []Row) error {
	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-5s %10s %10s %10s %7s %7s %7s\n", "PID", "ATT", "AET", "AHT", "#TT", "#ET", "#HT")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-5d %10s %10s %10s %7d %7d %7d\n",
			r.ID,
			formatAverage(r.AverageThinking),
			formatAverage(r.AverageEating),
			formatAverage(r.AverageHungry),
			r.ThinkingTurns, r.EatingTurns, r.HungryTurns)
	}
	b.WriteString(rule + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Summary is a one-line digest of a run.
func Summary(result *simulation.Result) string {
	var think, eat, hungry int
	for _, s := range result.Stats {
		think += s.ThinkingTurns
		eat += s.EatingTurns
		hungry += s.HungryTurns
	}
	line := fmt.Sprintf("%d agents, %s time units: %s thinking, %s hungry, %s eating turns",
		len(result.Stats),
		humanize.Comma(int64(result.Config.Duration)),
		humanize.Comma(int64(think)),
		humanize.Comma(int64(hungry)),
		humanize.Comma(int64(eat)))
	if len(result.Unfinished) > 0 {
		line += fmt.Sprintf("; %d agent(s) did not finish: %v", len(result.Unfinished), result.Unfinished)
	}
	if len(result.Leaked) > 0 {
		line += fmt.Sprintf("; resources left held: %v", result.Leaked)
	}
	return line
}

// jsonRow mirrors Row with undefined averages encoded as null.
type jsonRow struct {
	ID              int      `json:"id"`
	AverageThinking *float64 `json:"average_thinking"`
	AverageEating   *float64 `json:"average_eating"`
	AverageHungry   *float64 `json:"average_hungry"`
	ThinkingTurns   int      `json:"thinking_turns"`
	EatingTurns     int      `json:"eating_turns"`
	HungryTurns     int      `json:"hungry_turns"`
}

type jsonReport struct {
	RunID      string    `json:"run_id"`
	Agents     int       `json:"agents"`
	Duration   int       `json:"duration"`
	Seed       int64     `json:"seed"`
	Policy     string    `json:"policy"`
	Rows       []jsonRow `json:"agents_stats"`
	Unfinished []int     `json:"unfinished"`
	Leaked     []int     `json:"leaked"`
}

// WriteJSON encodes the run as a single JSON document.
func WriteJSON(w io.Writer, result *simulation.Result) error {
	out := jsonReport{
		RunID:      result.RunID,
		Agents:     result.Config.Agents,
		Duration:   result.Config.Duration,
		Seed:       result.Config.Seed,
		Policy:     result.Config.Policy,
		Rows:       make([]jsonRow, 0, len(result.Stats)),
		Unfinished: nonNil(result.Unfinished),
		Leaked:     nonNil(result.Leaked),
	}
	for _, r := range BuildRows(result.Stats) {
		out.Rows = append(out.Rows, jsonRow{
			ID:              r.ID,
			AverageThinking: definedOrNil(r.AverageThinking),
			AverageEating:   definedOrNil(r.AverageEating),
			AverageHungry:   definedOrNil(r.AverageHungry),
			ThinkingTurns:   r.ThinkingTurns,
			EatingTurns:     r.EatingTurns,
			HungryTurns:     r.HungryTurns,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatAverage(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

func definedOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func nonNil(ids []int) []int {
	if ids == nil {
		return []int{}
	}
	return ids
}
