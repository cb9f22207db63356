package fcfs

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const tableRule = "------------------------------------"

// WriteTable prints the PID/AT/BT/CT/TAT/WT table for a computed schedule.
func WriteTable(w io.Writer, procs []Process) error {
	var b strings.Builder
	b.WriteString(tableRule + "\n")
	b.WriteString("PID\tAT\tBT\tCT\tTAT\tWT\n")
	for _, p := range procs {
		fmt.Fprintf(&b, "%d\t%d\t%d\t%d\t%d\t%d\n", p.ID, p.Arrival, p.Burst, p.Completed, p.Turnaround, p.Waiting)
	}
	b.WriteString(tableRule + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteGantt draws a computed schedule as an ASCII Gantt chart.
//
// Each process is a cell "|" + burst spaces + "P<id>" + burst spaces + "|".
// CPU idle time between processes is drawn as one '*' per time unit. The
// axis under the chart marks start and completion times at the cell edges;
// where two cells touch only the completion time is printed.
func WriteGantt(w io.Writer, procs []Process) error {
	if len(procs) == 0 {
		return nil
	}

	type edge struct {
		col   int
		label string
		right bool
	}

	var body strings.Builder
	var edges []edge
	prevEnd := 0
	for i, p := range procs {
		idle := p.Start - prevEnd
		if idle > 0 {
			body.WriteString(strings.Repeat("*", idle))
		}
		left := body.Len()
		body.WriteString("|")
		body.WriteString(strings.Repeat(" ", p.Burst))
		body.WriteString("P" + strconv.Itoa(p.ID))
		body.WriteString(strings.Repeat(" ", p.Burst))
		body.WriteString("|")
		right := body.Len() - 1

		if i == 0 || idle > 0 {
			edges = append(edges, edge{col: left, label: strconv.Itoa(p.Start)})
		}
		edges = append(edges, edge{col: right, label: strconv.Itoa(p.Completed), right: true})
		prevEnd = p.Completed
	}

	line := body.String()
	axis := []byte(strings.Repeat(" ", len(line)+8))
	for _, e := range edges {
		start := e.col
		if e.right {
			start = e.col - len(e.label) + 1
		}
		start = max(start, 0)
		copy(axis[start:], e.label)
	}

	border := strings.Repeat("=", len(line))
	var b strings.Builder
	b.WriteString(border + "\n")
	b.WriteString(line + "\n")
	b.WriteString(border + "\n")
	b.WriteString(strings.TrimRight(string(axis), " ") + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}
