package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/diner/internal/fcfs"
)

func newFCFSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fcfs",
		Short: "Schedule a workload first-come first-served",
		Long: `Compute a first-come first-served CPU schedule and print the
completion, turnaround and waiting times with a Gantt chart.

Without --file the built-in five-process workload is used.

Workload file format:
  processes:
    - id: 1
      arrival: 0
      burst: 18`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			file, _ := cmd.Flags().GetString("file")

			procs := fcfs.DefaultWorkload()
			if file != "" {
				var err error
				procs, err = fcfs.LoadFile(file)
				if err != nil {
					return err
				}
			}

			scheduled, err := fcfs.Schedule(procs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"processes":          scheduled,
					"average_waiting":    fcfs.AverageWaiting(scheduled),
					"average_turnaround": fcfs.AverageTurnaround(scheduled),
				})
			}

			if err := fcfs.WriteTable(out, scheduled); err != nil {
				return err
			}
			fmt.Fprintf(out, "Average waiting time: %.2f\n", fcfs.AverageWaiting(scheduled))
			fmt.Fprintf(out, "Average turnaround time: %.2f\n\n", fcfs.AverageTurnaround(scheduled))
			return fcfs.WriteGantt(out, scheduled)
		},
	}

	cmd.Flags().String("file", "", "YAML workload file")

	return cmd
}
