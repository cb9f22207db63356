package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diner",
		Short: "Dining philosophers - resource contention simulator",
		Long: `diner runs agents around a ring of shared resources. Each agent
thinks, gets hungry, takes the resources on both sides, eats, and
puts them back, until the run ends. Per-agent statistics are printed
at the end of the run.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.diner/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newFCFSCmd(),
		newConfigCmd(),
	)

	return rootCmd
}
