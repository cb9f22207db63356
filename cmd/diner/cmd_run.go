package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nvandessel/diner/internal/config"
	"github.com/nvandessel/diner/internal/constants"
	"github.com/nvandessel/diner/internal/logging"
	"github.com/nvandessel/diner/internal/report"
	"github.com/nvandessel/diner/internal/simulation"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a dining simulation",
		Long: `Run agents around the table for a fixed number of time units and
print per-agent statistics.

Flags override ~/.diner/config.yaml and DINER_* environment variables.
Ctrl+C ends the run early; the statistics are still printed.

Examples:
  diner run                                  # Five agents, 10000 ms
  diner run --agents 7 --duration 2000       # Seven agents, 2 seconds
  diner run --time-unit 100us --seed 42      # Faster clock, fixed seed
  diner run --policy ordered --debug         # Ordered acquisition, event lines
  diner run --events 2> events.jsonl         # JSONL event stream on stderr`,
		RunE: runSimulation,
	}

	cmd.Flags().Int("agents", constants.DefaultAgentCount, "Number of agents and resources")
	cmd.Flags().Int("duration", constants.DefaultDuration, "Run length in time units")
	cmd.Flags().Int64("seed", constants.DefaultSeed, "Base random seed (agent i uses seed+i)")
	cmd.Flags().Bool("debug", false, "Log every phase change and resource movement")
	cmd.Flags().String("policy", constants.PolicyRetry, "Acquisition policy: retry or ordered")
	cmd.Flags().Duration("time-unit", constants.DefaultTimeUnit, "Wall-clock length of one time unit")
	cmd.Flags().Bool("events", false, "Write a JSONL event stream to stderr")

	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	configPath, _ := cmd.Flags().GetString("config")
	withEvents, _ := cmd.Flags().GetBool("events")

	cfg, err := config.LoadPath(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	sim := cfg.ToSimulation()

	stderr := &lockedWriter{w: cmd.ErrOrStderr()}
	logger := logging.NewLogger(logging.LevelFor(cfg.Logging.Level, sim.Debug), stderr)
	var events *logging.EventLogger
	if withEvents {
		events = logging.NewEventLogger(stderr)
		defer events.Close()
	}

	ctrl, err := simulation.New(sim,
		simulation.WithLogger(logger),
		simulation.WithEvents(events),
	)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	result, runErr := ctrl.Start(ctx)
	if result == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		if err := report.WriteJSON(out, result); err != nil {
			return errors.Join(runErr, err)
		}
	} else {
		if err := report.WriteTable(out, report.BuildRows(result.Stats)); err != nil {
			return errors.Join(runErr, err)
		}
		fmt.Fprintln(out, report.Summary(result))
	}
	return runErr
}

// applyRunFlags copies explicitly set flags over the loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.DinerConfig) {
	flags := cmd.Flags()
	if flags.Changed("agents") {
		cfg.Simulation.Agents, _ = flags.GetInt("agents")
	}
	if flags.Changed("duration") {
		cfg.Simulation.Duration, _ = flags.GetInt("duration")
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed, _ = flags.GetInt64("seed")
	}
	if flags.Changed("debug") {
		cfg.Simulation.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("policy") {
		cfg.Simulation.Policy, _ = flags.GetString("policy")
	}
	if flags.Changed("time-unit") {
		cfg.Simulation.TimeUnit, _ = flags.GetDuration("time-unit")
	}
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// lockedWriter serializes writes from the logger and the event stream,
// which share stderr.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
