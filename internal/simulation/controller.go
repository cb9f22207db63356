package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nvandessel/diner/internal/agent"
	"github.com/nvandessel/diner/internal/logging"
	"github.com/nvandessel/diner/internal/resource"
)

// ErrAlreadyStarted is returned when Start is called twice on one Controller.
var ErrAlreadyStarted = errors.New("simulation already started")

// Controller owns the resource ring and the agents for a single run.
type Controller struct {
	cfg       Config
	log       *slog.Logger
	events    *logging.EventLogger
	observers []resource.Observer
	resources []*resource.Resource
	agents    []*agent.Agent
	started   atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the operational logger. Agents log through it as well.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.log = logger
	}
}

// WithEvents attaches a JSONL event stream for phases and hand movements.
func WithEvents(events *logging.EventLogger) Option {
	return func(c *Controller) {
		c.events = events
	}
}

// WithObserver adds an observer to every resource in the ring.
func WithObserver(obs resource.Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, obs)
	}
}

// New builds a Controller and initializes its table from cfg.
func New(cfg Config, opts ...Option) (*Controller, error) {
	c := &Controller{log: logging.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.Initialize(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Initialize builds the resource ring and the agents. Agent i holds resource
// (i+1) mod N in its left hand and resource i in its right. With a single
// agent both hands are the same resource.
func (c *Controller) Initialize(cfg Config) error {
	if c.started.Load() {
		return ErrAlreadyStarted
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.log == nil {
		c.log = logging.Discard()
	}

	var ropts []resource.Option
	if obs := c.observer(); obs != nil {
		ropts = append(ropts, resource.WithObserver(obs))
	}
	ring := resource.Ring(cfg.Agents, ropts...)

	agents := make([]*agent.Agent, cfg.Agents)
	for i := range agents {
		a, err := agent.New(agent.Config{
			ID:           i,
			Left:         ring[(i+1)%cfg.Agents],
			Right:        ring[i],
			Seed:         cfg.Seed,
			TimeUnit:     cfg.TimeUnit,
			MaxDraw:      cfg.MaxDraw,
			RetryBackoff: cfg.RetryBackoff,
			Policy:       cfg.Policy,
			Debug:        cfg.Debug,
			Logger:       c.log,
			Events:       c.events,
			RecordDraws:  cfg.RecordDraws,
		})
		if err != nil {
			return fmt.Errorf("creating agent %d: %w", i, err)
		}
		agents[i] = a
	}

	c.cfg = cfg
	c.resources = ring
	c.agents = agents
	return nil
}

// Config returns the effective configuration, defaults applied.
func (c *Controller) Config() Config {
	return c.cfg
}

// Agents returns the agents indexed by id.
func (c *Controller) Agents() []*agent.Agent {
	return c.agents
}

// Resources returns the ring indexed by resource id.
func (c *Controller) Resources() []*resource.Resource {
	return c.resources
}

// LaunchOrder returns the order agents are started in: odd ids first, then
// even ones, so that neighbours do not start back to back.
func LaunchOrder(n int) []int {
	order := make([]int, 0, n)
	for i := 1; i < n; i += 2 {
		order = append(order, i)
	}
	for i := 0; i < n; i += 2 {
		order = append(order, i)
	}
	return order
}

// Start runs the simulation and blocks until it is over.
//
// Agents are launched in LaunchOrder with LaunchDelay after each launch.
// After the configured duration, or earlier if ctx is cancelled, every agent
// is asked to stop. Start then waits up to JoinTimeout; agents that have not
// finished by then are listed in Result.Unfinished rather than waited on.
// The returned error is non-nil only when an agent hit a broken resource
// invariant, in which case the Result is still populated.
func (c *Controller) Start(ctx context.Context) (*Result, error) {
	if !c.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyStarted
	}

	runID := uuid.NewString()
	log := c.log.With("run_id", runID)
	log.Info("simulation started",
		"agents", c.cfg.Agents, "duration", c.cfg.Duration, "seed", c.cfg.Seed, "policy", c.cfg.Policy)

	began := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range LaunchOrder(len(c.agents)) {
		a := c.agents[id]
		g.Go(func() error {
			return a.Run(gctx)
		})
		pause(gctx, c.cfg.LaunchDelay)
	}

	if pause(gctx, c.cfg.RunTime()) {
		log.Info("simulation interrupted", "elapsed", time.Since(began), "error", context.Cause(gctx))
	}

	if c.cfg.Debug {
		log.Debug(">>> Asking all agents to stop")
	}
	for _, a := range c.agents {
		a.Stop()
	}

	joined := make(chan error, 1)
	go func() {
		joined <- g.Wait()
	}()

	var runErr error
	timer := time.NewTimer(c.cfg.JoinTimeout)
	defer timer.Stop()
	select {
	case runErr = <-joined:
	case <-timer.C:
	}

	result := c.collect(runID, time.Since(began))
	if len(result.Unfinished) > 0 {
		log.Warn("agents did not finish before join timeout",
			"unfinished", result.Unfinished, "timeout", c.cfg.JoinTimeout)
	}
	if len(result.Leaked) > 0 {
		log.Warn("resources still held after all agents finished", "resources", result.Leaked)
	}
	if runErr != nil {
		log.Error("simulation failed", "error", runErr)
		return result, fmt.Errorf("simulation %s: %w", runID, runErr)
	}

	log.Info("simulation finished", "elapsed", result.Elapsed, "eating_turns", result.TotalEatingTurns())
	return result, nil
}

// collect reads the final snapshot of every agent. Resource leaks are only
// checked once every agent has finished, since a running agent may
// legitimately hold its hands.
func (c *Controller) collect(runID string, elapsed time.Duration) *Result {
	result := &Result{
		RunID:   runID,
		Config:  c.cfg,
		Elapsed: elapsed,
		Stats:   make([]agent.Stats, len(c.agents)),
	}
	for i, a := range c.agents {
		select {
		case <-a.Done():
			result.Draws = append(result.Draws, a.Draws())
		default:
			result.Unfinished = append(result.Unfinished, a.ID())
			result.Draws = append(result.Draws, nil)
		}
		result.Stats[i] = a.Snapshot()
	}
	if len(result.Unfinished) == 0 {
		for _, r := range c.resources {
			if _, held := r.Holder(); held {
				result.Leaked = append(result.Leaked, r.ID())
			}
		}
	}
	return result
}

func (c *Controller) observer() resource.Observer {
	var all multiObserver
	if c.events != nil {
		all = append(all, c.events)
	}
	all = append(all, c.observers...)
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	default:
		return all
	}
}

// pause sleeps for d and reports whether ctx ended it early.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() != nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return false
	case <-ctx.Done():
		return true
	}
}

// multiObserver fans resource events out to several observers.
type multiObserver []resource.Observer

func (m multiObserver) Acquired(res, holder int) {
	for _, o := range m {
		o.Acquired(res, holder)
	}
}

func (m multiObserver) Released(res, holder int) {
	for _, o := range m {
		o.Released(res, holder)
	}
}
