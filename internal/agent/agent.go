// Package agent implements the THINK/HUNGRY/EAT cycle of a single diner.
//
// An agent owns references to two resources fixed at construction, its left
// and right hand. Every cycle it thinks for a drawn duration, becomes hungry
// and acquires both hands, eats for a drawn duration while holding them, and
// puts both back. The stop flag is polled only at the top of the loop, so a
// cycle in progress always completes and never ends with a hand held.
//
// Statistics are written only by the goroutine running the agent. Readers get
// an immutable copy published at every phase boundary through Snapshot.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"sync/atomic"
	"time"

	"github.com/nvandessel/diner/internal/constants"
	"github.com/nvandessel/diner/internal/logging"
	"github.com/nvandessel/diner/internal/resource"
)

// Phase is the lifecycle phase of an agent.
type Phase string

const (
	Thinking Phase = "Thinking"
	Hungry   Phase = "Hungry"
	Eating   Phase = "Eating"
	Finished Phase = "Finished"
)

var (
	// ErrInvalidConfig is returned by New for an unusable Config.
	ErrInvalidConfig = errors.New("invalid agent config")

	// ErrAlreadyRunning is returned when Run is called more than once.
	ErrAlreadyRunning = errors.New("agent already started")
)

// Config describes one agent.
type Config struct {
	// ID is the agent identity. It is also added to Seed for the private random source.
	ID int

	// Left and Right are the agent's two hands. They may be the same resource
	// in a ring of one, in which case it is acquired and released once.
	Left  *resource.Resource
	Right *resource.Resource

	// Seed is the base seed shared by the whole table.
	Seed int64

	// TimeUnit is the wall-clock length of one drawn unit. Zero means constants.DefaultTimeUnit.
	TimeUnit time.Duration

	// MaxDraw bounds think and eat draws to [0, MaxDraw) units. Zero means constants.DefaultMaxDraw.
	MaxDraw int

	// RetryBackoff is the pause between failed acquisition attempts.
	// Zero means constants.DefaultRetryBackoff.
	RetryBackoff time.Duration

	// Policy is constants.PolicyRetry (default) or constants.PolicyOrdered.
	Policy string

	// Debug enables the per-event log lines. It is fixed for the agent's lifetime.
	Debug bool

	// Logger receives debug and trace output. Nil discards.
	Logger *slog.Logger

	// Events receives structured phase events. Nil is valid.
	Events *logging.EventLogger

	// RecordDraws keeps every think and eat draw for later inspection through Draws.
	RecordDraws bool
}

// Draw is one value taken from the agent's random source.
type Draw struct {
	Phase Phase `json:"phase"`
	Units int   `json:"units"`
}

// Agent is a single diner. Create one with New and drive it with Run.
type Agent struct {
	id       int
	left     *resource.Resource
	right    *resource.Resource
	unit     time.Duration
	maxDraw  int
	backoff  time.Duration
	policy   string
	debug    bool
	log      *slog.Logger
	events   *logging.EventLogger
	record   bool
	rng      *rand.Rand
	stop     atomic.Bool
	started  atomic.Bool
	done     chan struct{}
	snapshot atomic.Pointer[Stats]

	// Owned by the Run goroutine.
	stats Stats
	held  []*resource.Resource
	draws []Draw
}

// New validates cfg and returns an agent in the Thinking phase, not yet running.
func New(cfg Config) (*Agent, error) {
	if cfg.ID < 0 {
		return nil, fmt.Errorf("%w: negative id %d", ErrInvalidConfig, cfg.ID)
	}
	if cfg.Left == nil || cfg.Right == nil {
		return nil, fmt.Errorf("%w: agent %d needs both hands", ErrInvalidConfig, cfg.ID)
	}
	if cfg.TimeUnit == 0 {
		cfg.TimeUnit = constants.DefaultTimeUnit
	}
	if cfg.MaxDraw == 0 {
		cfg.MaxDraw = constants.DefaultMaxDraw
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = constants.DefaultRetryBackoff
	}
	if cfg.Policy == "" {
		cfg.Policy = constants.PolicyRetry
	}
	if cfg.TimeUnit < 0 || cfg.MaxDraw < 0 || cfg.RetryBackoff < 0 {
		return nil, fmt.Errorf("%w: agent %d has negative timing", ErrInvalidConfig, cfg.ID)
	}
	if !constants.IsValidPolicy(cfg.Policy) {
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidConfig, cfg.Policy)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}

	a := &Agent{
		id:      cfg.ID,
		left:    cfg.Left,
		right:   cfg.Right,
		unit:    cfg.TimeUnit,
		maxDraw: cfg.MaxDraw,
		backoff: cfg.RetryBackoff,
		policy:  cfg.Policy,
		debug:   cfg.Debug,
		log:     cfg.Logger.With("agent", cfg.ID),
		events:  cfg.Events,
		record:  cfg.RecordDraws,
		rng:     rand.New(rand.NewSource(cfg.Seed + int64(cfg.ID))),
		done:    make(chan struct{}),
		stats: Stats{
			ID:       cfg.ID,
			Phase:    Thinking,
			TimeUnit: cfg.TimeUnit,
		},
	}
	a.publish()
	return a, nil
}

// ID returns the agent identity.
func (a *Agent) ID() int {
	return a.id
}

// Hands returns the left and right resources.
func (a *Agent) Hands() (left, right *resource.Resource) {
	return a.left, a.right
}

// Stop asks the agent to finish after its current cycle.
func (a *Agent) Stop() {
	a.stop.Store(true)
}

// Done is closed once the agent reaches Finished.
func (a *Agent) Done() <-chan struct{} {
	return a.done
}

// Snapshot returns the statistics published at the last phase boundary.
// After Done is closed it is the final state of the agent.
func (a *Agent) Snapshot() Stats {
	return *a.snapshot.Load()
}

// Draws returns the recorded think and eat draws in order. It returns nil
// unless RecordDraws was set and the agent has finished.
func (a *Agent) Draws() []Draw {
	select {
	case <-a.done:
		return slices.Clone(a.draws)
	default:
		return nil
	}
}

// Run executes cycles until Stop is observed at the top of the loop.
// Cancelling ctx interrupts the thinking and eating sleeps; the drawn
// durations still count and the cycle carries on. Run returns an error only
// when a resource reports a broken invariant. Any hand held at that point is
// released on the way out.
func (a *Agent) Run(ctx context.Context) (err error) {
	if !a.started.CompareAndSwap(false, true) {
		return fmt.Errorf("agent %d: %w", a.id, ErrAlreadyRunning)
	}
	defer func() {
		if relErr := a.releaseAll(); relErr != nil && err == nil {
			err = relErr
		}
		a.finish()
	}()

	for !a.stop.Load() {
		a.think(ctx)
		if err := a.hungry(ctx); err != nil {
			return err
		}
		if err := a.eat(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (a *Agent) think(ctx context.Context) {
	a.stats.ThinkingTurns++
	a.enter(Thinking)

	d, units := a.draw(Thinking)
	a.logPhase(Thinking, units)
	a.sleep(ctx, d)

	a.stats.ThinkingTime += d
	a.publish()
}

func (a *Agent) hungry(ctx context.Context) error {
	a.stats.HungryTurns++
	a.enter(Hungry)
	if a.debug {
		a.log.Debug(fmt.Sprintf("Agent %d is %s", a.id, Hungry))
	}

	start := time.Now()
	err := a.acquireHands(ctx)
	a.stats.HungryTime += time.Since(start)
	a.publish()
	return err
}

func (a *Agent) eat(ctx context.Context) error {
	a.stats.EatingTurns++
	a.enter(Eating)

	d, units := a.draw(Eating)
	a.logPhase(Eating, units)
	a.sleep(ctx, d)

	a.stats.EatingTime += d
	err := a.releaseAll()
	a.publish()
	return err
}

func (a *Agent) finish() {
	a.stats.Phase = Finished
	a.publish()
	a.events.Log(map[string]any{
		"event":          "finished",
		"agent":          a.id,
		"thinking_turns": a.stats.ThinkingTurns,
		"hungry_turns":   a.stats.HungryTurns,
		"eating_turns":   a.stats.EatingTurns,
	})
	if a.debug {
		a.log.Debug(fmt.Sprintf("Agent %d is %s", a.id, Finished))
	}
	close(a.done)
}

func (a *Agent) enter(p Phase) {
	a.stats.Phase = p
	a.publish()
}

func (a *Agent) publish() {
	s := a.stats
	a.snapshot.Store(&s)
}

func (a *Agent) draw(p Phase) (time.Duration, int) {
	units := a.rng.Intn(a.maxDraw)
	if a.record {
		a.draws = append(a.draws, Draw{Phase: p, Units: units})
	}
	return time.Duration(units) * a.unit, units
}

// sleep suspends for d or until ctx is done. An early wake-up is treated as
// if the sleep completed.
func (a *Agent) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		a.log.Debug("sleep interrupted", "error", ctx.Err())
	}
}

func (a *Agent) logPhase(p Phase, units int) {
	a.events.Log(map[string]any{"event": "phase", "agent": a.id, "phase": string(p), "units": units})
	if a.debug {
		a.log.Debug(fmt.Sprintf("Agent %d is %s for %d", a.id, p, units))
	}
}

// average returns total/count in time units, or NaN when count is zero.
func average(total time.Duration, count int, unit time.Duration) float64 {
	if count == 0 || unit <= 0 {
		return math.NaN()
	}
	return float64(total) / float64(unit) / float64(count)
}
