package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/nvandessel/diner/internal/constants"
	"github.com/nvandessel/diner/internal/logging"
	"github.com/nvandessel/diner/internal/resource"
)

// acquireHands returns once both hands are held.
func (a *Agent) acquireHands(ctx context.Context) error {
	if a.policy == constants.PolicyOrdered {
		return a.acquireOrdered(ctx)
	}
	return a.acquireRetry(ctx)
}

// acquireRetry never holds one hand while waiting on the other. A miss on the
// second hand puts the first back and restarts the whole attempt.
func (a *Agent) acquireRetry(ctx context.Context) error {
	first, second := a.left, a.right
	for attempt := 1; ; attempt++ {
		ok, err := a.take(first)
		if err != nil {
			return err
		}
		if ok {
			if first == second {
				return nil
			}
			ok, err = a.take(second)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			if err := a.put(first); err != nil {
				return err
			}
		}
		a.log.Log(ctx, logging.LevelTrace, "hands unavailable, retrying",
			"attempt", attempt, "left", a.left.ID(), "right", a.right.ID())
		time.Sleep(a.backoff)
	}
}

// acquireOrdered takes the lower-id hand first with blocking waits. A global
// order leaves no cycle to wait around, so no retry is needed. The wait is not
// cut short by ctx: the cycle in progress must complete.
func (a *Agent) acquireOrdered(ctx context.Context) error {
	lo, hi := a.left, a.right
	if lo.ID() > hi.ID() {
		lo, hi = hi, lo
	}
	ctx = context.WithoutCancel(ctx)
	if err := a.block(ctx, lo); err != nil {
		return err
	}
	if lo == hi {
		return nil
	}
	return a.block(ctx, hi)
}

func (a *Agent) take(r *resource.Resource) (bool, error) {
	ok, err := r.TryAcquire(a.id)
	if err != nil {
		return false, fmt.Errorf("agent %d: %w", a.id, err)
	}
	if ok {
		a.held = append(a.held, r)
		a.logHand("acquired", r)
	}
	return ok, nil
}

func (a *Agent) block(ctx context.Context, r *resource.Resource) error {
	if err := r.Acquire(ctx, a.id); err != nil {
		return fmt.Errorf("agent %d: %w", a.id, err)
	}
	a.held = append(a.held, r)
	a.logHand("acquired", r)
	return nil
}

func (a *Agent) put(r *resource.Resource) error {
	for i := len(a.held) - 1; i >= 0; i-- {
		if a.held[i] != r {
			continue
		}
		a.held = append(a.held[:i], a.held[i+1:]...)
		a.logHand("released", r)
		if err := r.Release(a.id); err != nil {
			return fmt.Errorf("agent %d: %w", a.id, err)
		}
		return nil
	}
	return nil
}

// releaseAll puts every held hand back, most recent first.
func (a *Agent) releaseAll() error {
	var firstErr error
	for len(a.held) > 0 {
		r := a.held[len(a.held)-1]
		if err := a.put(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *Agent) logHand(action string, r *resource.Resource) {
	if a.debug {
		a.log.Debug(fmt.Sprintf("Agent %d %s resource %d", a.id, action, r.ID()))
	}
}
