// Package resource provides the shared, lockable units agents contend for.
//
// A Resource is modelled as a tray with room for a single token. The token
// sits in the tray while the resource is free; taking it out is acquiring,
// putting it back is releasing. The tray is the only synchronization a
// Resource exposes; nothing outside this package reaches into it.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// NoHolder is the holder id reported by a free resource.
const NoHolder = -1

var (
	// ErrNotHolder is returned when an agent releases a resource it does not hold.
	ErrNotHolder = errors.New("resource not held by caller")

	// ErrCorrupted is returned when the tray and the recorded holder disagree.
	// It means the mutual-exclusion invariant is already broken and is fatal.
	ErrCorrupted = errors.New("resource state corrupted")
)

// Observer is notified of every acquisition and release. Callbacks run while
// the resource is held by agent, so an observer sees acquire/release pairs on
// one resource in order. Implementations must be safe for concurrent use
// across resources.
type Observer interface {
	Acquired(resource, agent int)
	Released(resource, agent int)
}

// Resource is a single shared unit with an identity.
// It is safe for concurrent use.
type Resource struct {
	id     int
	tray   chan struct{}
	holder atomic.Int64
	obs    Observer
}

// Option configures a Resource.
type Option func(*Resource)

// WithObserver attaches an observer to the resource.
func WithObserver(obs Observer) Option {
	return func(r *Resource) {
		r.obs = obs
	}
}

// New creates a free resource with the given identity.
func New(id int, opts ...Option) *Resource {
	r := &Resource{
		id:   id,
		tray: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.holder.Store(NoHolder)
	r.tray <- struct{}{}
	return r
}

// Ring creates n resources with identities 0 through n-1.
func Ring(n int, opts ...Option) []*Resource {
	ring := make([]*Resource, n)
	for i := range ring {
		ring[i] = New(i, opts...)
	}
	return ring
}

// ID returns the resource identity.
func (r *Resource) ID() int {
	return r.id
}

// TryAcquire takes the resource for agent if it is free.
// It returns false with no side effect when another agent holds it.
func (r *Resource) TryAcquire(agent int) (bool, error) {
	select {
	case <-r.tray:
		return true, r.claim(agent)
	default:
		return false, nil
	}
}

// Acquire blocks until the resource is free or ctx is done.
// On cancellation the resource is not held and ctx.Err() is returned.
func (r *Resource) Acquire(ctx context.Context, agent int) error {
	select {
	case <-r.tray:
		return r.claim(agent)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release gives the resource back. Only the current holder may release, and
// only once per successful acquisition.
func (r *Resource) Release(agent int) error {
	if cur := r.holder.Load(); agent == NoHolder || cur != int64(agent) {
		return fmt.Errorf("release resource %d by agent %d (holder %d): %w", r.id, agent, cur, ErrNotHolder)
	}
	if r.obs != nil {
		r.obs.Released(r.id, agent)
	}
	if !r.holder.CompareAndSwap(int64(agent), NoHolder) {
		return fmt.Errorf("release resource %d by agent %d: %w", r.id, agent, ErrCorrupted)
	}
	select {
	case r.tray <- struct{}{}:
		return nil
	default:
		return fmt.Errorf("release resource %d: tray already full: %w", r.id, ErrCorrupted)
	}
}

// Holder returns the agent holding the resource, if any.
func (r *Resource) Holder() (int, bool) {
	h := r.holder.Load()
	if h == NoHolder {
		return NoHolder, false
	}
	return int(h), true
}

// claim records agent as holder after the token was taken from the tray.
// If a holder is already recorded the token goes back, so the caller holds
// nothing and the resource is not left locked.
func (r *Resource) claim(agent int) error {
	if !r.holder.CompareAndSwap(NoHolder, int64(agent)) {
		select {
		case r.tray <- struct{}{}:
		default:
		}
		return fmt.Errorf("acquire resource %d by agent %d (holder %d): %w", r.id, agent, r.holder.Load(), ErrCorrupted)
	}
	if r.obs != nil {
		r.obs.Acquired(r.id, agent)
	}
	return nil
}
