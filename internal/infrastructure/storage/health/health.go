package health

import (
	"sync"
	"time"
)

// State of the storage health gate.
type State int

const (
	Healthy State = iota
	Degraded
)

func (s State) String() string {
	if s == Degraded {
		return "degraded"
	}
	return "healthy"
}

// DefaultCooldown is how long the gate stays degraded after a failure.
const DefaultCooldown = 5 * time.Second

// Gate tracks storage availability. After a failure it short-circuits
// callers until the cooldown elapses, so a broken database does not
// produce an error storm of immediate retries.
type Gate struct {
	mu       sync.Mutex
	state    State
	until    time.Time
	cooldown time.Duration
	now      func() time.Time
}

// Option configures a Gate.
type Option func(*Gate)

// WithClock injects the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithCooldown overrides the degraded window.
func WithCooldown(d time.Duration) Option {
	return func(g *Gate) { g.cooldown = d }
}

func NewGate(opts ...Option) *Gate {
	g := &Gate{
		state:    Healthy,
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Available reports whether storage operations may be attempted.
// A degraded gate recovers automatically once the cooldown elapses.
func (g *Gate) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state, g.until = transition(g.state, g.until, g.now())
	return g.state == Healthy
}

// MarkFailure records a storage failure and opens the degraded window.
func (g *Gate) MarkFailure() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = Degraded
	g.until = g.now().Add(g.cooldown)
}

// State returns the current state after applying cooldown expiry.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state, g.until = transition(g.state, g.until, g.now())
	return g.state
}

// transition is the pure state function: Degraded becomes Healthy
// once now passes the cooldown deadline.
func transition(state State, until time.Time, now time.Time) (State, time.Time) {
	if state == Degraded && !now.Before(until) {
		return Healthy, time.Time{}
	}
	return state, until
}
