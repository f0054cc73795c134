// Package session contains the client-side idle guard: a watchdog that
// expires the local session after a period without user activity,
// independent of the hard server-side token lifetime.
package session

import (
	"sync"
	"time"
)

// DefaultIdleTimeout is the idle window after which the session expires.
const DefaultIdleTimeout = 10 * time.Minute

type State int

const (
	StateActive State = iota
	StateExpired
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// timer abstracts time.Timer so tests can drive expiry deterministically.
type timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

type realTimer struct{ *time.Timer }

func (t realTimer) C() <-chan time.Time { return t.Timer.C }

// Guard watches for user activity and fires onExpire exactly once when the
// idle timeout elapses without any. Activity reports are non-blocking and
// safe from any goroutine; the countdown itself is owned by a single
// goroutine started by Start.
type Guard struct {
	timeout  time.Duration
	onExpire func()

	signals chan struct{}
	stop    chan struct{}
	once    sync.Once

	mu    sync.Mutex
	state State

	newTimer func(d time.Duration) timer
}

// NewGuard creates a guard with the given idle timeout. onExpire is called
// from the guard's own goroutine when the timeout elapses; it must not
// block indefinitely.
func NewGuard(timeout time.Duration, onExpire func()) *Guard {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &Guard{
		timeout:  timeout,
		onExpire: onExpire,
		signals:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		state:    StateActive,
		newTimer: func(d time.Duration) timer { return realTimer{time.NewTimer(d)} },
	}
}

// Start launches the countdown goroutine.
func (g *Guard) Start() {
	go g.run()
}

func (g *Guard) run() {
	t := g.newTimer(g.timeout)
	defer t.Stop()

	for {
		select {
		case <-g.signals:
			if !t.Stop() {
				select {
				case <-t.C():
				default:
				}
			}
			t.Reset(g.timeout)

		case <-t.C():
			g.setState(StateExpired)
			g.onExpire()
			return

		case <-g.stop:
			g.setState(StateStopped)
			return
		}
	}
}

// Signal reports user activity, restarting the idle countdown. It never
// blocks: while a report is already pending, further ones are redundant
// and dropped.
func (g *Guard) Signal() {
	select {
	case g.signals <- struct{}{}:
	default:
	}
}

// Stop releases the guard without firing onExpire. Safe to call multiple
// times, and after expiry.
func (g *Guard) Stop() {
	g.once.Do(func() { close(g.stop) })
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) setState(s State) {
	g.mu.Lock()
	// expiry and stop race on shutdown; the first transition wins
	if g.state == StateActive {
		g.state = s
	}
	g.mu.Unlock()
}
