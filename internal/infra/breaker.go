package infra

import (
	"errors"
	"sync"
	"time"
)

// Breaker stops calling a failing dependency (the SMTP relay) for a while
// after too many consecutive failures.
//
//   - closed:    calls go through
//   - open:      calls fail with ErrBreakerOpen until the cool-down elapses
//   - half-open: one trial call decides between closed and open
type Breaker struct {
	mu        sync.Mutex
	state     BreakerState
	failures  int
	openedAt  time.Time
	threshold int
	coolDown  time.Duration
	now       func() time.Time
}

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrBreakerOpen is returned without calling the dependency.
var ErrBreakerOpen = errors.New("breaker open")

func NewBreaker(threshold int, coolDown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if coolDown <= 0 {
		coolDown = time.Minute
	}
	return &Breaker{threshold: threshold, coolDown: coolDown, now: time.Now}
}

// State reports the current state, moving open → half-open once the
// cool-down has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) stateLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.coolDown {
		b.state = BreakerHalfOpen
	}
	return b.state
}

// Do runs fn unless the breaker is open. Only one trial call runs while half-open;
// concurrent callers are turned away.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	switch b.stateLocked() {
	case BreakerOpen:
		b.mu.Unlock()
		return ErrBreakerOpen
	case BreakerHalfOpen:
		// Re-open until the trial call reports back.
		b.state, b.openedAt = BreakerOpen, b.now()
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.failures >= b.threshold || b.state == BreakerOpen {
			b.state, b.openedAt = BreakerOpen, b.now()
		}
		return err
	}
	b.state, b.failures = BreakerClosed, 0
	return nil
}
