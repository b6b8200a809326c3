package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker opens after more than maxFailures failures inside window,
// stays open for timeout, then lets a single trial call through.
type CircuitBreaker struct {
	maxFailures int
	window      time.Duration
	timeout     time.Duration

	mu       sync.Mutex
	state    State
	failures []time.Time
	openedAt time.Time
	trial    bool

	now      func() time.Time
	onChange func(from, to State)
}

type Option func(*CircuitBreaker)

func WithWindow(window time.Duration) Option {
	return func(cb *CircuitBreaker) { cb.window = window }
}

// WithStateChange registers a hook called on every transition, outside the lock.
func WithStateChange(fn func(from, to State)) Option {
	return func(cb *CircuitBreaker) { cb.onChange = fn }
}

func withClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) { cb.now = now }
}

func New(maxFailures int, timeout time.Duration, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		maxFailures: maxFailures,
		window:      60 * time.Second,
		timeout:     timeout,
		state:       StateClosed,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Execute runs fn unless the breaker is open, in which case it returns ErrOpen
// without calling fn. A call that ends with context.Canceled is neither a
// success nor a failure.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.acquire(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	var from State
	changed := false

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.timeout {
			cb.mu.Unlock()
			return ErrOpen
		}
		from, changed = cb.state, true
		cb.state = StateHalfOpen
		cb.trial = true
	case StateHalfOpen:
		if cb.trial {
			cb.mu.Unlock()
			return ErrOpen
		}
		cb.trial = true
	}
	to := cb.state
	cb.mu.Unlock()

	if changed {
		cb.notify(from, to)
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	from := cb.state
	now := cb.now()

	if errors.Is(err, context.Canceled) {
		cb.trial = false
		cb.mu.Unlock()
		return
	}

	if err != nil {
		cb.failures = append(cb.failures, now)
		cb.dropExpired(now)
		if cb.state == StateHalfOpen || len(cb.failures) > cb.maxFailures {
			cb.state = StateOpen
			cb.openedAt = now
		}
	} else if cb.state == StateHalfOpen {
		cb.state = StateClosed
		cb.failures = cb.failures[:0]
	} else {
		cb.dropExpired(now)
	}
	cb.trial = false
	to := cb.state
	cb.mu.Unlock()

	if from != to {
		cb.notify(from, to)
	}
}

func (cb *CircuitBreaker) dropExpired(now time.Time) {
	cutoff := now.Add(-cb.window)
	i := 0
	for i < len(cb.failures) && !cb.failures[i].After(cutoff) {
		i++
	}
	cb.failures = cb.failures[i:]
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.onChange != nil {
		cb.onChange(from, to)
	}
}
