// Package circuitbreaker guards the outbound web fetches. After enough
// consecutive failures the breaker opens and fetch operations fail fast
// for a cooldown period instead of tying up the operation queue on a
// remote endpoint that is down.
package circuitbreaker

import (
	"fmt"
	"sync"
	"time"
)

// State represents the circuit breaker state
type State int

const (
	// StateClosed means calls are allowed
	StateClosed State = iota
	// StateOpen means calls fail fast
	StateOpen
	// StateHalfOpen means one probe call is allowed through
	StateHalfOpen
)

// String returns the string representation of the state
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

// ErrOpen is returned by Call while the breaker is open.
var ErrOpen = fmt.Errorf("circuit breaker is open")

// CircuitBreaker trips open after a number of consecutive failures and
// lets a single probe through once the cooldown has elapsed.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration

	state           State
	failures        int
	lastFailureTime time.Time
}

// New creates a breaker that opens after threshold consecutive failures
// and stays open for cooldown before probing again.
func New(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		state:     StateClosed,
	}
}

// Call runs fn unless the breaker is open, recording the outcome.
// While open it returns ErrOpen without invoking fn.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}
	err := fn()
	cb.afterCall(err)
	return err
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return nil
	case StateOpen:
		if time.Since(cb.lastFailureTime) >= cb.cooldown {
			cb.state = StateHalfOpen
			return nil
		}
		return ErrOpen
	default:
		return fmt.Errorf("unknown circuit breaker state")
	}
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		cb.state = StateClosed
		return
	}

	cb.failures++
	cb.lastFailureTime = time.Now()
	if cb.state == StateHalfOpen || cb.failures >= cb.threshold {
		cb.state = StateOpen
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the breaker and clears the failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
}
