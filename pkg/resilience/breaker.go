package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// CircuitState is the state of a circuit breaker.
//
//	CLOSED ──[failure threshold]──► OPEN
//	   ▲                              │
//	   └───[success]◄── HALF_OPEN ◄──[timeout]
type CircuitState int

const (
	// CircuitClosed is the normal operating state.
	CircuitClosed CircuitState = iota

	// CircuitOpen means the circuit has tripped and calls are rejected.
	CircuitOpen

	// CircuitHalfOpen means we're testing if the service has recovered.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig controls how the breaker trips and recovers.
type BreakerConfig struct {
	// FailureThreshold is consecutive failures before opening.
	FailureThreshold int

	// SuccessThreshold is consecutive successes to close from half-open.
	SuccessThreshold int

	// OpenTimeout is how long to stay open before trying half-open.
	OpenTimeout time.Duration

	// OnStateChange is called asynchronously on transitions.
	OnStateChange func(from, to CircuitState)
}

// DefaultBreakerConfig returns sensible defaults for reasoning-service calls.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// Breaker stops calls to the reasoning service once it is known to be
// failing, so every turn doesn't pay a full timeout while it is down.
// Safe for concurrent use.
type Breaker struct {
	config      BreakerConfig
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
	mu          sync.RWMutex
}

func NewBreaker(config BreakerConfig) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 2
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}

	return &Breaker{
		config: config,
		state:  CircuitClosed,
	}
}

// Execute runs fn if the circuit allows it and records the outcome.
// Returns ErrCircuitOpen without calling fn when the circuit is open.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allowRequest() {
		return ErrCircuitOpen
	}

	err := fn()
	b.recordResult(err)
	return err
}

func (b *Breaker) allowRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		return true

	case CircuitOpen:
		if time.Since(b.lastFailure) > b.config.OpenTimeout {
			b.transitionTo(CircuitHalfOpen)
			return true
		}
		return false

	case CircuitHalfOpen:
		// Allow limited requests in half-open to test recovery
		return true

	default:
		return false
	}
}

func (b *Breaker) recordResult(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.recordFailure()
	} else {
		b.recordSuccess()
	}
}

func (b *Breaker) recordFailure() {
	b.failures++
	b.successes = 0
	b.lastFailure = time.Now()

	switch b.state {
	case CircuitClosed:
		if b.failures >= b.config.FailureThreshold {
			b.transitionTo(CircuitOpen)
		}
	case CircuitHalfOpen:
		// Any failure in half-open goes back to open
		b.transitionTo(CircuitOpen)
	}
}

func (b *Breaker) recordSuccess() {
	b.successes++

	switch b.state {
	case CircuitClosed:
		b.failures = 0
	case CircuitHalfOpen:
		if b.successes >= b.config.SuccessThreshold {
			b.failures = 0
			b.transitionTo(CircuitClosed)
		}
	}
}

func (b *Breaker) transitionTo(state CircuitState) {
	if b.state == state {
		return
	}

	old := b.state
	b.state = state

	if b.config.OnStateChange != nil {
		// Call callback without holding lock to prevent deadlocks
		go b.config.OnStateChange(old, state)
	}
}

// State returns the current circuit state.
func (b *Breaker) State() CircuitState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.failures
}

// Reset forces the circuit back to closed. Use when the dependency is
// known to have been fixed externally.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.state
	b.state = CircuitClosed
	b.failures = 0
	b.successes = 0

	if old != CircuitClosed && b.config.OnStateChange != nil {
		go b.config.OnStateChange(old, CircuitClosed)
	}
}
