package reliability

import (
	"log/slog"
	"sync"
	"time"
)

// CircuitState is one state of a CircuitBreaker's CLOSED -> OPEN ->
// HALF_OPEN -> CLOSED state machine.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker short-circuits calls after repeated failures, giving a
// failing dependency time to recover before probing it again.
type CircuitBreaker struct {
	name    string
	logger  *slog.Logger
	maxFailures int
	resetTimeout time.Duration

	mu              sync.Mutex
	state           CircuitState
	failures        int
	lastFailureTime time.Time
}

// NewCircuitBreaker builds a CircuitBreaker named name that opens after
// maxFailures consecutive failures and stays open for resetTimeout before
// probing again. A nil logger falls back to slog.Default().
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration, logger *slog.Logger) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CircuitBreaker{
		name:         name,
		logger:       logger,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// Execute runs fn if the circuit allows it, recording the outcome.
// Returns ErrCircuitOpen without calling fn when the circuit is open and
// resetTimeout has not yet elapsed.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.canExecute() {
		return ErrCircuitOpen
	}

	err := fn()
	cb.recordResult(err)
	return err
}

func (cb *CircuitBreaker) canExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastFailureTime) > cb.resetTimeout {
			cb.state = StateHalfOpen
			cb.logger.Info("circuit breaker probing", "circuit", cb.name)
			return true
		}
		return false
	case StateHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) recordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.state = StateClosed
			cb.logger.Info("circuit breaker closed after successful probe", "circuit", cb.name)
		}
		return
	}

	cb.failures++
	cb.lastFailureTime = time.Now()

	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.logger.Warn("circuit breaker reopened, probe failed", "circuit", cb.name, "error", err)
		return
	}

	if cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.logger.Error("circuit breaker opened", "circuit", cb.name, "failures", cb.failures, "error", err)
	}
}

// State returns the circuit's current state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the circuit back to CLOSED, clearing failure history.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
}
