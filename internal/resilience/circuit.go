// Package resilience provides the optional retry and circuit breaker
// decorators applied around individual heritage endpoint queries.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed lets queries through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects queries without contacting the endpoint.
	CircuitOpen
	// CircuitHalfOpen lets probe queries through.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when a call is rejected because the circuit is open.
var ErrCircuitOpen = eris.New("resilience: circuit breaker is open")

// CircuitBreakerConfig controls circuit breaker behavior.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before opening
	// the circuit. Default: 5.
	FailureThreshold int

	// ResetTimeout is how long the circuit stays open before transitioning
	// to half-open. Default: 30s.
	ResetTimeout time.Duration

	// HalfOpenMaxProbes is the number of successful probes required in
	// half-open state before closing the circuit. Default: 1.
	HalfOpenMaxProbes int

	// ShouldTrip decides which errors count as failures. If nil, every
	// error except context cancellation counts.
	ShouldTrip func(err error) bool

	// OnStateChange is called when the circuit transitions between states.
	OnStateChange func(from, to CircuitState)
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold:  3,
		ResetTimeout:      60 * time.Second,
		HalfOpenMaxProbes: 1,
	}
}

// CircuitBreaker guards a single endpoint.
type CircuitBreaker struct {
	cfg   CircuitBreakerConfig
	mu    sync.Mutex
	state CircuitState

	consecutiveFailures int
	lastFailureTime     time.Time
	halfOpenSuccesses   int

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// NewCircuitBreaker creates a circuit breaker with the given config.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	d := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = d.FailureThreshold
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = d.ResetTimeout
	}
	if cfg.HalfOpenMaxProbes <= 0 {
		cfg.HalfOpenMaxProbes = 1
	}
	return &CircuitBreaker{
		cfg:     cfg,
		state:   CircuitClosed,
		nowFunc: time.Now,
	}
}

// ExecuteVal runs fn unless the circuit is open, in which case it returns
// ErrCircuitOpen without calling fn.
func ExecuteVal[T any](ctx context.Context, cb *CircuitBreaker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := cb.allowRequest(); err != nil {
		return zero, err
	}

	val, err := fn(ctx)
	cb.recordResult(err)
	return val, err
}

// State returns the current circuit state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && cb.nowFunc().Sub(cb.lastFailureTime) >= cb.cfg.ResetTimeout {
		return CircuitHalfOpen
	}
	return cb.state
}

// Reset forces the circuit closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	old := cb.state
	cb.state = CircuitClosed
	cb.consecutiveFailures = 0
	cb.halfOpenSuccesses = 0
	if old != CircuitClosed && cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(old, CircuitClosed)
	}
}

func (cb *CircuitBreaker) allowRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if cb.nowFunc().Sub(cb.lastFailureTime) >= cb.cfg.ResetTimeout {
			cb.transition(CircuitHalfOpen)
			return nil
		}
		return ErrCircuitOpen
	case CircuitHalfOpen:
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) recordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	shouldTrip := cb.cfg.ShouldTrip
	if shouldTrip == nil {
		shouldTrip = func(e error) bool {
			return !errors.Is(e, context.Canceled)
		}
	}

	if err == nil || !shouldTrip(err) {
		switch cb.state {
		case CircuitHalfOpen:
			cb.halfOpenSuccesses++
			if cb.halfOpenSuccesses >= cb.cfg.HalfOpenMaxProbes {
				cb.transition(CircuitClosed)
				cb.consecutiveFailures = 0
				cb.halfOpenSuccesses = 0
			}
		case CircuitClosed:
			cb.consecutiveFailures = 0
		}
		return
	}

	cb.consecutiveFailures++
	cb.lastFailureTime = cb.nowFunc()

	switch cb.state {
	case CircuitClosed:
		if cb.consecutiveFailures >= cb.cfg.FailureThreshold {
			cb.transition(CircuitOpen)
		}
	case CircuitHalfOpen:
		cb.transition(CircuitOpen)
		cb.halfOpenSuccesses = 0
	}
}

func (cb *CircuitBreaker) transition(to CircuitState) {
	from := cb.state
	cb.state = to
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(from, to)
	}
}

// EndpointBreakers holds one circuit breaker per endpoint name.
type EndpointBreakers struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
	cfg      CircuitBreakerConfig
}

// NewEndpointBreakers creates an empty registry. Every breaker it creates
// shares cfg.
func NewEndpointBreakers(cfg CircuitBreakerConfig) *EndpointBreakers {
	return &EndpointBreakers{
		breakers: make(map[string]*CircuitBreaker),
		cfg:      cfg,
	}
}

// Get returns the breaker for endpoint, creating it on first use.
func (eb *EndpointBreakers) Get(endpoint string) *CircuitBreaker {
	eb.mu.RLock()
	cb, ok := eb.breakers[endpoint]
	eb.mu.RUnlock()
	if ok {
		return cb
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()
	if cb, ok = eb.breakers[endpoint]; ok {
		return cb
	}
	cfg := eb.cfg
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = stateLogger(endpoint)
	}
	cb = NewCircuitBreaker(cfg)
	eb.breakers[endpoint] = cb
	return cb
}

// States returns a snapshot of every known endpoint's circuit state.
func (eb *EndpointBreakers) States() map[string]CircuitState {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	states := make(map[string]CircuitState, len(eb.breakers))
	for name, cb := range eb.breakers {
		states[name] = cb.State()
	}
	return states
}

func stateLogger(endpoint string) func(from, to CircuitState) {
	return func(from, to CircuitState) {
		zap.L().Warn("resilience: endpoint circuit state changed",
			zap.String("endpoint", endpoint),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
}
