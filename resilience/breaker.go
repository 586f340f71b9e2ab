package resilience

import (
	"sync"
	"time"
)

// State is a circuit breaker state.
type State int64

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// StateChange describes a breaker transition, delivered outside the
// breaker's internal lock so OnStateChange may safely call back into it.
type StateChange struct {
	Endpoint string
	From     State
	To       State
	Failures int
}

// CircuitBreaker is a per-endpoint three-state breaker: Closed (normal
// operation) -> Open (failing fast) -> HalfOpen (single trial request) ->
// Closed or back to Open. Grounded on the fixed failure-threshold/timeout
// shape of a typical reverse-proxy breaker, generalized to a rolling
// failure window and an explicit half-open trial instead of Closed/Open
// alone.
type CircuitBreaker struct {
	Endpoint        string
	FailureThreshold int
	OpenDuration    time.Duration
	FailureWindow   time.Duration

	OnStateChange func(StateChange)

	mu              sync.Mutex
	state           State
	failures        int
	windowStart     time.Time
	lastStateChange time.Time
	halfOpenInFlight bool
}

// NewCircuitBreaker returns a breaker with default parameters: a failure
// threshold of 5, a 30s open duration, and a 1-minute failure window.
func NewCircuitBreaker(endpoint string) *CircuitBreaker {
	return &CircuitBreaker{
		Endpoint:         endpoint,
		FailureThreshold: 5,
		OpenDuration:     30 * time.Second,
		FailureWindow:    time.Minute,
	}
}

// Allow reports whether a request may proceed, advancing Open -> HalfOpen
// when the open duration has elapsed. Returns a CircuitOpenError when the
// circuit is Open (or already trialing in HalfOpen).
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	var change *StateChange
	defer func() {
		cb.mu.Unlock()
		if change != nil && cb.OnStateChange != nil {
			cb.OnStateChange(*change)
		}
	}()

	switch cb.state {
	case Closed:
		return nil
	case HalfOpen:
		if cb.halfOpenInFlight {
			return &CircuitOpenError{Endpoint: cb.Endpoint, RetryIn: 0}
		}
		cb.halfOpenInFlight = true
		return nil
	case Open:
		if time.Since(cb.lastStateChange) >= cb.OpenDuration {
			change = &StateChange{Endpoint: cb.Endpoint, From: cb.state, To: HalfOpen, Failures: cb.failures}
			cb.state = HalfOpen
			cb.lastStateChange = time.Now()
			cb.halfOpenInFlight = true
			return nil
		}
		retryIn := cb.OpenDuration - time.Since(cb.lastStateChange)
		return &CircuitOpenError{Endpoint: cb.Endpoint, RetryIn: retryIn}
	}
	return nil
}

// RecordSuccess reports a successful call. In HalfOpen this closes the
// circuit; in Closed it resets the failure window.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	var change *StateChange
	defer func() {
		cb.mu.Unlock()
		if change != nil && cb.OnStateChange != nil {
			cb.OnStateChange(*change)
		}
	}()

	switch cb.state {
	case HalfOpen:
		change = &StateChange{Endpoint: cb.Endpoint, From: cb.state, To: Closed, Failures: 0}
		cb.state = Closed
		cb.lastStateChange = time.Now()
		cb.halfOpenInFlight = false
		cb.failures = 0
		cb.windowStart = time.Time{}
	case Closed:
		cb.failures = 0
		cb.windowStart = time.Time{}
	}
}

// RecordFailure reports a failed call. A failure during HalfOpen reopens
// the circuit immediately; in Closed it increments the rolling-window
// count and opens the circuit once the threshold is reached.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	var change *StateChange
	defer func() {
		cb.mu.Unlock()
		if change != nil && cb.OnStateChange != nil {
			cb.OnStateChange(*change)
		}
	}()

	now := time.Now()
	switch cb.state {
	case HalfOpen:
		change = &StateChange{Endpoint: cb.Endpoint, From: cb.state, To: Open, Failures: cb.failures + 1}
		cb.state = Open
		cb.lastStateChange = now
		cb.halfOpenInFlight = false
		cb.failures++
	case Closed:
		if cb.windowStart.IsZero() || now.Sub(cb.windowStart) > cb.FailureWindow {
			cb.windowStart = now
			cb.failures = 1
		} else {
			cb.failures++
		}
		if cb.failures >= cb.FailureThreshold {
			change = &StateChange{Endpoint: cb.Endpoint, From: cb.state, To: Open, Failures: cb.failures}
			cb.state = Open
			cb.lastStateChange = now
		}
	}
}

// Reset forces the circuit back to Closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	var change *StateChange
	if cb.state != Closed {
		change = &StateChange{Endpoint: cb.Endpoint, From: cb.state, To: Closed, Failures: 0}
	}
	cb.state = Closed
	cb.failures = 0
	cb.windowStart = time.Time{}
	cb.lastStateChange = time.Now()
	cb.halfOpenInFlight = false
	cb.mu.Unlock()
	if change != nil && cb.OnStateChange != nil {
		cb.OnStateChange(*change)
	}
}

// State reports the current state without advancing Open -> HalfOpen.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
