// Package resilience wraps a ch.Client (or a set of them) with retry,
// circuit-breaking, health-checking and load-balancing, the way a server
// fleet's proxy layer protects callers from a single flaky backend.
package resilience

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
)

// ErrNoServerAvailable is returned by a Balancer when every known node is
// unhealthy. A selected node whose circuit is open fails with
// CircuitOpenError instead.
var ErrNoServerAvailable = errors.New("no server available")

// CircuitOpenError is returned when a node's breaker is Open and fails the
// request immediately rather than attempting the network call.
type CircuitOpenError struct {
	Endpoint string
	RetryIn  time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit open for %s, retry in %s", e.Endpoint, e.RetryIn)
}
