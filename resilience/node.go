package resilience

import (
	"sync/atomic"
	"time"
)

// Node tracks the health of one server endpoint across the lifetime of a
// resilient connection.
type Node struct {
	Address string

	healthy             atomic.Bool
	lastCheckAt         atomic.Int64 // unix nano
	consecutiveFailures atomic.Int64

	Breaker *CircuitBreaker
}

// unhealthyThreshold marks a node unhealthy once consecutive failures
// reach this count.
const unhealthyThreshold = 3

// NewNode creates a Node, initially considered healthy.
func NewNode(address string) *Node {
	n := &Node{Address: address, Breaker: NewCircuitBreaker(address)}
	n.healthy.Store(true)
	return n
}

// IsHealthy reports the node's last-known health.
func (n *Node) IsHealthy() bool {
	return n.healthy.Load()
}

// LastCheckAt returns the time of the last RecordResult call (a health
// probe or a query outcome), or the zero time if none has happened yet.
func (n *Node) LastCheckAt() time.Time {
	ns := n.lastCheckAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// ConsecutiveFailures returns the current run of consecutive failures.
func (n *Node) ConsecutiveFailures() int64 {
	return n.consecutiveFailures.Load()
}

// RecordResult updates health from a probe or query outcome: success resets
// the failure run and marks the node healthy; failure increments the run
// and marks the node unhealthy once it reaches unhealthyThreshold.
func (n *Node) RecordResult(err error) {
	n.lastCheckAt.Store(time.Now().UnixNano())
	if err == nil {
		n.consecutiveFailures.Store(0)
		n.healthy.Store(true)
		return
	}
	failures := n.consecutiveFailures.Add(1)
	if failures >= unhealthyThreshold {
		n.healthy.Store(false)
	}
}

// MarkHealthy forces the node healthy and resets its failure run,
// independent of RecordResult.
func (n *Node) MarkHealthy() {
	n.consecutiveFailures.Store(0)
	n.healthy.Store(true)
}
