package resilience

import (
	"context"
	"sync"

	"go.uber.org/zap"

	ch "github.com/netgraph-io/chwire"
	"github.com/netgraph-io/chwire/proto"
)

// Dialer opens a connection to addr.
type Dialer func(ctx context.Context, addr string) (*ch.Client, error)

// Conn composes a node selector, per-node circuit breakers and a retry
// policy around each logical operation. Only the initial connect/query
// issuance is retried: once a result block has been delivered to
// q.OnResult, a mid-stream failure is surfaced to the caller directly. A
// query without OnResult is retried as a whole.
type Conn struct {
	Dial    Dialer
	Nodes   []*Node
	Balance Balancer
	Retry   RetryPolicy
	Logger  *zap.Logger

	mu      sync.Mutex
	clients map[string]*ch.Client
}

// NewConn builds a resilient connection over a single endpoint, with no
// load balancer: every attempt targets the same node.
func NewConn(dial Dialer, addr string, retry RetryPolicy) *Conn {
	return &Conn{
		Dial:    dial,
		Nodes:   []*Node{NewNode(addr)},
		Balance: FirstAvailableBalancer{},
		Retry:   retry,
		Logger:  zap.NewNop(),
		clients: make(map[string]*ch.Client),
	}
}

// NewBalancedConn builds a resilient connection fronting multiple
// endpoints selected per bal.
func NewBalancedConn(dial Dialer, addrs []string, bal Balancer, retry RetryPolicy) *Conn {
	nodes := make([]*Node, len(addrs))
	for i, a := range addrs {
		nodes[i] = NewNode(a)
	}
	return &Conn{
		Dial:    dial,
		Nodes:   nodes,
		Balance: bal,
		Retry:   retry,
		Logger:  zap.NewNop(),
		clients: make(map[string]*ch.Client),
	}
}

func (c *Conn) clientFor(ctx context.Context, n *Node) (*ch.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cl, ok := c.clients[n.Address]; ok && !cl.IsClosed() {
		return cl, nil
	}
	cl, err := c.Dial(ctx, n.Address)
	if err != nil {
		return nil, err
	}
	c.clients[n.Address] = cl
	return cl, nil
}

// Do selects a healthy node, runs q through its breaker and the retry
// policy, and records the outcome against both the breaker and the node's
// consecutive-failure count.
func (c *Conn) Do(ctx context.Context, q ch.Query) error {
	var streaming bool
	policy := c.Retry
	retryable := policy.retryable
	policy.Retryable = func(err error) bool { return !streaming && retryable(err) }
	if onResult := q.OnResult; onResult != nil {
		q.OnResult = func(ctx context.Context, block proto.Block) error {
			streaming = true
			return onResult(ctx, block)
		}
	}
	return policy.Do(ctx, func(ctx context.Context) error {
		n, err := c.Balance.Select(c.Nodes)
		if err != nil {
			return err
		}
		if err := n.Breaker.Allow(); err != nil {
			return err
		}

		cl, err := c.clientFor(ctx, n)
		if err != nil {
			n.Breaker.RecordFailure()
			n.RecordResult(err)
			return err
		}

		err = cl.Do(ctx, q)
		if ctx.Err() != nil {
			// Cancellation is not a breaker failure.
			return err
		}
		if err != nil {
			n.Breaker.RecordFailure()
			n.RecordResult(err)
			return err
		}
		n.Breaker.RecordSuccess()
		n.RecordResult(nil)
		return nil
	})
}

// Ping runs a Ping against a selected node through the same selection,
// breaker and retry machinery as Do.
func (c *Conn) Ping(ctx context.Context) error {
	return c.Retry.Do(ctx, func(ctx context.Context) error {
		n, err := c.Balance.Select(c.Nodes)
		if err != nil {
			return err
		}
		if err := n.Breaker.Allow(); err != nil {
			return err
		}
		cl, err := c.clientFor(ctx, n)
		if err != nil {
			n.Breaker.RecordFailure()
			n.RecordResult(err)
			return err
		}
		err = cl.Ping(ctx)
		if err != nil {
			n.Breaker.RecordFailure()
			n.RecordResult(err)
			return err
		}
		n.Breaker.RecordSuccess()
		n.RecordResult(nil)
		return nil
	})
}

// Close closes every underlying connection this Conn has opened.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	for addr, cl := range c.clients {
		if cerr := cl.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(c.clients, addr)
	}
	return err
}
