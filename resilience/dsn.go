package resilience

import (
	"context"
	"time"

	ch "github.com/netgraph-io/chwire"
)

// NewConnFromDSN builds a resilient Conn from a decoded connection string,
// wiring max_retries/retry_base_delay_ms/retry_max_delay_ms,
// circuit_breaker_threshold/circuit_breaker_duration_s and load_balancing
// into the retry policy, per-node breakers and balancer respectively.
func NewConnFromDSN(opt ch.DSNOptions) (*Conn, error) {
	clientOpt, err := opt.ToOptions()
	if err != nil {
		return nil, err
	}

	dial := func(ctx context.Context, addr string) (*ch.Client, error) {
		return ch.Dial(ctx, addr, clientOpt)
	}

	bal, err := NewBalancer(opt.LoadBalancing)
	if err != nil {
		return nil, err
	}

	retry := DefaultRetryPolicy()
	if opt.MaxRetries > 0 {
		retry.MaxRetries = opt.MaxRetries
	}
	if opt.RetryBaseDelayMs > 0 {
		retry.BaseDelay = time.Duration(opt.RetryBaseDelayMs) * time.Millisecond
	}
	if opt.RetryMaxDelayMs > 0 {
		retry.MaxDelay = time.Duration(opt.RetryMaxDelayMs) * time.Millisecond
	}

	addrs := append([]string{opt.Address()}, opt.AdditionalServers()...)
	conn := NewBalancedConn(dial, addrs, bal, retry)

	for _, n := range conn.Nodes {
		if opt.CircuitBreakerThreshold > 0 {
			n.Breaker.FailureThreshold = opt.CircuitBreakerThreshold
		}
		if opt.CircuitBreakerDurationS > 0 {
			n.Breaker.OpenDuration = time.Duration(opt.CircuitBreakerDurationS) * time.Second
		}
	}

	return conn, nil
}
