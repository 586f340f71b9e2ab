package resilience

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"time"

	"go.uber.org/multierr"

	ch "github.com/netgraph-io/chwire"
)

// retryableCodes are server exception codes considered transient: the
// query failed for reasons unrelated to its correctness and may succeed on
// a subsequent attempt.
var retryableCodes = map[int32]bool{
	159: true, // TIMEOUT_EXCEEDED
	164: true, // READONLY
	209: true, // SOCKET_TIMEOUT
	210: true, // NETWORK_ERROR
	242: true, // TABLE_IS_READ_ONLY
	252: true, // TOO_MANY_PARTS
}

// RetryPolicy describes how a failed operation is retried.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first. Zero disables
	// retrying entirely (the operation runs exactly once).
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// BackoffMultiplier scales BaseDelay for each subsequent attempt.
	BackoffMultiplier float64
	// MaxDelay caps the computed delay before jitter is applied.
	MaxDelay time.Duration
	// Retryable decides whether err should be retried. Defaults to
	// DefaultRetryable.
	Retryable func(err error) bool
}

// DefaultRetryPolicy returns the policy's default parameters: 3 retries,
// 100ms base delay, 2x backoff multiplier, 30s max delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         100 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxDelay:          30 * time.Second,
	}
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return DefaultRetryable(err)
}

// delay computes the backoff for attempt k (1-based), including jitter
// sampled uniformly in [0, 0.25] of the computed delay.
func (p RetryPolicy) delay(k int) time.Duration {
	base := p.BaseDelay
	mult := p.BackoffMultiplier
	if mult <= 0 {
		mult = 2.0
	}
	d := float64(base)
	for i := 1; i < k; i++ {
		d *= mult
	}
	if max := float64(p.MaxDelay); p.MaxDelay > 0 && d > max {
		d = max
	}
	jitter := 1 + rand.Float64()*0.25
	return time.Duration(d * jitter)
}

// Do runs op, retrying per the policy while ctx is not done and the error
// is retryable. Cancellation is propagated immediately and never retried.
// On exhaustion, the last error is returned directly if only one attempt
// ran; otherwise every attempt's error is bundled via multierr.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var errs error
	attempts := p.MaxRetries + 1

	for k := 1; k <= attempts; k++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		errs = multierr.Append(errs, err)
		if k == attempts || !p.retryable(err) {
			if k == 1 {
				return err
			}
			return errs
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(k)):
		}
	}
	return errs
}

// DefaultRetryable implements the default retryable predicate: socket,
// timeout, and I/O errors; server exceptions with a known-transient code;
// aggregate errors where any member is retryable; and any error whose cause
// chain contains a retryable error.
func DefaultRetryable(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var exc *ch.Exception
	if errors.As(err, &exc) {
		for e := exc; e != nil; e = e.Nested {
			if retryableCodes[e.Code] {
				return true
			}
		}
	}

	if subs := multierr.Errors(err); len(subs) > 1 {
		for _, sub := range subs {
			if DefaultRetryable(sub) {
				return true
			}
		}
	}

	if cause := errors.Unwrap(err); cause != nil {
		return DefaultRetryable(cause)
	}
	return false
}
