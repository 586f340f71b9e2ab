package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ch "github.com/netgraph-io/chwire"
)

func TestRetryPolicy_SucceedsAfterRetries(t *testing.T) {
	p := RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         time.Millisecond,
		BackoffMultiplier: 2,
		MaxDelay:          10 * time.Millisecond,
	}

	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return &ch.Exception{Code: 209, Name: "SOCKET_TIMEOUT"}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryPolicy_NonRetryableFailsFast(t *testing.T) {
	p := DefaultRetryPolicy()

	attempts := 0
	sentinel := errors.New("not transient")
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, 1, attempts)
}

func TestRetryPolicy_ExhaustionAggregates(t *testing.T) {
	p := RetryPolicy{
		MaxRetries:        2,
		BaseDelay:         time.Millisecond,
		BackoffMultiplier: 2,
		MaxDelay:          5 * time.Millisecond,
	}

	attempts := 0
	err := p.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return &ch.Exception{Code: 209, Name: "SOCKET_TIMEOUT"}
	})
	require.Error(t, err)
	require.Equal(t, 3, attempts)
}

func TestRetryPolicy_CancellationPropagatesImmediately(t *testing.T) {
	p := DefaultRetryPolicy()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := p.Do(ctx, func(ctx context.Context) error {
		attempts++
		return &ch.Exception{Code: 209, Name: "SOCKET_TIMEOUT"}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}

func TestDefaultRetryable_ServerExceptionCodes(t *testing.T) {
	require.True(t, DefaultRetryable(&ch.Exception{Code: 159}))
	require.False(t, DefaultRetryable(&ch.Exception{Code: 999}))
}

func TestDefaultRetryable_NestedException(t *testing.T) {
	err := &ch.Exception{Code: 999, Nested: &ch.Exception{Code: 210}}
	require.True(t, DefaultRetryable(err))
}
