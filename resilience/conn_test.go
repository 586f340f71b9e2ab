package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	ch "github.com/netgraph-io/chwire"
)

func TestConn_NoServerAvailable(t *testing.T) {
	dial := func(ctx context.Context, addr string) (*ch.Client, error) {
		t.Fatal("dial should not be called when no node is healthy")
		return nil, nil
	}
	c := NewConn(dial, "node-a", RetryPolicy{})
	c.Nodes[0].RecordResult(errors.New("x"))
	c.Nodes[0].RecordResult(errors.New("x"))
	c.Nodes[0].RecordResult(errors.New("x"))

	err := c.Do(context.Background(), ch.Query{Body: "SELECT 1"})
	require.ErrorIs(t, err, ErrNoServerAvailable)
}

func TestConn_DialFailureTripsBreaker(t *testing.T) {
	dialErr := errors.New("refused")
	dial := func(ctx context.Context, addr string) (*ch.Client, error) {
		return nil, dialErr
	}
	c := NewConn(dial, "node-a", RetryPolicy{MaxRetries: 0})
	c.Nodes[0].Breaker.FailureThreshold = 1

	err := c.Do(context.Background(), ch.Query{Body: "SELECT 1"})
	require.ErrorIs(t, err, dialErr)
	require.Equal(t, Open, c.Nodes[0].Breaker.State())

	// Second call fails fast via the open breaker rather than dialing again.
	err = c.Do(context.Background(), ch.Query{Body: "SELECT 1"})
	var coe *CircuitOpenError
	require.ErrorAs(t, err, &coe)
}

func TestNewBalancedConn_Nodes(t *testing.T) {
	dial := func(ctx context.Context, addr string) (*ch.Client, error) {
		t.Fatal("dial should not be reached: this test only checks the node list")
		return nil, nil
	}
	c := NewBalancedConn(dial, []string{"a", "b"}, &RoundRobinBalancer{}, RetryPolicy{})
	require.Len(t, c.Nodes, 2)
	require.Equal(t, "a", c.Nodes[0].Address)
	require.Equal(t, "b", c.Nodes[1].Address)
}
