package resilience

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errRetryable = errors.New("probe failed")

func nodeSet(addrs ...string) []*Node {
	nodes := make([]*Node, len(addrs))
	for i, a := range addrs {
		nodes[i] = NewNode(a)
	}
	return nodes
}

func TestRoundRobinBalancer_Cycles(t *testing.T) {
	nodes := nodeSet("a", "b", "c")
	b := &RoundRobinBalancer{}

	var picks []string
	for i := 0; i < 6; i++ {
		n, err := b.Select(nodes)
		require.NoError(t, err)
		picks = append(picks, n.Address)
	}
	require.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, picks)
}

func TestRoundRobinBalancer_SkipsUnhealthy(t *testing.T) {
	nodes := nodeSet("a", "b")
	nodes[0].RecordResult(errRetryable)
	nodes[0].RecordResult(errRetryable)
	nodes[0].RecordResult(errRetryable)
	require.False(t, nodes[0].IsHealthy())

	b := &RoundRobinBalancer{}
	for i := 0; i < 3; i++ {
		n, err := b.Select(nodes)
		require.NoError(t, err)
		require.Equal(t, "b", n.Address)
	}
}

func TestFirstAvailableBalancer(t *testing.T) {
	nodes := nodeSet("a", "b")
	nodes[0].RecordResult(errRetryable)
	nodes[0].RecordResult(errRetryable)
	nodes[0].RecordResult(errRetryable)

	n, err := FirstAvailableBalancer{}.Select(nodes)
	require.NoError(t, err)
	require.Equal(t, "b", n.Address)
}

func TestBalancer_NoneHealthy(t *testing.T) {
	nodes := nodeSet("a")
	nodes[0].RecordResult(errRetryable)
	nodes[0].RecordResult(errRetryable)
	nodes[0].RecordResult(errRetryable)

	_, err := (&RoundRobinBalancer{}).Select(nodes)
	require.ErrorIs(t, err, ErrNoServerAvailable)
}

func TestNewBalancer(t *testing.T) {
	for _, name := range []string{"", "round_robin", "random", "first_available"} {
		_, err := NewBalancer(name)
		require.NoError(t, err)
	}
	_, err := NewBalancer("bogus")
	require.Error(t, err)
}
