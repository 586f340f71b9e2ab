package resilience

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNode_UnhealthyAfterThreeFailures(t *testing.T) {
	n := NewNode("node-a")
	require.True(t, n.IsHealthy())

	n.RecordResult(errors.New("boom"))
	require.True(t, n.IsHealthy())
	n.RecordResult(errors.New("boom"))
	require.True(t, n.IsHealthy())
	n.RecordResult(errors.New("boom"))
	require.False(t, n.IsHealthy())
}

func TestNode_SuccessResetsFailures(t *testing.T) {
	n := NewNode("node-a")
	n.RecordResult(errors.New("boom"))
	n.RecordResult(errors.New("boom"))
	n.RecordResult(nil)
	require.Equal(t, int64(0), n.ConsecutiveFailures())
	require.True(t, n.IsHealthy())
}

func TestNode_MarkHealthy(t *testing.T) {
	n := NewNode("node-a")
	n.RecordResult(errors.New("boom"))
	n.RecordResult(errors.New("boom"))
	n.RecordResult(errors.New("boom"))
	require.False(t, n.IsHealthy())

	n.MarkHealthy()
	require.True(t, n.IsHealthy())
	require.Equal(t, int64(0), n.ConsecutiveFailures())
}
