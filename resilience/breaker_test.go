package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker("node-a")
	cb.FailureThreshold = 3

	for i := 0; i < 2; i++ {
		require.NoError(t, cb.Allow())
		cb.RecordFailure()
	}
	require.Equal(t, Closed, cb.State())

	require.NoError(t, cb.Allow())
	cb.RecordFailure()
	require.Equal(t, Open, cb.State())

	err := cb.Allow()
	require.Error(t, err)
	var coe *CircuitOpenError
	require.ErrorAs(t, err, &coe)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker("node-b")
	cb.FailureThreshold = 1
	cb.OpenDuration = 10 * time.Millisecond

	require.NoError(t, cb.Allow())
	cb.RecordFailure()
	require.Equal(t, Open, cb.State())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Allow())
	require.Equal(t, HalfOpen, cb.State())

	cb.RecordSuccess()
	require.Equal(t, Closed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker("node-c")
	cb.FailureThreshold = 1
	cb.OpenDuration = 10 * time.Millisecond

	require.NoError(t, cb.Allow())
	cb.RecordFailure()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cb.Allow())
	require.Equal(t, HalfOpen, cb.State())

	cb.RecordFailure()
	require.Equal(t, Open, cb.State())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker("node-d")
	cb.FailureThreshold = 1

	require.NoError(t, cb.Allow())
	cb.RecordFailure()
	require.Equal(t, Open, cb.State())

	cb.Reset()
	require.Equal(t, Closed, cb.State())
	require.NoError(t, cb.Allow())
}

func TestCircuitBreaker_StateChangeEvents(t *testing.T) {
	cb := NewCircuitBreaker("node-e")
	cb.FailureThreshold = 1

	var changes []StateChange
	cb.OnStateChange = func(sc StateChange) {
		changes = append(changes, sc)
	}

	require.NoError(t, cb.Allow())
	cb.RecordFailure()

	require.Len(t, changes, 1)
	require.Equal(t, Closed, changes[0].From)
	require.Equal(t, Open, changes[0].To)
}
