package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ch "github.com/netgraph-io/chwire"
)

func TestHealthChecker_RecordsDialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	hc := NewHealthChecker(func(ctx context.Context, addr string) (*ch.Client, error) {
		return nil, dialErr
	})
	hc.Interval = 5 * time.Millisecond
	hc.Timeout = 5 * time.Millisecond

	n := NewNode("node-a")
	hc.Register(n)

	var mu sync.Mutex
	var results []CheckResult
	hc.OnCheck = func(r CheckResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	hc.checkOne(context.Background(), n)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, dialErr)
	require.Equal(t, int64(1), n.ConsecutiveFailures())
}

func TestHealthChecker_StartStop(t *testing.T) {
	hc := NewHealthChecker(func(ctx context.Context, addr string) (*ch.Client, error) {
		return nil, errors.New("no server in this environment")
	})
	hc.Interval = 2 * time.Millisecond
	hc.Timeout = 2 * time.Millisecond
	hc.Register(NewNode("node-a"))

	hc.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	hc.Stop()
}
