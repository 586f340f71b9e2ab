package resilience

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ch "github.com/netgraph-io/chwire"
	"github.com/netgraph-io/chwire/proto"
)

// CheckResult is delivered to HealthChecker.OnCheck after each probe.
type CheckResult struct {
	Node     *Node
	Err      error
	Duration time.Duration
}

// HealthChecker periodically dials each registered node under a short
// deadline and runs "SELECT 1", feeding the outcome into the node's
// RecordResult.
type HealthChecker struct {
	Interval time.Duration
	Timeout  time.Duration
	Dialer   func(ctx context.Context, addr string) (*ch.Client, error)
	OnCheck  func(CheckResult)
	Logger   *zap.Logger

	mu     sync.Mutex
	nodes  []*Node
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHealthChecker returns a checker with the default timings: a 10s
// interval between checks and a 5s per-check deadline.
func NewHealthChecker(dialer func(ctx context.Context, addr string) (*ch.Client, error)) *HealthChecker {
	return &HealthChecker{
		Interval: 10 * time.Second,
		Timeout:  5 * time.Second,
		Dialer:   dialer,
		Logger:   zap.NewNop(),
	}
}

// Register adds a node to the checked set.
func (h *HealthChecker) Register(n *Node) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodes = append(h.nodes, n)
}

// Start launches the background probe loop. Stop cancels and waits for it
// to exit.
func (h *HealthChecker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(h.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.checkAll(ctx)
			}
		}
	}()
}

// Stop cancels the background loop and waits for it to exit.
func (h *HealthChecker) Stop() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *HealthChecker) checkAll(ctx context.Context) {
	h.mu.Lock()
	nodes := append([]*Node(nil), h.nodes...)
	h.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, n := range nodes {
		n := n
		g.Go(func() error {
			h.checkOne(gctx, n)
			return nil
		})
	}
	_ = g.Wait()
}

func (h *HealthChecker) checkOne(ctx context.Context, n *Node) {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	err := h.probe(checkCtx, n.Address)
	n.RecordResult(err)

	result := CheckResult{Node: n, Err: err, Duration: time.Since(start)}
	if ce := h.Logger.Check(zap.DebugLevel, "health check"); ce != nil {
		ce.Write(zap.String("endpoint", n.Address), zap.Bool("healthy", n.IsHealthy()), zap.Error(err))
	}
	if h.OnCheck != nil {
		h.OnCheck(result)
	}
}

func (h *HealthChecker) probe(ctx context.Context, addr string) error {
	c, err := h.Dialer(ctx, addr)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	col := proto.NewColUInt8()
	return c.Do(ctx, ch.Query{
		Body: "SELECT 1",
		Result: proto.Results{
			{Name: "1", Data: col},
		},
	})
}
