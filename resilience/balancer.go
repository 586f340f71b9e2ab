package resilience

import (
	"math/rand"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
)

// Balancer selects one healthy node from a set of candidates.
type Balancer interface {
	Select(nodes []*Node) (*Node, error)
}

// healthyNodes filters nodes to those currently marked healthy.
func healthyNodes(nodes []*Node) []*Node {
	healthy := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsHealthy() {
			healthy = append(healthy, n)
		}
	}
	return healthy
}

// RoundRobinBalancer cycles through the healthy set via an atomic counter.
type RoundRobinBalancer struct {
	counter atomic.Uint64
}

func (b *RoundRobinBalancer) Select(nodes []*Node) (*Node, error) {
	healthy := healthyNodes(nodes)
	if len(healthy) == 0 {
		return nil, ErrNoServerAvailable
	}
	i := b.counter.Add(1) - 1
	return healthy[int(i)%len(healthy)], nil
}

// RandomBalancer picks uniformly over the healthy set.
type RandomBalancer struct{}

func (RandomBalancer) Select(nodes []*Node) (*Node, error) {
	healthy := healthyNodes(nodes)
	if len(healthy) == 0 {
		return nil, ErrNoServerAvailable
	}
	return healthy[rand.Intn(len(healthy))], nil
}

// FirstAvailableBalancer returns the first healthy node in configuration
// order.
type FirstAvailableBalancer struct{}

func (FirstAvailableBalancer) Select(nodes []*Node) (*Node, error) {
	for _, n := range nodes {
		if n.IsHealthy() {
			return n, nil
		}
	}
	return nil, ErrNoServerAvailable
}

// NewBalancer maps a load_balancing connection-string value (round_robin,
// random, first_available) to a Balancer.
func NewBalancer(name string) (Balancer, error) {
	switch strings.ToLower(name) {
	case "", "round_robin":
		return &RoundRobinBalancer{}, nil
	case "random":
		return RandomBalancer{}, nil
	case "first_available":
		return FirstAvailableBalancer{}, nil
	default:
		return nil, errors.Errorf("unknown load_balancing strategy %q", name)
	}
}
