// Package chpool provides a connection pool of native-protocol clients,
// reusing handshakes across queries the way a server-side connection pool
// reuses database sessions.
package chpool

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/puddle/v2"

	ch "github.com/netgraph-io/chwire"
)

// defaultMaxConns is used when Options.MaxConns is zero.
const defaultMaxConns = 4

// Options configures a Pool. Address and MaxConns are pool-specific; the
// rest is forwarded verbatim to ch.Dial for every new connection.
type Options struct {
	ch.Options

	Address  string
	MaxConns int32
}

// Pool is a puddle-backed pool of *ch.Client connections.
type Pool struct {
	pool *puddle.Pool[*ch.Client]
}

// Dial creates a Pool. No connections are established until Acquire is
// first called.
func Dial(_ context.Context, opt Options) (*Pool, error) {
	maxConns := opt.MaxConns
	if maxConns == 0 {
		maxConns = defaultMaxConns
	}
	constructor := func(ctx context.Context) (*ch.Client, error) {
		return ch.Dial(ctx, opt.Address, opt.Options)
	}
	destructor := func(c *ch.Client) {
		_ = c.Close()
	}
	p, err := puddle.NewPool(&puddle.Config[*ch.Client]{
		Constructor: constructor,
		Destructor:  destructor,
		MaxSize:     maxConns,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new pool")
	}
	return &Pool{pool: p}, nil
}

// Acquire checks out a connection, dialing a new one if the pool has spare
// capacity and no idle connection is available.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	res, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquire")
	}
	return &Conn{res: res}, nil
}

// Stat reports current pool occupancy.
func (p *Pool) Stat() *puddle.Stat {
	return p.pool.Stat()
}

// Close closes the pool and all idle connections. In-flight Acquire calls
// are allowed to finish first.
func (p *Pool) Close() {
	p.pool.Close()
}

// Conn is a pooled connection checked out via Pool.Acquire.
type Conn struct {
	res *puddle.Resource[*ch.Client]
}

// client returns the underlying client.
func (c *Conn) client() *ch.Client {
	return c.res.Value()
}

// Release returns the connection to the pool for reuse.
func (c *Conn) Release() {
	if c.res.Value().IsClosed() {
		c.res.Destroy()
		return
	}
	c.res.Release()
}

// Close closes the underlying connection and removes it from the pool.
func (c *Conn) Close() error {
	err := c.client().Close()
	c.res.Destroy()
	return err
}

// Ping checks connectivity.
func (c *Conn) Ping(ctx context.Context) error {
	return c.client().Ping(ctx)
}

// Do runs q on the underlying connection.
func (c *Conn) Do(ctx context.Context, q ch.Query) error {
	return c.client().Do(ctx, q)
}
