package ch

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/netgraph-io/chwire/proto"
)

// cancelQuery sends a Cancel control message and then closes the
// connection: once a cancel has been issued mid-stream, the only state the
// engine can be sure the socket is in is "not usable for another query".
func (c *Client) cancelQuery() error {
	c.lg.Warn("Cancel query")

	const cancelDeadline = time.Second * 1
	ctx, cancel := context.WithTimeout(context.Background(), cancelDeadline)
	defer cancel()

	// Not using c.writer to avoid racing the send-phase goroutine's buffer.
	b := proto.Buffer{Buf: make([]byte, 0, 1)}
	proto.ClientCodeCancel.Encode(&b)

	var retErr error
	if err := c.flushBuf(ctx, &b); err != nil {
		retErr = errors.Join(retErr, errors.Wrap(err, "flush"))
	}
	// Always close connection to prevent further queries.
	if err := c.Close(); err != nil {
		retErr = errors.Join(retErr, errors.Wrap(err, "close"))
	}
	return retErr
}
