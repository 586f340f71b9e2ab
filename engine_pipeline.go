package ch

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/netgraph-io/chwire/proto"
)

// resultHandler returns q.OnResult if set, otherwise a handler that accepts
// at most one non-empty block and fails a query that receives a second one
// without a caller-supplied sink for it.
func (c *Client) resultHandler(q Query) func(ctx context.Context, b proto.Block) error {
	if q.OnResult != nil {
		return q.OnResult
	}
	first := true
	return func(ctx context.Context, block proto.Block) error {
		if !first {
			return errors.New("no OnResult provided")
		}
		if block.Rows > 0 {
			// Server can send block with zero rows on start,
			// providing a way to check column metadata.
			first = false
		}
		return nil
	}
}

// prepareColumnInference rewires q.Result/q.OnResult to capture the
// server's schema block when the caller is doing an INSERT without having
// supplied its own Result, so streamInsert can type-check/infer Input
// against it. Returns the channel the send phase blocks on, or nil when no
// inference is needed.
func (c *Client) prepareColumnInference(q *Query) chan proto.ColInfoInput {
	if q.Result != nil || len(q.Input) == 0 {
		return nil
	}
	result := proto.ColInfoInput{}
	q.Result = &result
	colInfo := make(chan proto.ColInfoInput, 1)
	q.OnResult = func(ctx context.Context, block proto.Block) error {
		if ce := c.lg.Check(zap.DebugLevel, "Received column info"); ce != nil {
			info := make(map[string]proto.ColumnType, len(result))
			for _, v := range result {
				info[v.Name] = v.Type
			}
			ce.Write(zap.Any("columns", info))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case colInfo <- result:
			return nil
		}
	}
	return colInfo
}

// runSendPhase emits the Query message and any external data, then — once
// the receive phase has handed back the target schema over colInfo, for an
// INSERT — streams q.Input. This is the "client writes" half of Do's
// send/receive/cancel-watch fan-out.
func (c *Client) runSendPhase(ctx context.Context, q Query, colInfo <-chan proto.ColInfoInput) error {
	if err := c.emitQueryMessage(ctx, q); err != nil {
		return errors.Wrap(err, "send query")
	}
	if err := c.emitExternalData(ctx, q); err != nil {
		return err
	}
	if err := c.flush(ctx); err != nil {
		return errors.Wrap(err, "flush")
	}

	var info proto.ColInfoInput
	if colInfo != nil {
		c.lg.Debug("Waiting for column info")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case v := <-colInfo:
			info = v
		}
	}
	if err := c.streamInsert(ctx, info, q); err != nil {
		return errors.Wrap(err, "send input")
	}
	return errors.Wrap(c.flush(ctx), "flush")
}

// runReceivePhase drives the query response state machine: it reads server
// tags until EndOfStream (success) or an error, yielding Data/Totals blocks
// to onResult and routing everything else through dispatchSidePacket.
func (c *Client) runReceivePhase(ctx context.Context, q Query, gotException *atomic.Bool) error {
	onResult := c.resultHandler(q)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		code, err := c.packet(ctx)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return errors.Wrap(err, "packet")
		}
		switch code {
		case proto.ServerCodeData, proto.ServerCodeTotals:
			if err := c.decodeBlock(ctx, blockDecodeOptions{
				Handler:      onResult,
				Result:       q.Result,
				Compressible: code.Compressible(),
			}); err != nil {
				return errors.Wrap(err, "decode block")
			}
		case proto.ServerCodeEndOfStream:
			return nil
		default:
			if err := c.dispatchSidePacket(ctx, code, q); err != nil {
				if IsException(err) {
					// Prevent query cancellation on exception.
					gotException.Store(true)
				}
				return errors.Wrap(err, "handle packet")
			}
		}
	}
}
