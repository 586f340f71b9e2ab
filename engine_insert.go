package ch

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/netgraph-io/chwire/proto"
)

// inferInputColumns fills in the wire type of any Input column whose
// codec needs it at runtime (enums, parameterized dates, etc.), using the
// schema block the server sent back for the target table. Debug-logs the
// inferred mapping when the client logger is at Debug level.
func (c *Client) inferInputColumns(info proto.ColInfoInput, input proto.Input) error {
	debug := c.lg.Check(zap.DebugLevel, "Inferring columns")
	var inferred map[string]proto.ColumnType
	if debug != nil {
		inferred = make(map[string]proto.ColumnType, len(info))
	}
	for _, v := range info {
		for _, inCol := range input {
			infer, ok := inCol.Data.(proto.Inferable)
			if !ok || inCol.Name != v.Name {
				continue
			}
			if debug != nil {
				inferred[inCol.Name] = v.Type
			}
			if err := infer.Infer(v.Type); err != nil {
				return errors.Wrapf(err, "infer %q %q", inCol.Name, v.Type)
			}
		}
	}
	if debug != nil && len(inferred) > 0 {
		debug.Write(zap.Any("columns", inferred))
	}
	return nil
}

// streamInsert drives the insert side of a query: it infers column types
// against the server-provided schema, then repeatedly encodes q.Input as a
// block and calls q.OnInput to refill it, until OnInput reports io.EOF (or
// there is no OnInput, in which case a single block is sent). A final blank
// block terminates the stream regardless of path taken.
func (c *Client) streamInsert(ctx context.Context, info proto.ColInfoInput, q Query) error {
	if len(q.Input) == 0 {
		return nil
	}
	if err := c.inferInputColumns(info, q.Input); err != nil {
		return err
	}

	next := q.OnInput
	if next != nil && q.Input[0].Data.Rows() == 0 {
		// Fetching initial input if no rows provided.
		if err := next(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return c.finishInsert(ctx) // initial input was blank
			}
			return errors.Wrap(err, "input")
		}
	}

	// Streaming input to ClickHouse server.
	//
	// NB: atomicity is guaranteed only within single block.
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "context")
		}
		if err := c.encodeBlock(ctx, "", q.Input); err != nil {
			return errors.Wrap(err, "write block")
		}
		if next == nil {
			// No callback, single block.
			break
		}
		// Flushing the buffer to prevent high memory consumption.
		if err := c.flush(ctx); err != nil {
			return errors.Wrap(err, "flush")
		}
		if err := next(ctx); err != nil {
			if !errors.Is(err, io.EOF) {
				// ClickHouse server persists blocks after receive.
				return errors.Wrap(err, "next input (server already persisted previous blocks)")
			}
			// No more data.
			if tailRows := q.Input[0].Data.Rows(); tailRows > 0 {
				// Write data tail on next tick and break.
				//
				// This is required to resemble io.Reader behavior.
				if ce := c.lg.Check(zap.DebugLevel, "Writing tail of input data (not empty and io.EOF)"); ce != nil {
					ce.Write(zap.Int("rows", tailRows))
				}
				next = nil
				continue
			}
			break
		}
	}
	return c.finishInsert(ctx)
}

// finishInsert encodes the zero-row block that signals the server there is
// no more input.
func (c *Client) finishInsert(ctx context.Context) error {
	if err := c.encodeBlankBlock(ctx); err != nil {
		return errors.Wrap(err, "write end of data")
	}
	return nil
}
