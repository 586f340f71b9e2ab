package ch

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/netgraph-io/chwire/proto"
)

// sidePacketHandler decodes one kind of server message that never ends a
// query by itself (telemetry, metadata, diagnostics) and hands it to the
// matching Query callback, if any.
type sidePacketHandler func(ctx context.Context, c *Client, q Query, code proto.ServerCode) error

// sidePacketHandlers is the decision table for the server tags that keep
// the query in its current state: Progress, ProfileInfo, TableColumns,
// ProfileEvents and Log. Data, Totals and EndOfStream are handled directly
// by the receive loop in engine_pipeline.go, and Exception by
// dispatchSidePacket itself; any other tag (Extremes, Pong, PartUUIDs, ...)
// is not in the table and is rejected as unexpected.
var sidePacketHandlers = map[proto.ServerCode]sidePacketHandler{
	proto.ServerCodeProgress:     handleProgressPacket,
	proto.ServerCodeProfile:      handleProfilePacket,
	proto.ServerCodeTableColumns: handleTableColumnsPacket,
	proto.ServerProfileEvents:    handleProfileEventsPacket,
	proto.ServerCodeLog:          handleLogPacket,
}

// dispatchSidePacket decodes a server message that isn't Data/Totals/
// EndOfStream. Exception is decoded and returned as-is (it becomes the
// query's terminal error); any other unhandled tag is a protocol error.
func (c *Client) dispatchSidePacket(ctx context.Context, code proto.ServerCode, q Query) error {
	if code == proto.ServerCodeException {
		e, err := c.exception()
		if err != nil {
			return errors.Wrap(err, "decode exception")
		}
		return e
	}
	h, ok := sidePacketHandlers[code]
	if !ok {
		return errors.Errorf("unexpected packet %q", code)
	}
	return h(ctx, c, q, code)
}

func handleProgressPacket(ctx context.Context, c *Client, q Query, _ proto.ServerCode) error {
	p, err := c.progress()
	if err != nil {
		return errors.Wrap(err, "progress")
	}
	c.metricsInc(ctx, queryMetrics{Rows: int(p.Rows), Bytes: int(p.Bytes)})
	if ce := c.lg.Check(zap.DebugLevel, "Progress"); ce != nil {
		ce.Write(
			zap.Uint64("rows", p.Rows),
			zap.Uint64("total_rows", p.TotalRows),
			zap.Uint64("bytes", p.Bytes),
			zap.Uint64("wrote_bytes", p.WroteBytes),
			zap.Uint64("wrote_rows", p.WroteRows),
		)
	}
	if f := q.OnProgress; f != nil {
		if err := f(ctx, p); err != nil {
			return errors.Wrap(err, "progress")
		}
	}
	return nil
}

func handleProfilePacket(ctx context.Context, c *Client, q Query, _ proto.ServerCode) error {
	p, err := c.profile()
	if err != nil {
		return errors.Wrap(err, "profile")
	}
	if ce := c.lg.Check(zap.DebugLevel, "Profile"); ce != nil {
		ce.Write(
			zap.Uint64("rows", p.Rows),
			zap.Uint64("bytes", p.Bytes),
			zap.Uint64("blocks", p.Blocks),
		)
	}
	if f := q.OnProfile; f != nil {
		if err := f(ctx, p); err != nil {
			return errors.Wrap(err, "profile")
		}
	}
	return nil
}

func handleTableColumnsPacket(_ context.Context, c *Client, _ Query, _ proto.ServerCode) error {
	// Table schema description, not yet surfaced to callers.
	var info proto.TableColumns
	if err := c.decode(&info); err != nil {
		return errors.Wrap(err, "table columns")
	}
	return nil
}

func handleProfileEventsPacket(ctx context.Context, c *Client, q Query, code proto.ServerCode) error {
	var data proto.ProfileEvents
	onResult := func(ctx context.Context, b proto.Block) error {
		ce := c.lg.Check(zap.DebugLevel, "ProfileEvents")
		if ce == nil && q.OnProfileEvents == nil && q.OnProfileEvent == nil {
			// No handlers, skipping.
			return nil
		}
		events, err := data.All()
		if err != nil {
			return errors.Wrap(err, "events")
		}
		if f := q.OnProfileEvents; f != nil {
			if err := f(ctx, events); err != nil {
				return errors.Wrap(err, "profile events")
			}
		}
		if f := q.OnProfileEvent; f != nil {
			// Deprecated.
			// TODO: Remove in next major release.
			for _, e := range events {
				if err := f(ctx, e); err != nil {
					return errors.Wrap(err, "profile event")
				}
			}
		}
		if ce != nil {
			ce.Write(zap.Any("events", events))
		}
		return nil
	}
	if err := c.decodeBlock(ctx, blockDecodeOptions{
		Handler:      onResult,
		Compressible: code.Compressible(),
		Result:       data.Result(),
	}); err != nil {
		return errors.Wrap(err, "decode block")
	}
	return nil
}

func handleLogPacket(ctx context.Context, c *Client, q Query, code proto.ServerCode) error {
	var data proto.Logs
	onResult := func(ctx context.Context, b proto.Block) error {
		ce := c.lg.Check(zap.DebugLevel, "Logs")
		if ce == nil && q.OnLogs == nil && q.OnLog == nil {
			// No handlers, skipping.
			return nil
		}
		logs := data.All()
		if ce != nil {
			ce.Write(zap.Any("logs", logs))
		}
		if f := q.OnLogs; f != nil {
			if err := f(ctx, logs); err != nil {
				return errors.Wrap(err, "logs")
			}
		}
		if f := q.OnLog; f != nil {
			// Deprecated.
			// TODO: Remove in next major release.
			for _, l := range logs {
				if err := f(ctx, l); err != nil {
					return errors.Wrap(err, "log")
				}
			}
		}
		return nil
	}
	if err := c.decodeBlock(ctx, blockDecodeOptions{
		Handler:      onResult,
		Compressible: code.Compressible(),
		Result:       data.Result(),
	}); err != nil {
		return errors.Wrap(err, "decode block")
	}
	return nil
}
