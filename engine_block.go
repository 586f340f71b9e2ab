package ch

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/netgraph-io/chwire/compress"
	"github.com/netgraph-io/chwire/proto"
)

// blockDecodeOptions configures decodeBlock for one server message: which
// handler receives a non-empty block, what column shapes to decode into,
// and whether the block body may be wrapped in compression framing.
type blockDecodeOptions struct {
	Handler         func(ctx context.Context, b proto.Block) error
	Result          proto.Result
	ProtocolVersion int
	Compressible    bool
}

// decodeBlock reads one Data-shaped server message: the optional temp-table
// name, then the block itself, handing non-terminal blocks to opt.Handler.
func (c *Client) decodeBlock(ctx context.Context, opt blockDecodeOptions) error {
	if opt.ProtocolVersion == 0 {
		opt.ProtocolVersion = c.protocolVersion
	}
	if proto.FeatureTempTables.In(opt.ProtocolVersion) {
		v, err := c.reader.Str()
		if err != nil {
			return errors.Wrap(err, "temp table")
		}
		if v != "" {
			return errors.Errorf("unexpected temp table %q", v)
		}
	}

	if c.compression == proto.CompressionEnabled && opt.Compressible {
		c.reader.EnableCompression()
		defer c.reader.DisableCompression()
	}

	var block proto.Block
	if err := block.DecodeBlock(c.reader, opt.ProtocolVersion, opt.Result); err != nil {
		var badData *compress.CorruptedDataErr
		if errors.As(err, &badData) {
			// Returning wrapped exported error to allow user matching.
			exportedErr := CorruptedDataErr(*badData)
			return errors.Wrap(&exportedErr, "bad block")
		}
		return errors.Wrap(err, "decode block")
	}
	if ce := c.lg.Check(zap.DebugLevel, "Block"); ce != nil {
		ce.Write(
			zap.Int("rows", block.Rows),
			zap.Int("columns", block.Columns),
		)
	}
	if block.End() {
		return nil
	}

	c.metricsInc(ctx, queryMetrics{
		BlocksReceived:  1,
		RowsReceived:    block.Rows,
		ColumnsReceived: block.Columns,
	})
	if err := opt.Handler(ctx, block); err != nil {
		return errors.Wrap(err, "handler")
	}
	return nil
}

// encodeBlock writes input as a Data message, compressing the block body
// when the session has compression enabled. A zero-length input encodes
// the blank block used to signal "end of data".
func (c *Client) encodeBlock(ctx context.Context, tableName string, input []proto.InputColumn) error {
	c.writer.ChainBuffer(func(buf *proto.Buffer) {
		proto.ClientCodeData.Encode(buf)
		clientData := proto.ClientData{
			// External data table name.
			// https://clickhouse.com/docs/en/engines/table-engines/special/external-data/
			TableName: tableName,
		}
		clientData.EncodeAware(buf, c.protocolVersion)
	})

	b := proto.Block{Columns: len(input)}
	if len(input) > 0 {
		c.metricsInc(ctx, queryMetrics{BlocksSent: 1})
		b.Rows = input[0].Data.Rows()
		b.Info = proto.BlockInfo{
			// TODO: investigate and document
			BucketNum: -1,
		}
	}

	if c.compression == proto.CompressionDisabled {
		return b.WriteBlock(c.writer, c.protocolVersion, input)
	}
	return c.encodeCompressedBlock(b, input)
}

// encodeCompressedBlock encodes b in place on the write buffer, then
// replaces the just-written bytes with their compressed framing.
//
// TODO: find out if we can actually stream compressed blocks.
func (c *Client) encodeCompressedBlock(b proto.Block, input []proto.InputColumn) error {
	var rerr error
	c.writer.ChainBuffer(func(buf *proto.Buffer) {
		// Saving offset of compressible data.
		start := len(buf.Buf)
		if err := b.EncodeBlock(buf, c.protocolVersion, input); err != nil {
			rerr = errors.Wrap(err, "encode")
			return
		}

		// Performing compression.
		//
		// Note: only blocks are compressed.
		// See "Compressible" method of server or client code for reference.
		data := buf.Buf[start:]
		if err := c.compressor.Compress(data); err != nil {
			rerr = errors.Wrap(err, "compress")
			return
		}
		buf.Buf = append(buf.Buf[:start], c.compressor.Data...)
	})
	return rerr
}

// encodeBlankBlock encodes block with zero columns and rows which is special
// case for "end of data".
func (c *Client) encodeBlankBlock(ctx context.Context) error {
	return c.encodeBlock(ctx, "", nil)
}
