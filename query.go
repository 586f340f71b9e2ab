package ch

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/go-faster/city"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/netgraph-io/chwire/compress"
	"github.com/netgraph-io/chwire/otelch"
	"github.com/netgraph-io/chwire/proto"
)

// Query describes a single request/response cycle against a ClickHouse
// server: a SQL body plus the callbacks that receive whatever the protocol
// engine decodes off the wire while the query is in flight.
type Query struct {
	// Body of query, like "SELECT 1".
	Body string
	// QueryID is ID of query, defaults to new UUIDv4.
	QueryID string
	// QuotaKey of query, optional.
	QuotaKey string

	// Input columns for INSERT operations.
	Input proto.Input
	// OnInput is called to allow ingesting more data to Input.
	//
	// The io.EOF reports that no more input should be ingested.
	//
	// Optional, single block is ingested from Input if not provided,
	// but query will fail if Input is set but has zero rows.
	OnInput func(ctx context.Context) error

	// Result columns for SELECT operations.
	Result proto.Result
	// OnResult is called when Result is filled with result block.
	//
	// Optional, but query will fail of more than one block is received
	// and no OnResult is provided.
	OnResult func(ctx context.Context, block proto.Block) error

	// OnProgress is optional progress handler. The progress value contain
	// difference, so progress should be accumulated if needed.
	OnProgress func(ctx context.Context, p proto.Progress) error
	// OnProfile is optional handler for profiling data.
	OnProfile func(ctx context.Context, p proto.Profile) error
	// OnProfileEvent is optional handler for profiling event stream data.
	//
	// Deprecated: use OnProfileEvents instead. This option will be removed in
	// next major release.
	OnProfileEvent func(ctx context.Context, e ProfileEvent) error
	// OnProfileEvents is same as OnProfileEvent but is called on each event batch.
	OnProfileEvents func(ctx context.Context, e []ProfileEvent) error
	// OnLog is optional handler for server log entry.
	//
	// Deprecated: use OnLogs instead. This option will be removed in
	// next major release.
	OnLog func(ctx context.Context, l Log) error
	// OnLogs is optional handler for server log events.
	OnLogs func(ctx context.Context, l []Log) error

	// Settings are optional query-scoped settings. Can override client settings.
	Settings []Setting

	// EXPERIMENTAL: parameters for query.
	Parameters []proto.Parameter

	// Secret is optional inter-server per-cluster secret for Distributed queries.
	//
	// See https://clickhouse.com/docs/en/engines/table-engines/special/distributed/#distributed-clusters
	Secret string

	// InitialUser is optional initial user for Distributed queries.
	InitialUser string

	// ExternalData is optional data for server to load.
	//
	// https://clickhouse.com/docs/en/engines/table-engines/special/external-data/
	ExternalData []proto.InputColumn
	// ExternalTable name. Defaults to _data.
	ExternalTable string

	// Logger for query, optional, defaults to client logger with `query_id` field.
	Logger *zap.Logger
}

type (
	ProfileEvent     = proto.ProfileEvent
	ProfileEventType = proto.ProfileEventType
	Log              = proto.Log
	Setting          = proto.Setting
)

// CorruptedDataErr reports a block whose checksum did not match its
// declared payload, surfaced to the caller as a distinct type so it can be
// matched with errors.As regardless of how deep the wrap chain runs.
type CorruptedDataErr struct {
	Actual    city.U128
	Reference city.U128
	RawSize   int
	DataSize  int
}

func (c *CorruptedDataErr) Error() string {
	return fmt.Sprintf("corrupted data: %s (actual), %s (reference), compressed size: %d, data size: %d",
		compress.FormatU128(c.Actual), compress.FormatU128(c.Reference), c.RawSize, c.DataSize,
	)
}

// queryOtelSpan starts the optional tracing span around a Do call and
// returns the (possibly replaced) context plus a function that finalizes
// the span from the query's outcome and accumulated metrics.
func (c *Client) queryOtelSpan(ctx context.Context, q Query) (context.Context, *queryMetrics, func(err error)) {
	if !c.otel {
		return ctx, nil, func(error) {}
	}
	newCtx, span := c.tracer.Start(ctx, "Do",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemKey.String("clickhouse"),
			semconv.DBStatementKey.String(q.Body),
			semconv.DBUserKey.String(c.info.User),
			semconv.DBNameKey.String(c.info.Database),
			semconv.NetPeerIPKey.String(c.conn.RemoteAddr().String()),
			otelch.ProtocolVersion(c.protocolVersion),
			otelch.QuotaKey(q.QuotaKey),
			otelch.QueryID(q.QueryID),
		),
	)
	m := new(queryMetrics)
	return newCtx, m, func(err error) {
		span.SetAttributes(
			otelch.BlocksSent(m.BlocksSent),
			otelch.BlocksReceived(m.BlocksReceived),
			otelch.RowsReceived(m.RowsReceived),
			otelch.ColumnsReceived(m.ColumnsReceived),
			otelch.Rows(m.Rows),
			otelch.Bytes(m.Bytes),
		)
		if err == nil {
			span.SetStatus(codes.Ok, "")
			span.End()
			return
		}
		span.RecordError(err)
		status := "Failed"
		var exc *Exception
		if errors.As(err, &exc) {
			status = exc.Name
			span.SetAttributes(
				otelch.ErrorCode(int(exc.Code)),
				otelch.ErrorName(exc.Name),
			)
		}
		span.SetStatus(codes.Error, status)
		span.End()
	}
}

// scopeLogger swaps c.lg for the duration of one query (the per-query_id
// logger, or the caller-supplied one) and returns a restore func. Do is not
// goroutine-safe with respect to itself, so every internal call made while
// a query is in flight observes the scoped logger.
func (c *Client) scopeLogger(q Query) func() {
	prev := c.lg
	lg := prev
	if q.Logger != nil {
		lg = q.Logger
	} else {
		lg = lg.With(zap.String("query_id", q.QueryID))
	}
	c.lg = lg
	return func() { c.lg = prev }
}

// Do runs a query end to end: it emits the Query message (and, for an
// INSERT, streams Input), then drives the server's response stream through
// the protocol engine's packet dispatch until EndOfStream, Exception, or
// ctx cancellation — see engine_pipeline.go for the three concurrent phases
// this fans out into.
func (c *Client) Do(ctx context.Context, q Query) (err error) {
	if c.IsClosed() {
		return ErrClosed
	}
	// Only one streaming session may be active on a connection at a time;
	// reject rather than corrupt the wire by interleaving two queries.
	if !c.mux.TryLock() {
		return ErrBusy
	}
	defer c.mux.Unlock()

	if len(q.Parameters) > 0 && !proto.FeatureParameters.In(c.protocolVersion) {
		return errors.Errorf("query parameters are not supported in protocol version %d, upgrade server %q",
			c.protocolVersion, c.server,
		)
	}
	if q.QueryID == "" {
		q.QueryID = uuid.New().String()
	}

	restoreLogger := c.scopeLogger(q)
	defer restoreLogger()

	ctx, metrics, finishSpan := c.queryOtelSpan(ctx, q)
	defer func() { finishSpan(err) }()
	if metrics != nil {
		ctx = context.WithValue(ctx, ctxQueryKey{}, metrics)
	}

	colInfo := c.prepareColumnInference(&q)

	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	var gotException atomic.Bool

	g.Go(func() error {
		return c.runSendPhase(ctx, q, colInfo)
	})
	g.Go(func() error {
		defer close(done)
		if colInfo != nil {
			defer close(colInfo)
		}
		return c.runReceivePhase(ctx, q, &gotException)
	})
	g.Go(func() error {
		return c.runCancelWatch(ctx, done, &gotException)
	})
	return g.Wait()
}

// runCancelWatch waits for the receive phase to finish; if the context was
// canceled first and no server exception already ended the query, it sends
// Cancel and folds the resulting error into ctx.Err().
func (c *Client) runCancelWatch(ctx context.Context, done <-chan struct{}, gotException *atomic.Bool) error {
	<-done
	if ctx.Err() != nil && !gotException.Load() {
		err := multierr.Append(ctx.Err(), c.cancelQuery())
		return errors.Wrap(err, "canceled")
	}
	return nil
}

// isTimeout reports whether err is a net.OpError timeout, the one
// transient read error the receive loop tolerates by polling again.
func isTimeout(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Timeout()
}
