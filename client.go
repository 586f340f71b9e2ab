// Package ch implements a client for the ClickHouse native TCP protocol:
// connection handshake, query execution, block streaming and compression
// framing.
package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/netgraph-io/chwire/compress"
	"github.com/netgraph-io/chwire/proto"
)

// ErrClosed is returned by operations attempted on a closed Client.
var ErrClosed = errors.New("client closed")

// ErrBusy is returned by Do when the connection already has a query in
// flight. Only one streaming session is allowed per connection at a time.
var ErrBusy = errors.New("busy")

// version identifies this implementation in the Hello handshake.
type version struct {
	Name  string
	Major int
	Minor int
	Patch int
}

// Options configures Dial.
type Options struct {
	Logger *zap.Logger

	Database string
	User     string
	Password string

	// QuotaKey is sent in the post-Hello addendum when the negotiated
	// revision supports it. It is not copied into per-query ClientInfo,
	// which carries Query.QuotaKey only.
	QuotaKey string

	Settings []Setting

	// Compression selects the per-query compression flag and, when not
	// CompressionDisabled, the block framing codec used on both directions of
	// the connection.
	Compression Compression
	// CompressionMethod picks the framing codec when Compression is
	// enabled. Defaults to LZ4.
	CompressionMethod compress.Method

	TLS *tls.Config

	DialTimeout time.Duration

	// OpenTelemetryInstrumentation enables span creation around Do.
	OpenTelemetryInstrumentation bool
	TracerProvider              trace.TracerProvider

	ClientName string
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Database == "" {
		o.Database = "default"
	}
	if o.User == "" {
		o.User = "default"
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 10 * time.Second
	}
	if o.ClientName == "" {
		o.ClientName = "chwire"
	}
	if o.CompressionMethod == 0 {
		o.CompressionMethod = compress.MethodLZ4
	}
}

// Compression is an alias of the wire compression flag for use outside the
// proto package.
type Compression = proto.Compression

const (
	CompressionDisabled = proto.CompressionDisabled
	CompressionEnabled  = proto.CompressionEnabled
)

// queryMetrics accumulates per-Do counters, surfaced as OpenTelemetry span
// attributes when instrumentation is enabled.
type queryMetrics struct {
	BlocksSent      int
	BlocksReceived  int
	RowsReceived    int
	ColumnsReceived int
	Rows            int
	Bytes           int
}

type ctxQueryKey struct{}

func (c *Client) metricsInc(ctx context.Context, delta queryMetrics) {
	v, ok := ctx.Value(ctxQueryKey{}).(*queryMetrics)
	if !ok {
		return
	}
	v.BlocksSent += delta.BlocksSent
	v.BlocksReceived += delta.BlocksReceived
	v.RowsReceived += delta.RowsReceived
	v.ColumnsReceived += delta.ColumnsReceived
	v.Rows += delta.Rows
	v.Bytes += delta.Bytes
}

// Client is a single connection to a ClickHouse server speaking the native
// TCP protocol. A Client is not safe for concurrent use: only one query may
// be in flight on a connection at a time, mirroring the protocol's single
// streaming session per socket.
type Client struct {
	conn net.Conn
	lg   *zap.Logger

	mux sync.Mutex

	writer *proto.Writer
	reader *proto.Reader

	protocolVersion int
	compression     proto.Compression
	compressor      *compress.Writer

	version version
	info    struct {
		User     string
		Database string
	}
	server   string
	settings []Setting

	otel   bool
	tracer trace.Tracer

	closed atomic.Bool
}

// ServerInfo describes the server this Client is connected to.
type ServerInfo struct {
	Name            string
	Major           int
	Minor           int
	Patch           int
	Timezone        string
	DisplayName     string
	ProtocolVersion int
}

// Dial connects to a ClickHouse server and performs the Hello handshake.
func Dial(ctx context.Context, addr string, opt Options) (*Client, error) {
	opt.setDefaults()

	dialer := net.Dialer{Timeout: opt.DialTimeout}
	var (
		conn net.Conn
		err  error
	)
	if opt.TLS != nil {
		tlsDialer := tls.Dialer{NetDialer: &dialer, Config: opt.TLS}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}
	conn = maybeWrapDiagnostic(conn, opt.Logger)

	c := &Client{
		conn:   conn,
		lg:     opt.Logger,
		writer: proto.NewWriter(conn, nil),
		reader: proto.NewReader(conn),
		version: version{
			Name:  opt.ClientName,
			Major: proto.ClientVersionMajor,
			Minor: proto.ClientVersionMinor,
			Patch: proto.ClientVersionPatch,
		},
		settings: opt.Settings,
	}
	c.info.User = opt.User
	c.info.Database = opt.Database

	if opt.OpenTelemetryInstrumentation {
		c.otel = true
		tp := opt.TracerProvider
		if tp == nil {
			tp = otel.GetTracerProvider()
		}
		c.tracer = tp.Tracer("github.com/netgraph-io/chwire")
	}

	if err := c.hello(ctx, opt); err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "hello")
	}

	if opt.Compression == proto.CompressionEnabled {
		c.compression = proto.CompressionEnabled
		c.compressor = compress.NewWriter(opt.CompressionMethod)
	}

	return c, nil
}

func (c *Client) hello(ctx context.Context, opt Options) error {
	deadline, ok := ctx.Deadline()
	if ok {
		_ = c.conn.SetDeadline(deadline)
		defer func() { _ = c.conn.SetDeadline(time.Time{}) }()
	}

	var buf proto.Buffer
	proto.ClientHello{
		Name:            opt.ClientName,
		VersionMajor:    proto.ClientVersionMajor,
		VersionMinor:    proto.ClientVersionMinor,
		ProtocolVersion: proto.ClientRevision,
		Database:        opt.Database,
		User:            opt.User,
		Password:        opt.Password,
	}.Encode(&buf)
	if _, err := c.conn.Write(buf.Buf); err != nil {
		return errors.Wrap(err, "write hello")
	}

	code, err := c.reader.UVarInt()
	if err != nil {
		return errors.Wrap(err, "read server code")
	}
	if proto.ServerCode(code) == proto.ServerCodeException {
		exc, err := proto.DecodeException(c.reader)
		if err != nil {
			return errors.Wrap(err, "decode exception")
		}
		return exc
	}
	if proto.ServerCode(code) != proto.ServerCodeHello {
		return errors.Errorf("unexpected packet %d instead of Hello", code)
	}

	var sh proto.ServerHello
	if err := sh.Decode(c.reader); err != nil {
		return errors.Wrap(err, "decode server hello")
	}

	revision := sh.ProtocolVersion
	if revision > proto.ClientRevision {
		revision = proto.ClientRevision
	}
	if revision < proto.MinSupportedRevision {
		return errors.Errorf("server revision %d is below minimum supported revision %d", revision, proto.MinSupportedRevision)
	}
	c.protocolVersion = revision
	c.server = fmt.Sprintf("%s %d.%d.%d (revision %d)", sh.Name, sh.VersionMajor, sh.VersionMinor, sh.VersionPatch, sh.ProtocolVersion)

	if ce := c.lg.Check(zap.DebugLevel, "Hello"); ce != nil {
		ce.Write(
			zap.String("server", c.server),
			zap.Int("revision", c.protocolVersion),
			zap.String("timezone", sh.Timezone),
		)
	}

	if proto.FeatureAddendum.In(c.protocolVersion) {
		var addendum proto.Buffer
		addendum.EncodeStr(opt.QuotaKey)
		if _, err := c.conn.Write(addendum.Buf); err != nil {
			return errors.Wrap(err, "write addendum")
		}
	}
	return nil
}

// ServerInfo returns the connected server's identity and negotiated
// revision.
func (c *Client) ServerInfo() ServerInfo {
	return ServerInfo{
		ProtocolVersion: c.protocolVersion,
		Name:            c.server,
	}
}

// IsClosed reports whether the connection has been closed.
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}

// Close closes the underlying connection. Safe to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.writer != nil {
		c.writer.Release()
	}
	return c.conn.Close()
}

// Ping sends a Ping message and waits for the matching Pong.
func (c *Client) Ping(ctx context.Context) error {
	if c.IsClosed() {
		return ErrClosed
	}
	if !c.mux.TryLock() {
		return ErrBusy
	}
	defer c.mux.Unlock()
	var buf proto.Buffer
	proto.ClientCodePing.Encode(&buf)
	if err := c.flushBuf(ctx, &buf); err != nil {
		return errors.Wrap(err, "flush")
	}
	code, err := c.packet(ctx)
	if err != nil {
		return errors.Wrap(err, "packet")
	}
	switch code {
	case proto.ServerCodePong:
		return nil
	case proto.ServerCodeException:
		e, err := c.exception()
		if err != nil {
			return errors.Wrap(err, "decode exception")
		}
		return e
	default:
		return errors.Errorf("unexpected packet %q instead of Pong", code)
	}
}

// encode writes msg (which knows how to serialize itself for the session's
// negotiated revision) and queues the bytes on c.writer.
func (c *Client) encode(msg interface{ EncodeAware(buf *proto.Buffer, revision int) }) {
	c.writer.ChainBuffer(func(buf *proto.Buffer) {
		msg.EncodeAware(buf, c.protocolVersion)
	})
}

// decode reads a server message body via target's Decode method.
func (c *Client) decode(target interface{ Decode(r *proto.Reader) error }) error {
	return target.Decode(c.reader)
}

// flush writes any buffered output to the connection, honoring ctx's
// deadline.
func (c *Client) flush(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	}
	if _, err := c.writer.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}

// flushBuf writes buf directly to the connection, bypassing c.writer. Used
// for out-of-band messages (e.g. Cancel) that must not race with buffered
// query data.
func (c *Client) flushBuf(ctx context.Context, buf *proto.Buffer) error {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
	}
	for len(buf.Buf) > 0 {
		n, err := c.conn.Write(buf.Buf)
		if err != nil {
			return err
		}
		buf.Buf = buf.Buf[n:]
	}
	return nil
}

// packet reads the next server message tag.
func (c *Client) packet(ctx context.Context) (proto.ServerCode, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
	} else {
		_ = c.conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	}
	code, err := c.reader.UVarInt()
	if err != nil {
		return 0, err
	}
	return proto.ServerCode(code), nil
}

func (c *Client) progress() (proto.Progress, error) {
	return proto.DecodeProgress(c.reader, c.protocolVersion)
}

func (c *Client) profile() (proto.Profile, error) {
	return proto.DecodeProfile(c.reader)
}

func (c *Client) exception() (*Exception, error) {
	return proto.DecodeException(c.reader)
}
