package ch

import (
	"encoding/hex"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
)

// dumpTrafficEnv is the diagnostic environment variable: when set to any
// non-empty value, every byte sent or received on the wire is hex-dumped
// through the Client's logger. Purely observational, never
// consulted for protocol decisions.
const dumpTrafficEnv = "CHWIRE_DUMP_TRAFFIC"

// maybeWrapDiagnostic wraps conn in a hex-dumping decorator when
// dumpTrafficEnv is set, otherwise returns conn unchanged.
func maybeWrapDiagnostic(conn net.Conn, lg *zap.Logger) net.Conn {
	if os.Getenv(dumpTrafficEnv) == "" {
		return conn
	}
	return &diagnosticConn{Conn: conn, lg: lg}
}

// diagnosticConn logs a timestamped hex+ASCII dump of every Read/Write on
// the underlying connection ("timestamp, direction, length, hex+ASCII dump").
type diagnosticConn struct {
	net.Conn
	lg *zap.Logger
}

func (d *diagnosticConn) Read(b []byte) (int, error) {
	n, err := d.Conn.Read(b)
	if n > 0 {
		d.dump("recv", b[:n])
	}
	return n, err
}

func (d *diagnosticConn) Write(b []byte) (int, error) {
	n, err := d.Conn.Write(b)
	if n > 0 {
		d.dump("send", b[:n])
	}
	return n, err
}

func (d *diagnosticConn) dump(direction string, b []byte) {
	d.lg.Debug("wire traffic",
		zap.String("at", time.Now().UTC().Format(time.RFC3339Nano)),
		zap.String("direction", direction),
		zap.Int("length", len(b)),
		zap.String("dump", hex.Dump(b)),
	)
}
