package ch

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/netgraph-io/chwire/proto"
)

// mergedSettings concatenates the client's session-wide settings with the
// query's own, query settings last so they win when the server applies
// later values over earlier ones for the same key.
func (c *Client) mergedSettings(q Query) []proto.Setting {
	out := make([]proto.Setting, 0, len(c.settings)+len(q.Settings))
	for _, s := range c.settings {
		out = append(out, proto.Setting{Key: s.Key, Value: s.Value, Important: s.Important})
	}
	for _, s := range q.Settings {
		out = append(out, proto.Setting{Key: s.Key, Value: s.Value, Important: s.Important})
	}
	return out
}

// emitQueryMessage writes the Query message (tag, ClientInfo, settings,
// SQL body) onto the write buffer. It does not flush.
func (c *Client) emitQueryMessage(ctx context.Context, q Query) error {
	if ce := c.lg.Check(zap.DebugLevel, "sendQuery"); ce != nil {
		ce.Write(
			zap.String("query", q.Body),
			zap.String("query_id", q.QueryID),
		)
	}
	if c.IsClosed() {
		return ErrClosed
	}
	c.encode(proto.Query{
		ID:          q.QueryID,
		Body:        q.Body,
		Secret:      q.Secret,
		Stage:       proto.StageComplete,
		Compression: c.compression,
		Settings:    c.mergedSettings(q),
		Parameters:  q.Parameters,
		Info: proto.ClientInfo{
			ProtocolVersion: c.protocolVersion,
			Major:           c.version.Major,
			Minor:           c.version.Minor,
			Patch:           c.version.Patch,
			Interface:       proto.InterfaceTCP,
			Query:           proto.ClientQueryInitial,

			InitialUser:    q.InitialUser,
			InitialQueryID: q.QueryID,
			InitialAddress: c.conn.LocalAddr().String(),
			OSUser:         "",
			ClientHostname: "",
			ClientName:     c.version.Name,

			Span:     trace.SpanContextFromContext(ctx),
			QuotaKey: q.QuotaKey,
		},
	})
	return nil
}

// emitExternalData writes q.ExternalData as a named block ahead of the
// main query, then the blank block that terminates external-data upload.
func (c *Client) emitExternalData(ctx context.Context, q Query) error {
	if len(q.ExternalData) == 0 {
		return c.encodeBlankBlock(ctx)
	}
	table := q.ExternalTable
	if table == "" {
		// Resembling behavior of clickhouse-client.
		table = "_data"
	}
	if err := c.encodeBlock(ctx, table, q.ExternalData); err != nil {
		return errors.Wrap(err, "external data")
	}
	if err := c.encodeBlankBlock(ctx); err != nil {
		return errors.Wrap(err, "external data end")
	}
	return nil
}
