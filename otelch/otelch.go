// Package otelch provides OpenTelemetry span attribute keys for the native
// protocol client, kept separate from the core packages so instrumentation
// stays optional.
package otelch

import "go.opentelemetry.io/otel/attribute"

const (
	keyProtocolVersion  = "ch.protocol_version"
	keyQuotaKey         = "ch.quota_key"
	keyQueryID          = "ch.query_id"
	keyBlocksSent       = "ch.blocks_sent"
	keyBlocksReceived   = "ch.blocks_received"
	keyRowsReceived     = "ch.rows_received"
	keyColumnsReceived  = "ch.columns_received"
	keyRows             = "ch.rows"
	keyBytes            = "ch.bytes"
	keyErrorCode        = "ch.error_code"
	keyErrorName        = "ch.error_name"
)

// ProtocolVersion is the negotiated session revision.
func ProtocolVersion(v int) attribute.KeyValue { return attribute.Int(keyProtocolVersion, v) }

// QuotaKey is the query's quota key, if any.
func QuotaKey(v string) attribute.KeyValue { return attribute.String(keyQuotaKey, v) }

// QueryID is the query's ID.
func QueryID(v string) attribute.KeyValue { return attribute.String(keyQueryID, v) }

// BlocksSent is the number of data blocks sent to the server.
func BlocksSent(v int) attribute.KeyValue { return attribute.Int(keyBlocksSent, v) }

// BlocksReceived is the number of data blocks received from the server.
func BlocksReceived(v int) attribute.KeyValue { return attribute.Int(keyBlocksReceived, v) }

// RowsReceived is the total number of rows received.
func RowsReceived(v int) attribute.KeyValue { return attribute.Int(keyRowsReceived, v) }

// ColumnsReceived is the total number of columns received across blocks.
func ColumnsReceived(v int) attribute.KeyValue { return attribute.Int(keyColumnsReceived, v) }

// Rows is the cumulative row count reported via Progress.
func Rows(v int) attribute.KeyValue { return attribute.Int(keyRows, v) }

// Bytes is the cumulative byte count reported via Progress.
func Bytes(v int) attribute.KeyValue { return attribute.Int(keyBytes, v) }

// ErrorCode is the ClickHouse exception code, if the query failed.
func ErrorCode(v int) attribute.KeyValue { return attribute.Int(keyErrorCode, v) }

// ErrorName is the ClickHouse exception name, if the query failed.
func ErrorName(v string) attribute.KeyValue { return attribute.String(keyErrorName, v) }
