package proto

import "go.opentelemetry.io/otel/trace"

// ClientInfo is sent once per query, describing the originating client and
// (for distributed queries) the initiating user/session. Serialization is
// gated by Feature thresholds against the session revision.
type ClientInfo struct {
	Query           ClientQueryKind
	InitialUser     string
	InitialQueryID  string
	InitialAddress  string
	OSUser          string
	ClientHostname  string
	ClientName      string
	Major           int
	Minor           int
	Patch           int
	Interface       Interface
	ProtocolVersion int

	QuotaKey string

	DistributedDepth int

	Span trace.SpanContext

	// Parallel-replica fields, sent as zero once FeatureParallelReplicas
	// gates them in; this client never requests parallel replica
	// execution, so it always sends the zero values; this is benign even
	// when the server advertises support for parallel replicas.
	ParallelReplicasMode      uint8
	ParallelReplicaNumber     uint64
	ParallelReplicaCount      uint64
}

// EncodeAware serializes ClientInfo for the given session revision.
func (c ClientInfo) EncodeAware(buf *Buffer, revision int) {
	buf.EncodeUInt8(uint8(c.Query))
	if c.Query == ClientQueryNone {
		return
	}
	buf.EncodeStr(c.InitialUser)
	buf.EncodeStr(c.InitialQueryID)
	buf.EncodeStr(c.InitialAddress)
	if FeatureInitialQueryStartTime.In(revision) {
		buf.EncodeInt64(0) // initial_query_start_time_microseconds; unused by this client
	}
	buf.EncodeUInt8(uint8(c.Interface))
	buf.EncodeStr(c.OSUser)
	buf.EncodeStr(c.ClientHostname)
	buf.EncodeStr(c.ClientName)
	buf.EncodeUVarInt(uint64(c.Major))
	buf.EncodeUVarInt(uint64(c.Minor))
	buf.EncodeUVarInt(uint64(c.ProtocolVersion))

	if FeatureQuotaKeyInClientInfo.In(revision) {
		buf.EncodeStr(c.QuotaKey)
	}
	buf.EncodeUVarInt(uint64(c.DistributedDepth))
	if FeatureVersionPatch.In(revision) {
		buf.EncodeUVarInt(uint64(c.Patch))
	}
	if FeatureOpenTelemetry.In(revision) {
		if c.Span.IsValid() {
			buf.EncodeUInt8(1)
			tid := c.Span.TraceID()
			sid := c.Span.SpanID()
			buf.EncodeRaw(tid[:])
			buf.EncodeRaw(sid[:])
			buf.EncodeStr("")
			buf.EncodeUInt8(uint8(c.Span.TraceFlags()))
		} else {
			buf.EncodeUInt8(0)
		}
	}
	if FeatureParallelReplicas.In(revision) {
		buf.EncodeUVarInt(uint64(c.ParallelReplicasMode))
		buf.EncodeUVarInt(c.ParallelReplicaNumber)
		buf.EncodeUVarInt(c.ParallelReplicaCount)
	}
}
