package proto

// ClientCode is a client → server message tag.
type ClientCode int

const (
	ClientCodeHello               ClientCode = 0
	ClientCodeQuery               ClientCode = 1
	ClientCodeData                ClientCode = 2
	ClientCodeCancel              ClientCode = 3
	ClientCodePing                ClientCode = 4
	ClientCodeTablesStatusRequest ClientCode = 5
	ClientCodeKeepAlive           ClientCode = 6
)

// Encode writes the tag's varuint code.
func (c ClientCode) Encode(buf *Buffer) {
	buf.EncodeUVarInt(uint64(c))
}

// ServerCode is a server → client message tag.
type ServerCode int

const (
	ServerCodeHello                ServerCode = 0
	ServerCodeData                 ServerCode = 1
	ServerCodeException            ServerCode = 2
	ServerCodeProgress             ServerCode = 3
	ServerCodePong                 ServerCode = 4
	ServerCodeEndOfStream          ServerCode = 5
	ServerCodeProfile              ServerCode = 6
	ServerCodeTotals               ServerCode = 7
	ServerCodeExtremes             ServerCode = 8
	ServerCodeTablesStatusResponse ServerCode = 9
	ServerCodeLog                  ServerCode = 10
	ServerCodeTableColumns         ServerCode = 11
	ServerCodePartUUIDs            ServerCode = 12
	ServerCodeReadTaskRequest      ServerCode = 13
	ServerProfileEvents            ServerCode = 14
)

// String names the server code for logging.
func (c ServerCode) String() string {
	switch c {
	case ServerCodeHello:
		return "Hello"
	case ServerCodeData:
		return "Data"
	case ServerCodeException:
		return "Exception"
	case ServerCodeProgress:
		return "Progress"
	case ServerCodePong:
		return "Pong"
	case ServerCodeEndOfStream:
		return "EndOfStream"
	case ServerCodeProfile:
		return "ProfileInfo"
	case ServerCodeTotals:
		return "Totals"
	case ServerCodeExtremes:
		return "Extremes"
	case ServerCodeTablesStatusResponse:
		return "TablesStatusResponse"
	case ServerCodeLog:
		return "Log"
	case ServerCodeTableColumns:
		return "TableColumns"
	case ServerCodePartUUIDs:
		return "PartUUIDs"
	case ServerCodeReadTaskRequest:
		return "ReadTaskRequest"
	case ServerProfileEvents:
		return "ProfileEvents"
	default:
		return "Unknown"
	}
}

// Compressible reports whether this message's body is wrapped in block
// compression framing when the session has compression enabled: only
// columnar data blocks are, control messages never are.
func (c ServerCode) Compressible() bool {
	switch c {
	case ServerCodeData, ServerCodeTotals, ServerCodeExtremes, ServerProfileEvents, ServerCodeLog:
		return true
	default:
		return false
	}
}

// Compression is the per-query compression flag sent in the Query message
// (distinct from the block framing method byte in package compress).
type Compression uint8

const (
	CompressionDisabled Compression = 0
	CompressionEnabled  Compression = 1
)

// CompressionMethod identifies the codec used to frame compressed blocks.
type CompressionMethod byte

const (
	CompressionMethodNone CompressionMethod = 0x02
	CompressionMethodLZ4  CompressionMethod = 0x82
	CompressionMethodZstd CompressionMethod = 0x90
)

// Stage is the query execution stage requested by the client.
type Stage uint64

const (
	StageComplete Stage = 2
)

// Interface identifies the client protocol family in ClientInfo.
type Interface uint8

const (
	InterfaceTCP Interface = 1
)

// ClientQueryKind distinguishes a user-issued query from one forwarded by a
// distributed initiator.
type ClientQueryKind uint8

const (
	ClientQueryNone      ClientQueryKind = 0
	ClientQueryInitial   ClientQueryKind = 1
	ClientQuerySecondary ClientQueryKind = 2
)
