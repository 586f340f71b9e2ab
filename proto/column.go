package proto

import "github.com/go-faster/errors"

// Column is implemented by every column codec: it can encode its buffered
// rows to the wire and decode rows off the wire into itself.
type Column interface {
	Type() ColumnType
	Rows() int
	Reset()
	DecodeColumn(r *Reader, rows int) error
	EncodeColumn(buf *Buffer)
	WriteColumn(w *Writer)
}

// ColumnOf additionally exposes typed row access, used by callers that know
// the concrete element type at compile time.
type ColumnOf[T any] interface {
	Column
	Row(i int) T
	Append(v T)
}

// ColInput is the subset of Column required to stream data to the server.
type ColInput interface {
	Type() ColumnType
	Rows() int
	EncodeColumn(buf *Buffer)
	WriteColumn(w *Writer)
}

// ColResult is the subset of Column required to receive data from the
// server.
type ColResult interface {
	Type() ColumnType
	Rows() int
	Reset()
	DecodeColumn(r *Reader, rows int) error
}

// Inferable is implemented by input columns whose wire type depends on the
// server-advertised schema (e.g. enums, dates with precision) and must be
// told their concrete ColumnType before encoding.
type Inferable interface {
	Infer(t ColumnType) error
}

// InputColumn pairs a column name with the data to send for it.
type InputColumn struct {
	Name string
	Data ColInput
}

// Input is the ordered set of columns sent for one INSERT block.
type Input []InputColumn

// Rows returns the row count of the first column, or 0 if Input is empty.
func (i Input) Rows() int {
	if len(i) == 0 {
		return 0
	}
	return i[0].Data.Rows()
}

// ColumnInfo names a server-advertised column and its type.
type ColumnInfo struct {
	Name string
	Type ColumnType
}

// Result is implemented by anything that can supply (or record) a
// destination column for a wire column name and type.
type Result interface {
	// Column returns the column to decode the named, typed wire column
	// into. Implementations that don't care about the payload (schema
	// probes) may still return a throwaway column built via
	// ColumnFactory so the block decoder can consume the bytes.
	Column(name string, typ ColumnType) (ColResult, error)
}

// ResultColumn binds a caller-declared column to a wire column name.
type ResultColumn struct {
	Name string
	Data ColResult
}

// Results is a Result built from columns the caller has pre-declared,
// avoiding any reflection-based materialization (out of scope for this
// package; see the connection-level query<T> mapping callback instead).
type Results []ResultColumn

// Column implements Result.
func (r Results) Column(name string, typ ColumnType) (ColResult, error) {
	for _, c := range r {
		if c.Name == name {
			return c.Data, nil
		}
	}
	return ColumnFactory(typ)
}

// AutoResult decodes every column using ColumnFactory, for callers that
// only want raw typed values without pre-declaring Go-side columns.
type AutoResult struct{}

// Column implements Result.
func (AutoResult) Column(_ string, typ ColumnType) (ColResult, error) {
	return ColumnFactory(typ)
}

// ColInfoInput is a Result that records column name/type pairs without
// caring about their data; used to learn a target table's schema before an
// INSERT (the server answers the initial Query with a zero-row Data block
// carrying only schema).
type ColInfoInput []ColumnInfo

// Column implements Result: it records the column and returns a real
// decodable column (built via ColumnFactory) so the decoder can still
// consume any payload bytes correctly even for non-empty replies.
func (c *ColInfoInput) Column(name string, typ ColumnType) (ColResult, error) {
	*c = append(*c, ColumnInfo{Name: name, Type: typ})
	return ColumnFactory(typ)
}

// ErrUnsupportedType is returned by ColumnFactory for a type spec it cannot
// parse or has no codec for.
var ErrUnsupportedType = errors.New("unsupported type")
