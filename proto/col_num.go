package proto

import (
	"math"

	"github.com/go-faster/errors"
)

// NumColumn is a generic fixed-width scalar column, parametrized over its Go
// element type. Concrete constructors (NewColInt8, NewColUInt64, ...) below
// bind the wire encode/decode pair for each supported width.
type NumColumn[T any] struct {
	typ    ColumnType
	data   []T
	encode func(buf *Buffer, v T)
	decode func(r *Reader) (T, error)
}

// Type implements Column.
func (c *NumColumn[T]) Type() ColumnType { return c.typ }

// Rows implements Column.
func (c *NumColumn[T]) Rows() int { return len(c.data) }

// Reset implements Column.
func (c *NumColumn[T]) Reset() { c.data = c.data[:0] }

// Append adds v to the end of the column.
func (c *NumColumn[T]) Append(v T) { c.data = append(c.data, v) }

// Row returns the value at index i.
func (c *NumColumn[T]) Row(i int) T { return c.data[i] }

// EncodeColumn implements ColInput.
func (c *NumColumn[T]) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		c.encode(buf, v)
	}
}

// WriteColumn implements ColInput.
func (c *NumColumn[T]) WriteColumn(w *Writer) {
	w.ChainBuffer(c.EncodeColumn)
}

// DecodeColumn implements ColResult.
func (c *NumColumn[T]) DecodeColumn(r *Reader, rows int) error {
	c.data = make([]T, 0, rows)
	for i := 0; i < rows; i++ {
		v, err := c.decode(r)
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, v)
	}
	return nil
}

func newNum[T any](typ ColumnType, enc func(*Buffer, T), dec func(*Reader) (T, error)) *NumColumn[T] {
	return &NumColumn[T]{typ: typ, encode: enc, decode: dec}
}

// NewColInt8 creates an Int8 column.
func NewColInt8() *NumColumn[int8] {
	return newNum(ColumnTypeInt8,
		func(b *Buffer, v int8) { b.EncodeUInt8(uint8(v)) },
		func(r *Reader) (int8, error) { v, err := r.Byte(); return int8(v), err },
	)
}

// NewColUInt8 creates a UInt8 column.
func NewColUInt8() *NumColumn[uint8] {
	return newNum(ColumnTypeUInt8,
		func(b *Buffer, v uint8) { b.EncodeUInt8(v) },
		func(r *Reader) (uint8, error) { return r.Byte() },
	)
}

// NewColBool creates a Bool column (wire-encoded as UInt8).
func NewColBool() *NumColumn[bool] {
	return newNum(ColumnTypeBool,
		func(b *Buffer, v bool) { b.EncodeBool(v) },
		func(r *Reader) (bool, error) { return r.Bool() },
	)
}

// NewColInt16 creates an Int16 column.
func NewColInt16() *NumColumn[int16] {
	return newNum(ColumnTypeInt16,
		func(b *Buffer, v int16) { b.EncodeUInt16(uint16(v)) },
		func(r *Reader) (int16, error) { v, err := r.UInt16(); return int16(v), err },
	)
}

// NewColUInt16 creates a UInt16 column.
func NewColUInt16() *NumColumn[uint16] {
	return newNum(ColumnTypeUInt16,
		func(b *Buffer, v uint16) { b.EncodeUInt16(v) },
		func(r *Reader) (uint16, error) { return r.UInt16() },
	)
}

// NewColInt32 creates an Int32 column.
func NewColInt32() *NumColumn[int32] {
	return newNum(ColumnTypeInt32,
		func(b *Buffer, v int32) { b.EncodeInt32(v) },
		func(r *Reader) (int32, error) { return r.Int32() },
	)
}

// NewColUInt32 creates a UInt32 column.
func NewColUInt32() *NumColumn[uint32] {
	return newNum(ColumnTypeUInt32,
		func(b *Buffer, v uint32) { b.EncodeUInt32(v) },
		func(r *Reader) (uint32, error) { return r.UInt32() },
	)
}

// NewColInt64 creates an Int64 column.
func NewColInt64() *NumColumn[int64] {
	return newNum(ColumnTypeInt64,
		func(b *Buffer, v int64) { b.EncodeInt64(v) },
		func(r *Reader) (int64, error) { return r.Int64() },
	)
}

// NewColUInt64 creates a UInt64 column.
func NewColUInt64() *NumColumn[uint64] {
	return newNum(ColumnTypeUInt64,
		func(b *Buffer, v uint64) { b.EncodeUInt64(v) },
		func(r *Reader) (uint64, error) { return r.UInt64() },
	)
}

// NewColFloat32 creates a Float32 column.
func NewColFloat32() *NumColumn[float32] {
	return newNum(ColumnTypeFloat32,
		func(b *Buffer, v float32) { b.EncodeUInt32(math.Float32bits(v)) },
		func(r *Reader) (float32, error) {
			v, err := r.UInt32()
			return math.Float32frombits(v), err
		},
	)
}

// NewColFloat64 creates a Float64 column.
func NewColFloat64() *NumColumn[float64] {
	return newNum(ColumnTypeFloat64,
		func(b *Buffer, v float64) { b.EncodeUInt64(math.Float64bits(v)) },
		func(r *Reader) (float64, error) {
			v, err := r.UInt64()
			return math.Float64frombits(v), err
		},
	)
}

// NewColDate creates a Date column (u16 days since 1970-01-01).
func NewColDate() *NumColumn[uint16] {
	return newNum(ColumnTypeDate,
		func(b *Buffer, v uint16) { b.EncodeUInt16(v) },
		func(r *Reader) (uint16, error) { return r.UInt16() },
	)
}

// NewColDate32 creates a Date32 column (i32 days since 1970-01-01).
func NewColDate32() *NumColumn[int32] {
	return newNum(ColumnTypeDate32,
		func(b *Buffer, v int32) { b.EncodeInt32(v) },
		func(r *Reader) (int32, error) { return r.Int32() },
	)
}

// NewColDateTime creates a DateTime column (u32 seconds since epoch, UTC).
func NewColDateTime() *NumColumn[uint32] {
	return newNum(ColumnTypeDateTime,
		func(b *Buffer, v uint32) { b.EncodeUInt32(v) },
		func(r *Reader) (uint32, error) { return r.UInt32() },
	)
}

// NewColIPv4 creates an IPv4 column (u32 holding the network address).
func NewColIPv4() *NumColumn[uint32] {
	return newNum(ColumnTypeIPv4,
		func(b *Buffer, v uint32) { b.EncodeUInt32(v) },
		func(r *Reader) (uint32, error) { return r.UInt32() },
	)
}

// NewColEnum8 creates an Enum8 column bound to the given type spec (which
// carries the server's value mapping text, e.g. "Enum8('a'=1,'b'=2)").
func NewColEnum8(typ ColumnType) *NumColumn[int8] {
	return newNum(typ,
		func(b *Buffer, v int8) { b.EncodeUInt8(uint8(v)) },
		func(r *Reader) (int8, error) { v, err := r.Byte(); return int8(v), err },
	)
}

// NewColEnum16 creates an Enum16 column bound to the given type spec.
func NewColEnum16(typ ColumnType) *NumColumn[int16] {
	return newNum(typ,
		func(b *Buffer, v int16) { b.EncodeUInt16(uint16(v)) },
		func(r *Reader) (int16, error) { v, err := r.UInt16(); return int16(v), err },
	)
}
