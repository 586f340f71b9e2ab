package proto

import "github.com/go-faster/errors"

// ColDecimal32 is a column of Decimal32(scale) values, backed by Int32.
type ColDecimal32 struct {
	scale int
	data  []int32
}

func NewColDecimal32(scale int) *ColDecimal32 { return &ColDecimal32{scale: scale} }

func (c *ColDecimal32) Type() ColumnType  { return ColumnTypeDecimal32.With(itoa(c.scale)) }
func (c *ColDecimal32) Rows() int         { return len(c.data) }
func (c *ColDecimal32) Reset()            { c.data = c.data[:0] }
func (c *ColDecimal32) Append(v int32)    { c.data = append(c.data, v) }
func (c *ColDecimal32) Row(i int) int32   { return c.data[i] }

func (c *ColDecimal32) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeInt32(v)
	}
}

func (c *ColDecimal32) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColDecimal32) DecodeColumn(r *Reader, rows int) error {
	c.data = make([]int32, 0, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Int32()
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, v)
	}
	return nil
}

// ColDecimal64 is a column of Decimal64(scale) values, backed by Int64.
type ColDecimal64 struct {
	scale int
	data  []int64
}

func NewColDecimal64(scale int) *ColDecimal64 { return &ColDecimal64{scale: scale} }

func (c *ColDecimal64) Type() ColumnType  { return ColumnTypeDecimal64.With(itoa(c.scale)) }
func (c *ColDecimal64) Rows() int         { return len(c.data) }
func (c *ColDecimal64) Reset()            { c.data = c.data[:0] }
func (c *ColDecimal64) Append(v int64)    { c.data = append(c.data, v) }
func (c *ColDecimal64) Row(i int) int64   { return c.data[i] }

func (c *ColDecimal64) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeInt64(v)
	}
}

func (c *ColDecimal64) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColDecimal64) DecodeColumn(r *Reader, rows int) error {
	c.data = make([]int64, 0, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Int64()
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, v)
	}
	return nil
}

// ColDecimal128 is a column of Decimal128(scale) values, backed by Int128.
type ColDecimal128 struct {
	scale int
	data  []Int128
}

func NewColDecimal128(scale int) *ColDecimal128 { return &ColDecimal128{scale: scale} }

func (c *ColDecimal128) Type() ColumnType  { return ColumnTypeDecimal128.With(itoa(c.scale)) }
func (c *ColDecimal128) Rows() int         { return len(c.data) }
func (c *ColDecimal128) Reset()            { c.data = c.data[:0] }
func (c *ColDecimal128) Append(v Int128)   { c.data = append(c.data, v) }
func (c *ColDecimal128) Row(i int) Int128  { return c.data[i] }

func (c *ColDecimal128) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeUInt128(v.Low, v.High)
	}
}

func (c *ColDecimal128) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColDecimal128) DecodeColumn(r *Reader, rows int) error {
	c.data = make([]Int128, 0, rows)
	for i := 0; i < rows; i++ {
		low, high, err := r.UInt128()
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, Int128{Low: low, High: high})
	}
	return nil
}

// ColDecimal256 is a column of Decimal256(scale) values, backed by Int256.
type ColDecimal256 struct {
	scale int
	data  []Int256
}

func NewColDecimal256(scale int) *ColDecimal256 { return &ColDecimal256{scale: scale} }

func (c *ColDecimal256) Type() ColumnType  { return ColumnTypeDecimal256.With(itoa(c.scale)) }
func (c *ColDecimal256) Rows() int         { return len(c.data) }
func (c *ColDecimal256) Reset()            { c.data = c.data[:0] }
func (c *ColDecimal256) Append(v Int256)   { c.data = append(c.data, v) }
func (c *ColDecimal256) Row(i int) Int256  { return c.data[i] }

func (c *ColDecimal256) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeUInt256(v.Limbs)
	}
}

func (c *ColDecimal256) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColDecimal256) DecodeColumn(r *Reader, rows int) error {
	c.data = make([]Int256, 0, rows)
	for i := 0; i < rows; i++ {
		limbs, err := r.UInt256()
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, Int256{Limbs: limbs})
	}
	return nil
}
