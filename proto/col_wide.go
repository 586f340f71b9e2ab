package proto

import "github.com/go-faster/errors"

// Int128 is a signed 128-bit integer represented as two little-endian
// 64-bit limbs, low limb first.
type Int128 struct{ Low, High uint64 }

// UInt128 is an unsigned 128-bit integer, same limb layout as Int128.
type UInt128 struct{ Low, High uint64 }

// Int256 and UInt256 hold four little-endian 64-bit limbs, low to high.
type Int256 struct{ Limbs [4]uint64 }
type UInt256 struct{ Limbs [4]uint64 }

// ColInt128 is a column of Int128 values.
type ColInt128 struct{ data []Int128 }

func NewColInt128() *ColInt128 { return &ColInt128{} }

func (c *ColInt128) Type() ColumnType { return ColumnTypeInt128 }
func (c *ColInt128) Rows() int        { return len(c.data) }
func (c *ColInt128) Reset()           { c.data = c.data[:0] }
func (c *ColInt128) Append(v Int128)  { c.data = append(c.data, v) }
func (c *ColInt128) Row(i int) Int128 { return c.data[i] }

func (c *ColInt128) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeUInt128(v.Low, v.High)
	}
}

func (c *ColInt128) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColInt128) DecodeColumn(r *Reader, rows int) error {
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

// ColUInt128 is a column of UInt128 values.
type ColUInt128 struct{ data []UInt128 }

func NewColUInt128() *ColUInt128 { return &ColUInt128{} }

func (c *ColUInt128) Type() ColumnType  { return ColumnTypeUInt128 }
func (c *ColUInt128) Rows() int         { return len(c.data) }
func (c *ColUInt128) Reset()            { c.data = c.data[:0] }
func (c *ColUInt128) Append(v UInt128)  { c.data = append(c.data, v) }
func (c *ColUInt128) Row(i int) UInt128 { return c.data[i] }

func (c *ColUInt128) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeUInt128(v.Low, v.High)
	}
}

func (c *ColUInt128) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColUInt128) DecodeColumn(r *Reader, rows int) error {
	c.data = make([]UInt128, 0, rows)
	for i := 0; i < rows; i++ {
		low, high, err := r.UInt128()
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, UInt128{Low: low, High: high})
	}
	return nil
}

// ColInt256 is a column of Int256 values.
type ColInt256 struct{ data []Int256 }

func NewColInt256() *ColInt256 { return &ColInt256{} }

func (c *ColInt256) Type() ColumnType { return ColumnTypeInt256 }
func (c *ColInt256) Rows() int        { return len(c.data) }
func (c *ColInt256) Reset()           { c.data = c.data[:0] }
func (c *ColInt256) Append(v Int256)  { c.data = append(c.data, v) }
func (c *ColInt256) Row(i int) Int256 { return c.data[i] }

func (c *ColInt256) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeUInt256(v.Limbs)
	}
}

func (c *ColInt256) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColInt256) DecodeColumn(r *Reader, rows int) error {
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

// ColUInt256 is a column of UInt256 values.
type ColUInt256 struct{ data []UInt256 }

func NewColUInt256() *ColUInt256 { return &ColUInt256{} }

func (c *ColUInt256) Type() ColumnType  { return ColumnTypeUInt256 }
func (c *ColUInt256) Rows() int         { return len(c.data) }
func (c *ColUInt256) Reset()            { c.data = c.data[:0] }
func (c *ColUInt256) Append(v UInt256)  { c.data = append(c.data, v) }
func (c *ColUInt256) Row(i int) UInt256 { return c.data[i] }

func (c *ColUInt256) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeUInt256(v.Limbs)
	}
}

func (c *ColUInt256) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColUInt256) DecodeColumn(r *Reader, rows int) error {
	c.data = make([]UInt256, 0, rows)
	for i := 0; i < rows; i++ {
		limbs, err := r.UInt256()
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, UInt256{Limbs: limbs})
	}
	return nil
}

// ColDateTime64 is a column of DateTime64(precision) values, stored as raw
// i64 ticks of 10^-precision seconds.
type ColDateTime64 struct {
	precision int
	data      []int64
}

// NewColDateTime64 creates a DateTime64 column with the given decimal
// precision (number of fractional digits, e.g. 3 for milliseconds).
func NewColDateTime64(precision int) *ColDateTime64 {
	return &ColDateTime64{precision: precision}
}

func (c *ColDateTime64) Type() ColumnType {
	return ColumnTypeDateTime64.With(itoa(c.precision))
}
func (c *ColDateTime64) Rows() int       { return len(c.data) }
func (c *ColDateTime64) Reset()          { c.data = c.data[:0] }
func (c *ColDateTime64) Append(v int64)  { c.data = append(c.data, v) }
func (c *ColDateTime64) Row(i int) int64 { return c.data[i] }

func (c *ColDateTime64) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeInt64(v)
	}
}

func (c *ColDateTime64) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColDateTime64) DecodeColumn(r *Reader, rows int) error {
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

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var b [20]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
