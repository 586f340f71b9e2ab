package proto

import "github.com/go-faster/errors"

// ColStr is a column of String values.
type ColStr struct{ data []string }

func NewColStr() *ColStr { return &ColStr{} }

func (c *ColStr) Type() ColumnType   { return ColumnTypeString }
func (c *ColStr) Rows() int          { return len(c.data) }
func (c *ColStr) Reset()             { c.data = c.data[:0] }
func (c *ColStr) Append(v string)    { c.data = append(c.data, v) }
func (c *ColStr) Row(i int) string   { return c.data[i] }

func (c *ColStr) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeStr(v)
	}
}

func (c *ColStr) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColStr) DecodeColumn(r *Reader, rows int) error {
	c.data = make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Str()
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, v)
	}
	return nil
}

// ColFixedString is a column of FixedString(N) values for an arbitrary N
// known only at runtime (the type-spec interpreter's general case; see
// ColFixedStr128 for the hand-specialized width used by tests).
type ColFixedString struct {
	n    int
	data [][]byte
}

// NewColFixedString creates a FixedString(n) column.
func NewColFixedString(n int) *ColFixedString {
	return &ColFixedString{n: n}
}

func (c *ColFixedString) Type() ColumnType  { return ColumnTypeFixedString.With(itoa(c.n)) }
func (c *ColFixedString) Rows() int         { return len(c.data) }
func (c *ColFixedString) Reset()            { c.data = c.data[:0] }
func (c *ColFixedString) Append(v []byte)   { c.data = append(c.data, v) }
func (c *ColFixedString) Row(i int) []byte  { return c.data[i] }

func (c *ColFixedString) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		padded := make([]byte, c.n)
		copy(padded, v)
		buf.EncodeRaw(padded)
	}
}

func (c *ColFixedString) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColFixedString) DecodeColumn(r *Reader, rows int) error {
	c.data = make([][]byte, 0, rows)
	for i := 0; i < rows; i++ {
		v := make([]byte, c.n)
		if err := r.ReadFull(v); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, v)
	}
	return nil
}

// ColUUID is a column of UUID values, 16 bytes each with limb order
// matching Int128 (low 64-bit limb first).
type ColUUID struct{ data []UInt128 }

func NewColUUID() *ColUUID { return &ColUUID{} }

func (c *ColUUID) Type() ColumnType   { return ColumnTypeUUID }
func (c *ColUUID) Rows() int          { return len(c.data) }
func (c *ColUUID) Reset()             { c.data = c.data[:0] }
func (c *ColUUID) Append(v UInt128)   { c.data = append(c.data, v) }
func (c *ColUUID) Row(i int) UInt128  { return c.data[i] }

func (c *ColUUID) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeUInt128(v.Low, v.High)
	}
}

func (c *ColUUID) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColUUID) DecodeColumn(r *Reader, rows int) error {
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

// ColIPv6 is a column of IPv6 addresses, 16 network-order bytes each.
type ColIPv6 struct{ data [][16]byte }

func NewColIPv6() *ColIPv6 { return &ColIPv6{} }

func (c *ColIPv6) Type() ColumnType    { return ColumnTypeIPv6 }
func (c *ColIPv6) Rows() int           { return len(c.data) }
func (c *ColIPv6) Reset()              { c.data = c.data[:0] }
func (c *ColIPv6) Append(v [16]byte)   { c.data = append(c.data, v) }
func (c *ColIPv6) Row(i int) [16]byte  { return c.data[i] }

func (c *ColIPv6) EncodeColumn(buf *Buffer) {
	for _, v := range c.data {
		buf.EncodeRaw(v[:])
	}
}

func (c *ColIPv6) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColIPv6) DecodeColumn(r *Reader, rows int) error {
	c.data = make([][16]byte, 0, rows)
	for i := 0; i < rows; i++ {
		var v [16]byte
		if err := r.ReadFull(v[:]); err != nil {
			return errors.Wrapf(err, "row %d", i)
		}
		c.data = append(c.data, v)
	}
	return nil
}
