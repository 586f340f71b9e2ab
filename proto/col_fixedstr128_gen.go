// Hand-written FixedString(128) column and its Array counterpart.

package proto

import "github.com/go-faster/errors"

const colFixedStr128Size = 128

// ColFixedStr128 is a column of FixedString(128) values.
type ColFixedStr128 [][colFixedStr128Size]byte

// Type implements Column.
func (c ColFixedStr128) Type() ColumnType {
	return ColumnTypeFixedString.With("128")
}

// Rows implements Column.
func (c ColFixedStr128) Rows() int {
	return len(c)
}

// Reset implements Column.
func (c *ColFixedStr128) Reset() {
	*c = (*c)[:0]
}

// Append adds v to the end of the column.
func (c *ColFixedStr128) Append(v [colFixedStr128Size]byte) {
	*c = append(*c, v)
}

// Row returns the value at index i.
func (c *ColFixedStr128) Row(i int) [colFixedStr128Size]byte {
	return (*c)[i]
}

// EncodeColumn implements ColInput.
func (c ColFixedStr128) EncodeColumn(buf *Buffer) {
	for _, v := range c {
		buf.EncodeRaw(v[:])
	}
}

// WriteColumn implements ColInput.
func (c ColFixedStr128) WriteColumn(w *Writer) {
	w.ChainBuffer(c.EncodeColumn)
}

// DecodeColumn implements ColResult.
func (c *ColFixedStr128) DecodeColumn(r *Reader, rows int) error {
	for i := 0; i < rows; i++ {
		var v [colFixedStr128Size]byte
		if err := r.ReadFull(v[:]); err != nil {
			return errors.Wrapf(err, "fixedstr128[%d]", i)
		}
		*c = append(*c, v)
	}
	return nil
}

// ArrFixedStr128 is a column of Array(FixedString(128)) values.
type ArrFixedStr128 struct {
	offsets []uint64
	data    ColFixedStr128
}

// NewArrFixedStr128 creates an empty ArrFixedStr128.
func NewArrFixedStr128() *ArrFixedStr128 {
	return &ArrFixedStr128{}
}

// Type implements Column.
func (c *ArrFixedStr128) Type() ColumnType {
	return ColumnTypeFixedString.With("128").Array()
}

// Rows implements Column.
func (c *ArrFixedStr128) Rows() int {
	return len(c.offsets)
}

// Reset implements Column.
func (c *ArrFixedStr128) Reset() {
	c.offsets = c.offsets[:0]
	c.data.Reset()
}

// Append adds one row (a slice of FixedString(128) values) to the column.
func (c *ArrFixedStr128) Append(v [][colFixedStr128Size]byte) {
	c.data = append(c.data, v...)
	var last uint64
	if len(c.offsets) > 0 {
		last = c.offsets[len(c.offsets)-1]
	}
	c.offsets = append(c.offsets, last+uint64(len(v)))
}

// Row returns the values of row i.
func (c *ArrFixedStr128) Row(i int) [][colFixedStr128Size]byte {
	var start uint64
	if i > 0 {
		start = c.offsets[i-1]
	}
	return c.data[start:c.offsets[i]]
}

// EncodeColumn implements ColInput.
func (c *ArrFixedStr128) EncodeColumn(buf *Buffer) {
	for _, o := range c.offsets {
		buf.EncodeUInt64(o)
	}
	c.data.EncodeColumn(buf)
}

// WriteColumn implements ColInput.
func (c *ArrFixedStr128) WriteColumn(w *Writer) {
	w.ChainBuffer(c.EncodeColumn)
}

// DecodeColumn implements ColResult.
func (c *ArrFixedStr128) DecodeColumn(r *Reader, rows int) error {
	c.offsets = make([]uint64, rows)
	for i := 0; i < rows; i++ {
		v, err := r.UInt64()
		if err != nil {
			return errors.Wrapf(err, "offset[%d]", i)
		}
		c.offsets[i] = v
	}
	var count int
	if rows > 0 {
		count = int(c.offsets[rows-1])
	}
	c.data = nil
	return c.data.DecodeColumn(r, count)
}
