package proto

import "github.com/go-faster/errors"

// ColNullable wraps an inner column with a per-row null mask, per
// Nullable(T)'s wire layout: num_rows u8 nullmask, then T payload for all
// rows (including logically-null ones, which still carry a payload value).
type ColNullable struct {
	inner Column
	nulls []bool
}

// NewColNullable wraps inner as Nullable(inner.Type()).
func NewColNullable(inner Column) *ColNullable {
	return &ColNullable{inner: inner}
}

func (c *ColNullable) Type() ColumnType { return ColumnTypeNullable.Sub(c.inner.Type()) }
func (c *ColNullable) Rows() int        { return len(c.nulls) }

func (c *ColNullable) Reset() {
	c.nulls = c.nulls[:0]
	c.inner.Reset()
}

// Inner returns the wrapped column, for typed row access by the caller.
func (c *ColNullable) Inner() Column { return c.inner }

// IsNull reports whether row i is null.
func (c *ColNullable) IsNull(i int) bool { return c.nulls[i] }

// AppendNull records that the next row is null. Nothing is appended to the
// inner column: the caller must append a placeholder inner value itself,
// since Nullable(T) carries a payload for every row.
func (c *ColNullable) AppendNull() {
	c.nulls = append(c.nulls, true)
}

// AppendNotNull records that the next inner-column append is not null; the
// caller must append the inner payload itself.
func (c *ColNullable) AppendNotNull() {
	c.nulls = append(c.nulls, false)
}

func (c *ColNullable) EncodeColumn(buf *Buffer) {
	for _, n := range c.nulls {
		buf.EncodeBool(n)
	}
	c.inner.EncodeColumn(buf)
}

func (c *ColNullable) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColNullable) DecodeColumn(r *Reader, rows int) error {
	c.nulls = make([]bool, 0, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Bool()
		if err != nil {
			return errors.Wrapf(err, "nullmask[%d]", i)
		}
		c.nulls = append(c.nulls, v)
	}
	if err := c.inner.DecodeColumn(r, rows); err != nil {
		return errors.Wrap(err, "inner")
	}
	return nil
}

// ColArr wraps an inner column as Array(T): cumulative u64 offsets followed
// by the inner payload, with the inner row count equal to the last offset.
type ColArr struct {
	inner   Column
	offsets []uint64
}

// NewColArr wraps inner as Array(inner.Type()).
func NewColArr(inner Column) *ColArr {
	return &ColArr{inner: inner}
}

func (c *ColArr) Type() ColumnType { return ColumnTypeArray.Sub(c.inner.Type()) }
func (c *ColArr) Rows() int        { return len(c.offsets) }

func (c *ColArr) Reset() {
	c.offsets = c.offsets[:0]
	c.inner.Reset()
}

// Inner returns the wrapped element column.
func (c *ColArr) Inner() Column { return c.inner }

// Offsets returns the cumulative end-offset of each row into Inner.
func (c *ColArr) Offsets() []uint64 { return c.offsets }

// AppendOffset records the end-offset of the next row (a cumulative count,
// not a length); the caller must append that many values to Inner first.
func (c *ColArr) AppendOffset(v uint64) { c.offsets = append(c.offsets, v) }

func (c *ColArr) EncodeColumn(buf *Buffer) {
	for _, v := range c.offsets {
		buf.EncodeUInt64(v)
	}
	c.inner.EncodeColumn(buf)
}

func (c *ColArr) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColArr) DecodeColumn(r *Reader, rows int) error {
	c.offsets = make([]uint64, 0, rows)
	for i := 0; i < rows; i++ {
		v, err := r.UInt64()
		if err != nil {
			return errors.Wrapf(err, "offset[%d]", i)
		}
		c.offsets = append(c.offsets, v)
	}
	var last uint64
	if rows > 0 {
		last = c.offsets[rows-1]
	}
	if err := c.inner.DecodeColumn(r, int(last)); err != nil {
		return errors.Wrap(err, "inner")
	}
	return nil
}

// ColTuple concatenates several independently-typed element columns, each
// carrying the full row count (not interleaved per row).
type ColTuple struct {
	elems []Column
}

// NewColTuple creates a tuple column from its element columns, in
// declaration order.
func NewColTuple(elems ...Column) *ColTuple {
	return &ColTuple{elems: elems}
}

func (c *ColTuple) Type() ColumnType {
	parts := make([]string, len(c.elems))
	for i, e := range c.elems {
		parts[i] = string(e.Type())
	}
	return ColumnTypeTuple.With(parts...)
}

func (c *ColTuple) Rows() int {
	if len(c.elems) == 0 {
		return 0
	}
	return c.elems[0].Rows()
}

func (c *ColTuple) Reset() {
	for _, e := range c.elems {
		e.Reset()
	}
}

// Elem returns the i-th element column.
func (c *ColTuple) Elem(i int) Column { return c.elems[i] }

func (c *ColTuple) EncodeColumn(buf *Buffer) {
	for _, e := range c.elems {
		e.EncodeColumn(buf)
	}
}

func (c *ColTuple) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func (c *ColTuple) DecodeColumn(r *Reader, rows int) error {
	for i, e := range c.elems {
		if err := e.DecodeColumn(r, rows); err != nil {
			return errors.Wrapf(err, "elem %d", i)
		}
	}
	return nil
}

// ColMap is encoded on the wire identically to Array(Tuple(K,V)), per
// ClickHouse's native protocol.
type ColMap struct {
	arr     *ColArr
	keyType ColumnType
	valType ColumnType
}

// NewColMap creates a Map(K,V) column from key and value columns.
func NewColMap(key, val Column) *ColMap {
	return &ColMap{
		arr:     NewColArr(NewColTuple(key, val)),
		keyType: key.Type(),
		valType: val.Type(),
	}
}

func (c *ColMap) Type() ColumnType { return ColumnTypeMap.With(string(c.keyType), string(c.valType)) }
func (c *ColMap) Rows() int        { return c.arr.Rows() }
func (c *ColMap) Reset()           { c.arr.Reset() }

// Tuples returns the underlying Array(Tuple(K,V)) representation.
func (c *ColMap) Tuples() *ColArr { return c.arr }

func (c *ColMap) EncodeColumn(buf *Buffer)     { c.arr.EncodeColumn(buf) }
func (c *ColMap) WriteColumn(w *Writer)        { c.arr.WriteColumn(w) }
func (c *ColMap) DecodeColumn(r *Reader, n int) error { return c.arr.DecodeColumn(r, n) }

// ColLowCardinality wraps a dictionary-encoded column: a shared dictionary
// of distinct inner values plus a per-row index into it.
type ColLowCardinality struct {
	inner   Column
	dict    Column
	indices []uint64
}

const lowCardinalityVersion = 1

// NewColLowCardinality wraps inner's type as the dictionary value type;
// inner itself is used as a throwaway template for building fresh
// dictionary/value columns of the same concrete type during decode.
func NewColLowCardinality(inner Column) *ColLowCardinality {
	return &ColLowCardinality{inner: inner}
}

func (c *ColLowCardinality) Type() ColumnType {
	return ColumnTypeLowCardinality.Sub(c.inner.Type())
}
func (c *ColLowCardinality) Rows() int { return len(c.indices) }

func (c *ColLowCardinality) Reset() {
	c.indices = c.indices[:0]
	if c.dict != nil {
		c.dict.Reset()
	}
}

// Dict returns the dictionary column (distinct values, decode order).
func (c *ColLowCardinality) Dict() Column { return c.dict }

// Index returns the dictionary index for row i.
func (c *ColLowCardinality) Index(i int) uint64 { return c.indices[i] }

func keyWidthFor(n int) byte {
	switch {
	case n <= 1<<8:
		return 0
	case n <= 1<<16:
		return 1
	case n <= 1<<32:
		return 2
	default:
		return 3
	}
}

func (c *ColLowCardinality) EncodeColumn(buf *Buffer) {
	buf.EncodeUInt64(lowCardinalityVersion)
	keyType := keyWidthFor(c.dict.Rows())
	buf.EncodeByte(keyType)
	buf.EncodeUVarInt(uint64(c.dict.Rows()))
	c.dict.EncodeColumn(buf)
	buf.EncodeUVarInt(uint64(len(c.indices)))
	for _, idx := range c.indices {
		encodeIndexByWidth(buf, keyType, idx)
	}
}

func (c *ColLowCardinality) WriteColumn(w *Writer) { w.ChainBuffer(c.EncodeColumn) }

func encodeIndexByWidth(buf *Buffer, keyType byte, idx uint64) {
	switch keyType {
	case 0:
		buf.EncodeUInt8(uint8(idx))
	case 1:
		buf.EncodeUInt16(uint16(idx))
	case 2:
		buf.EncodeUInt32(uint32(idx))
	default:
		buf.EncodeUInt64(idx)
	}
}

func decodeIndexByWidth(r *Reader, keyType byte) (uint64, error) {
	switch keyType {
	case 0:
		v, err := r.Byte()
		return uint64(v), err
	case 1:
		v, err := r.UInt16()
		return uint64(v), err
	case 2:
		v, err := r.UInt32()
		return uint64(v), err
	default:
		return r.UInt64()
	}
}

func (c *ColLowCardinality) DecodeColumn(r *Reader, rows int) error {
	if _, err := r.UInt64(); err != nil {
		return errors.Wrap(err, "version")
	}
	keyType, err := r.Byte()
	if err != nil {
		return errors.Wrap(err, "key type")
	}
	dictSize, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "dict size")
	}
	dict, err := ColumnFactory(c.inner.Type())
	if err != nil {
		return errors.Wrap(err, "dict column")
	}
	if err := dict.DecodeColumn(r, int(dictSize)); err != nil {
		return errors.Wrap(err, "dict")
	}
	c.dict = dict
	numRows, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "num rows")
	}
	c.indices = make([]uint64, 0, numRows)
	for i := uint64(0); i < numRows; i++ {
		idx, err := decodeIndexByWidth(r, keyType)
		if err != nil {
			return errors.Wrapf(err, "index[%d]", i)
		}
		c.indices = append(c.indices, idx)
	}
	return nil
}
