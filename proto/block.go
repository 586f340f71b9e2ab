package proto

import "github.com/go-faster/errors"

// BlockInfo carries the per-block flags preceding the column data.
type BlockInfo struct {
	IsOverflows bool
	BucketNum   int32
}

func (i BlockInfo) encode(buf *Buffer) {
	buf.EncodeBool(i.IsOverflows)
	buf.EncodeInt32(i.BucketNum)
}

func (i *BlockInfo) decode(r *Reader) error {
	overflows, err := r.Bool()
	if err != nil {
		return errors.Wrap(err, "is_overflows")
	}
	bucket, err := r.Int32()
	if err != nil {
		return errors.Wrap(err, "bucket_num")
	}
	i.IsOverflows = overflows
	i.BucketNum = bucket
	return nil
}

// Block is the unit of columnar transfer: a header plus an ordered
// sequence of named, typed columns sharing row order.
type Block struct {
	Info    BlockInfo
	Columns int
	Rows    int

	ColumnNames []string
	ColumnTypes []ColumnType
}

// End reports whether this is a zero-column, zero-row block — the
// terminator/schema-probe sentinel used throughout the protocol.
func (b Block) End() bool {
	return b.Columns == 0 && b.Rows == 0
}

// DecodeBlock reads a block (header + columns) from r, decoding each
// column's payload into whatever res.Column(name, type) returns.
func (b *Block) DecodeBlock(r *Reader, revision int, res Result) error {
	if err := b.Info.decode(r); err != nil {
		return errors.Wrap(err, "info")
	}
	numColumns, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "num_columns")
	}
	numRows, err := r.UVarInt()
	if err != nil {
		return errors.Wrap(err, "num_rows")
	}
	b.Columns = int(numColumns)
	b.Rows = int(numRows)
	b.ColumnNames = make([]string, 0, numColumns)
	b.ColumnTypes = make([]ColumnType, 0, numColumns)

	for i := uint64(0); i < numColumns; i++ {
		name, err := r.Str()
		if err != nil {
			return errors.Wrapf(err, "column %d name", i)
		}
		typeSpec, err := r.Str()
		if err != nil {
			return errors.Wrapf(err, "column %d type", i)
		}
		if FeatureCustomSerialization.In(revision) {
			hasHint, err := r.Bool()
			if err != nil {
				return errors.Wrapf(err, "column %d serialization hint", i)
			}
			if hasHint {
				if _, err := r.Byte(); err != nil {
					return errors.Wrapf(err, "column %d serialization kind", i)
				}
			}
		}
		col, err := res.Column(name, ColumnType(typeSpec))
		if err != nil {
			return errors.Wrapf(err, "column %d %q", i, name)
		}
		if err := col.DecodeColumn(r, b.Rows); err != nil {
			return errors.Wrapf(err, "column %d %q decode", i, name)
		}
		b.ColumnNames = append(b.ColumnNames, name)
		b.ColumnTypes = append(b.ColumnTypes, ColumnType(typeSpec))
	}
	return nil
}

// EncodeBlock writes the block header and every input column's payload to
// buf.
func (b *Block) EncodeBlock(buf *Buffer, revision int, input []InputColumn) error {
	b.Info.encode(buf)
	buf.EncodeUVarInt(uint64(len(input)))
	rows := 0
	if len(input) > 0 {
		rows = input[0].Data.Rows()
	}
	buf.EncodeUVarInt(uint64(rows))
	for i, col := range input {
		if col.Data.Rows() != rows {
			return errors.Errorf("column %d %q has %d rows, want %d", i, col.Name, col.Data.Rows(), rows)
		}
		buf.EncodeStr(col.Name)
		buf.EncodeStr(string(col.Data.Type()))
		if FeatureCustomSerialization.In(revision) {
			buf.EncodeBool(false)
		}
		col.Data.EncodeColumn(buf)
	}
	return nil
}

// WriteBlock encodes the block directly into w's underlying buffer.
func (b *Block) WriteBlock(w *Writer, revision int, input []InputColumn) error {
	var rerr error
	w.ChainBuffer(func(buf *Buffer) {
		rerr = b.EncodeBlock(buf, revision, input)
	})
	return rerr
}
