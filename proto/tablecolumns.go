package proto

import "github.com/go-faster/errors"

// TableColumns describes the schema of a (possibly temporary) table the
// server is about to stream, sent ahead of ReadTaskRequest-driven queries.
// This client does not act on it, but still must decode and discard it to
// stay in sync with the wire.
type TableColumns struct {
	TableName string
	Columns   string
}

// Decode reads a TableColumns message.
func (t *TableColumns) Decode(r *Reader) error {
	name, err := r.Str()
	if err != nil {
		return errors.Wrap(err, "table_name")
	}
	columns, err := r.Str()
	if err != nil {
		return errors.Wrap(err, "columns")
	}
	t.TableName = name
	t.Columns = columns
	return nil
}
