package proto

import "github.com/go-faster/errors"

// Profile carries final per-query execution statistics, sent once near the
// end of the result stream.
type Profile struct {
	Rows                      uint64
	Blocks                    uint64
	Bytes                     uint64
	AppliedLimit              bool
	RowsBeforeLimit           uint64
	CalculatedRowsBeforeLimit bool
}

// DecodeProfile reads a Profile message.
func DecodeProfile(r *Reader) (Profile, error) {
	var p Profile
	var err error
	if p.Rows, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "rows")
	}
	if p.Blocks, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "blocks")
	}
	if p.Bytes, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "bytes")
	}
	if p.AppliedLimit, err = r.Bool(); err != nil {
		return p, errors.Wrap(err, "applied_limit")
	}
	if p.RowsBeforeLimit, err = r.UVarInt(); err != nil {
		return p, errors.Wrap(err, "rows_before_limit")
	}
	if p.CalculatedRowsBeforeLimit, err = r.Bool(); err != nil {
		return p, errors.Wrap(err, "calculated_rows_before_limit")
	}
	return p, nil
}
