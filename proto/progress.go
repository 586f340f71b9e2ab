package proto

import "github.com/go-faster/errors"

// Progress reports incremental execution progress. Values are deltas, not
// totals; callers accumulate across calls if a running total is needed.
type Progress struct {
	Rows       uint64
	Bytes      uint64
	TotalRows  uint64
	WroteRows  uint64
	WroteBytes uint64

	// ElapsedNS is set once FeatureServerQueryTimeInProgress is negotiated.
	ElapsedNS uint64
}

// DecodeProgress reads a Progress message for the given session revision.
func DecodeProgress(r *Reader, revision int) (Progress, error) {
	var p Progress
	var err error
	if p.Rows, err = r.UInt64(); err != nil {
		return p, errors.Wrap(err, "rows")
	}
	if p.Bytes, err = r.UInt64(); err != nil {
		return p, errors.Wrap(err, "bytes")
	}
	if FeatureTotalBytesInProgress.In(revision) {
		if p.TotalRows, err = r.UInt64(); err != nil {
			return p, errors.Wrap(err, "total_rows")
		}
	}
	if FeatureServerQueryTimeInProgress.In(revision) {
		if p.ElapsedNS, err = r.UInt64(); err != nil {
			return p, errors.Wrap(err, "elapsed_ns")
		}
	}
	if p.WroteRows, err = r.UInt64(); err != nil {
		return p, errors.Wrap(err, "wrote_rows")
	}
	if p.WroteBytes, err = r.UInt64(); err != nil {
		return p, errors.Wrap(err, "wrote_bytes")
	}
	return p, nil
}
