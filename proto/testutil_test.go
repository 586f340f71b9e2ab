package proto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// awareColumn pairs a ColResult with the row count it should decode,
// letting requireNoShortRead exercise truncated inputs generically.
type awareColumn struct {
	col  ColResult
	rows int
}

func colAware(col ColResult, rows int) awareColumn {
	return awareColumn{col: col, rows: rows}
}

// requireNoShortRead feeds every proper prefix of data into c, asserting
// that a short read always surfaces an error instead of panicking or
// silently returning a partially-decoded column.
func requireNoShortRead(t *testing.T, data []byte, c awareColumn) {
	t.Helper()
	for n := 0; n < len(data); n++ {
		r := NewReader(bytes.NewReader(data[:n]))
		err := c.col.DecodeColumn(r, c.rows)
		require.Error(t, err, "prefix of %d/%d bytes should not decode", n, len(data))
	}
}
