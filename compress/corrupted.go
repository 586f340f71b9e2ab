package compress

import (
	"fmt"

	"github.com/go-faster/city"
)

// CorruptedDataErr reports a block whose CityHash128 checksum did not match
// its header plus payload.
type CorruptedDataErr struct {
	Actual    city.U128
	Reference city.U128
	RawSize   int
	DataSize  int
}

func (e *CorruptedDataErr) Error() string {
	return fmt.Sprintf("corrupted data: %s (actual), %s (reference), compressed size: %d, data size: %d",
		FormatU128(e.Actual), FormatU128(e.Reference), e.RawSize, e.DataSize,
	)
}
