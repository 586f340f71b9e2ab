// Package compress implements the block compression framing used to wrap
// columnar data blocks on the wire: a CityHash128 checksum over a small
// header plus the compressed payload, tagged with a one-byte codec.
package compress

import (
	"fmt"

	"github.com/go-faster/city"
)

// Method identifies the codec used to frame a compressed block.
type Method byte

const (
	MethodNone Method = 0x02
	MethodLZ4  Method = 0x82
	MethodZSTD Method = 0x90
)

// String implements fmt.Stringer.
func (m Method) String() string {
	switch m {
	case MethodNone:
		return "None"
	case MethodLZ4:
		return "LZ4"
	case MethodZSTD:
		return "ZSTD"
	default:
		return "Unknown"
	}
}

// maxUncompressedBlockSize bounds a single frame's decompressed size at
// 1 GiB, rejecting corrupt or hostile size headers before allocating.
const maxUncompressedBlockSize = 1 << 30

// headerSize is the checksum plus the method byte and the two uint32 size
// fields that make up a frame header.
const headerSize = 16 + 1 + 4 + 4

// FormatU128 renders a city.U128 as the hex pair used in diagnostic output
// and error messages.
func FormatU128(v city.U128) string {
	return fmt.Sprintf("%016x%016x", v.Low, v.High)
}
