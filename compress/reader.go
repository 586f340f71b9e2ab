package compress

import (
	"encoding/binary"

	"github.com/go-faster/city"
	"github.com/go-faster/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// RawFunc reads exactly n bytes from the underlying transport, the same
// contract as proto.Reader's internal raw reads.
type RawFunc func(n int) ([]byte, error)

// FrameDecoder reassembles compressed frames read via a RawFunc into plain
// decompressed bytes, verifying each frame's checksum before trusting it.
type FrameDecoder struct {
	zstdDec *zstd.Decoder
}

// NewFrameDecoder creates a FrameDecoder.
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{}
}

// ReadFrame reads one full frame via raw and returns its decompressed
// payload.
func (d *FrameDecoder) ReadFrame(raw RawFunc) ([]byte, error) {
	header, err := raw(headerSize)
	if err != nil {
		return nil, errors.Wrap(err, "frame header")
	}
	checksum := city.U128{
		Low:  binary.LittleEndian.Uint64(header[0:8]),
		High: binary.LittleEndian.Uint64(header[8:16]),
	}
	method := Method(header[16])
	compressedSizeField := binary.LittleEndian.Uint32(header[17:21])
	uncompressedSize := binary.LittleEndian.Uint32(header[21:25])

	if uncompressedSize > maxUncompressedBlockSize {
		return nil, errors.Errorf("uncompressed block of %d bytes exceeds %d byte limit", uncompressedSize, maxUncompressedBlockSize)
	}
	if compressedSizeField < 9 {
		return nil, errors.Errorf("invalid compressed size field %d", compressedSizeField)
	}
	payloadLen := int(compressedSizeField) - 9
	payload, err := raw(payloadLen)
	if err != nil {
		return nil, errors.Wrap(err, "frame payload")
	}

	actual := city.CH128(append(append([]byte(nil), header[16:]...), payload...))
	if actual != checksum {
		return nil, &CorruptedDataErr{
			Actual:    actual,
			Reference: checksum,
			RawSize:   int(compressedSizeField),
			DataSize:  int(uncompressedSize),
		}
	}

	switch method {
	case MethodNone:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case MethodLZ4:
		dst := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, dst)
		if err != nil {
			return nil, errors.Wrap(err, "lz4 decompress")
		}
		return dst[:n], nil
	case MethodZSTD:
		if d.zstdDec == nil {
			dec, err := zstd.NewReader(nil)
			if err != nil {
				return nil, errors.Wrap(err, "zstd decoder")
			}
			d.zstdDec = dec
		}
		dst, err := d.zstdDec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, errors.Wrap(err, "zstd decompress")
		}
		return dst, nil
	default:
		return nil, errors.Errorf("unknown compression method %#x", header[16])
	}
}
