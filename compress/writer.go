package compress

import (
	"encoding/binary"

	"github.com/go-faster/city"
	"github.com/go-faster/errors"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Writer compresses payloads into the framed wire format: a 16-byte
// CityHash128 checksum over the 9-byte method+size header and the
// compressed payload, followed by the payload itself.
//
// Data holds the most recent Compress call's output; callers append it
// directly to their output buffer.
type Writer struct {
	Method Method
	Level  zstd.EncoderLevel // ignored for LZ4 and None

	Data []byte

	lz4Enc  lz4.Compressor
	zstdEnc *zstd.Encoder
}

// NewWriter creates a Writer for the given method.
func NewWriter(method Method) *Writer {
	return &Writer{Method: method, Level: zstd.SpeedDefault}
}

// Compress frames data according to w.Method, writing the result to w.Data.
func (w *Writer) Compress(data []byte) error {
	if len(data) > maxUncompressedBlockSize {
		return errors.Errorf("uncompressed block of %d bytes exceeds %d byte limit", len(data), maxUncompressedBlockSize)
	}
	var payload []byte
	switch w.Method {
	case MethodNone:
		payload = data
	case MethodLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := w.lz4Enc.CompressBlock(data, dst)
		if err != nil {
			return errors.Wrap(err, "lz4 compress")
		}
		if n == 0 {
			// Incompressible input: lz4 reports n=0, fall back to a raw
			// block so the frame is still well-formed.
			w.Method = MethodNone
			payload = data
			defer func() { w.Method = MethodLZ4 }()
		} else {
			payload = dst[:n]
		}
	case MethodZSTD:
		if w.zstdEnc == nil {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(w.Level))
			if err != nil {
				return errors.Wrap(err, "zstd encoder")
			}
			w.zstdEnc = enc
		}
		payload = w.zstdEnc.EncodeAll(data, nil)
	default:
		return errors.Errorf("unknown compression method %#x", byte(w.Method))
	}

	compressedSize := len(payload) + 9
	header := make([]byte, 9)
	header[0] = byte(w.Method)
	binary.LittleEndian.PutUint32(header[1:5], uint32(compressedSize))
	binary.LittleEndian.PutUint32(header[5:9], uint32(len(data)))

	sum := city.CH128(append(append([]byte(nil), header...), payload...))
	frame := make([]byte, 0, 16+len(header)+len(payload))
	frame = binary.LittleEndian.AppendUint64(frame, sum.Low)
	frame = binary.LittleEndian.AppendUint64(frame, sum.High)
	frame = append(frame, header...)
	frame = append(frame, payload...)

	w.Data = frame
	return nil
}
