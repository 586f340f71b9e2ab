package proto

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-faster/errors"
)

// maxVarintBytes is the maximum number of bytes a valid LEB128 varint may
// occupy; a decoder that consumes more without seeing a terminating byte
// has received a corrupt stream.
const maxVarintBytes = 10

// ErrShortRead is returned when the underlying stream ends before a
// requested amount of data could be read.
var ErrShortRead = errors.New("short read")

// Reader reads the low-level protocol types from an underlying io.Reader.
//
// Reader is not safe for concurrent use.
type Reader struct {
	raw *bufio.Reader

	compress     bool
	decompressor *FrameReader
}

// NewReader creates Reader that reads data from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{raw: bufio.NewReaderSize(r, 4096)}
}

// EnableCompression turns on block-compression framing for subsequent reads,
// transparently unwrapping compressed frames per the compress package.
func (r *Reader) EnableCompression() {
	r.compress = true
	if r.decompressor == nil {
		r.decompressor = NewFrameReader(nil)
	}
}

// DisableCompression turns off block-compression framing.
func (r *Reader) DisableCompression() {
	r.compress = false
}

// read returns the next n bytes, advancing the cursor.
func (r *Reader) read(n int) ([]byte, error) {
	if r.compress {
		return r.decompressor.Read(r, n)
	}
	return r.rawDirect(n)
}

// rawDirect reads n bytes straight from the underlying transport, bypassing
// block-compression framing. FrameReader uses this to pull frame headers
// and compressed payloads regardless of r.compress.
func (r *Reader) rawDirect(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.raw, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShortRead, err)
	}
	return buf, nil
}

// ReadFull reads exactly len(p) bytes into p.
func (r *Reader) ReadFull(p []byte) error {
	v, err := r.read(len(p))
	if err != nil {
		return err
	}
	copy(p, v)
	return nil
}

// Byte reads single byte.
func (r *Reader) Byte() (byte, error) {
	v, err := r.read(1)
	if err != nil {
		return 0, errors.Wrap(err, "byte")
	}
	return v[0], nil
}

// Bool reads a byte and interprets it as boolean.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Byte()
	if err != nil {
		return false, errors.Wrap(err, "bool")
	}
	return v != 0, nil
}

// UVarInt reads LEB128 unsigned varint.
func (r *Reader) UVarInt() (uint64, error) {
	var (
		x uint64
		s uint
	)
	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.Byte()
		if err != nil {
			return 0, errors.Wrap(err, "varint")
		}
		if b < 0x80 {
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, errors.New("varint: overflow, more than 10 bytes consumed without termination")
}

// Int32 reads little-endian 32-bit signed value.
func (r *Reader) Int32() (int32, error) {
	v, err := r.UInt32()
	return int32(v), err
}

// UInt16 reads little-endian 16-bit value.
func (r *Reader) UInt16() (uint16, error) {
	v, err := r.read(2)
	if err != nil {
		return 0, errors.Wrap(err, "uint16")
	}
	return uint16(v[0]) | uint16(v[1])<<8, nil
}

// UInt32 reads little-endian 32-bit value.
func (r *Reader) UInt32() (uint32, error) {
	v, err := r.read(4)
	if err != nil {
		return 0, errors.Wrap(err, "uint32")
	}
	return uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16 | uint32(v[3])<<24, nil
}

// UInt64 reads little-endian 64-bit value.
func (r *Reader) UInt64() (uint64, error) {
	v, err := r.read(8)
	if err != nil {
		return 0, errors.Wrap(err, "uint64")
	}
	return uint64(v[0]) | uint64(v[1])<<8 | uint64(v[2])<<16 | uint64(v[3])<<24 |
		uint64(v[4])<<32 | uint64(v[5])<<40 | uint64(v[6])<<48 | uint64(v[7])<<56, nil
}

// Int64 reads little-endian 64-bit signed value.
func (r *Reader) Int64() (int64, error) {
	v, err := r.UInt64()
	return int64(v), err
}

// UInt128 reads two little-endian 64-bit limbs, low limb first.
func (r *Reader) UInt128() (low, high uint64, err error) {
	if low, err = r.UInt64(); err != nil {
		return 0, 0, errors.Wrap(err, "low")
	}
	if high, err = r.UInt64(); err != nil {
		return 0, 0, errors.Wrap(err, "high")
	}
	return low, high, nil
}

// UInt256 reads four little-endian 64-bit limbs, low to high.
func (r *Reader) UInt256() ([4]uint64, error) {
	var limbs [4]uint64
	for i := range limbs {
		v, err := r.UInt64()
		if err != nil {
			return limbs, errors.Wrapf(err, "limb %d", i)
		}
		limbs[i] = v
	}
	return limbs, nil
}

// Str reads a varuint-length-prefixed utf-8 string.
func (r *Reader) Str() (string, error) {
	n, err := r.UVarInt()
	if err != nil {
		return "", errors.Wrap(err, "length")
	}
	if n == 0 {
		return "", nil
	}
	v, err := r.read(int(n))
	if err != nil {
		return "", errors.Wrap(err, "data")
	}
	return string(v), nil
}

// StrBytes reads a varuint-length-prefixed payload as raw bytes.
func (r *Reader) StrBytes() ([]byte, error) {
	n, err := r.UVarInt()
	if err != nil {
		return nil, errors.Wrap(err, "length")
	}
	if n == 0 {
		return nil, nil
	}
	v, err := r.read(int(n))
	if err != nil {
		return nil, errors.Wrap(err, "data")
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// --- try/skip family: best-effort reads over already-buffered data, used by
// code paths that must not block (e.g. checking for a pending packet). Each
// call either consumes its whole value or, returning false, consumes
// nothing; a false result means "not enough data buffered yet", not an
// error.

// TryGetContiguousSpan returns a zero-copy view of the next n bytes without
// consuming them, or ok=false if they are not immediately available.
func (r *Reader) TryGetContiguousSpan(n int) (v []byte, ok bool) {
	if r.raw.Buffered() < n {
		return nil, false
	}
	v, err := r.raw.Peek(n)
	if err != nil {
		return nil, false
	}
	return v, true
}

// TryReadByte consumes a single byte if buffered.
func (r *Reader) TryReadByte() (byte, bool) {
	v, ok := r.TryGetContiguousSpan(1)
	if !ok {
		return 0, false
	}
	b := v[0]
	_, _ = r.raw.Discard(1)
	return b, true
}

// TryReadI32 consumes a little-endian int32 if fully buffered.
func (r *Reader) TryReadI32() (int32, bool) {
	v, ok := r.TryGetContiguousSpan(4)
	if !ok {
		return 0, false
	}
	x := int32(uint32(v[0]) | uint32(v[1])<<8 | uint32(v[2])<<16 | uint32(v[3])<<24)
	_, _ = r.raw.Discard(4)
	return x, true
}

// TryReadU64 consumes a little-endian uint64 if fully buffered.
func (r *Reader) TryReadU64() (uint64, bool) {
	v, ok := r.TryGetContiguousSpan(8)
	if !ok {
		return 0, false
	}
	x := uint64(v[0]) | uint64(v[1])<<8 | uint64(v[2])<<16 | uint64(v[3])<<24 |
		uint64(v[4])<<32 | uint64(v[5])<<40 | uint64(v[6])<<48 | uint64(v[7])<<56
	_, _ = r.raw.Discard(8)
	return x, true
}

// TrySkipBytes skips n bytes if fully buffered.
func (r *Reader) TrySkipBytes(n int) bool {
	if _, ok := r.TryGetContiguousSpan(n); !ok {
		return false
	}
	_, _ = r.raw.Discard(n)
	return true
}

// TrySkipVarint skips a varint if it is fully present in the buffer.
func (r *Reader) TrySkipVarint() bool {
	for i := 1; i <= maxVarintBytes; i++ {
		v, ok := r.TryGetContiguousSpan(i)
		if !ok {
			return false
		}
		if v[i-1] < 0x80 {
			_, _ = r.raw.Discard(i)
			return true
		}
	}
	return false
}

// TrySkipString skips a length-prefixed string if fully present. It never
// discards a partial string: the length varint and the payload it names are
// only committed together, once both are known to be buffered.
func (r *Reader) TrySkipString() bool {
	n, varintLen, ok := r.tryPeekVarint()
	if !ok {
		return false
	}
	if _, ok := r.TryGetContiguousSpan(varintLen + int(n)); !ok {
		return false
	}
	_, _ = r.raw.Discard(varintLen + int(n))
	return true
}

// tryPeekVarint reports the value and encoded byte length of the varint at
// the read cursor without consuming it.
func (r *Reader) tryPeekVarint() (value uint64, length int, ok bool) {
	var (
		x uint64
		s uint
	)
	for i := 1; i <= maxVarintBytes; i++ {
		v, ok := r.TryGetContiguousSpan(i)
		if !ok {
			return 0, 0, false
		}
		b := v[i-1]
		if b < 0x80 {
			return x | uint64(b)<<s, i, true
		}
		x |= uint64(b&0x7f) << s
		s += 7
	}
	return 0, 0, false
}
