package proto

import "github.com/netgraph-io/chwire/compress"

// FrameReader transparently unwraps block-compression framing for a
// Reader, pulling and decompressing whole frames on demand and serving
// requested byte counts out of the resulting buffer.
type FrameReader struct {
	dec     *compress.FrameDecoder
	pending []byte
	pos     int
}

// NewFrameReader creates a FrameReader. The argument is accepted for
// forward compatibility with a future pre-seeded buffer and is currently
// unused.
func NewFrameReader(_ []byte) *FrameReader {
	return &FrameReader{dec: compress.NewFrameDecoder()}
}

// Read returns exactly n decompressed bytes, reading and decompressing as
// many additional frames from r as needed.
func (f *FrameReader) Read(r *Reader, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if f.pos >= len(f.pending) {
			frame, err := f.dec.ReadFrame(r.rawDirect)
			if err != nil {
				return nil, err
			}
			f.pending = frame
			f.pos = 0
		}
		avail := len(f.pending) - f.pos
		take := n - len(out)
		if take > avail {
			take = avail
		}
		out = append(out, f.pending[f.pos:f.pos+take]...)
		f.pos += take
	}
	return out, nil
}
