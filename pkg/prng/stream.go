// Package prng provides seeded byte streams for sampling.
//
// Every stream is deterministic for a given seed except NewSystem. Streams
// are not safe for concurrent use; give each goroutine its own.
package prng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// bufSize is the SHAKE128 rate.
const bufSize = 168

// Stream buffers an underlying generator and hands out bytes and 64-bit
// words. Reads never fail: an exhausted generator panics.
type Stream struct {
	r   io.Reader
	buf [bufSize]byte
	pos int
	end int
}

// NewStream wraps r.
func NewStream(r io.Reader) *Stream {
	return &Stream{r: r}
}

// NewSystem returns a stream over the operating system's entropy source.
func NewSystem() *Stream {
	return NewStream(rand.Reader)
}

// Next returns the next n bytes, n <= 168. The slice aliases the internal
// buffer and is valid until the next call.
func (s *Stream) Next(n int) []byte {
	if n > bufSize {
		panic(fmt.Sprintf("prng: Next(%d) exceeds buffer size %d", n, bufSize))
	}
	if s.pos+n > s.end {
		// Copy leftover bytes to beginning
		leftover := s.end - s.pos
		if leftover > 0 {
			copy(s.buf[:leftover], s.buf[s.pos:s.end])
		}
		// Refill rest of buffer
		m, err := io.ReadFull(s.r, s.buf[leftover:])
		if err != nil {
			panic("prng: stream too short: " + err.Error())
		}
		s.pos = 0
		s.end = leftover + m
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b
}

// Read fills p from the stream. It always returns len(p), nil.
func (s *Stream) Read(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		chunk := min(len(p), bufSize)
		copy(p, s.Next(chunk))
		p = p[chunk:]
	}
	return n, nil
}

// Uint64 returns the next eight bytes as a little-endian word.
func (s *Stream) Uint64() uint64 {
	return binary.LittleEndian.Uint64(s.Next(8))
}

func (s *Stream) reset(r io.Reader) {
	s.r = r
	s.pos = 0
	s.end = 0
}
