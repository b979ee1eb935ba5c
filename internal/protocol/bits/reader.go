package bits

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// Reader yields big-endian bit fields from a byte buffer. Bit 0 is the most
// significant bit of the first byte. A Reader is not safe for concurrent use.
type Reader struct {
	br   *bitio.Reader
	pos  int
	size int
}

// NewReader takes ownership of buf; callers must not modify it afterwards.
func NewReader(buf []byte) *Reader {
	return &Reader{
		br:   bitio.NewReader(bytes.NewReader(buf)),
		size: len(buf) * 8,
	}
}

// Read consumes n bits (1..16) and returns them as an unsigned integer.
// The cursor does not move when an error is returned.
func (r *Reader) Read(n uint8) (uint16, error) {
	if n == 0 || n > MaxWidth {
		return 0, fmt.Errorf("%w: %d", ErrWidth, n)
	}
	if r.pos+int(n) > r.size {
		return 0, ErrTruncated
	}
	v, err := r.br.ReadBits(n)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	r.pos += int(n)
	return uint16(v), nil
}

// ReadBit consumes a single bit.
func (r *Reader) ReadBit() (bool, error) {
	v, err := r.Read(1)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// Pos returns the number of bits consumed so far.
func (r *Reader) Pos() int {
	return r.pos
}

// Len returns the buffer length in bits.
func (r *Reader) Len() int {
	return r.size
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return r.size - r.pos
}
