package bits

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// Writer appends big-endian bit fields to an in-memory buffer.
type Writer struct {
	buf bytes.Buffer
	bw  *bitio.Writer
	n   int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	w := &Writer{}
	w.bw = bitio.NewWriter(&w.buf)
	return w
}

// Write appends the low n bits (1..16) of v, most significant first.
func (w *Writer) Write(v uint16, n uint8) error {
	if n == 0 || n > MaxWidth {
		return fmt.Errorf("%w: %d", ErrWidth, n)
	}
	if n < MaxWidth && v>>n != 0 {
		return fmt.Errorf("%w: %d in %d bits", ErrValue, v, n)
	}
	if err := w.bw.WriteBits(uint64(v), n); err != nil {
		return err
	}
	w.n += int(n)
	return nil
}

// WriteBit appends a single bit.
func (w *Writer) WriteBit(b bool) error {
	if err := w.bw.WriteBool(b); err != nil {
		return err
	}
	w.n++
	return nil
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return w.n
}

// Bytes flushes the writer, zero-padding to a byte boundary, and returns the
// encoded buffer. The writer must not be used afterwards.
func (w *Writer) Bytes() ([]byte, error) {
	if err := w.bw.Close(); err != nil {
		return nil, err
	}
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())
	return out, nil
}
