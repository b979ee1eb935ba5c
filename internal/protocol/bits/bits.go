// Package bits provides MSB-first bit cursors over fully materialised byte
// buffers.
package bits

import "errors"

// MaxWidth is the widest single read or write.
const MaxWidth = 16

var (
	ErrWidth     = errors.New("bits: width out of range")
	ErrTruncated = errors.New("bits: read past end of buffer")
	ErrValue     = errors.New("bits: value does not fit width")
)
