package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty           = errors.New("protocol: empty transmission")
	ErrTooLarge        = errors.New("protocol: transmission too large")
	ErrTruncated       = errors.New("protocol: truncated data")
	ErrLengthMismatch  = errors.New("protocol: sub-packet length mismatch")
	ErrLiteralOverflow = errors.New("protocol: literal exceeds 64 bits")
	ErrTooDeep         = errors.New("protocol: nesting too deep")
	ErrFieldRange      = errors.New("protocol: field out of range")
	ErrLengthOverflow  = errors.New("protocol: length does not fit field")
	ErrUnknownPacket   = errors.New("protocol: unknown packet kind")
)

// DecodeError records the bit offset at which decoding stopped.
type DecodeError struct {
	Pos int
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v at bit %d", e.Err, e.Pos)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ArityError indicates an operator with the wrong number of sub-packets.
// Path holds child indexes from the root to the offending operator.
type ArityError struct {
	Path     []int
	TypeID   TypeID
	Children int
}

func (e ArityError) Error() string {
	want := "at least 1"
	if e.TypeID.Comparison() {
		want = "exactly 2"
	}
	return fmt.Sprintf("protocol: %s operator at %s has %d sub-packets, want %s",
		e.TypeID, formatPath(e.Path), e.Children, want)
}

// InvariantError is raised (as a panic value) when evaluation meets a tree
// that validation would have rejected.
type InvariantError struct {
	TypeID TypeID
	Reason string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("protocol: invariant violated for type %d: %s", uint8(e.TypeID), e.Reason)
}

func formatPath(path []int) string {
	if len(path) == 0 {
		return "root"
	}
	out := "root"
	for _, i := range path {
		out += fmt.Sprintf(".%d", i)
	}
	return out
}
