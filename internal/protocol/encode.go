package protocol

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

// Encode writes p in the wire format, zero-padded to a byte boundary.
// Operators keep their recorded LengthType; literals use the fewest groups.
func Encode(p Packet) ([]byte, error) {
	w := bits.NewWriter()
	if err := writePacket(w, p); err != nil {
		return nil, err
	}
	return w.Bytes()
}

// EncodeHex is Encode rendered as upper-case hex.
func EncodeHex(p Packet) (string, error) {
	buf, err := Encode(p)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// BitLen returns the encoded size of p in bits, excluding padding.
func BitLen(p Packet) int {
	switch p := p.(type) {
	case *Literal:
		return HeaderBits + literalGroups(p.Value)*(1+GroupBits)
	case *Operator:
		n := HeaderBits + LengthTypeBits
		if p.LengthType == LengthCount {
			n += CountBits
		} else {
			n += TotalLengthBits
		}
		for _, c := range p.Children {
			n += BitLen(c)
		}
		return n
	default:
		return 0
	}
}

func writePacket(w *bits.Writer, p Packet) error {
	switch p := p.(type) {
	case *Literal:
		if p.TypeID != TypeLiteral {
			return fmt.Errorf("%w: literal with type %d", ErrFieldRange, uint8(p.TypeID))
		}
		if err := writeHeader(w, p.Header); err != nil {
			return err
		}
		return writeLiteral(w, p.Value)
	case *Operator:
		if p.TypeID == TypeLiteral {
			return fmt.Errorf("%w: operator with literal type", ErrFieldRange)
		}
		if err := writeHeader(w, p.Header); err != nil {
			return err
		}
		return writeOperator(w, p)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownPacket, p)
	}
}

func writeHeader(w *bits.Writer, h Header) error {
	if h.Version > MaxVersion {
		return fmt.Errorf("%w: version %d", ErrFieldRange, h.Version)
	}
	if h.TypeID > TypeEqual {
		return fmt.Errorf("%w: type %d", ErrFieldRange, uint8(h.TypeID))
	}
	if err := w.Write(uint16(h.Version), VersionBits); err != nil {
		return err
	}
	return w.Write(uint16(h.TypeID), TypeIDBits)
}

func writeLiteral(w *bits.Writer, value uint64) error {
	for i := literalGroups(value) - 1; i >= 0; i-- {
		if err := w.WriteBit(i > 0); err != nil {
			return err
		}
		group := uint16(value>>(uint(i)*GroupBits)) & (1<<GroupBits - 1)
		if err := w.Write(group, GroupBits); err != nil {
			return err
		}
	}
	return nil
}

func writeOperator(w *bits.Writer, op *Operator) error {
	switch op.LengthType {
	case LengthBits:
		total := 0
		for _, c := range op.Children {
			total += BitLen(c)
		}
		if total > MaxTotalLength {
			return fmt.Errorf("%w: %d sub-packet bits", ErrLengthOverflow, total)
		}
		if err := w.WriteBit(false); err != nil {
			return err
		}
		if err := w.Write(uint16(total), TotalLengthBits); err != nil {
			return err
		}
	case LengthCount:
		if len(op.Children) > MaxCount {
			return fmt.Errorf("%w: %d sub-packets", ErrLengthOverflow, len(op.Children))
		}
		if err := w.WriteBit(true); err != nil {
			return err
		}
		if err := w.Write(uint16(len(op.Children)), CountBits); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: length type %d", ErrFieldRange, op.LengthType)
	}
	for _, c := range op.Children {
		if err := writePacket(w, c); err != nil {
			return err
		}
	}
	return nil
}

func literalGroups(v uint64) int {
	n := 1
	for v >>= GroupBits; v != 0; v >>= GroupBits {
		n++
	}
	return n
}
