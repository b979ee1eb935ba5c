package protocol

import (
	"errors"
	"fmt"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

// Decoder parses one packet, and its sub-packets, from a byte buffer.
type Decoder struct {
	r      *bits.Reader
	limits Limits
	depth  int
}

// NewDecoder takes ownership of buf.
func NewDecoder(buf []byte, limits Limits) (*Decoder, error) {
	if len(buf) == 0 {
		return nil, ErrEmpty
	}
	if limits.MaxBytes > 0 && len(buf) > limits.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(buf), limits.MaxBytes)
	}
	return &Decoder{r: bits.NewReader(buf), limits: limits}, nil
}

// Decode reads a single packet from buf. Bits after the outermost packet are
// padding and ignored.
func Decode(buf []byte, limits Limits) (Packet, error) {
	d, err := NewDecoder(buf, limits)
	if err != nil {
		return nil, err
	}
	return d.Decode()
}

// Decode parses the outermost packet. No partial tree is returned on error.
func (d *Decoder) Decode() (Packet, error) {
	p, err := d.packet()
	if err != nil {
		return nil, &DecodeError{Pos: d.r.Pos(), Err: err}
	}
	return p, nil
}

// Pos returns the number of bits consumed.
func (d *Decoder) Pos() int {
	return d.r.Pos()
}

// Len returns the size of the buffer in bits.
func (d *Decoder) Len() int {
	return d.r.Len()
}

func (d *Decoder) packet() (Packet, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.limits.MaxDepth > 0 && d.depth > d.limits.MaxDepth {
		return nil, fmt.Errorf("%w: depth %d", ErrTooDeep, d.depth)
	}

	h, err := d.header()
	if err != nil {
		return nil, err
	}
	if h.TypeID == TypeLiteral {
		return d.literal(h)
	}
	return d.operator(h)
}

func (d *Decoder) header() (Header, error) {
	version, err := d.read(VersionBits)
	if err != nil {
		return Header{}, err
	}
	typeID, err := d.read(TypeIDBits)
	if err != nil {
		return Header{}, err
	}
	return Header{Version: uint8(version), TypeID: TypeID(typeID)}, nil
}

func (d *Decoder) literal(h Header) (*Literal, error) {
	var value uint64
	for {
		more, err := d.read(1)
		if err != nil {
			return nil, err
		}
		group, err := d.read(GroupBits)
		if err != nil {
			return nil, err
		}
		if value>>(64-GroupBits) != 0 {
			return nil, ErrLiteralOverflow
		}
		value = value<<GroupBits | uint64(group)
		if more == 0 {
			break
		}
	}
	return &Literal{Header: h, Value: value}, nil
}

func (d *Decoder) operator(h Header) (*Operator, error) {
	lt, err := d.read(LengthTypeBits)
	if err != nil {
		return nil, err
	}
	op := &Operator{Header: h, LengthType: LengthType(lt)}

	switch op.LengthType {
	case LengthBits:
		total, err := d.read(TotalLengthBits)
		if err != nil {
			return nil, err
		}
		end := d.r.Pos() + int(total)
		if end > d.r.Len() {
			return nil, fmt.Errorf("%w: %d bits declared, %d remain", ErrLengthMismatch, total, d.r.Remaining())
		}
		for d.r.Pos() < end {
			child, err := d.packet()
			if err != nil {
				return nil, err
			}
			if d.r.Pos() > end {
				return nil, fmt.Errorf("%w: sub-packets overran declared length by %d bits", ErrLengthMismatch, d.r.Pos()-end)
			}
			op.Children = append(op.Children, child)
		}
	case LengthCount:
		count, err := d.read(CountBits)
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(count); i++ {
			child, err := d.packet()
			if err != nil {
				return nil, err
			}
			op.Children = append(op.Children, child)
		}
	default:
		return nil, fmt.Errorf("%w: length type %d", ErrFieldRange, lt)
	}
	return op, nil
}

func (d *Decoder) read(n uint8) (uint16, error) {
	v, err := d.r.Read(n)
	if errors.Is(err, bits.ErrTruncated) {
		return 0, fmt.Errorf("%w: need %d bits, %d remain", ErrTruncated, n, d.r.Remaining())
	}
	return v, err
}
