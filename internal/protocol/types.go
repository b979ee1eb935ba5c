package protocol

import "fmt"

// Field widths of the wire format.
const (
	VersionBits     = 3
	TypeIDBits      = 3
	LengthTypeBits  = 1
	TotalLengthBits = 15
	CountBits       = 11
	GroupBits       = 4
	HeaderBits      = VersionBits + TypeIDBits

	MaxVersion     = 1<<VersionBits - 1
	MaxTotalLength = 1<<TotalLengthBits - 1
	MaxCount       = 1<<CountBits - 1
)

// TypeID selects the packet variant and, for operators, the operation.
type TypeID uint8

const (
	TypeSum     TypeID = 0
	TypeProduct TypeID = 1
	TypeMinimum TypeID = 2
	TypeMaximum TypeID = 3
	TypeLiteral TypeID = 4
	TypeGreater TypeID = 5
	TypeLess    TypeID = 6
	TypeEqual   TypeID = 7
)

var typeNames = [...]string{
	TypeSum:     "sum",
	TypeProduct: "product",
	TypeMinimum: "minimum",
	TypeMaximum: "maximum",
	TypeLiteral: "literal",
	TypeGreater: "greater",
	TypeLess:    "less",
	TypeEqual:   "equal",
}

func (t TypeID) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// Comparison reports whether t is one of the two-operand comparison operators.
func (t TypeID) Comparison() bool {
	return t == TypeGreater || t == TypeLess || t == TypeEqual
}

// ParseTypeID is the inverse of TypeID.String.
func ParseTypeID(name string) (TypeID, error) {
	for i, n := range typeNames {
		if n == name {
			return TypeID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown type %q", ErrFieldRange, name)
}

// LengthType is the operator's sub-packet length encoding.
type LengthType uint8

const (
	LengthBits  LengthType = 0
	LengthCount LengthType = 1
)

func (l LengthType) String() string {
	if l == LengthCount {
		return "count"
	}
	return "bits"
}

// Header is the 6-bit prefix shared by every packet.
type Header struct {
	Version uint8
	TypeID  TypeID
}

// Packet is either *Literal or *Operator.
type Packet interface {
	PacketHeader() Header
	packet()
}

// Literal carries a single value built from 4-bit groups.
type Literal struct {
	Header
	Value uint64
}

// Operator applies TypeID's operation to its sub-packets in order.
type Operator struct {
	Header
	LengthType LengthType
	Children   []Packet
}

func (l *Literal) PacketHeader() Header  { return l.Header }
func (o *Operator) PacketHeader() Header { return o.Header }

func (*Literal) packet()  {}
func (*Operator) packet() {}
