package protocol

// NewLiteral creates a literal packet.
func NewLiteral(version uint8, value uint64) *Literal {
	return &Literal{Header: Header{Version: version, TypeID: TypeLiteral}, Value: value}
}

// NewOperator creates an operator packet that encodes its sub-packets by
// count.
func NewOperator(version uint8, typeID TypeID, children ...Packet) *Operator {
	return &Operator{
		Header:     Header{Version: version, TypeID: typeID},
		LengthType: LengthCount,
		Children:   children,
	}
}

// NewOperatorBits creates an operator packet that encodes its sub-packets
// by total bit length.
func NewOperatorBits(version uint8, typeID TypeID, children ...Packet) *Operator {
	op := NewOperator(version, typeID, children...)
	op.LengthType = LengthBits
	return op
}
