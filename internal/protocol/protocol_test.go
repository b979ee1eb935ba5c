package protocol

import (
	"encoding/hex"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	buf, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex %q: %v", s, err)
	}
	return buf
}

func decodeHex(t *testing.T, s string) Packet {
	t.Helper()
	p, err := Decode(mustHex(t, s), DefaultLimits())
	if err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return p
}

func mustBytes(t *testing.T, w *bits.Writer) []byte {
	t.Helper()
	buf, err := w.Bytes()
	if err != nil {
		t.Fatalf("writer bytes: %v", err)
	}
	return buf
}

func literalValues(t *testing.T, op *Operator) []uint64 {
	t.Helper()
	out := make([]uint64, 0, len(op.Children))
	for _, c := range op.Children {
		lit, ok := c.(*Literal)
		if !ok {
			t.Fatalf("expected literal child, got %T", c)
		}
		out = append(out, lit.Value)
	}
	return out
}

func TestDecodeLiteral(t *testing.T) {
	d, err := NewDecoder(mustHex(t, "D2FE28"), DefaultLimits())
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	p, err := d.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	lit, ok := p.(*Literal)
	if !ok {
		t.Fatalf("expected literal, got %T", p)
	}
	if lit.Version != 6 || lit.TypeID != TypeLiteral || lit.Value != 2021 {
		t.Fatalf("unexpected literal: %+v", lit)
	}
	if d.Pos() != 21 || d.Len() != 24 {
		t.Fatalf("cursor: pos=%d len=%d, want 21/24", d.Pos(), d.Len())
	}
}

func TestDecodeOperatorByCount(t *testing.T) {
	p := decodeHex(t, "EE00D40C823060")
	op, ok := p.(*Operator)
	if !ok {
		t.Fatalf("expected operator, got %T", p)
	}
	if op.Version != 7 || op.TypeID != TypeMaximum || op.LengthType != LengthCount {
		t.Fatalf("unexpected header: v=%d type=%s length=%s", op.Version, op.TypeID, op.LengthType)
	}
	if got := literalValues(t, op); !slices.Equal(got, []uint64{1, 2, 3}) {
		t.Fatalf("children = %v, want [1 2 3]", got)
	}
}

func TestDecodeOperatorByBitLength(t *testing.T) {
	p := decodeHex(t, "38006F45291200")
	op, ok := p.(*Operator)
	if !ok {
		t.Fatalf("expected operator, got %T", p)
	}
	if op.Version != 1 || op.TypeID != TypeLess || op.LengthType != LengthBits {
		t.Fatalf("unexpected header: v=%d type=%s length=%s", op.Version, op.TypeID, op.LengthType)
	}
	if got := literalValues(t, op); !slices.Equal(got, []uint64{10, 20}) {
		t.Fatalf("children = %v, want [10 20]", got)
	}
}

func TestDecodeConsumesWithinBufferAndPaddingIsReadable(t *testing.T) {
	for _, in := range []string{
		"D2FE28",
		"38006F45291200",
		"EE00D40C823060",
		"8A004A801A8002F478",
		"A0016C880162017C3686B18A3D4780",
	} {
		buf := mustHex(t, in)
		d, err := NewDecoder(buf, DefaultLimits())
		if err != nil {
			t.Fatalf("%s: new decoder: %v", in, err)
		}
		if _, err := d.Decode(); err != nil {
			t.Fatalf("%s: decode: %v", in, err)
		}
		if d.Pos() > len(buf)*8 {
			t.Fatalf("%s: consumed %d bits of %d", in, d.Pos(), len(buf)*8)
		}

		r := bits.NewReader(buf)
		for consumed := 0; consumed < d.Pos(); {
			n := min(bits.MaxWidth, d.Pos()-consumed)
			if _, err := r.Read(uint8(n)); err != nil {
				t.Fatalf("%s: skip: %v", in, err)
			}
			consumed += n
		}
		for r.Remaining() > 0 {
			if _, err := r.ReadBit(); err != nil {
				t.Fatalf("%s: padding: %v", in, err)
			}
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode(mustHex(t, "D2FE"), DefaultLimits())
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
	if de.Pos != 16 {
		t.Fatalf("error position = %d, want 16", de.Pos)
	}
}

func TestDecodeEmptyAndTooLarge(t *testing.T) {
	if _, err := Decode(nil, DefaultLimits()); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := Decode(make([]byte, 9), Limits{MaxBytes: 8}); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestDecodeSubPacketOverrunsDeclaredLength(t *testing.T) {
	w := bits.NewWriter()
	w.Write(1, VersionBits)
	w.Write(uint16(TypeSum), TypeIDBits)
	w.WriteBit(false)
	w.Write(5, TotalLengthBits)
	// literal 10: 11 bits, declared 5
	w.Write(2, VersionBits)
	w.Write(uint16(TypeLiteral), TypeIDBits)
	w.WriteBit(false)
	w.Write(0xA, GroupBits)

	_, err := Decode(mustBytes(t, w), DefaultLimits())
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestDecodeDeclaredLengthPastBuffer(t *testing.T) {
	w := bits.NewWriter()
	w.Write(1, VersionBits)
	w.Write(uint16(TypeSum), TypeIDBits)
	w.WriteBit(false)
	w.Write(500, TotalLengthBits)

	_, err := Decode(mustBytes(t, w), DefaultLimits())
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestDecodeLiteralOverflow(t *testing.T) {
	w := bits.NewWriter()
	w.Write(0, VersionBits)
	w.Write(uint16(TypeLiteral), TypeIDBits)
	for i := 0; i < 17; i++ {
		w.WriteBit(i < 16)
		w.Write(0xF, GroupBits)
	}

	_, err := Decode(mustBytes(t, w), DefaultLimits())
	if !errors.Is(err, ErrLiteralOverflow) {
		t.Fatalf("expected ErrLiteralOverflow, got %v", err)
	}
}

func TestDecodeLiteralFull64Bits(t *testing.T) {
	buf, err := Encode(NewLiteral(3, ^uint64(0)))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(buf, DefaultLimits())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v := got.(*Literal).Value; v != ^uint64(0) {
		t.Fatalf("value = %d, want max uint64", v)
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	var p Packet = NewLiteral(0, 1)
	for i := 0; i < 10; i++ {
		p = NewOperator(0, TypeSum, p)
	}
	buf, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := Decode(buf, Limits{MaxDepth: 5}); !errors.Is(err, ErrTooDeep) {
		t.Fatalf("expected ErrTooDeep, got %v", err)
	}
	if _, err := Decode(buf, Limits{}); err != nil {
		t.Fatalf("unlimited decode: %v", err)
	}
}

func TestEncodeMatchesReferenceTransmissions(t *testing.T) {
	for _, in := range []string{"D2FE28", "EE00D40C823060", "38006F45291200"} {
		got, err := EncodeHex(decodeHex(t, in))
		if err != nil {
			t.Fatalf("%s: encode: %v", in, err)
		}
		if got != in {
			t.Fatalf("encode = %s, want %s", got, in)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, in := range []string{
		"8A004A801A8002F478",
		"620080001611562C8802118E34",
		"C0015000016115A2E0802F182340",
		"A0016C880162017C3686B18A3D4780",
		"9C0141080250320F1802104A08",
	} {
		want := decodeHex(t, in)
		buf, err := Encode(want)
		if err != nil {
			t.Fatalf("%s: encode: %v", in, err)
		}
		got, err := Decode(buf, DefaultLimits())
		if err != nil {
			t.Fatalf("%s: decode: %v", in, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s round trip mismatch (-want +got):\n%s", in, diff)
		}
		if n := (BitLen(want) + 7) / 8; n != len(buf) {
			t.Fatalf("%s: encoded %d bytes, want %d", in, len(buf), n)
		}
	}
}

func TestEncodeBuiltTree(t *testing.T) {
	tree := NewOperatorBits(6, TypeEqual,
		NewOperator(2, TypeSum, NewLiteral(2, 1), NewLiteral(4, 3)),
		NewOperator(6, TypeProduct, NewLiteral(0, 2), NewLiteral(2, 2)),
	)
	got, err := EncodeHex(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	p := decodeHex(t, got)
	if diff := cmp.Diff(Packet(tree), p); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if v := Value(p); v != 1 {
		t.Fatalf("value = %d, want 1", v)
	}
}

func TestEncodeRejectsOutOfRangeFields(t *testing.T) {
	tests := []struct {
		name string
		p    Packet
		want error
	}{
		{"version", NewLiteral(8, 1), ErrFieldRange},
		{"literal with operator type", &Literal{Header: Header{TypeID: TypeSum}}, ErrFieldRange},
		{"operator with literal type", NewOperator(0, TypeLiteral, NewLiteral(0, 1)), ErrFieldRange},
		{"nil", nil, ErrUnknownPacket},
	}
	for _, tt := range tests {
		if _, err := Encode(tt.p); !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}

func TestEncodeLengthOverflow(t *testing.T) {
	children := make([]Packet, MaxCount+1)
	for i := range children {
		children[i] = NewLiteral(0, 0)
	}
	if _, err := Encode(NewOperator(0, TypeSum, children...)); !errors.Is(err, ErrLengthOverflow) {
		t.Fatalf("count overflow: expected ErrLengthOverflow, got %v", err)
	}

	wide := make([]Packet, 400)
	for i := range wide {
		wide[i] = NewLiteral(0, ^uint64(0))
	}
	if _, err := Encode(NewOperatorBits(0, TypeSum, wide...)); !errors.Is(err, ErrLengthOverflow) {
		t.Fatalf("bit length overflow: expected ErrLengthOverflow, got %v", err)
	}
}

func TestDecodeErrorUnwraps(t *testing.T) {
	err := error(&DecodeError{Pos: 3, Err: ErrTruncated})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated in chain")
	}
	if got := err.Error(); got != "protocol: truncated data at bit 3" {
		t.Fatalf("message = %q", got)
	}
}
