package protocol

import "fmt"

// Validate checks the structural rules the evaluator relies on: header fields
// in range, variant matching type ID, and operator arity. It returns the
// first violation in depth-first order.
func Validate(p Packet) error {
	return validate(p, nil)
}

func validate(p Packet, path []int) error {
	switch p := p.(type) {
	case *Literal:
		if p.TypeID != TypeLiteral {
			return fmt.Errorf("%w: literal at %s has type %d", ErrFieldRange, formatPath(path), uint8(p.TypeID))
		}
		if p.Version > MaxVersion {
			return fmt.Errorf("%w: version %d at %s", ErrFieldRange, p.Version, formatPath(path))
		}
		return nil
	case *Operator:
		if p.TypeID == TypeLiteral || p.TypeID > TypeEqual {
			return fmt.Errorf("%w: operator at %s has type %d", ErrFieldRange, formatPath(path), uint8(p.TypeID))
		}
		if p.Version > MaxVersion {
			return fmt.Errorf("%w: version %d at %s", ErrFieldRange, p.Version, formatPath(path))
		}
		if !arityOK(p.TypeID, len(p.Children)) {
			return ArityError{Path: append([]int(nil), path...), TypeID: p.TypeID, Children: len(p.Children)}
		}
		for i, c := range p.Children {
			if err := validate(c, append(path, i)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T at %s", ErrUnknownPacket, p, formatPath(path))
	}
}

func arityOK(t TypeID, n int) bool {
	if t.Comparison() {
		return n == 2
	}
	return n >= 1
}
