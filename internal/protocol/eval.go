package protocol

// VersionSum adds the version of p and every packet below it.
func VersionSum(p Packet) uint64 {
	switch p := p.(type) {
	case *Literal:
		return uint64(p.Version)
	case *Operator:
		sum := uint64(p.Version)
		for _, c := range p.Children {
			sum += VersionSum(c)
		}
		return sum
	default:
		panic(InvariantError{Reason: "unknown packet kind"})
	}
}

// Value evaluates the expression rooted at p. Trees that fail Validate
// cause a panic with an InvariantError value.
func Value(p Packet) uint64 {
	return value(p, nil)
}

// Values evaluates p once and returns the value of every operator in it.
func Values(p Packet) map[*Operator]uint64 {
	seen := make(map[*Operator]uint64)
	value(p, seen)
	return seen
}

func value(p Packet, seen map[*Operator]uint64) uint64 {
	switch p := p.(type) {
	case *Literal:
		return p.Value
	case *Operator:
		v := p.eval(seen)
		if seen != nil {
			seen[p] = v
		}
		return v
	default:
		panic(InvariantError{Reason: "unknown packet kind"})
	}
}

func (o *Operator) eval(seen map[*Operator]uint64) uint64 {
	if !arityOK(o.TypeID, len(o.Children)) {
		panic(InvariantError{TypeID: o.TypeID, Reason: "arity"})
	}
	switch o.TypeID {
	case TypeSum:
		var acc uint64
		for _, c := range o.Children {
			acc += value(c, seen)
		}
		return acc
	case TypeProduct:
		acc := uint64(1)
		for _, c := range o.Children {
			acc *= value(c, seen)
		}
		return acc
	case TypeMinimum:
		acc := value(o.Children[0], seen)
		for _, c := range o.Children[1:] {
			acc = min(acc, value(c, seen))
		}
		return acc
	case TypeMaximum:
		acc := value(o.Children[0], seen)
		for _, c := range o.Children[1:] {
			acc = max(acc, value(c, seen))
		}
		return acc
	case TypeGreater:
		return boolValue(value(o.Children[0], seen) > value(o.Children[1], seen))
	case TypeLess:
		return boolValue(value(o.Children[0], seen) < value(o.Children[1], seen))
	case TypeEqual:
		return boolValue(value(o.Children[0], seen) == value(o.Children[1], seen))
	default:
		panic(InvariantError{TypeID: o.TypeID, Reason: "not an operator"})
	}
}

func boolValue(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// Stats summarises the shape of a packet tree.
type Stats struct {
	Packets   int
	Literals  int
	Operators int
	Depth     int
}

// Count walks p and returns its Stats.
func Count(p Packet) Stats {
	var s Stats
	count(p, 1, &s)
	return s
}

func count(p Packet, depth int, s *Stats) {
	s.Packets++
	s.Depth = max(s.Depth, depth)
	switch p := p.(type) {
	case *Literal:
		s.Literals++
	case *Operator:
		s.Operators++
		for _, c := range p.Children {
			count(c, depth+1, s)
		}
	}
}
