package protocol

// Limits constrains decode memory and recursion. Zero fields are unlimited.
type Limits struct {
	MaxBytes int
	MaxDepth int
}

func DefaultLimits() Limits {
	return Limits{
		MaxBytes: 64 * 1024,
		MaxDepth: 4096,
	}
}
