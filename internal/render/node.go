package render

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/danmuck/bitsctl/internal/protocol"
)

// Node is the serialised form of a packet.
type Node struct {
	Version    uint8   `json:"version" yaml:"version"`
	Type       string  `json:"type" yaml:"type"`
	LengthType string  `json:"length_type,omitempty" yaml:"length_type,omitempty"`
	Value      *uint64 `json:"value,omitempty" yaml:"value,omitempty"`
	Children   []Node  `json:"children,omitempty" yaml:"children,omitempty"`
}

func FromPacket(p protocol.Packet) Node {
	switch p := p.(type) {
	case *protocol.Literal:
		v := p.Value
		return Node{Version: p.Version, Type: p.TypeID.String(), Value: &v}
	case *protocol.Operator:
		n := Node{Version: p.Version, Type: p.TypeID.String(), LengthType: p.LengthType.String()}
		for _, c := range p.Children {
			n.Children = append(n.Children, FromPacket(c))
		}
		return n
	default:
		return Node{Type: fmt.Sprintf("%T", p)}
	}
}

// Packet converts n back to a packet tree. An empty length_type means count.
func (n Node) Packet() (protocol.Packet, error) {
	typ, err := protocol.ParseTypeID(n.Type)
	if err != nil {
		return nil, err
	}
	if typ == protocol.TypeLiteral {
		if n.Value == nil {
			return nil, fmt.Errorf("render: literal without value")
		}
		if len(n.Children) > 0 {
			return nil, fmt.Errorf("render: literal with children")
		}
		return protocol.NewLiteral(n.Version, *n.Value), nil
	}
	if n.Value != nil {
		return nil, fmt.Errorf("render: %s operator with value", n.Type)
	}

	children := make([]protocol.Packet, 0, len(n.Children))
	for _, c := range n.Children {
		p, err := c.Packet()
		if err != nil {
			return nil, err
		}
		children = append(children, p)
	}
	op := protocol.NewOperator(n.Version, typ, children...)
	switch n.LengthType {
	case "", "count":
	case "bits":
		op.LengthType = protocol.LengthBits
	default:
		return nil, fmt.Errorf("render: unknown length_type %q", n.LengthType)
	}
	return op, nil
}

// ParseNode reads a YAML or JSON packet tree.
func ParseNode(data []byte) (Node, error) {
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return Node{}, fmt.Errorf("render: parse tree: %w", err)
	}
	if n.Type == "" {
		return Node{}, fmt.Errorf("render: parse tree: missing root type")
	}
	return n, nil
}
