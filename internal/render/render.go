// Package render formats solved transmissions for the terminal.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"gopkg.in/yaml.v3"

	"github.com/danmuck/bitsctl/internal/config"
	"github.com/danmuck/bitsctl/internal/protocol"
	"github.com/danmuck/bitsctl/internal/solve"
)

// Report is the structured json/yaml form of a result.
type Report struct {
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`
	Hex        string `json:"hex" yaml:"hex"`
	Bits       int    `json:"bits" yaml:"bits"`
	Packets    int    `json:"packets" yaml:"packets"`
	Depth      int    `json:"depth" yaml:"depth"`
	VersionSum uint64 `json:"version_sum" yaml:"version_sum"`
	Value      uint64 `json:"value" yaml:"value"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	Tree       *Node  `json:"tree,omitempty" yaml:"tree,omitempty"`
}

func NewReport(res *solve.Result, withTree bool) Report {
	r := Report{
		Line:       res.Line,
		Hex:        res.Hex,
		Bits:       res.Bits,
		Packets:    res.Stats.Packets,
		Depth:      res.Stats.Depth,
		VersionSum: res.VersionSum,
		Value:      res.Value,
	}
	if withTree {
		n := FromPacket(res.Root)
		r.Tree = &n
	}
	return r
}

// Solution writes the two answers in the given format.
func Solution(w io.Writer, format string, res *solve.Result) error {
	switch format {
	case config.FormatText:
		return Text(w, res)
	case config.FormatTree:
		if err := Tree(w, res.Root); err != nil {
			return err
		}
		fmt.Fprintln(w)
		return Text(w, res)
	default:
		return structured(w, format, NewReport(res, false))
	}
}

// Dump writes the decoded packet tree. Text and tree formats are the same.
func Dump(w io.Writer, format string, res *solve.Result) error {
	switch format {
	case config.FormatText, config.FormatTree:
		return Tree(w, res.Root)
	default:
		return structured(w, format, NewReport(res, true))
	}
}

// Batch writes one entry per outcome, in order.
func Batch(w io.Writer, format string, outcomes []solve.Outcome) error {
	switch format {
	case config.FormatText, config.FormatTree:
		for _, o := range outcomes {
			var se *solve.StageError
			switch {
			case errors.As(o.Err, &se):
				fmt.Fprintf(w, "line %d: %s failed: %v\n", o.Input.Line, se.Stage, se.Err)
				continue
			case o.Err != nil:
				fmt.Fprintf(w, "line %d: error: %v\n", o.Input.Line, o.Err)
				continue
			}
			fmt.Fprintf(w, "line %d: version_sum=%d value=%d\n", o.Input.Line, o.Result.VersionSum, o.Result.Value)
		}
		return nil
	default:
		reports := make([]Report, 0, len(outcomes))
		for _, o := range outcomes {
			if o.Err != nil {
				reports = append(reports, Report{Line: o.Input.Line, Hex: o.Input.Text, Error: o.Err.Error()})
				continue
			}
			reports = append(reports, NewReport(o.Result, false))
		}
		return structured(w, format, reports)
	}
}

// Text writes the classic two-part report.
func Text(w io.Writer, res *solve.Result) error {
	rule := strings.Repeat("-", 10)
	_, err := fmt.Fprintf(w, "Part 1\n%s\nVersion sum: %d\n\nPart 2\n%s\nExpression value: %d\n",
		rule, res.VersionSum, rule, res.Value)
	return err
}

var enumStyle = lipgloss.NewStyle().Faint(true).MarginRight(1)

// Tree draws p one packet per line.
func Tree(w io.Writer, p protocol.Packet) error {
	t := buildTree(p, protocol.Values(p)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func buildTree(p protocol.Packet, values map[*protocol.Operator]uint64) *tree.Tree {
	t := tree.Root(Label(p, values))
	if op, ok := p.(*protocol.Operator); ok {
		for _, c := range op.Children {
			if _, leaf := c.(*protocol.Literal); leaf {
				t.Child(Label(c, values))
				continue
			}
			t.Child(buildTree(c, values))
		}
	}
	return t
}

// Label is the one-line description of a packet used by the tree view.
// Operator values come from values, as returned by protocol.Values.
func Label(p protocol.Packet, values map[*protocol.Operator]uint64) string {
	switch p := p.(type) {
	case *protocol.Literal:
		return fmt.Sprintf("literal v%d = %d", p.Version, p.Value)
	case *protocol.Operator:
		return fmt.Sprintf("%s v%d (%d by %s) = %d", p.TypeID, p.Version, len(p.Children), p.LengthType, values[p])
	default:
		return fmt.Sprintf("%T", p)
	}
}

func structured(w io.Writer, format string, v any) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return config.ValidateFormat(format)
	}
}
