package solve

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Input is one line of hex text and its 1-based line number.
type Input struct {
	Line int
	Text string
}

// ParseHex converts a line of hex digits (either case, surrounding
// whitespace ignored) to bytes.
func ParseHex(line string) ([]byte, error) {
	s := strings.TrimSpace(line)
	if s == "" {
		return nil, ErrNoInput
	}
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHex, err)
	}
	return buf, nil
}

// ReadFirst returns the first line of r.
func ReadFirst(r io.Reader) (Input, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return Input{}, err
	}
	if strings.TrimSpace(line) == "" {
		return Input{}, ErrNoInput
	}
	return Input{Line: 1, Text: strings.TrimSpace(line)}, nil
}

// ReadAll returns every non-blank line of r.
func ReadAll(r io.Reader) ([]Input, error) {
	br := bufio.NewReader(r)
	var out []Input
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if text := strings.TrimSpace(line); text != "" {
			out = append(out, Input{Line: n, Text: text})
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, ErrNoInput
	}
	return out, nil
}
