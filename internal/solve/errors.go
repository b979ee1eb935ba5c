package solve

import (
	"errors"
	"fmt"
)

var (
	ErrNoInput = errors.New("solve: no input")
	ErrHex     = errors.New("solve: invalid hex")
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageRead     Stage = "read"
	StageDecode   Stage = "decode"
	StageEvaluate Stage = "evaluate"
)

// StageError wraps a failure with the stage and input line it came from.
// Line is 0 when the input was not line-numbered.
type StageError struct {
	Stage Stage
	Line  int
	Err   error
}

func (e *StageError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s failed: %v", e.Line, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
