// Package solve runs transmissions through the read, decode and evaluate
// stages.
package solve

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/danmuck/bitsctl/internal/protocol"
)

// Result holds a decoded transmission and both answers.
type Result struct {
	Line       int
	Hex        string
	Bytes      int
	Bits       int
	Root       protocol.Packet
	VersionSum uint64
	Value      uint64
	Stats      protocol.Stats
}

// Outcome pairs a batch input with its result or error.
type Outcome struct {
	Input  Input
	Result *Result
	Err    error
}

// Solver runs inputs through the pipeline under fixed decode limits.
type Solver struct {
	Limits protocol.Limits
}

// New returns a Solver that decodes within limits.
func New(limits protocol.Limits) Solver {
	return Solver{Limits: limits}
}

// Solve runs one input through every stage. The whole input fails on the
// first stage error; no partial result is returned.
func (s Solver) Solve(in Input) (*Result, error) {
	start := time.Now()

	buf, err := ParseHex(in.Text)
	if err != nil {
		return nil, &StageError{Stage: StageRead, Line: in.Line, Err: err}
	}

	dec, err := protocol.NewDecoder(buf, s.Limits)
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Line: in.Line, Err: err}
	}
	root, err := dec.Decode()
	if err != nil {
		return nil, &StageError{Stage: StageDecode, Line: in.Line, Err: err}
	}
	decoded := time.Since(start)

	// Value panics on trees that fail Validate, so arity is checked as
	// part of evaluation.
	if err := protocol.Validate(root); err != nil {
		return nil, &StageError{Stage: StageEvaluate, Line: in.Line, Err: err}
	}

	res := &Result{
		Line:       in.Line,
		Hex:        in.Text,
		Bytes:      len(buf),
		Bits:       dec.Pos(),
		Root:       root,
		VersionSum: protocol.VersionSum(root),
		Value:      protocol.Value(root),
		Stats:      protocol.Count(root),
	}

	log.Debug().
		Int("line", in.Line).
		Int("bytes", res.Bytes).
		Int("bits", res.Bits).
		Int("packets", res.Stats.Packets).
		Int("depth", res.Stats.Depth).
		Dur("decode", decoded).
		Dur("total", time.Since(start)).
		Msg("transmission solved")
	return res, nil
}

// All solves inputs on at most workers goroutines. Outcomes are returned in
// input order; per-input failures are reported in Outcome.Err and do not stop
// the batch. A cancelled ctx marks the inputs not yet started.
func (s Solver) All(ctx context.Context, inputs []Input, workers int) []Outcome {
	out := make([]Outcome, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))

	for i, in := range inputs {
		i, in := i, in // per-iteration copies (go < 1.22 loop semantics)
		out[i].Input = in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			res, err := s.Solve(in)
			if err != nil {
				log.Warn().Err(err).Int("line", in.Line).Msg("transmission failed")
			}
			out[i].Result = res
			out[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return out
}
