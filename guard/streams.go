package guard

import (
	"errors"
	"io"
	"os"
)

var (
	errStreamsRequired = errors.New("streams are required")
	errBarRequired     = errors.New("progress bar is required")
)

// Streams is the pair of process-wide output slots the guard swaps.
// The host framework routes all test and diagnostic output through
// these slots for the run's duration.
type Streams interface {
	Stdout() io.Writer
	SetStdout(io.Writer)
	Stderr() io.Writer
	SetStderr(io.Writer)
}

// StdStreams is a Streams implementation seeded from the process's
// own stdout and stderr.
type StdStreams struct {
	out io.Writer
	err io.Writer
}

// NewStdStreams creates Streams pointing at os.Stdout and os.Stderr.
func NewStdStreams() *StdStreams {
	return &StdStreams{out: os.Stdout, err: os.Stderr}
}

// NewStreams creates Streams over explicit writers.
func NewStreams(out, err io.Writer) *StdStreams {
	return &StdStreams{out: out, err: err}
}

func (s *StdStreams) Stdout() io.Writer     { return s.out }
func (s *StdStreams) SetStdout(w io.Writer) { s.out = w }
func (s *StdStreams) Stderr() io.Writer     { return s.err }
func (s *StdStreams) SetStderr(w io.Writer) { s.err = w }
