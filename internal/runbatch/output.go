// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"os"
)

var (
	_ OutputStrategy = StreamingOutput{}
	_ OutputStrategy = CapturingOutput{}
)

// OutputStrategy decides which files a launched process reads from and writes to.
type OutputStrategy interface {
	// Open returns the streams for a single launch. It is called once per process.
	Open() (*Streams, error)
}

// Streams are the files handed to one child process.
type Streams struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	// Capture is the parent's read end of the output pipe, nil when output is not captured.
	Capture *os.File
	// ChildEnds are closed in the parent once the child has been started.
	ChildEnds []*os.File
}

func (s *Streams) closeChildEnds() {
	for _, f := range s.ChildEnds {
		_ = f.Close()
	}

	s.ChildEnds = nil
}

// close releases everything, used when the process could not be started.
func (s *Streams) close() {
	s.closeChildEnds()

	if s.Capture != nil {
		_ = s.Capture.Close()
	}
}

// StreamingOutput lets the child write straight to the given files.
// A nil Stdin is replaced by the null device, nil Stdout or Stderr by the parent's own.
type StreamingOutput struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// Open implements OutputStrategy.
func (o StreamingOutput) Open() (*Streams, error) {
	s := &Streams{
		Stdin:  o.Stdin,
		Stdout: o.Stdout,
		Stderr: o.Stderr,
	}

	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}

	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}

	if s.Stdin == nil {
		null, err := os.Open(os.DevNull)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		s.Stdin = null
		s.ChildEnds = append(s.ChildEnds, null)
	}

	return s, nil
}

// CapturingOutput merges the child's stderr into its stdout and captures both through a single pipe.
// The child reads stdin from the null device.
type CapturingOutput struct{}

// Open implements OutputStrategy.
func (CapturingOutput) Open() (*Streams, error) {
	null, err := os.Open(os.DevNull)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	r, w, err := os.Pipe()
	if err != nil {
		_ = null.Close()
		return nil, errors.Join(ErrFailedToCreatePipe, err)
	}

	return &Streams{
		Stdin:     null,
		Stdout:    w,
		Stderr:    w,
		Capture:   r,
		ChildEnds: []*os.File{null, w},
	}, nil
}
