// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"fmt"
)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrCouldNotKillProcess is returned when a running process could not be signalled.
	ErrCouldNotKillProcess = errors.New("could not kill process")
	// ErrNonZeroExit is matched by every *ExitError.
	ErrNonZeroExit = errors.New("non-zero exit code")
	// ErrInterrupted is returned when the batch context is cancelled while a command is running.
	ErrInterrupted = errors.New("interrupted")
	// ErrSkipOnError is recorded for commands not run because an earlier command failed.
	ErrSkipOnError = errors.New("skipped due to previous error")
	// ErrBufferOverflow is returned when captured output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrFailedToReadBuffer is returned when the buffer from the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrInvalidJobs is returned for a negative job count.
	ErrInvalidJobs = errors.New("job count must not be negative")
)

// ExitError reports a command that ran to completion with a non-zero exit code.
type ExitError struct {
	Tag  string
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tag, e.Code)
}

// Is makes errors.Is(err, ErrNonZeroExit) true for any *ExitError.
func (e *ExitError) Is(target error) bool {
	return target == ErrNonZeroExit
}
