// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"slices"
)

// ResultStatus is the lifecycle state of one command in a batch.
type ResultStatus int

const (
	// ResultStatusPending means the command has not been started.
	ResultStatusPending ResultStatus = iota
	// ResultStatusRunning means the command has been started and not yet waited on.
	ResultStatusRunning
	// ResultStatusSucceeded means the command exited with code zero.
	ResultStatusSucceeded
	// ResultStatusFailed means the command could not start, exited non-zero or was interrupted.
	ResultStatusFailed
	// ResultStatusSkipped means the command was never run because the batch stopped early.
	ResultStatusSkipped
)

// String implements fmt.Stringer.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusPending:
		return "pending"
	case ResultStatusRunning:
		return "running"
	case ResultStatusSucceeded:
		return "succeeded"
	case ResultStatusFailed:
		return "failed"
	case ResultStatusSkipped:
		return "skipped"
	}

	return "unknown"
}

// Result is the outcome of one command.
type Result struct {
	Tag      string       // Tag of the command
	ExitCode int          // Exit code, -1 if the command did not exit normally
	Error    error        // Error, if any
	Output   []byte       // Captured combined output, nil unless buffering
	Status   ResultStatus // Final state of the command
}

func (r *Result) succeed() {
	r.Status = ResultStatusSucceeded
	r.ExitCode = 0
}

func (r *Result) fail(code int, err error) {
	r.Status = ResultStatusFailed
	r.ExitCode = code
	r.Error = err
}

func (r *Result) skip(err error) {
	r.Status = ResultStatusSkipped
	r.ExitCode = -1
	r.Error = err
}

// Results holds one Result per command, in input order.
type Results []*Result

func newResults(cmds []Command) Results {
	res := make(Results, len(cmds))
	for i, cmd := range cmds {
		res[i] = &Result{
			Tag:    cmd.Tag(),
			Status: ResultStatusPending,
		}
	}

	return res
}

// Success is the aggregate outcome: true if every command succeeded.
// An empty batch is successful.
func (r Results) Success() bool {
	for v := range slices.Values(r) {
		if v.Status != ResultStatusSucceeded {
			return false
		}
	}

	return true
}

// Interrupted reports whether the batch was stopped by cancellation.
func (r Results) Interrupted() bool {
	return slices.ContainsFunc(r, func(v *Result) bool {
		return errors.Is(v.Error, ErrInterrupted)
	})
}

// Failed returns the tags of the commands that failed.
func (r Results) Failed() []string {
	var tags []string

	for v := range slices.Values(r) {
		if v.Status == ResultStatusFailed {
			tags = append(tags, v.Tag)
		}
	}

	return tags
}

// ExitCode converts the aggregate outcome into a process exit status.
func (r Results) ExitCode() int {
	if r.Success() {
		return 0
	}

	return 1
}
