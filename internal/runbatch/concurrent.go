// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode"

	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
)

var _ Scheduler = (*ConcurrentScheduler)(nil)

// Scheduler runs a batch of commands.
type Scheduler interface {
	// Run executes cmds and returns one result per command, in input order.
	Run(ctx context.Context, cmds []Command) Results
}

// ConcurrentScheduler launches every command before waiting on any of them.
// Results are reported in launch order, whatever order the processes finish in.
type ConcurrentScheduler struct {
	Launcher Launcher
	Output   OutputStrategy
	// Stdout receives tags and captured output.
	Stdout io.Writer
	// PrintCommandTags prints the tag before each command's captured output.
	PrintCommandTags bool
}

// Run implements Scheduler.
func (s *ConcurrentScheduler) Run(ctx context.Context, cmds []Command) Results {
	logger := ctxlog.Logger(ctx).With("scheduler", "concurrent")
	results := newResults(cmds)
	handles := make([]Handle, len(cmds))

	for i, cmd := range cmds {
		if ctx.Err() != nil {
			logger.Info("interrupted before all commands were launched", "launched", i)
			s.abort(ctx, handles[:i], results[:i])

			skipAll(results[i:], ErrInterrupted)

			return results
		}

		h, err := s.Launcher.Start(ctx, cmd, s.Output)
		if err != nil {
			logger.Error("failed to launch command", "tag", cmd.Tag(), "error", err)
			results[i].fail(-1, err)

			continue
		}

		results[i].Status = ResultStatusRunning
		handles[i] = h
	}

	for i, h := range handles {
		if h == nil {
			continue
		}

		code, err := h.Wait(ctx)
		if errors.Is(err, ErrInterrupted) {
			logger.Info("interrupted, killing outstanding commands")
			s.abort(ctx, handles[i:], results[i:])

			return results
		}

		s.report(ctx, results[i], h)

		switch {
		case err != nil:
			results[i].fail(code, err)
		case code != 0:
			results[i].fail(code, &ExitError{Tag: results[i].Tag, Code: code})
			logger.Debug("command failed", "tag", results[i].Tag, "exitCode", code)
		default:
			results[i].succeed()
		}

		results[i].Output = h.Output()
	}

	return results
}

// report prints the tag and captured output of a finished command.
func (s *ConcurrentScheduler) report(ctx context.Context, r *Result, h Handle) {
	if !h.Captured() || s.Stdout == nil {
		return
	}

	if s.PrintCommandTags {
		if _, err := fmt.Fprintln(s.Stdout, r.Tag); err != nil {
			ctxlog.Logger(ctx).Warn("failed to write tag", "tag", r.Tag, "error", err)
		}
	}

	out := bytes.TrimRightFunc(h.Output(), unicode.IsSpace)
	if len(out) == 0 {
		return
	}

	if _, err := fmt.Fprintf(s.Stdout, "%s\n", out); err != nil {
		ctxlog.Logger(ctx).Warn("failed to write output", "tag", r.Tag, "error", err)
	}
}

// abort kills every running process in handles, then waits for each of them to exit.
func (s *ConcurrentScheduler) abort(ctx context.Context, handles []Handle, results Results) {
	logger := ctxlog.Logger(ctx)

	for i, h := range handles {
		if h == nil {
			continue
		}

		if err := h.Kill(); err != nil {
			logger.Error("failed to kill process", "tag", results[i].Tag, "pid", h.Pid(), "error", err)
		}
	}

	for i, h := range handles {
		if h == nil {
			continue
		}

		code := h.Reap()
		results[i].fail(code, ErrInterrupted)

		logger.Debug("process reaped", "tag", results[i].Tag, "pid", h.Pid(), "exitCode", code)
	}
}
