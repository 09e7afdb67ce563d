// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
)

var _ Scheduler = (*SerialScheduler)(nil)

// SerialScheduler runs commands one at a time, in input order.
type SerialScheduler struct {
	Launcher Launcher
	Output   OutputStrategy
	// Stdout receives the tags.
	Stdout io.Writer
	// PrintCommandTags prints the tag before each command is started.
	PrintCommandTags bool
	// KeepGoing runs the remaining commands after a failure instead of stopping.
	KeepGoing bool
}

// Run implements Scheduler.
func (s *SerialScheduler) Run(ctx context.Context, cmds []Command) Results {
	logger := ctxlog.Logger(ctx).With("scheduler", "serial")
	results := newResults(cmds)

	for i, cmd := range cmds {
		if ctx.Err() != nil {
			logger.Info("interrupted, not starting remaining commands", "remaining", len(cmds)-i)
			skipAll(results[i:], ErrInterrupted)

			return results
		}

		if s.PrintCommandTags && s.Stdout != nil {
			if _, err := fmt.Fprintln(s.Stdout, cmd.Tag()); err != nil {
				logger.Warn("failed to write tag", "tag", cmd.Tag(), "error", err)
			}
		}

		results[i].Status = ResultStatusRunning

		err := RunBlocking(ctx, s.Launcher, cmd, s.Output)
		if err == nil {
			results[i].succeed()
			continue
		}

		code := -1

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}

		results[i].fail(code, err)

		switch {
		case errors.Is(err, ErrInterrupted):
			logger.Info("interrupted while running command", "tag", cmd.Tag())
			skipAll(results[i+1:], ErrInterrupted)

			return results
		case s.KeepGoing:
			logger.Debug("command failed, keeping going", "tag", cmd.Tag(), "error", err)
		default:
			logger.Debug("command failed, stopping", "tag", cmd.Tag(), "error", err)
			skipAll(results[i+1:], ErrSkipOnError)

			return results
		}
	}

	return results
}

func skipAll(results Results, err error) {
	for _, r := range results {
		r.skip(err)
	}
}
