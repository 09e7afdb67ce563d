// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"io"
	"os"

	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
)

// Orchestrator picks a scheduler for a batch and hands back its results.
type Orchestrator struct {
	Launcher Launcher
	// Stdout receives tags and buffered output.
	Stdout io.Writer
	// Stdin, ChildStdout and ChildStderr are inherited by commands that do not buffer their output.
	// Only serially run commands read Stdin, concurrent ones read from the null device.
	Stdin       *os.File
	ChildStdout *os.File
	ChildStderr *os.File
}

// NewOrchestrator returns an Orchestrator wired to the standard streams of this process.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		Launcher:    NewOSLauncher(),
		Stdout:      os.Stdout,
		Stdin:       os.Stdin,
		ChildStdout: os.Stdout,
		ChildStderr: os.Stderr,
	}
}

// Scheduler returns the scheduler selected by cfg.
func (o *Orchestrator) Scheduler(cfg ScheduleConfig) Scheduler {
	if cfg.Concurrent() {
		var out OutputStrategy = StreamingOutput{
			Stdout: o.ChildStdout,
			Stderr: o.ChildStderr,
		}
		if cfg.BufferOutput {
			out = CapturingOutput{}
		}

		return &ConcurrentScheduler{
			Launcher:         o.Launcher,
			Output:           out,
			Stdout:           o.Stdout,
			PrintCommandTags: cfg.PrintCommandTags,
		}
	}

	return &SerialScheduler{
		Launcher: o.Launcher,
		Output: StreamingOutput{
			Stdin:  o.Stdin,
			Stdout: o.ChildStdout,
			Stderr: o.ChildStderr,
		},
		Stdout:           o.Stdout,
		PrintCommandTags: cfg.PrintCommandTags,
		KeepGoing:        cfg.KeepGoing,
	}
}

// Run runs cmds with the scheduler selected by cfg.
// Use Results.Success or Results.ExitCode for the aggregate outcome.
func (o *Orchestrator) Run(ctx context.Context, cmds []Command, cfg ScheduleConfig) (Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := ctxlog.Logger(ctx)
	logger.Debug("running batch",
		"commands", len(cmds),
		"concurrent", cfg.Concurrent(),
		"bufferOutput", cfg.BufferOutput,
		"keepGoing", cfg.KeepGoing)

	res := o.Scheduler(cfg).Run(ctx, cmds)

	logger.Debug("batch finished", "success", res.Success(), "failed", res.Failed())

	return res, nil
}
