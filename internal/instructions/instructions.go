// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package instructions

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
	"github.com/matt-FFFFFF/multirun/internal/resolve"
	"github.com/matt-FFFFFF/multirun/internal/runbatch"
	"github.com/matt-FFFFFF/multirun/internal/shellwrap"
)

var (
	// ErrReadInstructions is returned when the instructions file cannot be read.
	ErrReadInstructions = errors.New("failed to read instructions")
	// ErrGetInstructions is returned when the instructions cannot be fetched with go-getter.
	ErrGetInstructions = errors.New("failed to get instructions")
	// ErrParseInstructions is returned when the instructions cannot be decoded.
	ErrParseInstructions = errors.New("failed to parse instructions")
	// ErrInvalidInstructions is returned when decoded instructions fail validation.
	ErrInvalidInstructions = errors.New("invalid instructions")
	// ErrBuildCommand is returned when a command cannot be resolved or wrapped.
	ErrBuildCommand = errors.New("failed to build command")
)

// Instructions is the decoded instructions file.
type Instructions struct {
	// Name of the workspace the commands belong to, used to resolve runfiles paths.
	WorkspaceName string `toml:"workspace_name" json:"workspace_name" yaml:"workspace_name"`
	// 0 runs all commands concurrently, any positive value runs them one at a time.
	Jobs int `toml:"jobs" json:"jobs" yaml:"jobs"`
	// Print each command's tag before its output.
	PrintCommand bool `toml:"print_command" json:"print_command" yaml:"print_command"`
	// Keep running after a failure, serial mode only.
	KeepGoing bool `toml:"keep_going" json:"keep_going" yaml:"keep_going"`
	// Capture each command's output and print it in one piece, concurrent mode only.
	BufferOutput bool `toml:"buffer_output" json:"buffer_output" yaml:"buffer_output"`
	// The commands, in the order they are launched and reported.
	Commands []Command `toml:"commands" json:"commands" yaml:"commands"`
}

// Command is one entry of the commands list.
type Command struct {
	Tag  string            `toml:"tag" json:"tag" yaml:"tag"`
	Path string            `toml:"path" json:"path" yaml:"path"`
	Args []string          `toml:"args" json:"args,omitempty" yaml:"args,omitempty"`
	Env  map[string]string `toml:"env" json:"env,omitempty" yaml:"env,omitempty"`
}

// Validate reports every problem found, not just the first.
func (in *Instructions) Validate() error {
	var result error

	if in.Jobs < 0 {
		result = multierror.Append(result, fmt.Errorf("jobs must be 0 or greater, got %d", in.Jobs))
	}

	for i, c := range in.Commands {
		if c.Tag == "" {
			result = multierror.Append(result, fmt.Errorf("command %d: tag is required", i))
		}

		if c.Path == "" {
			result = multierror.Append(result, fmt.Errorf("command %d (%s): path is required", i, c.Tag))
		}
	}

	if result != nil {
		return errors.Join(ErrInvalidInstructions, result)
	}

	return nil
}

// Schedule returns the scheduling options.
func (in *Instructions) Schedule() runbatch.ScheduleConfig {
	return runbatch.ScheduleConfig{
		Jobs:             in.Jobs,
		PrintCommandTags: in.PrintCommand,
		BufferOutput:     in.BufferOutput,
		KeepGoing:        in.KeepGoing,
	}
}

// Build resolves and wraps every command and appends extraArgs to each one.
// A failure for any command fails the whole build, nothing is partially returned.
func (in *Instructions) Build(
	ctx context.Context,
	resolver resolve.Resolver,
	wrapper shellwrap.Wrapper,
	extraArgs []string,
) ([]runbatch.Command, error) {
	cmds := make([]runbatch.Command, 0, len(in.Commands))

	for _, c := range in.Commands {
		p, err := resolver.Resolve(c.Path)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrBuildCommand, c.Tag, err)
		}

		p, args, err := wrapper.WrapForShell(p, c.Args)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrBuildCommand, c.Tag, err)
		}

		ctxlog.Debug(ctx, "command resolved", "tag", c.Tag, "logical", c.Path, "path", p)

		cmds = append(cmds, runbatch.NewCommand(p, c.Tag, args, c.Env, extraArgs...))
	}

	return cmds, nil
}
