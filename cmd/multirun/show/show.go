// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the show subcommand, which prints a resolved batch without running it.
package show

import (
	"context"
	"errors"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/multirun/cmd/multirun/cmdstate"
	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
	"github.com/matt-FFFFFF/multirun/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const (
	cliExitStr     = ""
	modeConcurrent = "concurrent"
	modeSerial     = "serial"
)

// ErrWriteBatch is returned when the batch cannot be written.
var ErrWriteBatch = errors.New("failed to write batch")

// ShowCmd prints the resolved batch as YAML.
var ShowCmd = NewShowCmd()

// NewShowCmd returns a new show command.
func NewShowCmd() *cli.Command {
	return &cli.Command{
		Name:            "show",
		Usage:           "Print the resolved commands of an instructions file without running them",
		ArgsUsage:       "[--] [extra args...]",
		Flags:           cmdstate.Flags(),
		SkipFlagParsing: true,
		Action:          actionFunc,
	}
}

type schedule struct {
	Mode         string `yaml:"mode"`
	Jobs         int    `yaml:"jobs"`
	PrintCommand bool   `yaml:"print_command"`
	BufferOutput bool   `yaml:"buffer_output,omitempty"`
	KeepGoing    bool   `yaml:"keep_going,omitempty"`
}

type command struct {
	Tag  string            `yaml:"tag"`
	Path string            `yaml:"path"`
	Args []string          `yaml:"args,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
}

type batch struct {
	WorkspaceName string    `yaml:"workspace_name,omitempty"`
	Schedule      schedule  `yaml:"schedule"`
	Commands      []command `yaml:"commands"`
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)

	extraArgs, err := cmdstate.ParseArgs(cmd)
	if errors.Is(err, cmdstate.ErrHelpShown) {
		return nil
	}

	if err != nil {
		return err
	}

	b, err := cmdstate.Prepare(ctx, cmd, extraArgs)
	if err != nil {
		logger.Error("Failed to prepare batch", "error", err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if err := write(cmd.Root().Writer, b); err != nil {
		logger.Error("Failed to write batch", "error", err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

func write(w io.Writer, b *cmdstate.Batch) error {
	cfg := b.Instructions.Schedule()

	out := batch{
		WorkspaceName: b.Instructions.WorkspaceName,
		Schedule:      newSchedule(cfg),
		Commands:      make([]command, len(b.Commands)),
	}

	for i, c := range b.Commands {
		out.Commands[i] = command{
			Tag:  c.Tag(),
			Path: c.Path(),
			Args: c.Args(),
			Env:  c.Env(),
		}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return errors.Join(ErrWriteBatch, err)
	}

	if _, err := w.Write(data); err != nil {
		return errors.Join(ErrWriteBatch, err)
	}

	return nil
}

// newSchedule leaves out the options the selected mode ignores.
func newSchedule(cfg runbatch.ScheduleConfig) schedule {
	s := schedule{
		Mode:         modeSerial,
		Jobs:         cfg.Jobs,
		PrintCommand: cfg.PrintCommandTags,
	}

	if cfg.Concurrent() {
		s.Mode = modeConcurrent
		s.BufferOutput = cfg.BufferOutput
	} else {
		s.KeepGoing = cfg.KeepGoing
	}

	return s
}
