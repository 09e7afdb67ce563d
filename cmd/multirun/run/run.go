// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run subcommand.
package run

import (
	"context"
	"errors"
	"log/slog"

	"github.com/matt-FFFFFF/multirun/cmd/multirun/cmdstate"
	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
	"github.com/matt-FFFFFF/multirun/internal/runbatch"
	"github.com/urfave/cli/v3"
)

const (
	quietFlag  = "quiet"
	cliExitStr = ""
)

// OrchestratorFactory builds the orchestrator for a run.
// Tags and buffered output go to the root command's writer.
var OrchestratorFactory = func(cmd *cli.Command) *runbatch.Orchestrator {
	o := runbatch.NewOrchestrator()
	o.Stdout = cmd.Root().Writer

	return o
}

// RunCmd is the command that runs the batch described by an instructions file.
var RunCmd = NewRunCmd()

// NewRunCmd returns a new run command.
func NewRunCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the commands of an instructions file",
		ArgsUsage: "[--] [extra args...]",
		Description: `Run every command of an instructions file, either all at once (jobs = 0)
or one after another (jobs > 0). Arguments after the flags are appended to every command unchanged.
Flag parsing stops at the first argument that is not a run flag, or after "--".

The exit status is 0 if every command succeeded and 1 otherwise.`,
		Flags: append(cmdstate.Flags(),
			&cli.BoolFlag{
				Name:    quietFlag,
				Aliases: []string{"q"},
				Usage:   "Only log errors, regardless of MULTIRUN_LOG_LEVEL",
			},
		),
		SkipFlagParsing: true,
		Action:          actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	extraArgs, err := cmdstate.ParseArgs(cmd)
	if errors.Is(err, cmdstate.ErrHelpShown) {
		return nil
	}

	if err != nil {
		return err
	}

	if cmd.Bool(quietFlag) {
		ctxlog.LevelVar.Set(slog.LevelError)
	}

	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	batch, err := cmdstate.Prepare(ctx, cmd, extraArgs)
	if err != nil {
		logger.Error("Failed to prepare batch", "error", err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	res, err := OrchestratorFactory(cmd).Run(ctx, batch.Commands, batch.Instructions.Schedule())
	if err != nil {
		logger.Error("Failed to run batch", "error", err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if res.Interrupted() {
		logger.Error("Interrupted", "failed", res.Failed())
		return cli.Exit(cliExitStr, 1)
	}

	if !res.Success() {
		logger.Error("Some commands failed", "failed", res.Failed())
		return cli.Exit(cliExitStr, res.ExitCode())
	}

	logger.Info("All commands succeeded", "count", len(res))

	return nil
}
