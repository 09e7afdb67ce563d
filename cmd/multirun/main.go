// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the multirun command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/multirun"
	"github.com/matt-FFFFFF/multirun/cmd/multirun/run"
	"github.com/matt-FFFFFF/multirun/cmd/multirun/show"
	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
	"github.com/matt-FFFFFF/multirun/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "multirun",
	Description: `multirun runs a batch of commands described by an instructions file,
either all at once or one after another, and exits 0 only if every command succeeded.`,
	Usage:     "multirun run -f multirun.json [-- extra args...]",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	broker := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, broker.C, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", multirun.Version, multirun.Commit)

	err := rootCmd.Run(ctx, os.Args) // Exit errors are handled by the cli framework

	broker.Close()

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Debug("command completed successfully")
}
