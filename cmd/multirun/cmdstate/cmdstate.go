// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate holds the flags and loading steps shared by the run and show subcommands.
package cmdstate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/multirun/internal/instructions"
	"github.com/matt-FFFFFF/multirun/internal/resolve"
	"github.com/matt-FFFFFF/multirun/internal/runbatch"
	"github.com/matt-FFFFFF/multirun/internal/shellwrap"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	// FileFlag names the instructions file.
	FileFlag = "file"
	// WorkspaceRootFlag overrides the runfiles root used to resolve command paths.
	WorkspaceRootFlag = "workspace-root"

	argsTerminator = "--"
)

var (
	// ErrUsage is returned when the command line cannot be parsed.
	ErrUsage = errors.New("incorrect usage")
	// ErrHelpShown is returned by ParseArgs when help was asked for and has been printed.
	ErrHelpShown = errors.New("help shown")
)

// FsFactory returns the filesystem command paths are resolved against.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Flags returns new instances of the shared flags, so every command gets its own flag state.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FileFlag,
			Aliases: []string{"f"},
			Usage: "The instructions file to run, JSON, YAML or HCL. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources.",
			TakesFile: true,
			Required:  true,
		},
		&cli.StringFlag{
			Name:  WorkspaceRootFlag,
			Usage: "The directory command paths are resolved in. Defaults to RUNFILES_DIR, then <executable>.runfiles",
		},
	}
}

// Batch is a loaded and resolved instructions file, ready to run.
type Batch struct {
	Instructions *instructions.Instructions
	Commands     []runbatch.Command
}

// Prepare loads the instructions named by the file flag and builds the commands,
// appending extraArgs to each of them.
func Prepare(ctx context.Context, cmd *cli.Command, extraArgs []string) (*Batch, error) {
	in, err := instructions.Load(ctx, cmd.String(FileFlag))
	if err != nil {
		return nil, err
	}

	resolver := resolve.Default(FsFactory(), cmd.String(WorkspaceRootFlag), in.WorkspaceName)

	cmds, err := in.Build(ctx, resolver, shellwrap.NewBash(), extraArgs)
	if err != nil {
		return nil, fmt.Errorf("instructions %s: %w", cmd.String(FileFlag), err)
	}

	return &Batch{
		Instructions: in,
		Commands:     cmds,
	}, nil
}

// ParseArgs sets the command's flags from its arguments and returns the remaining
// arguments, which are appended to every command unchanged.
// Parsing stops after a "--" or at the first argument that is not one of the command's flags,
// so flags meant for the commands are never taken by multirun.
// The command must set SkipFlagParsing.
func ParseArgs(cmd *cli.Command) ([]string, error) {
	args := cmd.Args().Slice()

	for len(args) > 0 {
		if args[0] == argsTerminator {
			args = args[1:]
			break
		}

		name, val, hasVal, ok := splitFlag(args[0])
		if !ok {
			break
		}

		if cli.HelpFlag != nil && slices.Contains(cli.HelpFlag.Names(), name) {
			_ = cli.ShowSubcommandHelp(cmd)
			return nil, ErrHelpShown
		}

		f := lookupFlag(cmd, name)
		if f == nil {
			break
		}

		arg := args[0]
		args = args[1:]

		if !hasVal {
			if isBoolFlag(f) {
				val = "true"
			} else {
				if len(args) == 0 {
					return nil, fmt.Errorf("%w: flag needs an argument: %s", ErrUsage, arg)
				}

				val = args[0]
				args = args[1:]
			}
		}

		if err := f.Set(name, val); err != nil {
			return nil, fmt.Errorf("%w: invalid value %q for flag %s: %w", ErrUsage, val, arg, err)
		}
	}

	var missing []string

	for _, f := range cmd.Flags {
		if rf, ok := f.(cli.RequiredFlag); ok && rf.IsRequired() && !f.IsSet() {
			missing = append(missing, fmt.Sprintf("%q", f.Names()[0]))
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: required flag %s not set", ErrUsage, strings.Join(missing, ", "))
	}

	if len(args) == 0 {
		return nil, nil
	}

	return args, nil
}

// splitFlag splits "-name", "--name" or "--name=value".
func splitFlag(arg string) (name, val string, hasVal, ok bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", "", false, false
	}

	name = strings.TrimPrefix(arg[1:], "-")
	if name == "" {
		return "", "", false, false
	}

	name, val, hasVal = strings.Cut(name, "=")

	return name, val, hasVal, true
}

func lookupFlag(cmd *cli.Command, name string) cli.Flag {
	for _, f := range cmd.Flags {
		if slices.Contains(f.Names(), name) {
			return f
		}
	}

	return nil
}

func isBoolFlag(f cli.Flag) bool {
	bf, ok := f.(interface{ IsBoolFlag() bool })
	return ok && bf.IsBoolFlag()
}
