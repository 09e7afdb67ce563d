// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdstate

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

type parsed struct {
	file      string
	workspace string
	verbose   bool
	extra     []string
}

func parse(t *testing.T, args ...string) (parsed, string, error) {
	t.Helper()

	var (
		got parsed
		out bytes.Buffer
	)

	sub := &cli.Command{
		Name: "sub",
		Flags: append(Flags(), &cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
		}),
		SkipFlagParsing: true,
		Action: func(_ context.Context, cmd *cli.Command) error {
			extra, err := ParseArgs(cmd)
			if err != nil {
				return err
			}

			got = parsed{
				file:      cmd.String(FileFlag),
				workspace: cmd.String(WorkspaceRootFlag),
				verbose:   cmd.Bool("verbose"),
				extra:     extra,
			}

			return nil
		},
	}

	root := &cli.Command{
		Name:      "multirun",
		Writer:    &out,
		ErrWriter: io.Discard,
		Commands:  []*cli.Command{sub},
	}

	err := root.Run(context.Background(), append([]string{"multirun", "sub"}, args...))

	return got, out.String(), err
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want parsed
	}{
		{
			name: "flags only",
			args: []string{"-f", "m.json", "--workspace-root", "/rf", "-v"},
			want: parsed{file: "m.json", workspace: "/rf", verbose: true},
		},
		{
			name: "equals form",
			args: []string{"--file=m.json", "-workspace-root=/rf"},
			want: parsed{file: "m.json", workspace: "/rf"},
		},
		{
			name: "positional stops parsing",
			args: []string{"-f", "m.json", "x", "-v", "-f", "other.json"},
			want: parsed{file: "m.json", extra: []string{"x", "-v", "-f", "other.json"}},
		},
		{
			name: "unknown flag stops parsing",
			args: []string{"-f", "m.json", "--fix", "-v"},
			want: parsed{file: "m.json", extra: []string{"--fix", "-v"}},
		},
		{
			name: "only the first terminator is consumed",
			args: []string{"-f", "m.json", "--", "--", "y"},
			want: parsed{file: "m.json", extra: []string{"--", "y"}},
		},
		{
			name: "flags after terminator are forwarded",
			args: []string{"-f", "m.json", "--", "-v"},
			want: parsed{file: "m.json", extra: []string{"-v"}},
		},
		{
			name: "single dash is positional",
			args: []string{"-f", "m.json", "-"},
			want: parsed{file: "m.json", extra: []string{"-"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := parse(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "missing file", args: nil, contains: `required flag "file" not set`},
		{name: "file after positional does not count", args: []string{"x", "-f", "m.json"}, contains: `"file"`},
		{name: "missing value", args: []string{"--workspace-root"}, contains: "flag needs an argument"},
		{name: "bad bool", args: []string{"-f", "m.json", "--verbose=maybe"}, contains: "invalid value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parse(t, tt.args...)
			require.ErrorIs(t, err, ErrUsage)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	got, out, err := parse(t, "--help", "-f", "m.json")
	require.ErrorIs(t, err, ErrHelpShown)
	assert.Empty(t, got.file, "nothing after the help flag is parsed")
	assert.Contains(t, out, "sub")
}
