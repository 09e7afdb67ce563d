// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package instructions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

const (
	hclExt  = ".hcl"
	tomlExt = ".toml"
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Load reads src and decodes it. src is a local file, or any source go-getter understands.
func Load(ctx context.Context, src string) (*Instructions, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: no source given", ErrReadInstructions)
	}

	fs := FsFactory()

	var (
		data []byte
		name = src
		err  error
	)

	switch {
	case isRemote(fs, src):
		ctxlog.Debug(ctx, "fetching instructions", "source", src)

		data, err = Fetch(ctx, src)
		if err != nil {
			return nil, err
		}

		// drop any go-getter query such as ?ref=v1 so the extension is visible
		name, _, _ = strings.Cut(src, goGetterRefSeparator)
	default:
		data, err = afero.ReadFile(fs, src)
		if err != nil {
			return nil, errors.Join(ErrReadInstructions, err)
		}
	}

	in, err := Parse(ctx, name, data)
	if err != nil {
		return nil, err
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	return in, nil
}

// Parse decodes data, picking the format from filename's extension.
func Parse(ctx context.Context, filename string, data []byte) (*Instructions, error) {
	switch filepath.Ext(filename) {
	case hclExt:
		return parseHCL(ctx, filename, data)
	case tomlExt:
		return parseTOML(ctx, filename, data)
	}

	in := &Instructions{}
	if err := yaml.Unmarshal(data, in); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseInstructions, filename, err)
	}

	return in, nil
}

func parseTOML(ctx context.Context, filename string, data []byte) (*Instructions, error) {
	in := &Instructions{}

	meta, err := toml.Decode(string(data), in)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseInstructions, filename, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		ctxlog.Warn(ctx, "ignoring unknown keys in instructions", "file", filename, "keys", keys)
	}

	return in, nil
}

type hclInstructions struct {
	WorkspaceName string       `hcl:"workspace_name,optional"`
	Jobs          int          `hcl:"jobs,optional"`
	PrintCommand  bool         `hcl:"print_command,optional"`
	KeepGoing     bool         `hcl:"keep_going,optional"`
	BufferOutput  bool         `hcl:"buffer_output,optional"`
	Commands      []hclCommand `hcl:"command,block"`
}

type hclCommand struct {
	Tag  string            `hcl:"tag,label"`
	Path string            `hcl:"path"`
	Args []string          `hcl:"args,optional"`
	Env  map[string]string `hcl:"env,optional"`
}

func parseHCL(ctx context.Context, filename string, data []byte) (*Instructions, error) {
	var raw hclInstructions

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": environValue(os.Environ()),
		},
	}

	if err := hclsimple.Decode(filename, data, evalCtx, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseInstructions, err)
	}

	in := &Instructions{
		WorkspaceName: raw.WorkspaceName,
		Jobs:          raw.Jobs,
		PrintCommand:  raw.PrintCommand,
		KeepGoing:     raw.KeepGoing,
		BufferOutput:  raw.BufferOutput,
		Commands:      make([]Command, len(raw.Commands)),
	}

	for i, c := range raw.Commands {
		in.Commands[i] = Command(c)
	}

	ctxlog.Debug(ctx, "decoded hcl instructions", "file", filename, "commands", len(in.Commands))

	return in, nil
}

// environValue exposes the environment to HCL expressions as env.NAME.
// Variables whose names are not valid identifiers cannot be referenced and are left out.
func environValue(environ []string) cty.Value {
	vars := make(map[string]cty.Value, len(environ))

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(k) {
			continue
		}

		vars[k] = cty.StringVal(v)
	}

	return cty.ObjectVal(vars)
}

func isRemote(fs afero.Fs, src string) bool {
	if _, err := fs.Stat(src); err == nil {
		return false
	}

	return strings.Contains(src, "::") ||
		strings.Contains(src, "://") ||
		strings.Contains(src, goGetterPathSeparator)
}
