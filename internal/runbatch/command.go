// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"maps"
	"runtime"
	"slices"
	"strings"
)

// foldEnvKeys is set where environment variable names are case insensitive.
var foldEnvKeys = runtime.GOOS == "windows"

// Command describes one executable to run as part of a batch.
// It is immutable once created and safe to share between goroutines.
type Command struct {
	path string
	tag  string
	args []string
	env  map[string]string
}

// NewCommand creates a Command. The extraArgs are appended to args, the env overrides are copied.
// The path must already be resolved to something the operating system can execute.
func NewCommand(path, tag string, args []string, env map[string]string, extraArgs ...string) Command {
	return Command{
		path: path,
		tag:  tag,
		args: slices.Concat(args, extraArgs),
		env:  maps.Clone(env),
	}
}

// Path returns the executable path.
func (c Command) Path() string {
	return c.path
}

// Tag returns the label used when printing or logging the command.
func (c Command) Tag() string {
	return c.tag
}

// Args returns a copy of the arguments, not including the executable itself.
func (c Command) Args() []string {
	return slices.Clone(c.args)
}

// Env returns a copy of the environment overrides.
func (c Command) Env() map[string]string {
	return maps.Clone(c.env)
}

// Environ overlays the command's environment overrides on base, which is in os.Environ() form.
// Overridden variables keep their position, new ones are appended in key order.
// On Windows names are compared case insensitively and the override's spelling is used.
// base is never modified.
func (c Command) Environ(base []string) []string {
	keys := slices.Sorted(maps.Keys(c.env))

	// normalised name -> override key, the first key in sorted order wins
	overrides := make(map[string]string, len(keys))
	for _, k := range keys {
		if _, ok := overrides[envKey(k)]; !ok {
			overrides[envKey(k)] = k
		}
	}

	env := make([]string, 0, len(base)+len(overrides))
	written := make(map[string]struct{}, len(overrides))

	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		nk := envKey(name)

		k, ok := overrides[nk]
		if !ok {
			env = append(env, kv)
			continue
		}

		if _, dup := written[nk]; dup {
			continue
		}

		env = append(env, k+"="+c.env[k])
		written[nk] = struct{}{}
	}

	for _, k := range keys {
		nk := envKey(k)
		if _, ok := written[nk]; ok || overrides[nk] != k {
			continue
		}

		env = append(env, k+"="+c.env[k])
		written[nk] = struct{}{}
	}

	return env
}

func envKey(name string) string {
	if foldEnvKeys {
		return strings.ToUpper(name)
	}

	return name
}
