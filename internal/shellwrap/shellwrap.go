// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shellwrap rewrites commands that need an interpreter the platform does not provide,
// namely shell scripts on Windows, which are run through bash.
package shellwrap

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/matt-FFFFFF/multirun/internal/resolve"
	"github.com/spf13/afero"
)

const (
	bazelShEnvVar = "BAZEL_SH"
	bashExe       = "bash.exe"
	windows       = "windows"
)

// ErrBashNotFound is returned when a script must be run through bash and no bash is available.
var ErrBashNotFound = errors.New("bash.exe not found, set BAZEL_SH or add bash to PATH")

var scriptExts = []string{".bash", ".sh"}

// Wrapper returns the executable and arguments that actually run path with args.
type Wrapper interface {
	WrapForShell(path string, args []string) (string, []string, error)
}

var (
	_ Wrapper = None{}
	_ Wrapper = (*Bash)(nil)
)

// None runs every command as it is.
type None struct{}

// WrapForShell implements Wrapper.
func (None) WrapForShell(path string, args []string) (string, []string, error) {
	return path, args, nil
}

// Bash runs .bash and .sh scripts as `bash -c '<path> "$@"' -- args...` on Windows.
// On other platforms it behaves like None.
type Bash struct {
	// GOOS defaults to runtime.GOOS.
	GOOS string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Lookup finds bash when BAZEL_SH is unset, defaults to a PATH lookup.
	Lookup resolve.Resolver

	bash string
}

// NewBash returns a Bash wrapper for the current platform.
func NewBash() *Bash {
	return &Bash{}
}

// WrapForShell implements Wrapper.
func (b *Bash) WrapForShell(path string, args []string) (string, []string, error) {
	if b.goos() != windows || !isScript(path) {
		return path, args, nil
	}

	bash, err := b.locate()
	if err != nil {
		return "", nil, err
	}

	wrapped := make([]string, 0, len(args)+3)
	wrapped = append(wrapped, "-c", quote(strings.ReplaceAll(path, `\`, "/"))+` "$@"`, "--")
	wrapped = append(wrapped, args...)

	return bash, wrapped, nil
}

func (b *Bash) locate() (string, error) {
	if b.bash != "" {
		return b.bash, nil
	}

	getenv := b.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if sh := getenv(bazelShEnvVar); sh != "" {
		b.bash = sh
		return sh, nil
	}

	lookup := b.Lookup
	if lookup == nil {
		lookup = &resolve.Path{Fs: afero.NewOsFs(), Getenv: getenv}
	}

	p, err := lookup.Resolve(bashExe)
	if err != nil {
		return "", errors.Join(ErrBashNotFound, err)
	}

	b.bash = p

	return p, nil
}

func (b *Bash) goos() string {
	if b.GOOS == "" {
		return runtime.GOOS
	}

	return b.GOOS
}

func isScript(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range scriptExts {
		if ext == e {
			return true
		}
	}

	return false
}

// quote single quotes s for bash.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
