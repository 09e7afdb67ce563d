// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	runfilesDirEnvVar = "RUNFILES_DIR"
	runfilesSuffix    = ".runfiles"
	externalPrefix    = "../"
)

var _ Resolver = (*Runfiles)(nil)

// Runfiles resolves paths inside a runfiles tree.
//
//   - absolute paths are returned as they are, provided the file exists.
//   - "../repo/x" names a file of an external repository and maps to <Root>/repo/x.
//   - anything else maps to <Root>/<Workspace>/x, falling back to <Root>/x.
type Runfiles struct {
	Fs        afero.Fs
	Root      string
	Workspace string
}

// NewRunfiles returns a Runfiles resolver for workspace. An empty root is replaced by
// RUNFILES_DIR if set, otherwise the "<executable>.runfiles" directory next to the running
// binary if there is one, otherwise the current directory.
func NewRunfiles(fs afero.Fs, root, workspace string) *Runfiles {
	if root == "" {
		root = runfilesRoot(fs)
	}

	return &Runfiles{
		Fs:        fs,
		Root:      root,
		Workspace: workspace,
	}
}

// Resolve implements Resolver.
func (r *Runfiles) Resolve(logical string) (string, error) {
	if logical == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}

	for _, c := range r.candidates(logical) {
		ok, err := isFile(r.Fs, c)
		if err != nil {
			return "", err
		}

		if !ok {
			continue
		}

		abs, err := filepath.Abs(c)
		if err != nil {
			return "", errors.Join(ErrNotFound, err)
		}

		return abs, nil
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, logical)
}

func (r *Runfiles) candidates(logical string) []string {
	if filepath.IsAbs(logical) {
		return []string{logical}
	}

	slashed := filepath.ToSlash(logical)
	if rest, ok := strings.CutPrefix(slashed, externalPrefix); ok {
		return []string{filepath.Join(r.Root, filepath.FromSlash(rest))}
	}

	if r.Workspace == "" {
		return []string{filepath.Join(r.Root, logical)}
	}

	return []string{
		filepath.Join(r.Root, r.Workspace, logical),
		filepath.Join(r.Root, logical),
	}
}

func isFile(fs afero.Fs, p string) (bool, error) {
	info, err := fs.Stat(p)

	switch {
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat %s: %w", p, err)
	default:
		return !info.IsDir(), nil
	}
}

func runfilesRoot(fs afero.Fs) string {
	if d := os.Getenv(runfilesDirEnvVar); d != "" {
		return d
	}

	exe, err := os.Executable()
	if err == nil {
		if ok, _ := afero.DirExists(fs, exe+runfilesSuffix); ok {
			return exe + runfilesSuffix
		}
	}

	return "."
}
