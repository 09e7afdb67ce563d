// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

var _ Resolver = (*Path)(nil)

// Path looks up bare command names in the directories of the PATH environment variable.
// Names containing a path separator are not looked up.
type Path struct {
	Fs afero.Fs
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Resolve implements Resolver.
func (p *Path) Resolve(logical string) (string, error) {
	if logical == "" || strings.ContainsAny(logical, `/\`) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, logical)
	}

	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	for _, dir := range filepath.SplitList(getenv("PATH")) {
		if dir == "" {
			continue
		}

		for _, name := range names(logical) {
			candidate := filepath.Join(dir, name)

			info, err := p.Fs.Stat(candidate)
			if err != nil || info.IsDir() {
				continue
			}

			// check if the command is executable if not Windows
			if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
				continue
			}

			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s not in PATH", ErrNotFound, logical)
}

// Default resolves through the runfiles manifest, then the runfiles tree and then PATH.
// The manifest is only consulted when root is empty, an explicit root always means a tree.
func Default(fs afero.Fs, root, workspace string) Resolver {
	var c Chain

	if root == "" {
		if m := manifestPath(fs); m != "" {
			c = append(c, NewManifest(fs, m, workspace))
		}
	}

	return append(c,
		NewRunfiles(fs, root, workspace),
		&Path{Fs: fs},
	)
}

func names(logical string) []string {
	if runtime.GOOS == "windows" && filepath.Ext(logical) == "" {
		return []string{logical, logical + ".exe"}
	}

	return []string{logical}
}
