// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package resolve

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

const (
	runfilesManifestEnvVar = "RUNFILES_MANIFEST_FILE"
	manifestSuffix         = ".runfiles_manifest"
	manifestInTree         = "MANIFEST"
)

// ErrManifest is returned when a runfiles manifest cannot be read.
var ErrManifest = errors.New("failed to read runfiles manifest")

var _ Resolver = (*Manifest)(nil)

// Manifest resolves paths through a runfiles manifest, the file Bazel writes instead of
// a runfiles tree when symlinks are unavailable, as on Windows.
// Each line maps a runfiles path to an absolute path: "<workspace>/x /abs/x".
// Lookup keys follow the same rules as Runfiles: "../repo/x" maps to "repo/x",
// anything else to "<Workspace>/x", falling back to "x".
// The manifest is read on first use.
type Manifest struct {
	Fs        afero.Fs
	Path      string
	Workspace string

	once    sync.Once
	entries map[string]string
	err     error
}

// NewManifest returns a Manifest resolver reading the manifest at path.
func NewManifest(fs afero.Fs, path, workspace string) *Manifest {
	return &Manifest{
		Fs:        fs,
		Path:      path,
		Workspace: workspace,
	}
}

// Resolve implements Resolver.
func (m *Manifest) Resolve(logical string) (string, error) {
	if logical == "" || filepath.IsAbs(logical) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, logical)
	}

	m.once.Do(func() {
		m.entries, m.err = readManifest(m.Fs, m.Path)
	})

	if m.err != nil {
		return "", m.err
	}

	for _, key := range m.keys(logical) {
		target, ok := m.entries[key]
		if !ok || target == "" {
			continue
		}

		ok, err := isFile(m.Fs, target)
		if err != nil {
			return "", err
		}

		if ok {
			return target, nil
		}
	}

	return "", fmt.Errorf("%w: %s not in %s", ErrNotFound, logical, m.Path)
}

func (m *Manifest) keys(logical string) []string {
	slashed := strings.ReplaceAll(logical, `\`, "/")
	if rest, ok := strings.CutPrefix(slashed, externalPrefix); ok {
		return []string{rest}
	}

	if m.Workspace == "" {
		return []string{slashed}
	}

	return []string{m.Workspace + "/" + slashed, slashed}
}

var manifestUnescaper = strings.NewReplacer(`\s`, " ", `\n`, "\n", `\b`, `\`)

func readManifest(fs afero.Fs, path string) (map[string]string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Join(ErrManifest, err)
	}

	defer f.Close() //nolint:errcheck

	entries := make(map[string]string)
	sc := bufio.NewScanner(f)

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}

		// a leading space marks a line whose paths are escaped
		escaped := line[0] == ' '
		if escaped {
			line = line[1:]
		}

		key, target, _ := strings.Cut(line, " ")
		if escaped {
			key = manifestUnescaper.Replace(key)
			target = manifestUnescaper.Replace(target)
		}

		entries[key] = target
	}

	if err := sc.Err(); err != nil {
		return nil, errors.Join(ErrManifest, fmt.Errorf("%s: %w", path, err))
	}

	return entries, nil
}

// manifestPath locates the runfiles manifest: RUNFILES_MANIFEST_FILE if set, otherwise
// "<executable>.runfiles_manifest" or "<executable>.runfiles/MANIFEST".
// It returns "" when RUNFILES_DIR is set or no manifest exists.
func manifestPath(fs afero.Fs) string {
	if p := os.Getenv(runfilesManifestEnvVar); p != "" {
		return p
	}

	if os.Getenv(runfilesDirEnvVar) != "" {
		return ""
	}

	exe, err := os.Executable()
	if err != nil {
		return ""
	}

	for _, p := range []string{exe + manifestSuffix, filepath.Join(exe+runfilesSuffix, manifestInTree)} {
		if ok, _ := isFile(fs, p); ok {
			return p
		}
	}

	return ""
}
