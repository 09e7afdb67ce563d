// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package resolve

import (
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFs(t *testing.T, files map[string]os.FileMode) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for p, mode := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte("#!/bin/sh\n"), mode))
	}

	return fs
}

func TestRunfiles_Resolve(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths in this test are unix style")
	}

	fs := memFs(t, map[string]os.FileMode{
		"/rf/main/tools/lint.sh": 0o755,
		"/rf/main/both.sh":       0o755,
		"/rf/both.sh":            0o755,
		"/rf/only_root.sh":       0o755,
		"/rf/other_repo/bin/gen": 0o755,
		"/abs/tool":              0o755,
	})
	require.NoError(t, fs.MkdirAll("/rf/main/adir", 0o755))

	r := &Runfiles{Fs: fs, Root: "/rf", Workspace: "main"}

	tests := []struct {
		name    string
		logical string
		want    string
		wantErr error
	}{
		{name: "workspace file", logical: "tools/lint.sh", want: "/rf/main/tools/lint.sh"},
		{name: "workspace wins over root", logical: "both.sh", want: "/rf/main/both.sh"},
		{name: "falls back to root", logical: "only_root.sh", want: "/rf/only_root.sh"},
		{name: "external repository", logical: "../other_repo/bin/gen", want: "/rf/other_repo/bin/gen"},
		{name: "absolute path", logical: "/abs/tool", want: "/abs/tool"},
		{name: "missing", logical: "nope.sh", wantErr: ErrNotFound},
		{name: "missing absolute", logical: "/abs/missing", wantErr: ErrNotFound},
		{name: "directory is rejected", logical: "adir", wantErr: ErrNotFound},
		{name: "empty", logical: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.logical)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunfiles_NoWorkspace(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths in this test are unix style")
	}

	fs := memFs(t, map[string]os.FileMode{"/rf/x.sh": 0o755})
	r := &Runfiles{Fs: fs, Root: "/rf"}

	got, err := r.Resolve("x.sh")
	require.NoError(t, err)
	assert.Equal(t, "/rf/x.sh", got)
}

func TestNewRunfiles_Root(t *testing.T) {
	fs := afero.NewMemMapFs()

	assert.Equal(t, "explicit", NewRunfiles(fs, "explicit", "ws").Root)

	t.Setenv(runfilesDirEnvVar, "/from/env")
	r := NewRunfiles(fs, "", "ws")
	assert.Equal(t, "/from/env", r.Root)
	assert.Equal(t, "ws", r.Workspace)

	t.Setenv(runfilesDirEnvVar, "")
	assert.Equal(t, ".", NewRunfiles(fs, "", "ws").Root, "no runfiles tree next to the test binary in a memory fs")
}

func TestPath_Resolve(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not checked on windows")
	}

	fs := memFs(t, map[string]os.FileMode{
		"/bin1/noexec": 0,
		"/bin2/noexec": 0o755,
		"/bin2/tool":   0o755,
	})
	require.NoError(t, fs.MkdirAll("/bin1/tool", 0o755))

	p := &Path{
		Fs: fs,
		Getenv: func(string) string {
			return "/bin1::/bin2"
		},
	}

	got, err := p.Resolve("tool")
	require.NoError(t, err)
	assert.Equal(t, "/bin2/tool", got, "directories are skipped")

	got, err = p.Resolve("noexec")
	require.NoError(t, err)
	assert.Equal(t, "/bin2/noexec", got, "files without an executable bit are skipped")

	_, err = p.Resolve("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.Resolve("sub/tool")
	assert.ErrorIs(t, err, ErrNotFound, "paths are never looked up in PATH")
}

func TestChain(t *testing.T) {
	boom := errors.New("boom")
	notFound := Func(func(string) (string, error) { return "", ErrNotFound })
	found := Func(func(l string) (string, error) { return "/found/" + l, nil })
	broken := Func(func(string) (string, error) { return "", boom })

	got, err := Chain{notFound, found}.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, "/found/x", got)

	_, err = Chain{notFound, notFound}.Resolve("x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Chain{broken, found}.Resolve("x")
	assert.ErrorIs(t, err, boom, "errors other than not found stop the chain")

	_, err = Chain{}.Resolve("x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDefault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths in this test are unix style")
	}

	fs := memFs(t, map[string]os.FileMode{
		"/rf/ws/script.sh": 0o755,
		"/usr/bin/env":     0o755,
	})
	t.Setenv("PATH", "/usr/bin")

	r := Default(fs, "/rf", "ws")

	got, err := r.Resolve("script.sh")
	require.NoError(t, err)
	assert.Equal(t, "/rf/ws/script.sh", got)

	got, err = r.Resolve("env")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/env", got)
}

func TestManifest_Resolve(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths in this test are unix style")
	}

	fs := memFs(t, map[string]os.FileMode{
		"/out/main/tools/lint.sh": 0o755,
		"/out/root_only.sh":       0o755,
		"/ext/gen":                0o755,
		"/out/with space.sh":      0o755,
	})
	require.NoError(t, fs.MkdirAll("/out/dir", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/m/MANIFEST", []byte(
		"main/tools/lint.sh /out/main/tools/lint.sh\n"+
			"root_only.sh /out/root_only.sh\n"+
			"other_repo/bin/gen /ext/gen\n"+
			"main/empty \n"+
			"main/dir /out/dir\n"+
			"main/stale /out/gone\n"+
			` main/with\sspace.sh /out/with space.sh`+"\n",
	), 0o644))

	m := NewManifest(fs, "/m/MANIFEST", "main")

	tests := []struct {
		logical string
		want    string
		wantErr error
	}{
		{logical: "tools/lint.sh", want: "/out/main/tools/lint.sh"},
		{logical: "root_only.sh", want: "/out/root_only.sh"},
		{logical: "../other_repo/bin/gen", want: "/ext/gen"},
		{logical: `tools\lint.sh`, want: "/out/main/tools/lint.sh"},
		{logical: "with space.sh", want: "/out/with space.sh"},
		{logical: "empty", wantErr: ErrNotFound},
		{logical: "dir", wantErr: ErrNotFound},
		{logical: "stale", wantErr: ErrNotFound},
		{logical: "missing", wantErr: ErrNotFound},
		{logical: "/out/root_only.sh", wantErr: ErrNotFound},
		{logical: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.logical, func(t *testing.T) {
			got, err := m.Resolve(tt.logical)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestManifest_Unreadable(t *testing.T) {
	m := NewManifest(afero.NewMemMapFs(), "/nope/MANIFEST", "main")

	_, err := m.Resolve("x")
	require.ErrorIs(t, err, ErrManifest)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = Chain{m, Func(func(string) (string, error) { return "/found", nil })}.Resolve("x")
	assert.ErrorIs(t, err, ErrManifest, "a broken manifest stops the chain")
}

func TestDefault_Manifest(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("paths in this test are unix style")
	}

	fs := memFs(t, map[string]os.FileMode{
		"/out/main/tools/lint.sh": 0o755,
		"/rf/main/tools/lint.sh":  0o755,
	})
	require.NoError(t, afero.WriteFile(fs, "/m/MANIFEST", []byte("main/tools/lint.sh /out/main/tools/lint.sh\n"), 0o644))

	t.Setenv(runfilesManifestEnvVar, "/m/MANIFEST")
	t.Setenv(runfilesDirEnvVar, "")

	got, err := Default(fs, "", "main").Resolve("tools/lint.sh")
	require.NoError(t, err)
	assert.Equal(t, "/out/main/tools/lint.sh", got)

	got, err = Default(fs, "/rf", "main").Resolve("tools/lint.sh")
	require.NoError(t, err)
	assert.Equal(t, "/rf/main/tools/lint.sh", got, "an explicit root ignores the manifest")
}

func TestManifestPath(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Setenv(runfilesManifestEnvVar, "/m/MANIFEST")
	t.Setenv(runfilesDirEnvVar, "/rf")
	assert.Equal(t, "/m/MANIFEST", manifestPath(fs))

	t.Setenv(runfilesManifestEnvVar, "")
	assert.Empty(t, manifestPath(fs), "a runfiles directory takes precedence over a manifest next to the binary")

	t.Setenv(runfilesDirEnvVar, "")
	assert.Empty(t, manifestPath(fs), "no manifest next to the test binary in a memory fs")

	exe, err := os.Executable()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, exe+manifestSuffix, nil, 0o644))
	assert.Equal(t, exe+manifestSuffix, manifestPath(fs))
}
