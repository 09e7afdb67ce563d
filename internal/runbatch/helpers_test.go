// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

const binSh = "/bin/sh"

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	return ctxlog.New(context.Background(), ctxlog.DefaultLogger)
}

// sh returns a command that runs script with /bin/sh.
func sh(tag, script string) Command {
	return NewCommand(binSh, tag, []string{"-c", script}, nil)
}

// launchLog is a file commands append to, so tests can see what was launched and in which order.
type launchLog string

func newLaunchLog(t *testing.T) launchLog {
	t.Helper()

	return launchLog(filepath.Join(t.TempDir(), "launch.log"))
}

func (l launchLog) append(name string) string {
	return "echo " + name + " >> '" + string(l) + "'"
}

func (l launchLog) lines(t *testing.T) []string {
	t.Helper()

	b, err := os.ReadFile(string(l))
	if os.IsNotExist(err) {
		return nil
	}

	require.NoError(t, err)

	return strings.Fields(string(b))
}

// recordingLauncher wraps a Launcher and keeps every handle it returns.
type recordingLauncher struct {
	Launcher

	mu      sync.Mutex
	handles []Handle
	tags    []string
}

func newRecordingLauncher() *recordingLauncher {
	return &recordingLauncher{Launcher: NewOSLauncher()}
}

func (l *recordingLauncher) Start(ctx context.Context, cmd Command, out OutputStrategy) (Handle, error) {
	h, err := l.Launcher.Start(ctx, cmd, out)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.tags = append(l.tags, cmd.Tag())
	if h != nil {
		l.handles = append(l.handles, h)
	}

	return h, err
}

func (l *recordingLauncher) started() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.tags...)
}

// tempOutput returns a file that streamed output can be written to and a func to read it back.
func tempOutput(t *testing.T) (*os.File, func() string) {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)

	t.Cleanup(func() { _ = f.Close() })

	return f, func() string {
		b, err := os.ReadFile(f.Name())
		require.NoError(t, err)

		return string(b)
	}
}
