// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamingOutputOpen_Defaults(t *testing.T) {
	s, err := StreamingOutput{}.Open()
	require.NoError(t, err)

	defer s.close()

	assert.Same(t, os.Stdout, s.Stdout)
	assert.Same(t, os.Stderr, s.Stderr)
	assert.Nil(t, s.Capture)
	require.NotNil(t, s.Stdin)
	assert.Equal(t, os.DevNull, s.Stdin.Name())
	assert.Equal(t, []*os.File{s.Stdin}, s.ChildEnds, "the null device is closed once the child starts")
}

func TestStreamingOutputOpen_KeepsGivenFiles(t *testing.T) {
	f, _ := tempOutput(t)

	s, err := StreamingOutput{Stdin: f, Stdout: f, Stderr: f}.Open()
	require.NoError(t, err)

	assert.Same(t, f, s.Stdin)
	assert.Same(t, f, s.Stdout)
	assert.Same(t, f, s.Stderr)
	assert.Empty(t, s.ChildEnds, "files owned by the caller are never closed")
}

func TestCapturingOutputOpen(t *testing.T) {
	s, err := CapturingOutput{}.Open()
	require.NoError(t, err)

	require.NotNil(t, s.Capture)
	assert.Same(t, s.Stdout, s.Stderr, "stderr is merged into stdout")

	_, err = s.Stdout.WriteString("captured")
	require.NoError(t, err)

	s.closeChildEnds()
	assert.Empty(t, s.ChildEnds)

	b, err := io.ReadAll(s.Capture)
	require.NoError(t, err)
	assert.Equal(t, "captured", string(b))

	require.NoError(t, s.Capture.Close())
}
