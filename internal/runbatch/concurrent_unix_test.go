// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build unix

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestConcurrentScheduler_InterruptKillsAndReapsEverything(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, buffered := range []bool{true, false} {
		name := "streaming"
		if buffered {
			name = "buffered"
		}

		t.Run(name, func(t *testing.T) {
			f, _ := tempOutput(t)

			var out OutputStrategy = StreamingOutput{Stdout: f, Stderr: f}
			if buffered {
				out = CapturingOutput{}
			}

			l := newRecordingLauncher()
			s := &ConcurrentScheduler{
				Launcher: l,
				Output:   out,
				Stdout:   &bytes.Buffer{},
			}

			ctx, cancel := context.WithTimeout(testContext(t), 300*time.Millisecond)
			defer cancel()

			start := time.Now()
			res := s.Run(ctx, []Command{
				sh("quick", "echo done"),
				sh("slow1", "exec sleep 30"),
				sh("slow2", "exec sleep 30"),
			})

			assert.Less(t, time.Since(start), 10*time.Second)
			assert.False(t, res.Success())
			assert.True(t, res.Interrupted())
			assert.Equal(t, ResultStatusSucceeded, res[0].Status)

			for _, r := range res[1:] {
				assert.Equal(t, ResultStatusFailed, r.Status)
				require.ErrorIs(t, r.Error, ErrInterrupted)
			}

			require.Len(t, l.handles, 3)

			for _, h := range l.handles {
				err := syscall.Kill(h.Pid(), 0)
				assert.True(t, errors.Is(err, syscall.ESRCH), "process %d is still running", h.Pid())
			}
		})
	}
}
