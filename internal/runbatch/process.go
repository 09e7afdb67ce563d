// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"slices"
	"time"

	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
)

const (
	maxBufferSize = 8 * 1024 * 1024 // 8MB
)

var (
	_ Launcher = (*OSLauncher)(nil)
	_ Handle   = (*Process)(nil)
)

// Launcher starts processes for the schedulers.
type Launcher interface {
	// Start launches cmd without waiting for it. A failure wraps ErrCouldNotStartProcess.
	Start(ctx context.Context, cmd Command, out OutputStrategy) (Handle, error)
}

// Handle is a launched process. It is owned by the scheduler that started it.
type Handle interface {
	// Wait blocks until the process exits and returns its exit code.
	// It returns ErrInterrupted if ctx is cancelled first, the process is left running.
	Wait(ctx context.Context) (int, error)
	// Reap blocks until the process exits, ignoring any cancellation, and returns its exit code.
	// Output that has not been read yet is discarded.
	Reap() int
	// Kill terminates the process. It does nothing if the process has already exited.
	Kill() error
	// Captured reports whether the process output is being captured.
	Captured() bool
	// Output returns the captured combined output, once Wait has returned.
	Output() []byte
	// Pid returns the operating system process id.
	Pid() int
}

// OSLauncher starts real operating system processes in the current working directory.
type OSLauncher struct {
	// Environ returns the ambient environment each launch starts from. Defaults to os.Environ.
	Environ func() []string
}

// NewOSLauncher returns a launcher using the ambient process environment.
func NewOSLauncher() *OSLauncher {
	return &OSLauncher{Environ: os.Environ}
}

// Start implements Launcher.
func (l *OSLauncher) Start(ctx context.Context, cmd Command, out OutputStrategy) (Handle, error) {
	logger := ctxlog.Logger(ctx).With("tag", cmd.Tag())

	environ := os.Environ
	if l.Environ != nil {
		environ = l.Environ
	}

	streams, err := out.Open()
	if err != nil {
		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	logger.Debug("starting process", "path", cmd.Path(), "args", cmd.Args(), "captured", streams.Capture != nil)

	ps, err := os.StartProcess(cmd.Path(), slices.Concat([]string{cmd.Path()}, cmd.Args()), &os.ProcAttr{
		Env:   cmd.Environ(environ()),
		Files: []*os.File{streams.Stdin, streams.Stdout, streams.Stderr},
	})
	if err != nil {
		streams.close()
		return nil, errors.Join(ErrCouldNotStartProcess, err)
	}

	streams.closeChildEnds()

	logger.Debug("process started", "pid", ps.Pid)

	p := &Process{
		tag:     cmd.Tag(),
		ps:      ps,
		started: time.Now(),
		done:    make(chan struct{}),
	}

	if streams.Capture != nil {
		p.capture = &capture{
			r:       streams.Capture,
			drained: make(chan struct{}),
		}

		go p.capture.drain(ctx)
	}

	go p.reap(ctx)

	return p, nil
}

// RunBlocking launches cmd and waits for it.
// It returns an *ExitError for a non-zero exit code and ErrInterrupted if ctx is cancelled while waiting.
// An interrupted process is not killed, it receives the same terminal signals as this process.
func RunBlocking(ctx context.Context, l Launcher, cmd Command, out OutputStrategy) error {
	p, err := l.Start(ctx, cmd, out)
	if err != nil {
		return err
	}

	code, err := p.Wait(ctx)
	if err != nil {
		return err
	}

	if code != 0 {
		return &ExitError{Tag: cmd.Tag(), Code: code}
	}

	return nil
}

// Process is a process started by OSLauncher.
type Process struct {
	tag     string
	ps      *os.Process
	started time.Time
	done    chan struct{} // closed once the process has been waited on
	state   *os.ProcessState
	waitErr error
	capture *capture
}

func (p *Process) reap(ctx context.Context) {
	state, err := p.ps.Wait()
	p.state = state
	p.waitErr = err

	close(p.done)

	ctxlog.Logger(ctx).Debug("process finished",
		"tag", p.tag,
		"pid", p.ps.Pid,
		"exitCode", p.exitCode(),
		"duration", time.Since(p.started).Round(time.Millisecond))
}

// Wait implements Handle.
func (p *Process) Wait(ctx context.Context) (int, error) {
	select {
	case <-p.done:
	default:
		select {
		case <-p.done:
		case <-ctx.Done():
			return -1, ErrInterrupted
		}
	}

	if p.capture != nil {
		select {
		case <-p.capture.drained:
		case <-ctx.Done():
			return -1, ErrInterrupted
		}
	}

	return p.exitCode(), p.waitErr
}

// Reap implements Handle.
func (p *Process) Reap() int {
	<-p.done

	if p.capture != nil {
		// unblocks the drain if a grandchild still holds the pipe open
		_ = p.capture.r.Close()
		<-p.capture.drained
	}

	return p.exitCode()
}

// Kill implements Handle.
func (p *Process) Kill() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.ps.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Join(ErrCouldNotKillProcess, err)
	}

	return nil
}

// Captured implements Handle.
func (p *Process) Captured() bool {
	return p.capture != nil
}

// Output implements Handle.
func (p *Process) Output() []byte {
	if p.capture == nil {
		return nil
	}

	select {
	case <-p.capture.drained:
		return bytes.Clone(p.capture.buf.Bytes())
	default:
		return nil
	}
}

// Pid implements Handle.
func (p *Process) Pid() int {
	return p.ps.Pid
}

func (p *Process) exitCode() int {
	if p.state == nil {
		return -1
	}

	return p.state.ExitCode()
}

// capture drains the read end of an output pipe into memory.
type capture struct {
	r       *os.File
	buf     bytes.Buffer
	drained chan struct{}
}

func (c *capture) drain(ctx context.Context) {
	defer close(c.drained)
	defer c.r.Close() //nolint:errcheck

	n, err := io.CopyN(&c.buf, c.r, maxBufferSize+1)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
		ctxlog.Logger(ctx).Error("reading captured output", "error", errors.Join(ErrFailedToReadBuffer, err))
		return
	}

	if n > maxBufferSize {
		ctxlog.Logger(ctx).Warn("captured output truncated", "error", ErrBufferOverflow)
		c.buf.Truncate(maxBufferSize)

		// keep reading so the child never blocks on a full pipe
		_, _ = io.Copy(io.Discard, c.r)
	}
}
