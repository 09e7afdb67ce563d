// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker turns termination signals into context cancellation.
//
// A Broker subscribes to the signals and Watch cancels the run on the first one.
// The schedulers kill and reap running children once the context is done.
// Later signals are logged and dropped so they cannot kill multirun while it is still reaping.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
)

// TerminationSignals are subscribed to when New is given no signals.
var TerminationSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// Broker receives subscribed signals on C until Close.
type Broker struct {
	C chan os.Signal

	closeOnce sync.Once
}

// New subscribes to sigs.
func New(ctx context.Context, sigs ...os.Signal) *Broker {
	if len(sigs) == 0 {
		sigs = TerminationSignals
	}

	b := &Broker{C: make(chan os.Signal, 1)}
	signal.Notify(b.C, sigs...)

	ctxlog.Debug(ctx, "signalbroker", "detail", "subscribed", "signals", sigs)

	return b
}

// Close unsubscribes and closes C, which ends a Watch reading from it.
// It is safe to call more than once.
func (b *Broker) Close() {
	b.closeOnce.Do(func() {
		signal.Stop(b.C)
		close(b.C)
	})
}
