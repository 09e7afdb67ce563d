// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/multirun/internal/ctxlog"
)

// Watch monitors the signal channel and cancels the context on the first signal received.
// Subsequent signals are ignored. It returns when sigCh is closed, or when ctx is done
// before any signal arrived. After a cancellation it keeps draining sigCh until it is closed,
// so callers should close the Broker once the run is over.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	cancelled := false

	for {
		select {
		case <-ctx.Done():
			if !cancelled {
				return
			}

			// keep draining so repeated signals do not fall back to the default handler
			// while the schedulers are reaping children.
			for {
				sig, ok := <-sigCh
				if !ok {
					return
				}

				ctxlog.Info(ctx, "watchdog", "detail", "already interrupted, ignoring signal", "signal", sig.String())
			}
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if cancelled {
				ctxlog.Info(ctx, "watchdog", "detail", "already interrupted, ignoring signal", "signal", sig.String())
				continue
			}

			ctxlog.Warn(ctx, "watchdog", "detail", "received termination signal, interrupting commands", "signal", sig.String())

			cancelled = true

			cancel()
		}
	}
}
