// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger in a context.Context.
//
// The default logger writes a pretty, optionally coloured, line per record to stderr so that log output
// never mixes with the output of the commands being run. The level is read from MULTIRUN_LOG_LEVEL
// and defaults to WARN. MULTIRUN_LOG_FORMAT=json switches to one JSON object per record.
package ctxlog
