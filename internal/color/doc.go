// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape codes and decides whether colour output is wanted.
// NO_COLOR and FORCE_COLOR are honoured, otherwise colour is used when stderr is a terminal,
// detected with golang.org/x/term.
package color
