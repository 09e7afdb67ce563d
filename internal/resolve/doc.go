// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package resolve maps the logical executable paths written in an instructions file
// to real paths on disk.
//
// Manifest and Runfiles handle paths relative to a runfiles manifest or tree, Path looks
// bare names up in PATH and Chain tries several resolvers in order.
package resolve
