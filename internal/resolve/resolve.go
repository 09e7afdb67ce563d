// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package resolve

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no executable matches the logical path.
var ErrNotFound = errors.New("executable not found")

// Resolver turns a logical path into an absolute path to an existing file.
type Resolver interface {
	Resolve(logical string) (string, error)
}

// Func adapts a function to the Resolver interface.
type Func func(logical string) (string, error)

// Resolve implements Resolver.
func (f Func) Resolve(logical string) (string, error) {
	return f(logical)
}

// Chain tries each resolver in turn and returns the first success.
// Errors other than ErrNotFound stop the chain.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(logical string) (string, error) {
	for _, r := range c {
		p, err := r.Resolve(logical)
		if err == nil {
			return p, nil
		}

		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, logical)
}
