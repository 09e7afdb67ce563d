// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import "fmt"

// ScheduleConfig controls how a batch is scheduled.
type ScheduleConfig struct {
	// Jobs selects the scheduler. Zero runs every command concurrently, any positive value runs them serially.
	Jobs int
	// PrintCommandTags prints each command's tag before it runs (serial) or before its buffered output (concurrent).
	PrintCommandTags bool
	// BufferOutput captures combined stdout and stderr of each command. Concurrent mode only.
	BufferOutput bool
	// KeepGoing continues past failing commands. Serial mode only.
	KeepGoing bool
}

// Validate checks the configuration is usable.
func (c ScheduleConfig) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidJobs, c.Jobs)
	}

	return nil
}

// Concurrent reports whether the configuration selects the concurrent scheduler.
func (c ScheduleConfig) Concurrent() bool {
	return c.Jobs == 0
}
