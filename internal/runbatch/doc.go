// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs a batch of external commands and reduces their exit codes to a single outcome.
// Commands are either all launched up front and waited on in launch order (concurrent), or run one at a time
// in input order (serial). Individual failures are recorded in the returned Results, they never abort the
// batch unless the serial scheduler is told to stop on the first failure.
// Cancelling the context passed to Run interrupts the batch: the concurrent scheduler kills and reaps every
// outstanding process, the serial scheduler stops launching new ones.
package runbatch
