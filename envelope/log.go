// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package envelope

import "github.com/decred/slog"

// log is this package's subsystem logger, disabled until UseLogger is
// called, following the convention used throughout the btcsuite/dcrd
// corpus.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by envelope verification
// (e.g. to log dropped/rejected envelopes at debug level per spec.md §7:
// validation and authorization failures are logged, never escalated to a
// ban).
func UseLogger(logger slog.Logger) {
	log = logger
}
