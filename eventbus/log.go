// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package eventbus

import "github.com/decred/slog"

var log = slog.Disabled

// UseLogger sets the package-wide logger.
func UseLogger(logger slog.Logger) {
	log = logger
}
