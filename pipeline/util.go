// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pipeline

import (
	"crypto/rand"

	"github.com/NerfedChou/Quantum-Chain-sub004/envelope"
)

// fillNonce stamps env.Nonce with fresh cryptographically random bytes,
// mirroring discovery's util.go: nonce uniqueness, not reproducibility,
// is what the envelope's replay rule needs.
func fillNonce(env *envelope.Envelope) {
	_, _ = rand.Read(env.Nonce[:])
}
