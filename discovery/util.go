// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import (
	"crypto/rand"
	"net"

	"github.com/NerfedChou/Quantum-Chain-sub004/envelope"
)

// fillNonce stamps env.Nonce with fresh cryptographically random bytes.
// Nonce uniqueness, not reproducibility, is what the envelope's replay
// rule needs, so this always uses crypto/rand rather than an injected
// RandomSource.
func fillNonce(env *envelope.Envelope) {
	_, _ = rand.Read(env.Nonce[:])
}

// parseIP parses s as an IP address, returning nil (rather than erroring)
// on malformed input; a nil net.IP falls through subnetKey's "everything
// else" branch and simply fails to cluster with any real subnet, which is
// the conservative behavior for an otherwise-malformed bootstrap request
// that already passed the proof-of-identity check.
func parseIP(s string) net.IP {
	return net.ParseIP(s)
}
