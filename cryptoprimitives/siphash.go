// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cryptoprimitives

import "github.com/aead/siphash"

// SipHash implements ShortInputHasher using github.com/aead/siphash, the
// same keyed short-input hash the GCS filter package uses for compact
// block filters.
type SipHash struct{}

// Sum64 returns SipHash-2-4(key, data).
func (SipHash) Sum64(key [16]byte, data []byte) uint64 {
	return siphash.Sum64(data, &key)
}
