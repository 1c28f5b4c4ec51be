// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cryptoprimitives

import (
	"crypto/hmac"
	"crypto/sha256"
)

// SHA256Hasher implements Hasher using crypto/sha256, the hash function
// the rest of the decred/dcrd stack (chainhash) is itself built on.
type SHA256Hasher struct{}

// Sum256 returns the SHA-256 digest of data.
func (SHA256Hasher) Sum256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// HMACSHA256 implements MessageAuthenticator using HMAC-SHA-256 with a
// constant-time comparison, matching the Authenticated Message Envelope's
// signature rule (spec.md §5.2, invariant: signature check must be
// constant-time to avoid a timing side channel).
type HMACSHA256 struct{}

// Sum computes HMAC-SHA-256(key, data).
func (HMACSHA256) Sum(key, data []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// Equal performs a constant-time comparison of two MACs.
func (HMACSHA256) Equal(mac1, mac2 [32]byte) bool {
	return hmac.Equal(mac1[:], mac2[:])
}
