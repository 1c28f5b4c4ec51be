// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cryptoprimitives names the small set of cryptographic
// guarantees the rest of this module is allowed to depend on (spec.md
// §5, component C1): a fixed hash function, a fixed keyed MAC, a fixed
// short-input keyed hash, and a fixed asymmetric signature scheme. The
// discovery package reaches secp256k1 only through these interfaces; the
// envelope and pow packages import crypto/hmac and crypto/sha256
// directly.
package cryptoprimitives

// Hasher computes a fixed-size cryptographic digest of arbitrary input.
type Hasher interface {
	Sum256(data []byte) [32]byte
}

// MessageAuthenticator computes and checks a keyed message authentication
// code, used by the Authenticated Message Envelope's signature field
// (spec.md §5.2).
type MessageAuthenticator interface {
	Sum(key, data []byte) [32]byte
	Equal(mac1, mac2 [32]byte) bool
}

// ShortInputHasher computes a keyed hash optimized for short, frequent
// inputs such as subnet keys and rate-limit buckets, where a full SHA-256
// would be disproportionately expensive per call.
type ShortInputHasher interface {
	Sum64(key [16]byte, data []byte) uint64
}

// Signer produces a detached signature over a digest using an
// asymmetric private key. Secp256k1 implements it; envelopes are
// authenticated with HMAC, not with a Signer.
type Signer interface {
	Sign(privKey []byte, digest [32]byte) ([]byte, error)
}

// SignatureVerifier checks a detached signature against a claimed public
// key, used by the bootstrap request's proof-of-identity check (spec.md
// §4.1: claimed_pubkey/signature).
type SignatureVerifier interface {
	Verify(pubKey []byte, digest [32]byte, signature []byte) bool
}
