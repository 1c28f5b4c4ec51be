// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cryptoprimitives

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/schnorr"
)

// Secp256k1 implements Signer and SignatureVerifier using
// github.com/decred/dcrd/dcrec/secp256k1/v4's schnorr subpackage, the
// fixed 64-byte signature scheme (spec.md §4.1: bootstrap requests carry
// a 64-byte signature over node_id, which rules out variable-length DER
// ECDSA in favor of the module's EC-Schnorr-DCRv0 Schnorr signatures).
type Secp256k1 struct{}

// Sign produces a 64-byte Schnorr signature over digest using privKey, a
// 32-byte serialized secp256k1 private key.
func (Secp256k1) Sign(privKey []byte, digest [32]byte) ([]byte, error) {
	priv := secp256k1.PrivKeyFromBytes(privKey)
	sig, err := schnorr.Sign(priv, digest[:])
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}

// Verify reports whether signature is a valid 64-byte Schnorr signature
// over digest for the given 33-byte compressed or 65-byte uncompressed
// public key. A malformed pubKey or signature is treated as a failed
// verification rather than an error, matching the envelope verifier's
// "never panic on attacker-controlled bytes" convention.
func (Secp256k1) Verify(pubKey []byte, digest [32]byte, signature []byte) bool {
	pub, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return false
	}
	sig, err := schnorr.ParseSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(digest[:], pub)
}
