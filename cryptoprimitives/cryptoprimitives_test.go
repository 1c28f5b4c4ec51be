// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cryptoprimitives

import (
	"bytes"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func TestSHA256HasherIsDeterministic(t *testing.T) {
	var h SHA256Hasher
	a := h.Sum256([]byte("hello"))
	b := h.Sum256([]byte("hello"))
	if a != b {
		t.Fatalf("Sum256 not deterministic")
	}
	if h.Sum256([]byte("hello")) == h.Sum256([]byte("world")) {
		t.Fatalf("different inputs produced the same digest")
	}
}

func TestHMACSHA256RoundTrip(t *testing.T) {
	var m HMACSHA256
	key := []byte("shared-secret")
	data := []byte("envelope-signing-bytes")
	mac1 := m.Sum(key, data)
	mac2 := m.Sum(key, data)
	if !m.Equal(mac1, mac2) {
		t.Fatalf("expected equal MACs for identical inputs")
	}
	tampered := m.Sum(key, append(append([]byte{}, data...), 0x00))
	if m.Equal(mac1, tampered) {
		t.Fatalf("expected different MACs after tampering with data")
	}
}

func TestSipHashDeterministic(t *testing.T) {
	var s SipHash
	var key [16]byte
	copy(key[:], []byte("0123456789abcdef"))
	a := s.Sum64(key, []byte("10.0.0.0/24"))
	b := s.Sum64(key, []byte("10.0.0.0/24"))
	if a != b {
		t.Fatalf("Sum64 not deterministic")
	}
}

func TestSecp256k1SignAndVerify(t *testing.T) {
	privBytes := bytes.Repeat([]byte{0x01}, 32)
	priv := secp256k1.PrivKeyFromBytes(privBytes)
	pub := priv.PubKey()

	var signer Secp256k1
	var digest [32]byte
	copy(digest[:], bytes.Repeat([]byte{0x02}, 32))

	sig, err := signer.Sign(privBytes, digest)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	var verifier Secp256k1
	if !verifier.Verify(pub.SerializeCompressed(), digest, sig) {
		t.Fatalf("expected signature to verify")
	}

	var otherDigest [32]byte
	copy(otherDigest[:], bytes.Repeat([]byte{0x03}, 32))
	if verifier.Verify(pub.SerializeCompressed(), otherDigest, sig) {
		t.Fatalf("expected signature over a different digest to fail")
	}
}

func TestSecp256k1VerifyRejectsMalformedInput(t *testing.T) {
	var verifier Secp256k1
	var digest [32]byte
	if verifier.Verify([]byte{0x01, 0x02}, digest, []byte{0x03, 0x04}) {
		t.Fatalf("expected malformed pubkey/signature to fail verification, not panic or succeed")
	}
}
