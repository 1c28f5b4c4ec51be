// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"crypto/sha256"
	"testing"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

func TestCountLeadingZeroBits(t *testing.T) {
	tests := []struct {
		name string
		hash []byte
		want int
	}{
		{"all zero", make([]byte, 4), 32},
		{"leading one byte zero", []byte{0x00, 0xff}, 8},
		{"msb set", []byte{0x80}, 0},
		{"one leading bit", []byte{0x40}, 1},
		{"two whole zero bytes then set bit", []byte{0x00, 0x00, 0x01}, 23},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountLeadingZeroBits(tc.hash); got != tc.want {
				t.Fatalf("CountLeadingZeroBits(%x) = %d, want %d", tc.hash, got, tc.want)
			}
		})
	}
}

// findNonce brute-forces a proof_of_work value such that SHA-256(nodeID ||
// pow) has at least wantZeroBits leading zero bits. Used only to build
// fixtures; this is not part of the package's exported surface.
func findNonce(t *testing.T, nodeID types.NodeId, wantZeroBits int) [32]byte {
	t.Helper()
	for i := 0; i < 1_000_000; i++ {
		var pow [32]byte
		pow[0] = byte(i)
		pow[1] = byte(i >> 8)
		pow[2] = byte(i >> 16)
		buf := append(append([]byte{}, nodeID[:]...), pow[:]...)
		sum := sha256.Sum256(buf)
		if CountLeadingZeroBits(sum[:]) >= wantZeroBits {
			return pow
		}
	}
	t.Fatalf("could not find a nonce with %d leading zero bits within the search budget", wantZeroBits)
	return [32]byte{}
}

// TestValidateAcceptsSufficientWork covers spec.md §8 scenario S1: a
// proof_of_work nonce found such that SHA-256(node_id || pow) starts with
// at least two zero bytes (16 bits) must be accepted under difficulty 16.
func TestValidateAcceptsSufficientWork(t *testing.T) {
	var nodeID types.NodeId
	for i := range nodeID {
		nodeID[i] = 0x01
	}
	pow := findNonce(t, nodeID, 16)
	if !Validate(nodeID, pow, 16) {
		t.Fatalf("expected proof of work with >=16 leading zero bits to be accepted")
	}
}

// TestValidateRejectsInsufficientWork covers the other half of S1: a nonce
// yielding only one zero byte (8 bits) must be rejected against a
// difficulty of 16.
func TestValidateRejectsInsufficientWork(t *testing.T) {
	var nodeID types.NodeId
	for i := range nodeID {
		nodeID[i] = 0x01
	}
	// Find a nonce with at least 8 but search-bounded below 16 leading
	// zero bits so it clears the low bar and fails the high one.
	var chosen [32]byte
	found := false
	for i := 0; i < 1_000_000; i++ {
		var candidate [32]byte
		candidate[0] = byte(i)
		candidate[1] = byte(i >> 8)
		candidate[2] = byte(i >> 16)
		buf := append(append([]byte{}, nodeID[:]...), candidate[:]...)
		sum := sha256.Sum256(buf)
		zeros := CountLeadingZeroBits(sum[:])
		if zeros >= 8 && zeros < 16 {
			chosen = candidate
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("could not find a nonce in [8,16) leading zero bits within the search budget")
	}
	if Validate(nodeID, chosen, 16) {
		t.Fatalf("expected proof of work with <16 leading zero bits to be rejected")
	}
	if !Validate(nodeID, chosen, 8) {
		t.Fatalf("expected the same proof of work to satisfy the lower difficulty of 8")
	}
}

func TestNewValidatorRejectsOutOfRangeDifficulty(t *testing.T) {
	if _, err := NewValidator(MinDifficultyBits - 1); err == nil {
		t.Fatalf("expected error for difficulty below minimum")
	}
	if _, err := NewValidator(MaxDifficultyBits + 1); err == nil {
		t.Fatalf("expected error for difficulty above maximum")
	}
	v, err := NewValidator(DefaultProductionDifficultyBits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.DifficultyBits() != DefaultProductionDifficultyBits {
		t.Fatalf("DifficultyBits() = %d, want %d", v.DifficultyBits(), DefaultProductionDifficultyBits)
	}
}
