// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pow implements the node-identity proof-of-work check (spec.md
// §4.1, component C6): a lightweight Sybil-resistance gate applied to a
// candidate node_id before it is allowed into the routing table's staging
// area, independent of and prior to the Authenticated Message Envelope's
// signature verification.
package pow

import (
	"crypto/sha256"
	"math/bits"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// MinDifficultyBits and MaxDifficultyBits bound the configurable
// difficulty (spec.md §4.1: production default 24, test range 8-16).
const (
	MinDifficultyBits = 8
	MaxDifficultyBits = 64

	// DefaultProductionDifficultyBits is the difficulty used outside of
	// tests.
	DefaultProductionDifficultyBits = 24
)

// CountLeadingZeroBits returns the number of leading zero bits in hash,
// counting from the most significant bit of hash[0]. Each whole zero byte
// contributes 8; the first non-zero byte contributes
// bits.LeadingZeros8 of its value. A hash of all zero bytes returns
// len(hash)*8.
func CountLeadingZeroBits(hash []byte) int {
	n := 0
	for _, b := range hash {
		if b == 0 {
			n += 8
			continue
		}
		n += bits.LeadingZeros8(b)
		break
	}
	return n
}

// Validator checks a candidate node_id's proof of work against a fixed
// difficulty, per spec.md §4.1: the proof is accepted iff
// SHA-256(node_id || proof_of_work) has at least difficultyBits leading
// zero bits.
type Validator struct {
	difficultyBits int
}

// NewValidator returns a Validator requiring difficultyBits leading zero
// bits. difficultyBits must be within [MinDifficultyBits,
// MaxDifficultyBits]; out-of-range values return ErrInvalidDifficulty.
func NewValidator(difficultyBits int) (*Validator, error) {
	if difficultyBits < MinDifficultyBits || difficultyBits > MaxDifficultyBits {
		return nil, newErr(ErrInvalidDifficulty, "difficulty bits out of range")
	}
	return &Validator{difficultyBits: difficultyBits}, nil
}

// DifficultyBits returns the configured difficulty.
func (v *Validator) DifficultyBits() int {
	return v.difficultyBits
}

// Validate reports whether proofOfWork is a valid proof of work for
// nodeID under the validator's configured difficulty.
func (v *Validator) Validate(nodeID types.NodeId, proofOfWork [32]byte) bool {
	return Validate(nodeID, proofOfWork, v.difficultyBits)
}

// Validate implements the free-standing check: SHA-256(node_id ||
// proof_of_work) must have at least difficultyBits leading zero bits.
func Validate(nodeID types.NodeId, proofOfWork [32]byte, difficultyBits int) bool {
	buf := make([]byte, 0, types.NodeIdSize+len(proofOfWork))
	buf = append(buf, nodeID[:]...)
	buf = append(buf, proofOfWork[:]...)
	sum := sha256.Sum256(buf)
	return CountLeadingZeroBits(sum[:]) >= difficultyBits
}
