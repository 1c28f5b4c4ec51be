// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ports

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
)

// SystemRandom is the production RandomSource, seeded from the OS CSPRNG
// once at construction. *mathrand.Rand already satisfies RandomSource
// (Intn and Shuffle have the required signatures), so SystemRandom simply
// wraps it with a secure seed.
type SystemRandom struct {
	*mathrand.Rand
}

// NewSystemRandom returns a RandomSource seeded from crypto/rand.
func NewSystemRandom() *SystemRandom {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failing is a fatal environment problem elsewhere in
		// the stack; here we degrade to a fixed seed rather than
		// panic, since randomness quality for peer sampling is not a
		// security boundary (XOR-distance bucket placement is).
		binary.BigEndian.PutUint64(seed[:], 0x5eed)
	}
	s := int64(binary.BigEndian.Uint64(seed[:]))
	return &SystemRandom{Rand: mathrand.New(mathrand.NewSource(s))}
}

// NewSeededRandom returns a deterministic RandomSource for tests.
func NewSeededRandom(seed int64) *SystemRandom {
	return &SystemRandom{Rand: mathrand.New(mathrand.NewSource(seed))}
}
