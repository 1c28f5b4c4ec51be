// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package block defines the minimal, opaque block-body shape shared by
// the assembly buffer (C7) and the storage service (C8). Header
// validation, the merkle-tree math behind MerkleRoot, and state-execution
// semantics behind StateRoot are chain-specific consensus rules excluded
// from this core (spec.md §1); this package only fixes the byte shape a
// validated block needs to flow through assembly and into storage.
// Grounded on the height<->hash indexing shape of the teacher's
// blockchain/blockindex_test.go, without importing that package (its
// header/difficulty/subsidy rules are out of scope; see SPEC_FULL.md's
// "Teacher dependencies deliberately dropped").
package block

import "github.com/NerfedChou/Quantum-Chain-sub004/types"

// Block is the validated block body as it arrives from the consensus
// subsystem's BlockValidated event. Bytes is the block's canonical
// serialized form; this core never interprets it beyond computing its
// length and checksum.
type Block struct {
	Hash       types.Hash
	ParentHash types.Hash
	Height     uint64
	Timestamp  types.Timestamp
	Bytes      []byte
}

// Size returns the serialized block's byte length, consulted against
// storage's MAX_BLOCK_SIZE precondition (spec.md §4.6).
func (b *Block) Size() int {
	return len(b.Bytes)
}

// IsGenesis reports whether b is the height-0 block.
func (b *Block) IsGenesis() bool {
	return b.Height == 0
}
