// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/NerfedChou/Quantum-Chain-sub004/block"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// StoredBlock is a block as persisted by write_block, with its recorded
// checksum (spec.md §3). Checksum is computed at write time over the
// block's canonical bytes and recomputed on every read_block to detect
// corruption (spec.md §4.6, §8 invariant "Atomic storage").
type StoredBlock struct {
	Block      *block.Block
	MerkleRoot types.Hash
	StateRoot  types.Hash
	StoredAt   types.Timestamp
	Checksum   uint32
}

// TxLocation records where a transaction lives within the chain, the
// value side of the tx_hash -> (block_hash, height, index, merkle_root)
// index (spec.md §3, §4.6).
type TxLocation struct {
	BlockHash  types.Hash
	Height     uint64
	Index      uint32
	MerkleRoot types.Hash
}

// Metadata is the StorageMetadata singleton (spec.md §3): invariants
// FinalizedHeight <= LatestHeight and FinalizedHeight monotone
// non-decreasing are enforced exclusively by Service.MarkFinalized.
type Metadata struct {
	HasGenesis      bool
	GenesisHash     types.Hash
	LatestHeight    uint64
	FinalizedHeight uint64
	TotalBlocks     uint64
}

// Key-space layout. The choice of prefix bytes is implementation-defined
// per spec.md §6 ("the choice of prefix is implementation-defined, but
// the set is..."); single-byte prefixes keep prefix-scan ranges cheap to
// construct, mirroring the teacher's bucket-key convention in its own
// database package.
const (
	prefixBlockByHash     = 0x01
	prefixHashByHeight    = 0x02
	prefixTxLocation      = 0x03
	prefixTxHashesByBlock = 0x04
	prefixMetadata        = 0x05
)

var metadataKey = []byte{prefixMetadata}

func blockByHashKey(hash types.Hash) []byte {
	return append([]byte{prefixBlockByHash}, hash[:]...)
}

func hashByHeightKey(height uint64) []byte {
	k := make([]byte, 1+8)
	k[0] = prefixHashByHeight
	binary.BigEndian.PutUint64(k[1:], height)
	return k
}

func txLocationKey(txHash types.Hash) []byte {
	return append([]byte{prefixTxLocation}, txHash[:]...)
}

func txHashesByBlockKey(blockHash types.Hash) []byte {
	return append([]byte{prefixTxHashesByBlock}, blockHash[:]...)
}
