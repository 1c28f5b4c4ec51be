// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage implements BlockStorageService (spec.md §4.6,
// component C8): the write/read authority for chain history, the
// terminal participant in the block-assembly choreography. It owns the
// block index, the height index, the transaction-location index and the
// metadata singleton, all behind a single writer lock, and persists them
// through the ports.KVStore external contract via one atomic batch per
// write (spec.md §8 "Atomic storage").
package storage

import (
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/block"
	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// BlockFinalizedEvent is the side effect of a successful MarkFinalized
// call, for publication onto the event bus by the caller (spec.md §4.6
// "Finalization").
type BlockFinalizedEvent struct {
	Height uint64
}

// Service is the BlockStorageService. All mutation is serialized behind
// mu; pure reads share the same lock, matching spec.md §5's model for an
// owned piece of long-lived state where reads are not a contended hot
// path.
type Service struct {
	mu    sync.Mutex
	kv    ports.KVStore
	clock ports.TimeSource
	disk  DiskSpaceChecker
	cfg   Config

	meta Metadata

	// In-memory indices are updated only after the KV batch commits
	// (spec.md §4.6: "In-memory indices are updated only after the batch
	// commits"), so a crash mid-batch never leaves them ahead of disk.
	hashByHeight map[uint64]types.Hash
}

// New constructs a Service over kv. The metadata singleton is always
// rehydrated from kv; if cfg.PersistTransactionIndex is true, the height
// index is rehydrated as well (spec.md §4.6 "Persistence of the
// transaction index"); the
// tx-location/tx-hashes-by-block indices themselves stay in the KV store
// and are read through on demand rather than mirrored entirely in
// memory, since they can grow unboundedly with chain length.
func New(kv ports.KVStore, clock ports.TimeSource, disk DiskSpaceChecker, cfg Config) (*Service, error) {
	s := &Service{
		kv:           kv,
		clock:        clock,
		disk:         disk,
		cfg:          cfg,
		hashByHeight: make(map[uint64]types.Hash),
	}
	if err := s.rehydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) rehydrate() error {
	raw, err := s.kv.Get(metadataKey)
	if err == ports.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	meta, err := decodeMetadata(raw)
	if err != nil {
		return err
	}
	s.meta = *meta

	if !s.cfg.PersistTransactionIndex {
		return nil
	}
	for h := uint64(0); h <= s.meta.LatestHeight; h++ {
		raw, err := s.kv.Get(hashByHeightKey(h))
		if err == ports.ErrNotFound {
			continue
		}
		if err != nil {
			return err
		}
		var hash types.Hash
		copy(hash[:], raw)
		s.hashByHeight[h] = hash
	}
	return nil
}

// WriteBlock applies the write path of spec.md §4.6: five ordered
// preconditions, then a single atomic batch covering the stored block,
// the height index, every transaction-location entry, the
// tx-hashes-by-block index, and the updated metadata.
func (s *Service) WriteBlock(blk *block.Block, merkleRoot, stateRoot types.Hash, txHashes []types.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Precondition 1: disk space.
	free, err := s.disk.FreePercent(".")
	if err != nil {
		return newErr(ErrInsufficientDiskSpace, "disk space check failed: %v", err)
	}
	if free < s.cfg.MinDiskPercent {
		return newErr(ErrInsufficientDiskSpace, "%.2f%% free, below minimum %.2f%%", free, s.cfg.MinDiskPercent)
	}

	// Precondition 2: block size.
	if blk.Size() > s.cfg.maxBlockSize() {
		return newErr(ErrBlockSizeExceeded, "block size %d exceeds maximum %d", blk.Size(), s.cfg.maxBlockSize())
	}

	// Precondition 3: non-zero hash.
	if blk.Hash == types.ZeroHash {
		return newErr(ErrZeroBlockHash, "block hash is zero")
	}

	// Precondition 4: parent linkage.
	if blk.Height > 0 {
		if _, ok := s.hashByHeight[blk.Height-1]; !ok {
			return newErr(ErrParentNotFound, "no block at parent height %d", blk.Height-1)
		}
	}

	// Precondition 5: genesis immutability.
	if blk.Height == 0 && s.meta.HasGenesis && s.meta.GenesisHash != blk.Hash {
		return newErr(ErrGenesisModificationAttempt,
			"genesis already recorded as %s, rejecting %s", s.meta.GenesisHash, blk.Hash)
	}

	sb := &StoredBlock{
		Block:      blk,
		MerkleRoot: merkleRoot,
		StateRoot:  stateRoot,
		StoredAt:   s.clock.Now(),
	}
	sb.Checksum = computeChecksum(sb)

	puts := map[string][]byte{
		string(blockByHashKey(blk.Hash)):     encodeStoredBlock(sb),
		string(hashByHeightKey(blk.Height)):  blk.Hash[:],
		string(txHashesByBlockKey(blk.Hash)): encodeTxHashes(txHashes),
	}
	for i, tx := range txHashes {
		loc := &TxLocation{BlockHash: blk.Hash, Height: blk.Height, Index: uint32(i), MerkleRoot: merkleRoot}
		puts[string(txLocationKey(tx))] = encodeTxLocation(loc)
	}

	newMeta := s.meta
	if blk.Height == 0 {
		newMeta.HasGenesis = true
		newMeta.GenesisHash = blk.Hash
	}
	if blk.Height > newMeta.LatestHeight || newMeta.TotalBlocks == 0 {
		newMeta.LatestHeight = blk.Height
	}
	newMeta.TotalBlocks++
	puts[string(metadataKey)] = encodeMetadata(&newMeta)

	if err := s.kv.AtomicBatchWrite(puts, nil); err != nil {
		return newErr(ErrBatchWriteFailed, "atomic batch write failed: %v", err)
	}

	// In-memory indices only update after the batch commits.
	s.hashByHeight[blk.Height] = blk.Hash
	s.meta = newMeta
	return nil
}

// ReadBlock returns the stored block for hash, recomputing and comparing
// its checksum (spec.md §4.6). A mismatch is fatal and surfaced as
// ErrDataCorruption; the caller decides shutdown/degradation policy
// (spec.md §7).
func (s *Service) ReadBlock(hash types.Hash) (*StoredBlock, error) {
	raw, err := s.kv.Get(blockByHashKey(hash))
	if err == ports.ErrNotFound {
		return nil, newErr(ErrBlockNotFound, "no block for hash %s", hash)
	}
	if err != nil {
		return nil, err
	}
	sb, err := decodeStoredBlock(raw)
	if err != nil {
		return nil, err
	}
	if computeChecksum(sb) != sb.Checksum {
		log.Errorf("checksum mismatch for block %s: stored=%d computed=%d", hash, sb.Checksum, computeChecksum(sb))
		return nil, newErr(ErrDataCorruption, "checksum mismatch for block %s", hash)
	}
	return sb, nil
}

// ReadBlockByHeight resolves height to a hash and delegates to ReadBlock.
func (s *Service) ReadBlockByHeight(height uint64) (*StoredBlock, error) {
	s.mu.Lock()
	hash, ok := s.hashByHeight[height]
	s.mu.Unlock()
	if !ok {
		return nil, newErr(ErrHeightNotFound, "no block at height %d", height)
	}
	return s.ReadBlock(hash)
}

// ReadBlockRange returns blocks in [start, start+limit), inclusive start
// and exclusive end, capped at the current tip (spec.md §4.6).
func (s *Service) ReadBlockRange(start uint64, limit uint64) ([]*StoredBlock, error) {
	s.mu.Lock()
	tip := s.meta.LatestHeight
	s.mu.Unlock()

	if start > tip {
		return nil, nil
	}
	end := start + limit
	if end > tip+1 {
		end = tip + 1
	}
	out := make([]*StoredBlock, 0, end-start)
	for h := start; h < end; h++ {
		sb, err := s.ReadBlockByHeight(h)
		if err != nil {
			return nil, err
		}
		out = append(out, sb)
	}
	return out, nil
}

// GetTransactionLocation returns the recorded location of txHash.
func (s *Service) GetTransactionLocation(txHash types.Hash) (*TxLocation, error) {
	raw, err := s.kv.Get(txLocationKey(txHash))
	if err == ports.ErrNotFound {
		return nil, newErr(ErrTxLocationNotFound, "no location for tx %s", txHash)
	}
	if err != nil {
		return nil, err
	}
	return decodeTxLocation(raw)
}

// GetTransactionHashesForBlock returns the ordered transaction hashes
// recorded for blockHash.
func (s *Service) GetTransactionHashesForBlock(blockHash types.Hash) ([]types.Hash, error) {
	raw, err := s.kv.Get(txHashesByBlockKey(blockHash))
	if err == ports.ErrNotFound {
		return nil, newErr(ErrBlockNotFound, "no tx index for block %s", blockHash)
	}
	if err != nil {
		return nil, err
	}
	return decodeTxHashes(raw)
}

// MarkFinalized enforces finalization monotonicity (spec.md §4.6, §8
// invariant 5) and returns the BlockFinalizedEvent to publish on success.
// A repeat call at the already-finalized height is rejected too, not just
// a regression: finalization events must be strictly increasing, and a
// second event at an unchanged height would violate that even though it
// wouldn't move FinalizedHeight backwards.
func (s *Service) MarkFinalized(height uint64) (*BlockFinalizedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if height <= s.meta.FinalizedHeight || height > s.meta.LatestHeight {
		return nil, newErr(ErrInvalidFinalization,
			"height %d invalid given finalized=%d latest=%d", height, s.meta.FinalizedHeight, s.meta.LatestHeight)
	}

	newMeta := s.meta
	newMeta.FinalizedHeight = height
	if err := s.kv.Put(metadataKey, encodeMetadata(&newMeta)); err != nil {
		return nil, err
	}
	s.meta = newMeta
	return &BlockFinalizedEvent{Height: height}, nil
}

// Metadata returns a copy of the current storage metadata.
func (s *Service) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}
