// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"errors"
	"testing"

	"github.com/NerfedChou/Quantum-Chain-sub004/block"
	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
	"github.com/NerfedChou/Quantum-Chain-sub004/storage/kv"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
	"github.com/davecgh/go-spew/spew"
)

func mkHash(b byte) types.Hash {
	var h types.Hash
	h[len(h)-1] = b
	return h
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(kv.NewMemory(), ports.NewMockClock(1000), AlwaysAvailable{}, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func mkBlock(height uint64, hash, parent byte) *block.Block {
	return &block.Block{
		Hash:       mkHash(hash),
		ParentHash: mkHash(parent),
		Height:     height,
		Bytes:      []byte{hash},
	}
}

// TestStorageParentLinking exercises spec.md §8 scenario S5: writing a
// block at height 5 before any ancestor exists fails with
// ErrParentNotFound; writing heights 0..5 sequentially succeeds.
func TestStorageParentLinking(t *testing.T) {
	svc := newTestService(t)

	orphan := mkBlock(5, 0xFF, 0xEE)
	if err := svc.WriteBlock(orphan, mkHash(1), mkHash(2), nil); !errors.Is(err, ErrParentNotFound) {
		t.Fatalf("expected ErrParentNotFound, got %v", err)
	}

	var parent byte
	for h := uint64(0); h <= 5; h++ {
		blk := mkBlock(h, byte(h+1), parent)
		if err := svc.WriteBlock(blk, mkHash(1), mkHash(2), nil); err != nil {
			t.Fatalf("write height %d: %v", h, err)
		}
		parent = byte(h + 1)
	}

	if svc.Metadata().LatestHeight != 5 {
		t.Fatalf("expected latest height 5, got %d", svc.Metadata().LatestHeight)
	}
}

func TestGenesisImmutability(t *testing.T) {
	svc := newTestService(t)
	g1 := mkBlock(0, 1, 0)
	if err := svc.WriteBlock(g1, mkHash(1), mkHash(2), nil); err != nil {
		t.Fatalf("write genesis: %v", err)
	}
	g2 := mkBlock(0, 2, 0)
	if err := svc.WriteBlock(g2, mkHash(1), mkHash(2), nil); !errors.Is(err, ErrGenesisModificationAttempt) {
		t.Fatalf("expected ErrGenesisModificationAttempt, got %v", err)
	}
	// Byte-identical genesis rewritten is not an error.
	if err := svc.WriteBlock(g1, mkHash(1), mkHash(2), nil); err != nil {
		t.Fatalf("re-writing identical genesis should succeed, got %v", err)
	}
}

// TestFinalizationMonotonicity exercises spec.md §8 scenario S6: after
// writing heights 0..9 and finalizing 5, finalizing 3 fails and
// finalizing 7 succeeds.
func TestFinalizationMonotonicity(t *testing.T) {
	svc := newTestService(t)
	var parent byte
	for h := uint64(0); h <= 9; h++ {
		blk := mkBlock(h, byte(h+1), parent)
		if err := svc.WriteBlock(blk, mkHash(1), mkHash(2), nil); err != nil {
			t.Fatalf("write height %d: %v", h, err)
		}
		parent = byte(h + 1)
	}

	if _, err := svc.MarkFinalized(5); err != nil {
		t.Fatalf("MarkFinalized(5): %v", err)
	}
	if _, err := svc.MarkFinalized(3); !errors.Is(err, ErrInvalidFinalization) {
		t.Fatalf("expected ErrInvalidFinalization, got %v", err)
	}
	ev, err := svc.MarkFinalized(7)
	if err != nil {
		t.Fatalf("MarkFinalized(7): %v", err)
	}
	if ev.Height != 7 {
		t.Fatalf("expected event height 7, got %d", ev.Height)
	}
	if _, err := svc.MarkFinalized(7); !errors.Is(err, ErrInvalidFinalization) {
		t.Fatalf("expected repeat MarkFinalized(7) to be rejected, got %v", err)
	}
}

func TestReadBlockRoundTrip(t *testing.T) {
	svc := newTestService(t)
	blk := mkBlock(0, 1, 0)
	merkle, state := mkHash(0xAA), mkHash(0xBB)
	if err := svc.WriteBlock(blk, merkle, state, []types.Hash{mkHash(0x10)}); err != nil {
		t.Fatalf("write: %v", err)
	}

	sb, err := svc.ReadBlock(blk.Hash)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if sb.MerkleRoot != merkle || sb.StateRoot != state {
		t.Fatalf("round-tripped roots do not match - got %s, want %s",
			spew.Sdump(sb), spew.Sdump(StoredBlock{MerkleRoot: merkle, StateRoot: state}))
	}

	hashes, err := svc.GetTransactionHashesForBlock(blk.Hash)
	if err != nil || len(hashes) != 1 || hashes[0] != mkHash(0x10) {
		t.Fatalf("unexpected tx hashes: %s, err=%v", spew.Sdump(hashes), err)
	}

	loc, err := svc.GetTransactionLocation(mkHash(0x10))
	if err != nil {
		t.Fatalf("GetTransactionLocation: %v", err)
	}
	if loc.BlockHash != blk.Hash || loc.Height != 0 || loc.Index != 0 {
		t.Fatalf("unexpected tx location: %s", spew.Sdump(loc))
	}
}

func TestReadBlockDataCorruption(t *testing.T) {
	memKV := kv.NewMemory()
	svc, err := New(memKV, ports.NewMockClock(1000), AlwaysAvailable{}, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	blk := mkBlock(0, 1, 0)
	if err := svc.WriteBlock(blk, mkHash(2), mkHash(3), nil); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := memKV.Get(blockByHashKey(blk.Hash))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	corrupted := append([]byte(nil), raw...)
	corrupted[len(corrupted)-1] ^= 0xFF
	if err := memKV.Put(blockByHashKey(blk.Hash), corrupted); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, err := svc.ReadBlock(blk.Hash); !errors.Is(err, ErrDataCorruption) {
		t.Fatalf("expected ErrDataCorruption, got %v", err)
	}
}

func TestBlockSizeExceeded(t *testing.T) {
	svc := newTestService(t)
	svc.cfg.MaxBlockSize = 4
	blk := mkBlock(0, 1, 0)
	blk.Bytes = []byte{1, 2, 3, 4, 5}
	if err := svc.WriteBlock(blk, mkHash(1), mkHash(2), nil); !errors.Is(err, ErrBlockSizeExceeded) {
		t.Fatalf("expected ErrBlockSizeExceeded, got %v", err)
	}
}
