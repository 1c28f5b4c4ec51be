// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package assembly

import (
	"errors"
	"testing"

	"github.com/NerfedChou/Quantum-Chain-sub004/block"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

func mkHash(b byte) types.Hash {
	var h types.Hash
	h[len(h)-1] = b
	return h
}

// TestAssemblyOrderIndependence exercises spec.md §8 scenario S4: state
// root, then merkle root, then the block itself arrive for the same
// hash; TakeComplete must still return all three correctly paired.
func TestAssemblyOrderIndependence(t *testing.T) {
	buf, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := mkHash(1)
	now := types.Timestamp(1000)

	buf.OnStateRootComputed(h, mkHash(0xDD), now)
	if buf.IsComplete(h) {
		t.Fatalf("should not be complete yet")
	}
	buf.OnMerkleRootComputed(h, mkHash(0xCC), now)
	if buf.IsComplete(h) {
		t.Fatalf("should not be complete yet")
	}
	blk := &block.Block{Hash: h, Height: 1, Bytes: []byte("block")}
	buf.OnBlockValidated(blk, now)
	if !buf.IsComplete(h) {
		t.Fatalf("expected complete assembly")
	}

	gotBlock, merkle, state, err := buf.TakeComplete(h)
	if err != nil {
		t.Fatalf("TakeComplete: %v", err)
	}
	if gotBlock != blk {
		t.Fatalf("expected the same block pointer back")
	}
	if merkle != mkHash(0xCC) {
		t.Fatalf("merkle root mismatch: %x", merkle)
	}
	if state != mkHash(0xDD) {
		t.Fatalf("state root mismatch: %x", state)
	}
	if buf.PendingCount() != 0 {
		t.Fatalf("expected TakeComplete to remove the assembly")
	}
}

func TestTakeCompleteErrors(t *testing.T) {
	buf, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := mkHash(1)

	if _, _, _, err := buf.TakeComplete(h); !errors.Is(err, ErrUnknownAssembly) {
		t.Fatalf("expected ErrUnknownAssembly, got %v", err)
	}

	buf.OnMerkleRootComputed(h, mkHash(2), 1000)
	if _, _, _, err := buf.TakeComplete(h); !errors.Is(err, ErrNotComplete) {
		t.Fatalf("expected ErrNotComplete, got %v", err)
	}
}

func TestConfigValidateBounds(t *testing.T) {
	cases := []Config{
		{TimeoutSecs: MinTTLSecs - 1, MaxPendingAssemblies: 100},
		{TimeoutSecs: MaxTTLSecs + 1, MaxPendingAssemblies: 100},
		{TimeoutSecs: 30, MaxPendingAssemblies: MinPendingAssemblies - 1},
		{TimeoutSecs: 30, MaxPendingAssemblies: MaxPendingAssemblies + 1},
	}
	for _, cfg := range cases {
		if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("cfg %+v: expected ErrInvalidConfig, got %v", cfg, err)
		}
	}
}

func TestGcExpired(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutSecs = MinTTLSecs
	buf, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	h1, h2 := mkHash(1), mkHash(2)
	buf.OnMerkleRootComputed(h1, mkHash(0xAA), 1000)
	buf.OnMerkleRootComputed(h2, mkHash(0xBB), 1000+MinTTLSecs)

	removed := buf.GcExpired(1000 + MinTTLSecs + 1)
	if _, ok := removed[h1]; !ok {
		t.Fatalf("expected h1 to be expired")
	}
	if _, ok := removed[h2]; ok {
		t.Fatalf("h2 should not yet be expired")
	}
	if buf.PendingCount() != 1 {
		t.Fatalf("expected 1 assembly remaining, got %d", buf.PendingCount())
	}
}

func TestEnforceMaxPendingPurgesOldestFirst(t *testing.T) {
	cfg := Config{TimeoutSecs: 30, MaxPendingAssemblies: MinPendingAssemblies}
	buf, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < MinPendingAssemblies+5; i++ {
		h := mkHash(byte(i))
		buf.OnMerkleRootComputed(h, mkHash(0xFF), types.Timestamp(1000+i))
	}
	if buf.PendingCount() != MinPendingAssemblies+5 {
		t.Fatalf("expected all entries tracked before enforcement")
	}

	purged := buf.EnforceMaxPending()
	if len(purged) != 5 {
		t.Fatalf("expected 5 purged, got %d", len(purged))
	}
	for i := 0; i < 5; i++ {
		if _, ok := purged[mkHash(byte(i))]; !ok {
			t.Fatalf("expected oldest entry %d to be purged", i)
		}
	}
	if buf.PendingCount() != MinPendingAssemblies {
		t.Fatalf("expected count at cap, got %d", buf.PendingCount())
	}
}
