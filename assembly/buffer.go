// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package assembly implements the BlockAssemblyBuffer (spec.md §4.5,
// component C7): the three-input convergence that correlates a validated
// block body, its transactions merkle root, and its post-execution state
// root per block hash, under a bounded TTL and bounded capacity. The
// owning-map-plus-single-writer-lock shape follows addrmgr's
// RoutingTable staging area (addrmgr/routingtable.go); the "purge
// oldest-first on capacity breach" policy is new to this package since
// the teacher's routing table tail-drops instead (its staging area has
// no ordered eviction - see spec.md §4.3 vs §4.5 for why the two
// backpressure policies differ).
package assembly

import (
	"sort"
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/block"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// PendingAssembly is one block hash's in-flight convergence state
// (spec.md §3). Any subset of the three fields may be populated at a
// given moment; arrival order is unconstrained (spec.md §4.5, §8 S4).
type PendingAssembly struct {
	Block      *block.Block
	MerkleRoot *types.Hash
	StateRoot  *types.Hash
	ReceivedAt types.Timestamp
}

// isComplete reports whether all three components have arrived.
func (p *PendingAssembly) isComplete() bool {
	return p.Block != nil && p.MerkleRoot != nil && p.StateRoot != nil
}

// Buffer is the BlockAssemblyBuffer. All mutation goes through a single
// writer lock, matching spec.md §5's "single writer lock" model for
// owned, long-lived state.
type Buffer struct {
	mu      sync.Mutex
	pending map[types.Hash]*PendingAssembly
	cfg     Config
}

// New constructs a Buffer from cfg, rejecting out-of-bounds TTL/capacity
// at construction (spec.md §4.5 "Security").
func New(cfg Config) (*Buffer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Buffer{
		pending: make(map[types.Hash]*PendingAssembly),
		cfg:     cfg,
	}, nil
}

func (b *Buffer) entryLocked(hash types.Hash, now types.Timestamp) *PendingAssembly {
	p, ok := b.pending[hash]
	if !ok {
		p = &PendingAssembly{ReceivedAt: now}
		b.pending[hash] = p
	}
	return p
}

// OnBlockValidated attaches a validated block body to hash's assembly,
// creating the assembly if this is the first component to arrive
// (spec.md §4.5).
func (b *Buffer) OnBlockValidated(blk *block.Block, now types.Timestamp) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.entryLocked(blk.Hash, now)
	p.Block = blk
}

// OnMerkleRootComputed attaches a transactions merkle root to hash's
// assembly.
func (b *Buffer) OnMerkleRootComputed(hash types.Hash, merkleRoot types.Hash, now types.Timestamp) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.entryLocked(hash, now)
	root := merkleRoot
	p.MerkleRoot = &root
}

// OnStateRootComputed attaches a post-execution state root to hash's
// assembly.
func (b *Buffer) OnStateRootComputed(hash types.Hash, stateRoot types.Hash, now types.Timestamp) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.entryLocked(hash, now)
	root := stateRoot
	p.StateRoot = &root
}

// IsComplete reports whether hash's assembly has all three components.
func (b *Buffer) IsComplete(hash types.Hash) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[hash]
	return ok && p.isComplete()
}

// TakeComplete removes and returns hash's assembly, which must be
// complete. Returns ErrUnknownAssembly if hash has no tracked assembly,
// or ErrNotComplete if it exists but is still missing a component.
func (b *Buffer) TakeComplete(hash types.Hash) (*block.Block, types.Hash, types.Hash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[hash]
	if !ok {
		return nil, types.Hash{}, types.Hash{}, newErr(ErrUnknownAssembly, "no assembly for %s", hash)
	}
	if !p.isComplete() {
		return nil, types.Hash{}, types.Hash{}, newErr(ErrNotComplete, "assembly for %s is incomplete", hash)
	}
	delete(b.pending, hash)
	return p.Block, *p.MerkleRoot, *p.StateRoot, nil
}

// PendingCount returns the number of in-flight assemblies.
func (b *Buffer) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// GcExpired removes every assembly whose age (now - ReceivedAt) exceeds
// the configured TTL, returning the removed hashes and their state for
// event emission by the caller (spec.md §4.5).
func (b *Buffer) GcExpired(now types.Timestamp) map[types.Hash]*PendingAssembly {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := make(map[types.Hash]*PendingAssembly)
	ttl := int64(b.cfg.TimeoutSecs)
	for hash, p := range b.pending {
		if now.Sub(p.ReceivedAt) > ttl {
			removed[hash] = p
			delete(b.pending, hash)
		}
	}
	return removed
}

// EnforceMaxPending purges assemblies oldest-first by ReceivedAt until
// the tracked count is at or below MaxPendingAssemblies, returning the
// purged entries for event emission (spec.md §4.5).
func (b *Buffer) EnforceMaxPending() map[types.Hash]*PendingAssembly {
	b.mu.Lock()
	defer b.mu.Unlock()

	purged := make(map[types.Hash]*PendingAssembly)
	over := len(b.pending) - b.cfg.MaxPendingAssemblies
	if over <= 0 {
		return purged
	}

	type keyed struct {
		hash types.Hash
		recv types.Timestamp
	}
	ordered := make([]keyed, 0, len(b.pending))
	for hash, p := range b.pending {
		ordered = append(ordered, keyed{hash: hash, recv: p.ReceivedAt})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].recv != ordered[j].recv {
			return ordered[i].recv < ordered[j].recv
		}
		return lessHash(ordered[i].hash, ordered[j].hash)
	})

	for i := 0; i < over; i++ {
		hash := ordered[i].hash
		purged[hash] = b.pending[hash]
		delete(b.pending, hash)
	}
	return purged
}

func lessHash(a, b types.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
