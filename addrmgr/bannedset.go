// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// BannedSet tracks expiring bans (spec.md §3, §4.3). Expired entries are
// removed lazily: a ban is considered inactive once banned_until <= now,
// and IsBanned/Count both reclaim the entry's memory at that point rather
// than running a background sweep.
type BannedSet struct {
	mu      sync.RWMutex
	entries map[types.NodeId]BannedEntry
}

// NewBannedSet returns an empty BannedSet.
func NewBannedSet() *BannedSet {
	return &BannedSet{entries: make(map[types.NodeId]BannedEntry)}
}

// Ban records a ban for id until now+duration for reason. Per spec.md
// §8 invariant 9, reason must never be a stand-in for a failed signature
// check; callers enforce that by construction (BanReason has no
// InvalidSignature member), not by validation here.
func (s *BannedSet) Ban(id types.NodeId, now types.Timestamp, durationSecs uint64, reason BanReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = BannedEntry{
		NodeId:      id,
		BannedUntil: now + types.Timestamp(durationSecs),
		Reason:      reason,
	}
}

// IsBanned reports whether id has an active ban as of now, lazily
// reclaiming the entry if it has expired.
func (s *BannedSet) IsBanned(id types.NodeId, now types.Timestamp) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return false
	}
	if entry.BannedUntil <= now {
		delete(s.entries, id)
		return false
	}
	return true
}

// Unban removes any ban entry for id unconditionally.
func (s *BannedSet) Unban(id types.NodeId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Count returns the number of active bans as of now, reclaiming any
// expired entries it passes over.
func (s *BannedSet) Count(now types.Timestamp) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, e := range s.entries {
		if e.BannedUntil <= now {
			delete(s.entries, id)
			continue
		}
		n++
	}
	return n
}
