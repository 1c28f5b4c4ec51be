// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import "github.com/NerfedChou/Quantum-Chain-sub004/types"

// PendingInsertion tracks a candidate peer waiting on the Eviction-on-
// Failure challenge result for a full bucket (spec.md §3, §4.3).
type PendingInsertion struct {
	Candidate        PeerInfo
	ChallengedPeerId types.NodeId
	ChallengeSentAt  types.Timestamp
	ChallengeDeadline types.Timestamp
}

// KBucket is an ordered list of at most K peers at one XOR-distance
// bucket index. Front is least-recently-seen; tail is most-recently-seen
// (spec.md §4.3).
type KBucket struct {
	peers            []PeerInfo
	lastUpdated      types.Timestamp
	pendingInsertion *PendingInsertion
}

func newKBucket() *KBucket {
	return &KBucket{}
}

// indexOf returns the slice index of id within the bucket, or -1.
func (b *KBucket) indexOf(id types.NodeId) int {
	for i, p := range b.peers {
		if p.NodeId == id {
			return i
		}
	}
	return -1
}

// len returns the number of peers currently held.
func (b *KBucket) len() int { return len(b.peers) }

// front returns the least-recently-seen peer, panicking if empty; callers
// must check len() > 0 first.
func (b *KBucket) front() PeerInfo { return b.peers[0] }

// touchLocked moves the peer at idx to the tail and updates its
// last-seen/ bucket last-updated stamps. Callers must hold the table
// lock.
func (b *KBucket) touchLocked(idx int, now types.Timestamp) {
	p := b.peers[idx]
	p.LastSeen = now
	b.peers = append(b.peers[:idx], b.peers[idx+1:]...)
	b.peers = append(b.peers, p)
	b.lastUpdated = now
}

// appendLocked adds a new peer at the tail (most-recently-seen position).
func (b *KBucket) appendLocked(p PeerInfo, now types.Timestamp) {
	b.peers = append(b.peers, p)
	b.lastUpdated = now
}

// evictFrontInsertLocked replaces the front (challenged, unresponsive)
// peer with candidate at the tail, implementing Eviction-on-Failure.
func (b *KBucket) evictFrontInsertLocked(candidate PeerInfo, now types.Timestamp) {
	if len(b.peers) > 0 {
		b.peers = b.peers[1:]
	}
	b.peers = append(b.peers, candidate)
	b.lastUpdated = now
}

// removeLocked deletes the peer at idx (used by ban/explicit removal).
func (b *KBucket) removeLocked(idx int) {
	b.peers = append(b.peers[:idx], b.peers[idx+1:]...)
}

// countSubnet returns how many peers in the bucket share subnetKey's
// value for the given prefix length.
func (b *KBucket) countSubnet(key string, prefixBits int) int {
	n := 0
	for _, p := range b.peers {
		if subnetKey(p.SocketAddr, prefixBits) == key {
			n++
		}
	}
	return n
}
