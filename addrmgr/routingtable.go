// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr implements the Kademlia routing table core: 256
// k-buckets keyed by XOR-distance bucket index, a Memory-Bomb-Defended
// staging area for peers awaiting identity verification, and the
// Eviction-on-Failure challenge policy that defends full buckets against
// eclipse attacks (spec.md §4.3). The package name and the overall
// "table owns buckets and staging, peers are referenced by id" shape
// follow the teacher's addrmgr package; the Kademlia bucket/XOR-distance
// semantics themselves are new, since the teacher's own address manager
// predates Kademlia in this corpus.
package addrmgr

import (
	"sort"
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// maxTotalPeers bounds the sum of every bucket's occupancy
// (numBuckets * K at the default configuration).
func maxTotalPeers(cfg Config) int { return numBuckets * cfg.K }

// InsertOutcome reports what Insert actually did, since a full bucket
// starts an asynchronous challenge rather than completing synchronously.
type InsertOutcome int

const (
	// InsertOutcomeTouched means the peer already occupied its bucket and
	// was moved to the tail.
	InsertOutcomeTouched InsertOutcome = iota
	// InsertOutcomeAppended means the peer was added directly because its
	// bucket had spare capacity.
	InsertOutcomeAppended
	// InsertOutcomeChallengeStarted means the bucket was full and a
	// liveness challenge was issued to the bucket's least-recently-seen
	// peer; the candidate is not yet admitted. Callers must publish a
	// liveness PING to ChallengedPeerId.
	InsertOutcomeChallengeStarted
)

// RoutingTable is a 256-bucket Kademlia table with staging (spec.md §4.3,
// §4.4). All mutation goes through a single writer lock; pure reads
// (FindClosest, Stats) share the same lock since the bucket slices are
// not safe for lock-free concurrent mutation - matching spec.md §5's
// "single writer lock... reader lock or snapshot for pure reads" model,
// collapsed to one mutex since bucket counts are small (K<=20) and reads
// are O(numBuckets*K) at worst, not a contended hot path.
type RoutingTable struct {
	mu          sync.Mutex
	localNodeId types.NodeId
	buckets     [numBuckets]*KBucket
	banned      *BannedSet
	pending     map[types.NodeId]*PendingPeer
	cfg         Config
	clock       ports.TimeSource
}

// NewRoutingTable constructs an empty table for localNodeId.
func NewRoutingTable(localNodeId types.NodeId, cfg Config, clock ports.TimeSource) *RoutingTable {
	t := &RoutingTable{
		localNodeId: localNodeId,
		banned:      NewBannedSet(),
		pending:     make(map[types.NodeId]*PendingPeer),
		cfg:         cfg,
		clock:       clock,
	}
	for i := range t.buckets {
		t.buckets[i] = newKBucket()
	}
	return t
}

// ---------------------------------------------------------------------
// Staging (Memory-Bomb Defense)
// ---------------------------------------------------------------------

// Stage places a newly-seen peer into the pending_verification staging
// area, per spec.md §4.3/§4.4. Duplicate staging requests for the same
// NodeId are idempotent: the first accepted attempt's deadline is
// preserved (spec.md §5 ordering guarantees), matching the round-trip law
// `add_peer(p); add_peer(p)` yielding one staged entry.
func (t *RoutingTable) Stage(peer PeerInfo, now types.Timestamp) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if peer.NodeId == t.localNodeId {
		return newErr(ErrSelfConnection, "cannot stage local node id")
	}
	if t.banned.IsBanned(peer.NodeId, now) {
		return newErr(ErrPeerBanned, "node %s is banned", peer.NodeId)
	}
	if _, already := t.pending[peer.NodeId]; already {
		// Idempotent: leave the existing entry (and its deadline) alone.
		return nil
	}
	if idx := t.bucketFor(peer.NodeId); idx >= 0 && t.buckets[idx].indexOf(peer.NodeId) >= 0 {
		// Already a verified, promoted peer; nothing to stage.
		return nil
	}
	if len(t.pending) >= t.cfg.MaxPendingPeers {
		return newErr(ErrStagingAreaFull, "staging area at capacity (%d)", t.cfg.MaxPendingPeers)
	}
	t.pending[peer.NodeId] = &PendingPeer{
		PeerInfo:             peer,
		ReceivedAt:           now,
		VerificationDeadline: now + types.Timestamp(t.cfg.VerificationTimeoutSecs),
	}
	return nil
}

// ApplyVerificationOutcome applies the result of an authenticated
// NodeIdentityVerified event from subsystem 10 (spec.md §4.3): a valid
// identity is promoted via the normal Insertion rules; an invalid one is
// silently dropped from staging without a ban (spec.md §7, §8 invariant
// 9). Returns ErrPeerNotFound if the node is not currently staged (it may
// already have expired).
func (t *RoutingTable) ApplyVerificationOutcome(id types.NodeId, identityValid bool, now types.Timestamp) (InsertOutcome, types.NodeId, error) {
	t.mu.Lock()
	pending, ok := t.pending[id]
	if !ok {
		t.mu.Unlock()
		return 0, types.NodeId{}, newErr(ErrPeerNotFound, "node %s is not staged", id)
	}
	delete(t.pending, id)
	t.mu.Unlock()

	if !identityValid {
		// Silent drop: no error event, no ban. See BanReason's doc comment
		// in peer.go on why InvalidSignature can never become a BanReason.
		log.Debugf("silently dropping staged peer %s: identity invalid", id)
		return 0, types.NodeId{}, nil
	}
	return t.Insert(pending.PeerInfo, now)
}

// ExpireStaged removes staged peers whose verification_deadline has
// passed and returns them for event emission by the caller.
func (t *RoutingTable) ExpireStaged(now types.Timestamp) []PendingPeer {
	t.mu.Lock()
	defer t.mu.Unlock()
	var expired []PendingPeer
	for id, p := range t.pending {
		if now >= p.VerificationDeadline {
			expired = append(expired, *p)
			delete(t.pending, id)
		}
	}
	return expired
}

// PendingCount returns the current staging area size.
func (t *RoutingTable) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// ---------------------------------------------------------------------
// Insertion and Eviction-on-Failure
// ---------------------------------------------------------------------

// bucketFor returns the bucket index for id relative to the table's
// local node id, or -1 for the self id.
func (t *RoutingTable) bucketFor(id types.NodeId) int {
	idx, ok := bucketIndex(xorDistance(t.localNodeId, id))
	if !ok {
		return -1
	}
	return idx
}

// WouldExceedSubnetLimit reports whether p's subnet already has
// max_peers_per_subnet peers in the bucket p would land in, without
// mutating the table. PeerDiscoveryService uses this to reject a
// bootstrap request before it consumes staging capacity, ahead of the
// same check Insert repeats at promotion time.
func (t *RoutingTable) WouldExceedSubnetLimit(p PeerInfo) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.bucketFor(p.NodeId)
	if idx < 0 {
		return false
	}
	bucket := t.buckets[idx]
	key := subnetKey(p.SocketAddr, t.cfg.SubnetMaskBits)
	return bucket.countSubnet(key, t.cfg.SubnetMaskBits) >= t.cfg.MaxPeersPerSubnet
}

// Insert applies the Insertion rules of spec.md §4.3 to a verified peer.
func (t *RoutingTable) Insert(p PeerInfo, now types.Timestamp) (InsertOutcome, types.NodeId, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertLocked(p, now)
}

func (t *RoutingTable) insertLocked(p PeerInfo, now types.Timestamp) (InsertOutcome, types.NodeId, error) {
	if p.NodeId == t.localNodeId {
		return 0, types.NodeId{}, newErr(ErrSelfConnection, "cannot insert local node id")
	}
	if t.banned.IsBanned(p.NodeId, now) {
		return 0, types.NodeId{}, newErr(ErrPeerBanned, "node %s is banned", p.NodeId)
	}
	idx := t.bucketFor(p.NodeId)
	bucket := t.buckets[idx]

	t.resolveChallengeTimeoutLocked(bucket, now)

	if existing := bucket.indexOf(p.NodeId); existing >= 0 {
		bucket.touchLocked(existing, now)
		return InsertOutcomeTouched, types.NodeId{}, nil
	}

	key := subnetKey(p.SocketAddr, t.cfg.SubnetMaskBits)
	if bucket.countSubnet(key, t.cfg.SubnetMaskBits) >= t.cfg.MaxPeersPerSubnet {
		return 0, types.NodeId{}, newErr(ErrSubnetLimitReached,
			"subnet %s already has %d peers in bucket", key, t.cfg.MaxPeersPerSubnet)
	}

	if bucket.len() < t.cfg.K {
		bucket.appendLocked(p, now)
		return InsertOutcomeAppended, types.NodeId{}, nil
	}

	if bucket.pendingInsertion != nil {
		return 0, types.NodeId{}, newErr(ErrChallengeInProgress,
			"bucket already has a challenge in flight")
	}

	challenged := bucket.front()
	bucket.pendingInsertion = &PendingInsertion{
		Candidate:         p,
		ChallengedPeerId:  challenged.NodeId,
		ChallengeSentAt:   now,
		ChallengeDeadline: now + types.Timestamp(t.cfg.EvictionChallengeTimeoutSecs),
	}
	return InsertOutcomeChallengeStarted, challenged.NodeId, nil
}

// ResolveChallengeByActivity implements the "on PONG (or any authenticated
// activity) before the deadline" branch of Eviction-on-Failure: the
// candidate is rejected and the challenged peer, proven alive, is moved
// to the tail of its bucket. A no-op (not an error) if id is not
// currently the subject of a pending challenge - e.g. the challenge
// already timed out, or there never was one.
func (t *RoutingTable) ResolveChallengeByActivity(id types.NodeId, now types.Timestamp) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.bucketFor(id)
	if idx < 0 {
		return
	}
	bucket := t.buckets[idx]
	pi := bucket.pendingInsertion
	if pi == nil || pi.ChallengedPeerId != id || now > pi.ChallengeDeadline {
		return
	}
	if existing := bucket.indexOf(id); existing >= 0 {
		bucket.touchLocked(existing, now)
	}
	bucket.pendingInsertion = nil
}

// resolveChallengeTimeoutLocked evicts a challenged peer whose deadline
// has passed without a response, admitting the waiting candidate at the
// tail. Called lazily from Insert and Touch on the affected bucket (and
// for every bucket from ProcessTimeouts) so eviction is deadline-driven
// against the injected clock rather than dependent on a background
// ticker actually running.
func (t *RoutingTable) resolveChallengeTimeoutLocked(bucket *KBucket, now types.Timestamp) (evicted *PeerInfo) {
	pi := bucket.pendingInsertion
	if pi == nil || now < pi.ChallengeDeadline {
		return nil
	}
	bucket.pendingInsertion = nil
	if idx := bucket.indexOf(pi.ChallengedPeerId); idx >= 0 {
		p := bucket.peers[idx]
		evicted = &p
		bucket.removeLocked(idx)
	}
	if bucket.len() < t.cfg.K {
		bucket.appendLocked(pi.Candidate, now)
	}
	return evicted
}

// ProcessTimeouts sweeps every bucket's pending challenge for expiry and
// returns the peers evicted as a result, for event emission.
func (t *RoutingTable) ProcessTimeouts(now types.Timestamp) []PeerInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	var evicted []PeerInfo
	for _, b := range t.buckets {
		if p := t.resolveChallengeTimeoutLocked(b, now); p != nil {
			evicted = append(evicted, *p)
		}
	}
	return evicted
}

// ---------------------------------------------------------------------
// Touch, lookup, sampling
// ---------------------------------------------------------------------

// Touch moves id to the tail of its bucket and refreshes its last-seen
// stamp (spec.md §4.3). `touch(id); touch(id)` at the same now is
// idempotent in the resulting bucket order, since touchLocked always
// re-appends at the tail regardless of the prior position.
func (t *RoutingTable) Touch(id types.NodeId, now types.Timestamp) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.bucketFor(id)
	if idx < 0 {
		return newErr(ErrSelfConnection, "cannot touch local node id")
	}
	bucket := t.buckets[idx]
	t.resolveChallengeTimeoutLocked(bucket, now)
	existing := bucket.indexOf(id)
	if existing < 0 {
		return newErr(ErrPeerNotFound, "node %s not in routing table", id)
	}
	bucket.touchLocked(existing, now)
	return nil
}

// RemovePeer deletes id from its bucket, if present.
func (t *RoutingTable) RemovePeer(id types.NodeId) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.bucketFor(id)
	if idx < 0 {
		return newErr(ErrSelfConnection, "cannot remove local node id")
	}
	bucket := t.buckets[idx]
	existing := bucket.indexOf(id)
	if existing < 0 {
		return newErr(ErrPeerNotFound, "node %s not in routing table", id)
	}
	bucket.removeLocked(existing)
	return nil
}

type closestEntry struct {
	peer PeerInfo
	dist Distance
}

// FindClosest returns up to count peers ordered by ascending XOR distance
// to target, tie-breaking by lexicographic NodeId order (spec.md §4.3).
func (t *RoutingTable) FindClosest(target types.NodeId, count int) []PeerInfo {
	t.mu.Lock()
	all := make([]closestEntry, 0)
	for _, b := range t.buckets {
		for _, p := range b.peers {
			all = append(all, closestEntry{peer: p, dist: xorDistance(target, p.NodeId)})
		}
	}
	t.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if c := all[i].dist.Cmp(all[j].dist); c != 0 {
			return c < 0
		}
		return lessNodeId(all[i].peer.NodeId, all[j].peer.NodeId)
	})

	if count > len(all) {
		count = len(all)
	}
	out := make([]PeerInfo, count)
	for i := 0; i < count; i++ {
		out[i] = all[i].peer
	}
	return out
}

func lessNodeId(a, b types.NodeId) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// RandomPeers samples up to count peers uniformly without replacement,
// using the injected RandomSource so the result is reproducible given the
// RNG rather than dependent on map iteration order (spec.md §4.3). The
// base ordering (bucket index ascending, then bucket slice order) is
// itself deterministic, since peers live in slices, not maps.
func (t *RoutingTable) RandomPeers(count int, rng ports.RandomSource) []PeerInfo {
	t.mu.Lock()
	all := make([]PeerInfo, 0)
	for _, b := range t.buckets {
		all = append(all, b.peers...)
	}
	t.mu.Unlock()

	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if count > len(all) {
		count = len(all)
	}
	return all[:count]
}

// ---------------------------------------------------------------------
// Bans
// ---------------------------------------------------------------------

// Ban records a ban for id and immediately removes it from every bucket
// and from staging (spec.md §4.3).
func (t *RoutingTable) Ban(id types.NodeId, now types.Timestamp, durationSecs uint64, reason BanReason) {
	t.banned.Ban(id, now, durationSecs, reason)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
	if idx := t.bucketFor(id); idx >= 0 {
		b := t.buckets[idx]
		if existing := b.indexOf(id); existing >= 0 {
			b.removeLocked(existing)
		}
		if b.pendingInsertion != nil && b.pendingInsertion.Candidate.NodeId == id {
			b.pendingInsertion = nil
		}
	}
}

// IsBanned reports whether id currently has an active ban.
func (t *RoutingTable) IsBanned(id types.NodeId, now types.Timestamp) bool {
	return t.banned.IsBanned(id, now)
}

// ---------------------------------------------------------------------
// Statistics
// ---------------------------------------------------------------------

// Stats is a snapshot of routing-table occupancy (spec.md §4.3).
type Stats struct {
	TotalPeers            int
	BucketsUsed           int
	BannedCount           int
	StagingSize           int
	OldestPeerAgeSeconds  uint64
}

// Stats computes the current table statistics in O(numBuckets*K) time.
func (t *RoutingTable) Stats(now types.Timestamp) Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s Stats
	var oldest *types.Timestamp
	for _, b := range t.buckets {
		if b.len() == 0 {
			continue
		}
		s.BucketsUsed++
		s.TotalPeers += b.len()
		for _, p := range b.peers {
			if oldest == nil || p.LastSeen < *oldest {
				ls := p.LastSeen
				oldest = &ls
			}
		}
	}
	s.StagingSize = len(t.pending)
	s.BannedCount = t.banned.Count(now)
	if oldest != nil {
		s.OldestPeerAgeSeconds = uint64(now.Sub(*oldest))
	}
	return s
}
