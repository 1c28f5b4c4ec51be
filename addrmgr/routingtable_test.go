// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

func mkNodeId(b byte) types.NodeId {
	var id types.NodeId
	id[len(id)-1] = b
	return id
}

func mkPeer(b byte, ip string) PeerInfo {
	return PeerInfo{NodeId: mkNodeId(b), SocketAddr: net.ParseIP(ip), Port: 8080}
}

// TestEvictionOnFailureChallengeSuccess exercises spec.md §8 scenario S2:
// K=3, bucket full with {A,B,C}; D arrives; A answers before deadline ->
// bucket becomes {B,C,A} and D is rejected.
func TestEvictionOnFailureChallengeSuccess(t *testing.T) {
	local := mkNodeId(0)
	cfg := TestConfig() // K=3
	clock := ports.NewMockClock(1000)
	rt := NewRoutingTable(local, cfg, clock)

	// 4,5,6,7 all share the same highest-set-bit position (bit 2) in their
	// XOR distance from the zero local id, so they land in one bucket.
	a, b, c := mkPeer(4, "10.0.0.1"), mkPeer(5, "10.0.1.1"), mkPeer(6, "10.0.2.1")
	d := mkPeer(7, "10.0.3.1")
	// Distinct subnets so subnet diversity never interferes below.

	for _, p := range []PeerInfo{a, b, c} {
		outcome, _, err := rt.Insert(p, clock.Now())
		if err != nil || outcome != InsertOutcomeAppended {
			t.Fatalf("seed insert failed: outcome=%v err=%v", outcome, err)
		}
	}

	outcome, challenged, err := rt.Insert(d, clock.Now())
	if err != nil {
		t.Fatalf("insert d: %v", err)
	}
	if outcome != InsertOutcomeChallengeStarted {
		t.Fatalf("expected challenge started, got %v", outcome)
	}
	if challenged != a.NodeId {
		t.Fatalf("expected A (front) to be challenged, got %s", challenged)
	}

	// A answers before the deadline.
	rt.ResolveChallengeByActivity(a.NodeId, clock.Now()+1)

	closest := rt.FindClosest(local, 10)
	if len(closest) != 3 {
		t.Fatalf("expected 3 peers (D rejected), got %d", len(closest))
	}
	for _, p := range closest {
		if p.NodeId == d.NodeId {
			t.Fatalf("D should have been rejected, found in table")
		}
	}
}

// TestEvictionOnFailureChallengeTimeout is the other half of S2: A never
// answers, so after the deadline the bucket becomes {B,C,D}.
func TestEvictionOnFailureChallengeTimeout(t *testing.T) {
	local := mkNodeId(0)
	cfg := TestConfig()
	clock := ports.NewMockClock(1000)
	rt := NewRoutingTable(local, cfg, clock)

	// 4,5,6,7 all share the same highest-set-bit position (bit 2) in their
	// XOR distance from the zero local id, so they land in one bucket.
	a, b, c := mkPeer(4, "10.0.0.1"), mkPeer(5, "10.0.1.1"), mkPeer(6, "10.0.2.1")
	d := mkPeer(7, "10.0.3.1")
	for _, p := range []PeerInfo{a, b, c} {
		if _, _, err := rt.Insert(p, clock.Now()); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
	if _, _, err := rt.Insert(d, clock.Now()); err != nil {
		t.Fatalf("insert d: %v", err)
	}

	clock.Advance(int64(cfg.EvictionChallengeTimeoutSecs) + 1)
	evicted := rt.ProcessTimeouts(clock.Now())
	if len(evicted) != 1 || evicted[0].NodeId != a.NodeId {
		t.Fatalf("expected A evicted, got %+v", evicted)
	}

	ids := map[types.NodeId]bool{}
	for _, p := range rt.FindClosest(local, 10) {
		ids[p.NodeId] = true
	}
	if ids[a.NodeId] {
		t.Fatalf("A should have been evicted")
	}
	if !ids[d.NodeId] {
		t.Fatalf("D should have been admitted")
	}
	if !ids[b.NodeId] || !ids[c.NodeId] {
		t.Fatalf("B and C should remain")
	}
}

// TestStagingTailDrop exercises spec.md §8 scenario S3.
func TestStagingTailDrop(t *testing.T) {
	local := mkNodeId(0)
	cfg := DefaultConfig()
	cfg.MaxPendingPeers = 10
	clock := ports.NewMockClock(1000)
	rt := NewRoutingTable(local, cfg, clock)

	for i := byte(1); i <= 10; i++ {
		p := mkPeer(i, "10.0.1.1")
		if err := rt.Stage(p, clock.Now()); err != nil {
			t.Fatalf("stage %d: %v", i, err)
		}
	}
	if rt.PendingCount() != 10 {
		t.Fatalf("expected 10 staged, got %d", rt.PendingCount())
	}

	eleventh := mkPeer(11, "10.0.1.1")
	err := rt.Stage(eleventh, clock.Now())
	if !errors.Is(err, ErrStagingAreaFull) {
		t.Fatalf("expected ErrStagingAreaFull, got %v", err)
	}
	if rt.PendingCount() != 10 {
		t.Fatalf("staging count changed after rejected stage: %d", rt.PendingCount())
	}
}

// TestStageIdempotence exercises the round-trip law:
// `add_peer(p); add_peer(p)` while staged yields one staged entry with
// an unchanged deadline.
func TestStageIdempotence(t *testing.T) {
	local := mkNodeId(0)
	clock := ports.NewMockClock(1000)
	rt := NewRoutingTable(local, DefaultConfig(), clock)
	p := mkPeer(1, "10.0.0.1")

	if err := rt.Stage(p, clock.Now()); err != nil {
		t.Fatal(err)
	}
	clock.Advance(1)
	if err := rt.Stage(p, clock.Now()); err != nil {
		t.Fatal(err)
	}
	if rt.PendingCount() != 1 {
		t.Fatalf("expected 1 staged entry, got %d", rt.PendingCount())
	}
	rt.mu.Lock()
	deadline := rt.pending[p.NodeId].VerificationDeadline
	rt.mu.Unlock()
	if deadline != 1000+types.Timestamp(DefaultConfig().VerificationTimeoutSecs) {
		t.Fatalf("deadline should be preserved from first stage, got %d", deadline)
	}
}

func TestSilentDropNeverBans(t *testing.T) {
	local := mkNodeId(0)
	clock := ports.NewMockClock(1000)
	rt := NewRoutingTable(local, DefaultConfig(), clock)
	p := mkPeer(1, "10.0.0.1")
	if err := rt.Stage(p, clock.Now()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := rt.ApplyVerificationOutcome(p.NodeId, false, clock.Now()); err != nil {
		t.Fatalf("unexpected error on silent drop: %v", err)
	}
	if rt.IsBanned(p.NodeId, clock.Now()) {
		t.Fatalf("silent drop must never ban")
	}
	if rt.PendingCount() != 0 {
		t.Fatalf("peer should be removed from staging")
	}
}

func TestTouchIdempotentOrdering(t *testing.T) {
	local := mkNodeId(0)
	clock := ports.NewMockClock(1000)
	rt := NewRoutingTable(local, DefaultConfig(), clock)
	a, b := mkPeer(1, "10.0.0.1"), mkPeer(2, "10.0.2.1")
	rt.Insert(a, clock.Now())
	rt.Insert(b, clock.Now())

	if err := rt.Touch(a.NodeId, clock.Now()); err != nil {
		t.Fatal(err)
	}
	firstOrder := rt.FindClosest(local, 10)
	if err := rt.Touch(a.NodeId, clock.Now()); err != nil {
		t.Fatal(err)
	}
	secondOrder := rt.FindClosest(local, 10)
	if len(firstOrder) != len(secondOrder) {
		t.Fatalf("peer count changed across idempotent touch")
	}
	for i := range firstOrder {
		if firstOrder[i].NodeId != secondOrder[i].NodeId {
			t.Fatalf("peer order changed across idempotent touch at %d", i)
		}
	}
}

func TestBanRemovesFromBucketAndStaging(t *testing.T) {
	local := mkNodeId(0)
	clock := ports.NewMockClock(1000)
	rt := NewRoutingTable(local, DefaultConfig(), clock)
	p := mkPeer(1, "10.0.0.1")
	rt.Insert(p, clock.Now())

	rt.Ban(p.NodeId, clock.Now(), 3600, BanReasonManualBan)
	if !rt.IsBanned(p.NodeId, clock.Now()) {
		t.Fatalf("expected ban to be active")
	}
	for _, peer := range rt.FindClosest(local, 100) {
		if peer.NodeId == p.NodeId {
			t.Fatalf("banned peer should be removed from bucket")
		}
	}

	q := mkPeer(2, "10.0.2.1")
	if err := rt.Stage(q, clock.Now()); err != nil {
		t.Fatalf("Stage: %v", err)
	}
	rt.Ban(q.NodeId, clock.Now(), 3600, BanReasonManualBan)
	if rt.PendingCount() != 0 {
		t.Fatalf("banned peer should be removed from staging")
	}
}

func TestRandomPeersReproducibleGivenRNG(t *testing.T) {
	local := mkNodeId(0)
	clock := ports.NewMockClock(1000)
	rt := NewRoutingTable(local, DefaultConfig(), clock)
	for i := byte(1); i <= 20; i++ {
		ip := fmt.Sprintf("10.1.%d.1", i)
		rt.Insert(mkPeer(i, ip), clock.Now())
	}

	r1 := rt.RandomPeers(5, ports.NewSeededRandom(42))
	r2 := rt.RandomPeers(5, ports.NewSeededRandom(42))
	if len(r1) != len(r2) {
		t.Fatalf("length mismatch")
	}
	for i := range r1 {
		if r1[i].NodeId != r2[i].NodeId {
			t.Fatalf("same seed should yield same sample")
		}
	}
}
