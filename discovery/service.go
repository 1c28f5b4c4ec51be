// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package discovery implements PeerDiscoveryService (spec.md §4.4,
// component C5): the orchestration layer in front of the Kademlia routing
// table (addrmgr) that turns untrusted bootstrap requests into staged
// candidates, delegates identity verification to the signature-
// verification subsystem over the event bus, and applies the verification
// outcome back onto the routing table.
package discovery

import (
	"github.com/NerfedChou/Quantum-Chain-sub004/addrmgr"
	"github.com/NerfedChou/Quantum-Chain-sub004/cryptoprimitives"
	"github.com/NerfedChou/Quantum-Chain-sub004/envelope"
	"github.com/NerfedChou/Quantum-Chain-sub004/eventbus"
	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
	"github.com/NerfedChou/Quantum-Chain-sub004/pow"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// Config carries Service's construction-time dependencies, all ports so
// the service is deterministically testable (spec.md §4.4: "a
// deterministic injected TimeSource and RandomSource back all time- and
// randomness-dependent behavior").
type Config struct {
	SelfId       types.SubsystemId
	RoutingTable *addrmgr.RoutingTable
	Verifier     *envelope.Verifier
	Bus          *eventbus.Bus
	PowValidator *pow.Validator
	SigVerifier  cryptoprimitives.SignatureVerifier
	Hasher       cryptoprimitives.Hasher

	// SelfTopic is the event-bus topic this service listens on for
	// inbound NodeIdentityVerified envelopes addressed to it.
	SelfTopic string
	// SignatureVerificationTopic is the topic VerifyNodeIdentity requests
	// are published to.
	SignatureVerificationTopic string
}

// Service is the PeerDiscoveryService orchestrator.
type Service struct {
	cfg Config
}

// New constructs a Service and subscribes it to cfg.SelfTopic for inbound
// NodeIdentityVerified envelopes.
func New(cfg Config) *Service {
	s := &Service{cfg: cfg}
	cfg.Bus.Subscribe(cfg.SelfTopic, s.handleInbound)
	return s
}

// AddPeer processes an untrusted bootstrap request (spec.md §4.4, §6
// scenario S1): it applies the ban check, the proof-of-identity check
// (proof of work plus the claimed_pubkey/signature pair), and the subnet
// check, then stages the candidate and publishes a VerifyNodeIdentity
// request with a fresh correlation id.
func (s *Service) AddPeer(req BootstrapRequest, now types.Timestamp) BootstrapOutcome {
	if s.cfg.RoutingTable.IsBanned(req.NodeId, now) {
		return BootstrapOutcome{Kind: OutcomeBanned}
	}

	if !s.verifyIdentityProof(req) {
		return BootstrapOutcome{Kind: OutcomeInvalidProofOfWork}
	}

	peer := addrmgr.PeerInfo{
		NodeId:     req.NodeId,
		SocketAddr: parseIP(req.SocketAddr),
		Port:       req.Port,
		LastSeen:   now,
	}
	if s.cfg.RoutingTable.WouldExceedSubnetLimit(peer) {
		return BootstrapOutcome{Kind: OutcomeSubnetLimitReached}
	}

	if err := s.cfg.RoutingTable.Stage(peer, now); err != nil {
		if isKind(err, addrmgr.ErrStagingAreaFull) {
			return BootstrapOutcome{Kind: OutcomeStagingFull}
		}
		if isKind(err, addrmgr.ErrPeerBanned) {
			return BootstrapOutcome{Kind: OutcomeBanned}
		}
		// SelfConnection and any other staging rejection are reported as
		// OutcomeInvalidProofOfWork.
		return BootstrapOutcome{Kind: OutcomeInvalidProofOfWork}
	}

	correlationId := types.NewCorrelationId()
	env := &envelope.Envelope{
		Version:       envelope.CurrentVersion,
		SenderId:      s.cfg.SelfId,
		RecipientId:   types.SubsystemSignatureVerification,
		CorrelationId: correlationId,
		Timestamp:     now,
		MessageType:   "VerifyNodeIdentity",
		Payload:       encodeVerifyNodeIdentity(req.NodeId, req.ClaimedPubkey, req.Signature),
	}
	fillNonce(env)
	if err := s.cfg.Verifier.Sign(env); err != nil {
		log.Errorf("failed signing VerifyNodeIdentity for %s: %v", req.NodeId, err)
		return BootstrapOutcome{Kind: OutcomeInvalidProofOfWork}
	}
	s.cfg.Bus.Publish(s.cfg.SignatureVerificationTopic, env)

	return BootstrapOutcome{Kind: OutcomePendingVerification, CorrelationId: correlationId}
}

// verifyIdentityProof checks both halves of a bootstrap request's proof
// of identity: the SHA-256 proof-of-work binding (spec.md §4.1, §8 S1)
// and the claimed_pubkey/signature pair over node_id.
func (s *Service) verifyIdentityProof(req BootstrapRequest) bool {
	if !s.cfg.PowValidator.Validate(req.NodeId, req.ProofOfWork) {
		return false
	}
	digest := s.cfg.Hasher.Sum256(req.NodeId[:])
	return s.cfg.SigVerifier.Verify(req.ClaimedPubkey[:], digest, req.Signature[:])
}

// handleInbound is the event-bus subscriber for NodeIdentityVerified
// envelopes. It verifies the envelope (enforcing sender authorization =
// subsystem 10) before applying the outcome to the routing table.
func (s *Service) handleInbound(env *envelope.Envelope) {
	result := s.cfg.Verifier.Verify(env, "NodeIdentityVerified")
	if !result.Valid {
		return
	}
	nodeID, identityValid, err := decodeNodeIdentityVerified(env.Payload)
	if err != nil {
		log.Debugf("malformed NodeIdentityVerified payload: %v", err)
		return
	}
	now := env.Timestamp
	if _, _, err := s.cfg.RoutingTable.ApplyVerificationOutcome(nodeID, identityValid, now); err != nil {
		log.Debugf("ApplyVerificationOutcome(%s): %v", nodeID, err)
	}
}

// FindClosestPeers returns the count peers closest to target.
func (s *Service) FindClosestPeers(target types.NodeId, count int) []addrmgr.PeerInfo {
	return s.cfg.RoutingTable.FindClosest(target, count)
}

// GetRandomPeers samples count peers uniformly without replacement using
// rng, which must be reproducible for the result to be reproducible
// (spec.md §4.3: "the algorithm must be reproducible given the RNG").
func (s *Service) GetRandomPeers(count int, rng ports.RandomSource) []addrmgr.PeerInfo {
	return s.cfg.RoutingTable.RandomPeers(count, rng)
}

// BanPeer bans id for durationSecs under reason.
func (s *Service) BanPeer(id types.NodeId, now types.Timestamp, durationSecs uint64, reason addrmgr.BanReason) {
	s.cfg.RoutingTable.Ban(id, now, durationSecs, reason)
}

// IsBanned reports whether id currently has an active ban.
func (s *Service) IsBanned(id types.NodeId, now types.Timestamp) bool {
	return s.cfg.RoutingTable.IsBanned(id, now)
}

// TouchPeer moves id to the tail of its bucket.
func (s *Service) TouchPeer(id types.NodeId, now types.Timestamp) error {
	return s.cfg.RoutingTable.Touch(id, now)
}

// RemovePeer removes id from its bucket; a pending challenge naming id is
// left in place.
func (s *Service) RemovePeer(id types.NodeId) error {
	return s.cfg.RoutingTable.RemovePeer(id)
}

// GetStats returns the routing table's current statistics.
func (s *Service) GetStats(now types.Timestamp) addrmgr.Stats {
	return s.cfg.RoutingTable.Stats(now)
}

func isKind(err error, kind addrmgr.ErrorKind) bool {
	ae, ok := err.(*addrmgr.Error)
	return ok && ae.Kind == kind
}
