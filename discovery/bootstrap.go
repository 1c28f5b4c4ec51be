// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import "github.com/NerfedChou/Quantum-Chain-sub004/types"

// BootstrapRequest is the ingress shape from an untrusted peer offering
// itself for admission (spec.md §4.1, §4.4). NodeId and SocketAddr/Port
// identify the candidate; ProofOfWork, ClaimedPubkey and Signature are
// its proof of identity: Signature must be a valid secp256k1 signature by
// ClaimedPubkey over NodeId, and SHA-256(NodeId || ProofOfWork) must clear
// the configured proof-of-work difficulty.
type BootstrapRequest struct {
	NodeId        types.NodeId
	SocketAddr    string
	Port          uint16
	ProofOfWork   [32]byte
	ClaimedPubkey [33]byte
	Signature     [64]byte
}

// BootstrapOutcomeKind is the closed set of results a BootstrapRequest can
// produce (spec.md §4.4).
type BootstrapOutcomeKind int

const (
	// OutcomePendingVerification means the candidate passed proof-of-work,
	// ban and subnet checks and now sits in staging awaiting the
	// signature-verification subsystem's response.
	OutcomePendingVerification BootstrapOutcomeKind = iota
	// OutcomeInvalidProofOfWork means SHA-256(node_id||proof_of_work) did
	// not clear the configured difficulty, or the claimed_pubkey/signature
	// pair did not verify. AddPeer also reports a self-connection, any
	// other staging rejection, and a failure to sign the outbound
	// VerifyNodeIdentity envelope with this outcome.
	OutcomeInvalidProofOfWork
	// OutcomeStagingFull means pending_verification was already at
	// max_pending_peers.
	OutcomeStagingFull
	// OutcomeBanned means node_id currently has an active ban entry.
	OutcomeBanned
	// OutcomeSubnetLimitReached means the candidate's subnet already has
	// max_peers_per_subnet peers in its target bucket.
	OutcomeSubnetLimitReached
)

// String renders the outcome kind for logging.
func (k BootstrapOutcomeKind) String() string {
	switch k {
	case OutcomePendingVerification:
		return "PendingVerification"
	case OutcomeInvalidProofOfWork:
		return "InvalidProofOfWork"
	case OutcomeStagingFull:
		return "StagingFull"
	case OutcomeBanned:
		return "Banned"
	case OutcomeSubnetLimitReached:
		return "SubnetLimitReached"
	default:
		return "Unknown"
	}
}

// BootstrapOutcome is the structured result of AddPeer.
type BootstrapOutcome struct {
	Kind          BootstrapOutcomeKind
	CorrelationId types.CorrelationId
}
