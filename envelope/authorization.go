// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package envelope

import "github.com/NerfedChou/Quantum-Chain-sub004/types"

// AuthorizationRule describes who may send a given message type and
// whether that message type requires a reply_to (spec.md §4.2 rule 7,
// §6's authorization matrix).
type AuthorizationRule struct {
	AllowedSenders  []types.SubsystemId
	RequiresReplyTo bool
}

func (r AuthorizationRule) allows(sender types.SubsystemId) bool {
	for _, s := range r.AllowedSenders {
		if s == sender {
			return true
		}
	}
	return false
}

// AuthorizationTable is the closed per-message-type allow-list. The zero
// value has no rules; use NewDefaultAuthorizationTable for the matrix
// enumerated in spec.md §6.
type AuthorizationTable struct {
	rules map[string]AuthorizationRule
}

// NewAuthorizationTable returns an empty table; callers add rules with
// Register. Unregistered message types are rejected by Verify with
// ErrUnauthorizedSender - there is no implicit default-allow.
func NewAuthorizationTable() *AuthorizationTable {
	return &AuthorizationTable{rules: make(map[string]AuthorizationRule)}
}

// Register adds or replaces the authorization rule for messageType.
func (t *AuthorizationTable) Register(messageType string, rule AuthorizationRule) {
	t.rules[messageType] = rule
}

// Lookup returns the rule for messageType, if one is registered.
func (t *AuthorizationTable) Lookup(messageType string) (AuthorizationRule, bool) {
	r, ok := t.rules[messageType]
	return r, ok
}

// NewDefaultAuthorizationTable builds the authorization matrix excerpt
// enumerated in spec.md §6, extended with the full reserved-subsystem set
// this repo's components need.
func NewDefaultAuthorizationTable() *AuthorizationTable {
	t := NewAuthorizationTable()
	t.Register("VerifyNodeIdentity", AuthorizationRule{
		AllowedSenders:  []types.SubsystemId{types.SubsystemPeerDiscovery},
		RequiresReplyTo: true,
	})
	t.Register("NodeIdentityVerified", AuthorizationRule{
		AllowedSenders: []types.SubsystemId{types.SubsystemSignatureVerification},
	})
	t.Register("BlockValidated", AuthorizationRule{
		AllowedSenders: []types.SubsystemId{types.SubsystemConsensus},
	})
	t.Register("MerkleRootComputed", AuthorizationRule{
		AllowedSenders: []types.SubsystemId{types.SubsystemTxIndexing},
	})
	t.Register("StateRootComputed", AuthorizationRule{
		AllowedSenders: []types.SubsystemId{types.SubsystemState},
	})
	t.Register("BlockFinalized", AuthorizationRule{
		AllowedSenders: []types.SubsystemId{types.SubsystemBlockStorage, types.SubsystemFinality},
	})
	t.Register("AddTransactionRequest", AuthorizationRule{
		AllowedSenders:  []types.SubsystemId{types.SubsystemSignatureVerification},
		RequiresReplyTo: true,
	})
	t.Register("GetTransactionsRequest", AuthorizationRule{
		AllowedSenders:  []types.SubsystemId{types.SubsystemConsensus},
		RequiresReplyTo: true,
	})
	t.Register("ProposeTransactionsRequest", AuthorizationRule{
		AllowedSenders:  []types.SubsystemId{types.SubsystemConsensus},
		RequiresReplyTo: true,
	})
	t.Register("ConfirmInclusionRequest", AuthorizationRule{
		AllowedSenders:  []types.SubsystemId{types.SubsystemBlockStorage},
		RequiresReplyTo: true,
	})
	t.Register("RollbackProposalRequest", AuthorizationRule{
		AllowedSenders:  []types.SubsystemId{types.SubsystemBlockStorage, types.SubsystemConsensus},
		RequiresReplyTo: true,
	})
	t.Register("PeerListRequest", AuthorizationRule{
		AllowedSenders: []types.SubsystemId{
			types.SubsystemPropagation,
			types.SubsystemFilters,
			13,
		},
		RequiresReplyTo: true,
	})
	return t
}
