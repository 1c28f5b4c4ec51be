// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "github.com/NerfedChou/Quantum-Chain-sub004/types"

// TxState is MempoolTx's two-phase-commit lifecycle state (spec.md §3,
// §4.7, glossary "Two-Phase Commit"). CONFIRMED is not a tracked state:
// a confirmed transaction is removed from the pool outright (spec.md
// §4.7 "confirm_inclusion... Permanently removes from the pool").
type TxState int

const (
	// StatePending is the transaction's default, reproposable state.
	StatePending TxState = iota
	// StatePendingInclusion means a block proposal (Phase 1) has
	// claimed this transaction; it is held out of further proposals
	// until ConfirmInclusion (Phase 2a) or RollbackProposal (Phase 2b).
	StatePendingInclusion
)

// String renders the state for logging.
func (s TxState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StatePendingInclusion:
		return "PENDING_INCLUSION"
	default:
		return "UNKNOWN"
	}
}

// Tx is the MempoolTx entity (spec.md §3). Hash is unique across the
// pool; Sender+Nonce pairs are expected to form a dense, non-decreasing
// sequence per sender (enforced by Pool.AddTransaction).
type Tx struct {
	Hash       types.Hash
	Sender     types.Address
	Nonce      uint64
	GasPrice   uint64
	GasLimit   uint64
	Value      uint64
	State      TxState
	ReceivedAt types.Timestamp

	// ProposedAt and ProposedHeight are set when the tx transitions to
	// PENDING_INCLUSION, and consulted by CleanupTimeouts against
	// InclusionTimeoutSecs (spec.md §4.7 "Timeouts").
	ProposedAt     types.Timestamp
	ProposedHeight uint64
}

// lessPriority reports whether a orders before b under the greedy
// ordering key: descending gas price, tie-broken by ascending hash (SPEC_FULL.md Open Question 3 decision).
func lessPriority(a, b *Tx) bool {
	if a.GasPrice != b.GasPrice {
		return a.GasPrice > b.GasPrice
	}
	for i := range a.Hash {
		if a.Hash[i] != b.Hash[i] {
			return a.Hash[i] < b.Hash[i]
		}
	}
	return false
}
