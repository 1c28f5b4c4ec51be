// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"testing"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

func mkTxHash(b byte) types.Hash {
	var h types.Hash
	h[len(h)-1] = b
	return h
}

func mkAddr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

func mkTx(hash, sender byte, nonce, gasPrice uint64) *Tx {
	return &Tx{
		Hash:     mkTxHash(hash),
		Sender:   mkAddr(sender),
		Nonce:    nonce,
		GasPrice: gasPrice,
		GasLimit: 21000,
	}
}

// TestTwoPhaseCommitLifecycle exercises spec.md §8 scenario S7: three
// PENDING transactions t1,t2,t3; propose([t1,t2]) moves them to
// PENDING_INCLUSION; confirm_inclusion([t1,t2]) removes them;
// rollback_proposal([t3]) is a no-op since t3 was never proposed.
func TestTwoPhaseCommitLifecycle(t *testing.T) {
	pool, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t1, t2, t3 := mkTx(1, 1, 0, 10), mkTx(2, 1, 1, 10), mkTx(3, 2, 0, 5)
	for _, tx := range []*Tx{t1, t2, t3} {
		if err := pool.AddTransaction(tx, 1000); err != nil {
			t.Fatalf("AddTransaction(%s): %v", tx.Hash, err)
		}
	}

	if err := pool.ProposeTransactions([]types.Hash{t1.Hash, t2.Hash}, 1, 1000); err != nil {
		t.Fatalf("ProposeTransactions: %v", err)
	}
	st1, _ := pool.GetTransactionState(t1.Hash)
	if st1 != StatePendingInclusion {
		t.Fatalf("expected t1 PENDING_INCLUSION, got %s", st1)
	}

	if err := pool.ConfirmInclusion(1, mkTxHash(0xAB), []types.Hash{t1.Hash, t2.Hash}); err != nil {
		t.Fatalf("ConfirmInclusion: %v", err)
	}
	if pool.Contains(t1.Hash) || pool.Contains(t2.Hash) {
		t.Fatalf("expected t1, t2 removed after confirmation")
	}

	// t3 was never proposed; rollback must be a silent no-op.
	pool.RollbackProposal([]types.Hash{t3.Hash})
	st3, err := pool.GetTransactionState(t3.Hash)
	if err != nil || st3 != StatePending {
		t.Fatalf("expected t3 still PENDING, got %s err=%v", st3, err)
	}
}

func TestProposeTransactionsAllOrNothing(t *testing.T) {
	pool, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t1 := mkTx(1, 1, 0, 10)
	if err := pool.AddTransaction(t1, 1000); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	// t2 doesn't exist; the whole proposal must fail and t1 stays PENDING.
	err = pool.ProposeTransactions([]types.Hash{t1.Hash, mkTxHash(99)}, 1, 1000)
	if !errors.Is(err, ErrUnknownTransaction) {
		t.Fatalf("expected ErrUnknownTransaction, got %v", err)
	}
	st, _ := pool.GetTransactionState(t1.Hash)
	if st != StatePending {
		t.Fatalf("expected t1 unaffected by failed proposal, got %s", st)
	}
}

func TestCleanupTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InclusionTimeoutSecs = 10
	pool, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tx := mkTx(1, 1, 0, 10)
	if err := pool.AddTransaction(tx, 1000); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if err := pool.ProposeTransactions([]types.Hash{tx.Hash}, 1, 1000); err != nil {
		t.Fatalf("ProposeTransactions: %v", err)
	}

	rolledBack := pool.CleanupTimeouts(1005)
	if len(rolledBack) != 0 {
		t.Fatalf("expected no rollback before timeout, got %v", rolledBack)
	}
	rolledBack = pool.CleanupTimeouts(1011)
	if len(rolledBack) != 1 || rolledBack[0] != tx.Hash {
		t.Fatalf("expected tx rolled back after timeout, got %v", rolledBack)
	}
	st, _ := pool.GetTransactionState(tx.Hash)
	if st != StatePending {
		t.Fatalf("expected PENDING after rollback, got %s", st)
	}
}

func TestNonceGapRejected(t *testing.T) {
	pool, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t1 := mkTx(1, 1, 0, 10)
	if err := pool.AddTransaction(t1, 1000); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	gapped := mkTx(2, 1, 5, 10)
	if err := pool.AddTransaction(gapped, 1000); !errors.Is(err, ErrNonceGap) {
		t.Fatalf("expected ErrNonceGap, got %v", err)
	}
}

func TestPoolFullEvictsOnDomination(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PoolCapacity = 1
	pool, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	low := mkTx(1, 1, 0, 5)
	if err := pool.AddTransaction(low, 1000); err != nil {
		t.Fatalf("AddTransaction low: %v", err)
	}
	high := mkTx(2, 2, 0, 50)
	if err := pool.AddTransaction(high, 1000); err != nil {
		t.Fatalf("expected domination eviction to succeed, got %v", err)
	}
	if pool.Contains(low.Hash) {
		t.Fatalf("expected low-priority tx evicted")
	}
	if !pool.Contains(high.Hash) {
		t.Fatalf("expected high-priority tx admitted")
	}

	another := mkTx(3, 3, 0, 1)
	if err := pool.AddTransaction(another, 1000); !errors.Is(err, ErrPoolFull) {
		t.Fatalf("expected ErrPoolFull for non-dominating tx, got %v", err)
	}
}

func TestGetTransactionsForBlockOrdering(t *testing.T) {
	pool, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// Sender 1: nonce 0 at gas 5, nonce 1 at gas 100 (must still come
	// after nonce 0 despite higher gas price).
	s1n0 := mkTx(1, 1, 0, 5)
	s1n1 := mkTx(2, 1, 1, 100)
	// Sender 2: single tx at gas 50.
	s2n0 := mkTx(3, 2, 0, 50)
	for _, tx := range []*Tx{s1n0, s1n1, s2n0} {
		if err := pool.AddTransaction(tx, 1000); err != nil {
			t.Fatalf("AddTransaction(%s): %v", tx.Hash, err)
		}
	}

	selected := pool.GetTransactionsForBlock(10, 1_000_000)
	if len(selected) != 3 {
		t.Fatalf("expected 3 selected, got %d", len(selected))
	}
	// s2n0 (gas 50) must be selectable immediately; s1n0 (gas 5) must
	// precede s1n1 (gas 100) despite the lower price, since it is
	// sender 1's lower nonce.
	posOf := func(h types.Hash) int {
		for i, tx := range selected {
			if tx.Hash == h {
				return i
			}
		}
		return -1
	}
	if posOf(s1n0.Hash) > posOf(s1n1.Hash) {
		t.Fatalf("expected sender 1's nonce 0 before nonce 1")
	}
}
