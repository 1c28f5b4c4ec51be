// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements the Two-Phase Commit Mempool (spec.md
// §4.7, component C9) and its anti-DoS supporting structures, the
// rolling RejectionCache and the token-bucket RateLimiter (component
// C10). The single-writer-lock-over-owned-maps shape follows
// addrmgr.RoutingTable; the PENDING/PENDING_INCLUSION state machine is
// new to this corpus; the greedy gas-price eviction policy is grounded
// on the same "challenge the weakest occupant before admitting a
// newcomer" idea as addrmgr's Eviction-on-Failure, adapted from a
// liveness challenge to a priority comparison.
package mempool

import (
	"sort"
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// Pool is the Two-Phase Commit Mempool. All mutation is serialized
// behind mu, matching spec.md §5's single-writer-lock model.
type Pool struct {
	mu  sync.Mutex
	cfg Config

	txs      map[types.Hash]*Tx
	bySender map[types.Address][]types.Hash // ascending by Nonce
}

// New constructs an empty Pool, rejecting an unusable configuration.
func New(cfg Config) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pool{
		cfg:      cfg,
		txs:      make(map[types.Hash]*Tx),
		bySender: make(map[types.Address][]types.Hash),
	}, nil
}

// AddTransaction implements spec.md §4.7's add_transaction: rejects
// duplicates, below-minimum gas price, a per-account limit breach, and a
// nonce that would leave a gap in the sender's dense sequence. When the
// pool is full, the incoming transaction may evict the single lowest-
// priority PENDING transaction if it dominates (strictly higher gas
// price); otherwise the call fails with ErrPoolFull.
func (p *Pool) AddTransaction(tx *Tx, now types.Timestamp) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.txs[tx.Hash]; exists {
		return newErr(ErrDuplicateTransaction, "tx %s already tracked", tx.Hash)
	}
	if tx.GasPrice < p.cfg.MinGasPrice {
		return newErr(ErrGasPriceTooLow, "gas price %d below minimum %d", tx.GasPrice, p.cfg.MinGasPrice)
	}

	senderHashes := p.bySender[tx.Sender]
	if len(senderHashes) >= p.cfg.PerAccountLimit {
		return newErr(ErrPerAccountLimitExceeded, "sender %s at limit %d", tx.Sender, p.cfg.PerAccountLimit)
	}
	if len(senderHashes) > 0 {
		maxNonce := p.txs[senderHashes[len(senderHashes)-1]].Nonce
		if tx.Nonce != maxNonce+1 {
			return newErr(ErrNonceGap, "sender %s: nonce %d does not extend %d densely", tx.Sender, tx.Nonce, maxNonce)
		}
	}

	if len(p.txs) >= p.cfg.PoolCapacity {
		victim := p.lowestPriorityPendingLocked()
		if victim == nil || tx.GasPrice <= victim.GasPrice {
			return newErr(ErrPoolFull, "pool at capacity %d", p.cfg.PoolCapacity)
		}
		p.removeLocked(victim.Hash)
	}

	tx.State = StatePending
	tx.ReceivedAt = now
	p.txs[tx.Hash] = tx
	p.bySender[tx.Sender] = append(p.bySender[tx.Sender], tx.Hash)
	return nil
}

// lowestPriorityPendingLocked returns the PENDING transaction with the
// lowest effective priority (lowest gas price, tie-broken high by hash),
// the candidate for eviction when the pool is full. PENDING_INCLUSION
// transactions are never eviction candidates: they are mid-commit.
func (p *Pool) lowestPriorityPendingLocked() *Tx {
	var worst *Tx
	for _, tx := range p.txs {
		if tx.State != StatePending {
			continue
		}
		if worst == nil || lessPriority(worst, tx) {
			worst = tx
		}
	}
	return worst
}

// removeLocked deletes hash from both the primary index and its sender's
// ordered nonce list. Callers must hold p.mu.
func (p *Pool) removeLocked(hash types.Hash) {
	tx, ok := p.txs[hash]
	if !ok {
		return
	}
	delete(p.txs, hash)
	hashes := p.bySender[tx.Sender]
	for i, h := range hashes {
		if h == hash {
			p.bySender[tx.Sender] = append(hashes[:i], hashes[i+1:]...)
			break
		}
	}
	if len(p.bySender[tx.Sender]) == 0 {
		delete(p.bySender, tx.Sender)
	}
}

// GetTransactionsForBlock returns up to maxCount PENDING transactions
// within maxGas total gas limit, ordered by descending gas_price with
// per-sender nonce ordering preserved: a sender's transactions are only
// offered in ascending-nonce order, so a later-nonce transaction never
// appears before an earlier one from the same sender even if it has a
// higher gas price (spec.md §4.7).
func (p *Pool) GetTransactionsForBlock(maxCount int, maxGas uint64) []*Tx {
	p.mu.Lock()
	defer p.mu.Unlock()

	cursor := make(map[types.Address]int, len(p.bySender))
	var candidates []*Tx
	for sender, hashes := range p.bySender {
		for _, h := range hashes {
			tx := p.txs[h]
			if tx.State == StatePending {
				candidates = append(candidates, tx)
			}
		}
		cursor[sender] = 0
	}
	// Sort candidates by descending priority (lessPriority); the
	// per-sender cursor gate below enforces ascending-nonce order within
	// each sender.
	sort.SliceStable(candidates, func(i, j int) bool {
		return lessPriority(candidates[i], candidates[j])
	})

	selected := make([]*Tx, 0, maxCount)
	offered := make(map[types.Hash]bool)
	var gasUsed uint64
	for len(selected) < maxCount {
		progressed := false
		for _, tx := range candidates {
			if offered[tx.Hash] {
				continue
			}
			hashes := p.bySender[tx.Sender]
			if hashes[cursor[tx.Sender]] != tx.Hash {
				// Not yet this sender's turn (an earlier nonce is still
				// unselected); skip until its turn comes up in a later
				// pass driven by a higher-priority candidate.
				continue
			}
			if gasUsed+tx.GasLimit > maxGas {
				offered[tx.Hash] = true // skip permanently: doesn't fit
				cursor[tx.Sender]++
				continue
			}
			selected = append(selected, tx)
			offered[tx.Hash] = true
			cursor[tx.Sender]++
			gasUsed += tx.GasLimit
			progressed = true
			if len(selected) >= maxCount {
				break
			}
		}
		if !progressed {
			break
		}
	}
	return selected
}

// ProposeTransactions implements Phase 1 (spec.md §4.7): atomically
// transitions every named hash from PENDING to PENDING_INCLUSION. If any
// hash is not currently PENDING, none are transitioned.
func (p *Pool) ProposeTransactions(hashes []types.Hash, targetHeight uint64, now types.Timestamp) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, h := range hashes {
		tx, ok := p.txs[h]
		if !ok {
			return newErr(ErrUnknownTransaction, "tx %s not tracked", h)
		}
		if tx.State != StatePending {
			return newErr(ErrNotPending, "tx %s is %s, not PENDING", h, tx.State)
		}
	}
	for _, h := range hashes {
		tx := p.txs[h]
		tx.State = StatePendingInclusion
		tx.ProposedAt = now
		tx.ProposedHeight = targetHeight
	}
	return nil
}

// ConfirmInclusion implements Phase 2a (spec.md §4.7): permanently
// removes every named, currently-PENDING_INCLUSION hash from the pool.
func (p *Pool) ConfirmInclusion(height uint64, blockHash types.Hash, hashes []types.Hash) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, h := range hashes {
		tx, ok := p.txs[h]
		if !ok || tx.State != StatePendingInclusion {
			return newErr(ErrNotPendingInclusion, "tx %s is not PENDING_INCLUSION", h)
		}
	}
	for _, h := range hashes {
		p.removeLocked(h)
	}
	log.Debugf("confirmed %d transactions in block %s at height %d", len(hashes), blockHash, height)
	return nil
}

// RollbackProposal implements Phase 2b (spec.md §4.7): transitions every
// named hash currently in PENDING_INCLUSION back to PENDING. A hash that
// was never proposed (or already resolved) is silently skipped - spec.md
// §8 scenario S7 requires rollback_proposal of an unproposed hash to be
// a no-op, not an error.
func (p *Pool) RollbackProposal(hashes []types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hashes {
		tx, ok := p.txs[h]
		if !ok || tx.State != StatePendingInclusion {
			continue
		}
		tx.State = StatePending
		tx.ProposedAt = 0
		tx.ProposedHeight = 0
	}
}

// RemoveTransactions unconditionally deletes every named hash from the
// pool, regardless of state.
func (p *Pool) RemoveTransactions(hashes []types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range hashes {
		p.removeLocked(h)
	}
}

// CleanupTimeouts implements spec.md §8 invariant 8: any transaction left
// in PENDING_INCLUSION past t_inclusion is returned to PENDING. Returns
// the hashes rolled back, for event emission.
func (p *Pool) CleanupTimeouts(now types.Timestamp) []types.Hash {
	p.mu.Lock()
	defer p.mu.Unlock()

	var rolledBack []types.Hash
	for h, tx := range p.txs {
		if tx.State != StatePendingInclusion {
			continue
		}
		if now.Sub(tx.ProposedAt) > int64(p.cfg.InclusionTimeoutSecs) {
			tx.State = StatePending
			tx.ProposedAt = 0
			tx.ProposedHeight = 0
			rolledBack = append(rolledBack, h)
		}
	}
	return rolledBack
}

// Contains reports whether hash is currently tracked by the pool.
func (p *Pool) Contains(hash types.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.txs[hash]
	return ok
}

// GetTransactionState returns hash's current lifecycle state.
func (p *Pool) GetTransactionState(hash types.Hash) (TxState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tx, ok := p.txs[hash]
	if !ok {
		return 0, newErr(ErrUnknownTransaction, "tx %s not tracked", hash)
	}
	return tx.State, nil
}

// Status is a point-in-time snapshot of pool occupancy.
type Status struct {
	Pending          int
	PendingInclusion int
	Total            int
}

// GetStatus returns the pool's current occupancy snapshot.
func (p *Pool) GetStatus() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	var s Status
	for _, tx := range p.txs {
		s.Total++
		switch tx.State {
		case StatePending:
			s.Pending++
		case StatePendingInclusion:
			s.PendingInclusion++
		}
	}
	return s
}
