// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package envelope

import (
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
	"github.com/decred/dcrd/lru"
)

// nonceRecord remembers when a nonce was first observed, so the age-based
// sweep in gcLocked can drop entries whose implied creation time has
// fallen out of the retention window (spec.md §4.2 rule 4).
type nonceRecord struct {
	nonce string
	seen  types.Timestamp
}

// nonceCache is the time-bounded, hard-capped replay cache backing
// Verifier rule 4. It pairs an LRU set (github.com/decred/dcrd/lru) -
// which gives us the "hard ceiling" eviction spec.md asks for - with an
// insertion-ordered sweep list used for the independent age-based GC
// pass. Nonces are only ever inserted once (a reused nonce is rejected,
// never refreshed), so insertion order and LRU recency coincide.
type nonceCache struct {
	mu              sync.Mutex
	seen            *lru.Cache[string]
	ceiling         uint64
	order           []nonceRecord
	retentionSecs   uint64
	cleanupInterval uint64
	lastCleanup     types.Timestamp
}

func newNonceCache(ceiling, retentionSecs, cleanupIntervalSecs uint64) *nonceCache {
	return &nonceCache{
		seen:            lru.NewCache[string](ceiling),
		ceiling:         ceiling,
		retentionSecs:   retentionSecs,
		cleanupInterval: cleanupIntervalSecs,
	}
}

// checkAndInsert reports whether nonce has already been seen within the
// retention window; if not, it records it as seen at now. The hard
// ceiling and a periodic age sweep (gcLocked) bound the cache's size.
func (c *nonceCache) checkAndInsert(nonce string, now types.Timestamp) (alreadySeen bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gcLocked(now)

	if c.seen.Contains(nonce) {
		return true
	}
	c.seen.Add(nonce)
	c.order = append(c.order, nonceRecord{nonce: nonce, seen: now})
	return false
}

// gcLocked drops entries older than the retention window. It runs either
// when the cleanup interval has elapsed or when the cache has reached its
// hard ceiling, matching spec.md §4.2's GC trigger rule. Callers must hold
// c.mu.
func (c *nonceCache) gcLocked(now types.Timestamp) {
	dueByInterval := uint64(now.Sub(c.lastCleanup)) >= c.cleanupInterval
	dueByCeiling := uint64(c.seen.Len()) >= c.ceiling
	if !dueByInterval && !dueByCeiling {
		return
	}
	c.lastCleanup = now

	cutoff := int64(now) - int64(c.retentionSecs)
	i := 0
	for ; i < len(c.order); i++ {
		if int64(c.order[i].seen) > cutoff {
			break
		}
		c.seen.Delete(c.order[i].nonce)
	}
	c.order = c.order[i:]
}

// size reports the current number of tracked nonces, for statistics.
func (c *nonceCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen.Len()
}
