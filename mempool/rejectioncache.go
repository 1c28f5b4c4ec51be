// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"sync"

	"github.com/decred/dcrd/container/apbf"
	"golang.org/x/crypto/hkdf"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// RejectionCacheDefaults mirrors spec.md §6's rejection_cache.* defaults:
// a generation rolls over after an hour or once it has absorbed 100,000
// entries, whichever comes first.
const (
	DefaultRollIntervalSecs = 3600
	DefaultGenerationCap    = 100_000
	DefaultFalsePositive    = 0.0001
)

// RejectionCache is component C10's rolling two-generation rejection
// cache (spec.md §4.7 "Rejection cache"). A transaction hash that failed
// validation is remembered so a repeat send is dropped in O(1) without
// re-running full validation. It rolls forward on a wall-clock interval
// or an entry-count cap, whichever triggers first, and is queried across
// both the current and the just-retired generation so a hash rejected a
// moment before a roll is still caught.
//
// Per-generation filters are keyed with an HKDF-SHA-256-derived salt
// unique to that generation, closing the precomputation gap a
// single static filter would otherwise leave open: an adversary cannot
// precompute a hash that evades the filter before the generation (and
// its salt) exists.
type RejectionCache struct {
	mu sync.Mutex

	clock         timeSource
	rollInterval  int64
	generationCap uint32

	masterSecret []byte
	generation   uint64
	lastRoll     types.Timestamp

	current  *generationFilter
	previous *generationFilter
}

// timeSource is the minimal clock contract RejectionCache needs; a
// ports.TimeSource satisfies it directly.
type timeSource interface {
	Now() types.Timestamp
}

type generationFilter struct {
	filter *apbf.Filter
	salt   []byte
	count  int
}

// NewRejectionCache constructs a RejectionCache with the given roll
// policy. clock supplies wall-clock time for the interval-based roll;
// rollIntervalSecs and generationCap of 0 fall back to the spec.md §6
// defaults.
func NewRejectionCache(clock timeSource, rollIntervalSecs int64, generationCap uint32) (*RejectionCache, error) {
	if rollIntervalSecs <= 0 {
		rollIntervalSecs = DefaultRollIntervalSecs
	}
	if generationCap == 0 {
		generationCap = DefaultGenerationCap
	}
	master := make([]byte, 32)
	if _, err := rand.Read(master); err != nil {
		return nil, newErr(ErrInvalidConfig, "reading master secret: %v", err)
	}
	rc := &RejectionCache{
		clock:         clock,
		rollInterval:  rollIntervalSecs,
		generationCap: generationCap,
		masterSecret:  master,
		lastRoll:      clock.Now(),
	}
	rc.current = rc.newGenerationLocked(0)
	return rc, nil
}

// newGenerationLocked derives generation gen's salt via HKDF-SHA-256 over
// the cache's master secret and builds a fresh filter. Callers must hold
// rc.mu.
func (rc *RejectionCache) newGenerationLocked(gen uint64) *generationFilter {
	info := make([]byte, 8)
	for i := 0; i < 8; i++ {
		info[i] = byte(gen >> (56 - 8*i))
	}
	kdf := hkdf.New(sha256.New, rc.masterSecret, nil, info)
	salt := make([]byte, 16)
	if _, err := io.ReadFull(kdf, salt); err != nil {
		// HKDF over a fixed 32-byte secret cannot exhaust entropy for a
		// 16-byte expand; a failure here indicates a broken reader.
		panic("mempool: hkdf expand failed: " + err.Error())
	}
	return &generationFilter{
		filter: apbf.NewFilter(rc.generationCap, DefaultFalsePositive),
		salt:   salt,
	}
}

// Reject records hash as known-bad in the current generation, rolling
// forward first if the roll policy requires it.
func (rc *RejectionCache) Reject(hash types.Hash, now types.Timestamp) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.maybeRollLocked(now)
	rc.current.filter.Add(rc.salted(rc.current, hash))
	rc.current.count++
}

// IsKnownBad reports whether hash was rejected recently enough to still
// be present in either the current or previous generation's filter.
func (rc *RejectionCache) IsKnownBad(hash types.Hash, now types.Timestamp) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.maybeRollLocked(now)
	if rc.current.filter.Contains(rc.salted(rc.current, hash)) {
		return true
	}
	if rc.previous != nil && rc.previous.filter.Contains(rc.salted(rc.previous, hash)) {
		return true
	}
	return false
}

func (rc *RejectionCache) salted(gen *generationFilter, hash types.Hash) []byte {
	buf := make([]byte, len(gen.salt)+len(hash))
	n := copy(buf, gen.salt)
	copy(buf[n:], hash[:])
	return buf
}

// maybeRollLocked retires the current generation to previous and starts a
// fresh one when the wall-clock interval has elapsed or the generation's
// entry cap has been reached. Callers must hold rc.mu.
func (rc *RejectionCache) maybeRollLocked(now types.Timestamp) {
	elapsed := now.Sub(rc.lastRoll)
	if elapsed < rc.rollInterval && rc.current.count < int(rc.generationCap) {
		return
	}
	rc.generation++
	rc.previous = rc.current
	rc.current = rc.newGenerationLocked(rc.generation)
	rc.lastRoll = now
	log.Debugf("rejection cache rolled to generation %d", rc.generation)
}

// Stats is a point-in-time snapshot of cache occupancy, exposed for
// operational visibility (spec.md §9 observability notes).
type Stats struct {
	CurrentEntries  int
	PreviousEntries int
	Generation      uint64
	SecsSinceRoll   int64
}

// Stats returns a snapshot of the cache's current state.
func (rc *RejectionCache) Stats(now types.Timestamp) Stats {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	s := Stats{
		CurrentEntries: rc.current.count,
		Generation:     rc.generation,
		SecsSinceRoll:  now.Sub(rc.lastRoll),
	}
	if rc.previous != nil {
		s.PreviousEntries = rc.previous.count
	}
	return s
}
