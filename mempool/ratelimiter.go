// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// RateLimiterConfig carries the token-bucket parameters of spec.md §6's
// rate_limit.* configuration surface.
type RateLimiterConfig struct {
	// MaxRequestsPerWindow is the bucket's capacity and refill amount.
	MaxRequestsPerWindow int
	// WindowSecs is the refill period: the bucket gains
	// MaxRequestsPerWindow tokens every WindowSecs.
	WindowSecs int64
}

// Validate rejects an unusable configuration.
func (cfg RateLimiterConfig) Validate() error {
	if cfg.MaxRequestsPerWindow <= 0 {
		return newErr(ErrInvalidConfig, "max_requests_per_window must be positive")
	}
	if cfg.WindowSecs <= 0 {
		return newErr(ErrInvalidConfig, "window_secs must be positive")
	}
	return nil
}

// DefaultRateLimiterConfig returns reasonable production defaults: 100
// requests per 60-second window per client.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{MaxRequestsPerWindow: 100, WindowSecs: 60}
}

type bucket struct {
	tokens     float64
	lastRefill types.Timestamp
}

// RateLimiter is component C10's per-client token bucket, gating how
// often a single remote peer may submit requests into the mempool
// (spec.md §5 "Backpressure"). Buckets are created lazily per client and
// refill continuously at MaxRequestsPerWindow/WindowSecs tokens/sec.
type RateLimiter struct {
	mu      sync.Mutex
	cfg     RateLimiterConfig
	buckets map[types.NodeId]*bucket
}

// NewRateLimiter constructs a RateLimiter, rejecting an unusable
// configuration.
func NewRateLimiter(cfg RateLimiterConfig) (*RateLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RateLimiter{
		cfg:     cfg,
		buckets: make(map[types.NodeId]*bucket),
	}, nil
}

// Allow consumes one token from client's bucket if available and reports
// whether the request may proceed. When denied, retryAfterSecs estimates
// how long until the next token is available.
func (rl *RateLimiter) Allow(client types.NodeId, now types.Timestamp) (allowed bool, retryAfterSecs int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[client]
	if !ok {
		b = &bucket{tokens: float64(rl.cfg.MaxRequestsPerWindow), lastRefill: now}
		rl.buckets[client] = b
	}

	rl.refillLocked(b, now)
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}

	refillRate := float64(rl.cfg.MaxRequestsPerWindow) / float64(rl.cfg.WindowSecs)
	deficit := 1 - b.tokens
	retryAfterSecs = int64(deficit/refillRate) + 1
	return false, retryAfterSecs
}

func (rl *RateLimiter) refillLocked(b *bucket, now types.Timestamp) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	refillRate := float64(rl.cfg.MaxRequestsPerWindow) / float64(rl.cfg.WindowSecs)
	b.tokens += float64(elapsed) * refillRate
	max := float64(rl.cfg.MaxRequestsPerWindow)
	if b.tokens > max {
		b.tokens = max
	}
	b.lastRefill = now
}

// Forget discards client's bucket, freeing memory for clients that have
// disconnected or been banned (spec.md §9 "Memory bounds").
func (rl *RateLimiter) Forget(client types.NodeId) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, client)
}

// TrackedClients reports how many distinct client buckets are currently
// held, for operational visibility.
func (rl *RateLimiter) TrackedClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}
