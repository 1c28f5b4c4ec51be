// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

func mkNode(b byte) types.NodeId {
	var n types.NodeId
	n[len(n)-1] = b
	return n
}

func TestRateLimiterAllowsWithinWindow(t *testing.T) {
	rl, err := NewRateLimiter(RateLimiterConfig{MaxRequestsPerWindow: 2, WindowSecs: 10})
	if err != nil {
		t.Fatalf("NewRateLimiter: %v", err)
	}
	client := mkNode(1)
	for i := 0; i < 2; i++ {
		allowed, _ := rl.Allow(client, 1000)
		if !allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
	}
	allowed, retryAfter := rl.Allow(client, 1000)
	if allowed {
		t.Fatalf("expected third request in the same instant to be denied")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected a positive retry-after, got %d", retryAfter)
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	rl, err := NewRateLimiter(RateLimiterConfig{MaxRequestsPerWindow: 1, WindowSecs: 10})
	if err != nil {
		t.Fatalf("NewRateLimiter: %v", err)
	}
	client := mkNode(1)
	allowed, _ := rl.Allow(client, 1000)
	if !allowed {
		t.Fatalf("expected first request allowed")
	}
	if allowed, _ := rl.Allow(client, 1000); allowed {
		t.Fatalf("expected immediate second request denied")
	}
	if allowed, _ := rl.Allow(client, 1011); !allowed {
		t.Fatalf("expected request allowed after a full window elapsed")
	}
}

func TestRateLimiterForget(t *testing.T) {
	rl, err := NewRateLimiter(DefaultRateLimiterConfig())
	if err != nil {
		t.Fatalf("NewRateLimiter: %v", err)
	}
	client := mkNode(1)
	rl.Allow(client, 1000)
	if rl.TrackedClients() != 1 {
		t.Fatalf("expected 1 tracked client")
	}
	rl.Forget(client)
	if rl.TrackedClients() != 0 {
		t.Fatalf("expected 0 tracked clients after Forget")
	}
}
