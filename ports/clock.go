// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ports

import (
	"sync"
	"time"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// SystemClock is the production TimeSource, backed by the OS clock.
type SystemClock struct{}

// Now implements TimeSource.
func (SystemClock) Now() types.Timestamp {
	return types.Timestamp(time.Now().Unix())
}

// MockClock is a TimeSource test double with an explicitly advanced
// value, used throughout the corpus's table-driven tests to make
// deadline/TTL logic deterministic.
type MockClock struct {
	mu  sync.Mutex
	now types.Timestamp
}

// NewMockClock returns a MockClock initialized to now.
func NewMockClock(now types.Timestamp) *MockClock {
	return &MockClock{now: now}
}

// Now implements TimeSource.
func (c *MockClock) Now() types.Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set pins the clock to an explicit timestamp.
func (c *MockClock) Set(now types.Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by delta seconds.
func (c *MockClock) Advance(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = types.Timestamp(int64(c.now) + delta)
}
