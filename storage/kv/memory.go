// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package kv provides concrete adapters for the ports.KVStore external
// contract (spec.md §4.6): an in-memory map for tests and a
// goleveldb-backed store for a real node. Neither adapter is part of the
// core domain logic; they exist purely so storage.Service has something
// real to drive in tests and in SPEC_FULL.md's domain-stack wiring.
package kv

import (
	"sort"
	"sync"

	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
)

// Memory is an in-process ports.KVStore backed by a plain map, guarded by
// a single mutex. It is the default backend for tests, mirroring the
// teacher's convention of pairing every KV-backed service with a
// trivial in-memory double (see database's own in-memory test harness).
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements ports.KVStore.
func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements ports.KVStore.
func (m *Memory) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
	return nil
}

// Delete implements ports.KVStore.
func (m *Memory) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

// Exists implements ports.KVStore.
func (m *Memory) Exists(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

// PrefixScan implements ports.KVStore, visiting keys in ascending order.
func (m *Memory) PrefixScan(prefix []byte, fn func(key, value []byte) bool) error {
	m.mu.RLock()
	type kvPair struct {
		k string
		v []byte
	}
	var matched []kvPair
	p := string(prefix)
	for k, v := range m.data {
		if len(k) >= len(p) && k[:len(p)] == p {
			matched = append(matched, kvPair{k: k, v: v})
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].k < matched[j].k })
	for _, kvp := range matched {
		if !fn([]byte(kvp.k), kvp.v) {
			break
		}
	}
	return nil
}

// AtomicBatchWrite implements ports.KVStore. Memory is single-mutex
// guarded, so applying the whole batch under one lock acquisition is
// trivially all-or-nothing: nothing here can partially fail.
func (m *Memory) AtomicBatchWrite(puts map[string][]byte, dels [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range puts {
		cp := make([]byte, len(v))
		copy(cp, v)
		m.data[k] = cp
	}
	for _, d := range dels {
		delete(m.data, string(d))
	}
	return nil
}
