// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import "testing"

func TestDefaultMatchesSpecDefaults(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cfg.Kademlia.K != 20 {
		t.Fatalf("expected kademlia.k=20, got %d", cfg.Kademlia.K)
	}
	if cfg.Storage.MaxBlockSize != 10<<20 {
		t.Fatalf("expected storage.maxblocksize=10MiB, got %d", cfg.Storage.MaxBlockSize)
	}
	if cfg.Pow.DifficultyBits != 24 {
		t.Fatalf("expected pow.difficultybits=24, got %d", cfg.Pow.DifficultyBits)
	}
}

func TestProjectionsValidate(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if err := cfg.AssemblyConfig().Validate(); err != nil {
		t.Fatalf("AssemblyConfig: %v", err)
	}
	if err := cfg.MempoolConfig().Validate(); err != nil {
		t.Fatalf("MempoolConfig: %v", err)
	}
	if err := cfg.RateLimiterConfig().Validate(); err != nil {
		t.Fatalf("RateLimiterConfig: %v", err)
	}
	if _, err := cfg.NewPowValidator(); err != nil {
		t.Fatalf("NewPowValidator: %v", err)
	}
}

func TestLoadOverridesFromArgs(t *testing.T) {
	cfg, err := Load([]string{"--k=30", "--mingasprice=5"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Kademlia.K != 30 {
		t.Fatalf("expected kademlia.k=30, got %d", cfg.Kademlia.K)
	}
	if cfg.Mempool.MinGasPrice != 5 {
		t.Fatalf("expected mempool.mingasprice=5, got %d", cfg.Mempool.MinGasPrice)
	}
}
