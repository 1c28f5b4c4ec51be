// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// MaxBlockSize is the hard ceiling on a single block's serialized size
// (spec.md §4.6, §6: "storage.max_block_size (10 MiB)").
const MaxBlockSize = 10 << 20

// Config carries BlockStorageService's tunable parameters (spec.md §6,
// "storage.*" configuration surface).
type Config struct {
	// MinDiskPercent is the minimum percentage of free disk space
	// required before a write is attempted. Default 5.
	MinDiskPercent float64
	// MaxBlockSize bounds a single block's serialized size. Default
	// storage.MaxBlockSize (10 MiB); zero is treated as "use the
	// default" rather than "no limit", since an unbounded block size is
	// never a valid configuration for this service.
	MaxBlockSize int
	// PersistTransactionIndex controls whether the block height index is
	// rehydrated from the KV store on startup (spec.md §4.6
	// "Persistence of the transaction index"). The tx-location and
	// tx-hashes-by-block entries are written on every WriteBlock and read
	// from the KV store on demand whatever this flag says.
	PersistTransactionIndex bool
}

// DefaultConfig returns the production defaults enumerated in spec.md §6.
func DefaultConfig() Config {
	return Config{
		MinDiskPercent:          5,
		MaxBlockSize:            MaxBlockSize,
		PersistTransactionIndex: true,
	}
}

func (cfg Config) maxBlockSize() int {
	if cfg.MaxBlockSize <= 0 {
		return MaxBlockSize
	}
	return cfg.MaxBlockSize
}
