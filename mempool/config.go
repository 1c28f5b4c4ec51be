// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

// Config carries Pool's tunable parameters (spec.md §6, "mempool.*"
// configuration surface).
type Config struct {
	// MinGasPrice is the minimum gas_price AddTransaction will accept.
	MinGasPrice uint64
	// PerAccountLimit bounds how many pending (PENDING or
	// PENDING_INCLUSION) transactions a single sender may have
	// outstanding at once.
	PerAccountLimit int
	// PoolCapacity is the maximum total number of tracked transactions.
	PoolCapacity int
	// InclusionTimeoutSecs bounds how long a transaction may remain
	// PENDING_INCLUSION before CleanupTimeouts rolls it back to PENDING
	// (spec.md §4.7 "Timeouts").
	InclusionTimeoutSecs uint64
}

// Validate rejects an obviously-unusable configuration, mirroring the
// construction-time validation convention used by assembly.Config and
// pow.Validator elsewhere in this module.
func (cfg Config) Validate() error {
	if cfg.PerAccountLimit <= 0 {
		return newErr(ErrInvalidConfig, "per_account_limit must be positive")
	}
	if cfg.PoolCapacity <= 0 {
		return newErr(ErrInvalidConfig, "pool_capacity must be positive")
	}
	if cfg.InclusionTimeoutSecs == 0 {
		return newErr(ErrInvalidConfig, "inclusion_timeout_secs must be positive")
	}
	return nil
}

// DefaultConfig returns reasonable production defaults.
func DefaultConfig() Config {
	return Config{
		MinGasPrice:          1,
		PerAccountLimit:      64,
		PoolCapacity:         50_000,
		InclusionTimeoutSecs: 30,
	}
}
