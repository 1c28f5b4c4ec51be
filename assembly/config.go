// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package assembly

// TTL and capacity bounds enforced at construction (spec.md §4.5
// "Security").
const (
	MinTTLSecs = 5
	MaxTTLSecs = 300

	MinPendingAssemblies = 10
	MaxPendingAssemblies = 10_000
)

// Config carries BlockAssemblyBuffer's tunable parameters (spec.md §6,
// "assembly.*" configuration surface).
type Config struct {
	// TimeoutSecs is the assembly TTL: an assembly older than this, by
	// ReceivedAt, is eligible for GcExpired. Must be within
	// [MinTTLSecs, MaxTTLSecs].
	TimeoutSecs uint64
	// MaxPendingAssemblies hard-caps the number of concurrently tracked
	// assemblies (EnforceMaxPending purges oldest-first above this).
	// Must be within [MinPendingAssemblies, MaxPendingAssemblies].
	MaxPendingAssemblies int
}

// DefaultConfig returns a mid-range production configuration: a 30s TTL
// and a 1000-assembly cap, comfortably inside the mandated bounds.
func DefaultConfig() Config {
	return Config{TimeoutSecs: 30, MaxPendingAssemblies: 1000}
}

// Validate checks cfg against spec.md §4.5's bounds, returning
// ErrInvalidConfig if either is out of range. Construction must reject
// out-of-bounds configuration rather than silently clamping it.
func (cfg Config) Validate() error {
	if cfg.TimeoutSecs < MinTTLSecs || cfg.TimeoutSecs > MaxTTLSecs {
		return newErr(ErrInvalidConfig, "timeout_secs %d outside [%d,%d]",
			cfg.TimeoutSecs, MinTTLSecs, MaxTTLSecs)
	}
	if cfg.MaxPendingAssemblies < MinPendingAssemblies || cfg.MaxPendingAssemblies > MaxPendingAssemblies {
		return newErr(ErrInvalidConfig, "max_pending_assemblies %d outside [%d,%d]",
			cfg.MaxPendingAssemblies, MinPendingAssemblies, MaxPendingAssemblies)
	}
	return nil
}
