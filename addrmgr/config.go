// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

// Config carries the routing table's tunable parameters (spec.md §6,
// "kademlia.*" configuration surface).
type Config struct {
	// K is the maximum number of peers per bucket. Default 20.
	K int
	// Alpha is the lookup parallelism factor. Default 3. Not used inside
	// the table itself (lookups are a synchronous local read per
	// spec.md §2), but carried here since it is part of the recognized
	// configuration surface; nothing in this module reads it.
	Alpha int
	// MaxPeersPerSubnet bounds how many peers from the same subnet
	// (SubnetMaskBits) may occupy a single bucket. Default 2.
	MaxPeersPerSubnet int
	// MaxPendingPeers hard-caps the staging area (Memory-Bomb Defense).
	// Default 1024.
	MaxPendingPeers int
	// EvictionChallengeTimeoutSecs bounds how long a challenged peer has
	// to respond before eviction (Eviction-on-Failure). Default 5.
	EvictionChallengeTimeoutSecs uint64
	// VerificationTimeoutSecs bounds how long a staged peer has to be
	// verified before it silently expires out of staging. Default 10.
	VerificationTimeoutSecs uint64
	// SubnetMaskBits configures the subnet-diversity prefix length
	// (spec.md §4.3 "Subnet diversity"). Default /24.
	SubnetMaskBits int
}

// DefaultConfig returns the production defaults enumerated in spec.md §6.
func DefaultConfig() Config {
	return Config{
		K:                            20,
		Alpha:                        3,
		MaxPeersPerSubnet:            2,
		MaxPendingPeers:              1024,
		EvictionChallengeTimeoutSecs: 5,
		VerificationTimeoutSecs:      10,
		SubnetMaskBits:               24,
	}
}

// TestConfig returns a smaller configuration suitable for deterministic
// unit tests (grounded on original_source's KademliaConfig::for_testing).
func TestConfig() Config {
	return Config{
		K:                            3,
		Alpha:                        2,
		MaxPeersPerSubnet:            2,
		MaxPendingPeers:              10,
		EvictionChallengeTimeoutSecs: 1,
		VerificationTimeoutSecs:      2,
		SubnetMaskBits:               24,
	}
}
