// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config declares the full recognized configuration surface
// (spec.md §6) as a single struct parsed with go-flags, mirroring
// EXCCoin-exccd's config.go convention of one struct with long/short/
// default tags as the sole source of option defaults. No daemon/CLI
// command tree is built around it (out of scope); Load exists so every
// subsystem's Config can be constructed from one validated source
// instead of scattered literals.
package config

import (
	"github.com/jessevdk/go-flags"

	"github.com/NerfedChou/Quantum-Chain-sub004/addrmgr"
	"github.com/NerfedChou/Quantum-Chain-sub004/assembly"
	"github.com/NerfedChou/Quantum-Chain-sub004/envelope"
	"github.com/NerfedChou/Quantum-Chain-sub004/mempool"
	"github.com/NerfedChou/Quantum-Chain-sub004/pow"
	"github.com/NerfedChou/Quantum-Chain-sub004/storage"
)

// Config is the complete recognized option set of spec.md §6.
type Config struct {
	Kademlia struct {
		K                            int    `long:"k" default:"20" description:"peers kept per routing-table bucket"`
		Alpha                        int    `long:"alpha" default:"3" description:"parallelism factor for lookups"`
		MaxPeersPerSubnet            int    `long:"maxpeerspersubnet" default:"2" description:"max peers admitted from the same /24 or /64"`
		MaxPendingPeers              int    `long:"maxpendingpeers" default:"1024" description:"staging-area capacity"`
		EvictionChallengeTimeoutSecs uint64 `long:"evictionchallengetimeoutsecs" default:"5" description:"liveness-challenge deadline before eviction"`
		VerificationTimeoutSecs      uint64 `long:"verificationtimeoutsecs" default:"10" description:"staging deadline before a pending peer expires"`
	} `group:"Kademlia"`

	Envelope struct {
		NonceCacheMax       uint64 `long:"noncecachemax" default:"1000000" description:"bounded nonce-replay cache capacity"`
		CleanupIntervalSecs uint64 `long:"cleanupintervalsecs" default:"30" description:"nonce cache GC sweep interval"`
	} `group:"Envelope"`

	Assembly struct {
		TimeoutSecs          uint64 `long:"timeoutsecs" default:"30" description:"pending-assembly TTL"`
		MaxPendingAssemblies int    `long:"maxpendingassemblies" default:"1000" description:"pending-assembly capacity"`
	} `group:"Assembly"`

	Storage struct {
		MinDiskPercent          float64 `long:"mindiskpercent" default:"5" description:"minimum free disk percentage required to accept a write"`
		MaxBlockSize            int     `long:"maxblocksize" default:"10485760" description:"largest accepted block in bytes"`
		PersistTransactionIndex bool    `long:"persisttransactionindex" description:"rehydrate the block height index from the KV store on startup"`
	} `group:"Storage"`

	Mempool struct {
		MinGasPrice           uint64 `long:"mingasprice" default:"1" description:"minimum accepted gas price"`
		PerAccountLimit       int    `long:"peraccountlimit" default:"64" description:"max outstanding transactions per sender"`
		PoolCapacity          int    `long:"poolcapacity" default:"50000" description:"max tracked transactions"`
		InclusionTimeoutMsecs uint64 `long:"inclusiontimeoutmsecs" default:"30000" description:"PENDING_INCLUSION deadline before rollback"`
	} `group:"Mempool"`

	RateLimit struct {
		MaxRequestsPerWindow int   `long:"maxrequestsperwindow" default:"100" description:"token-bucket capacity"`
		WindowSecs           int64 `long:"windowsecs" default:"60" description:"token-bucket refill window"`
	} `group:"Rate Limit"`

	Pow struct {
		DifficultyBits int `long:"difficultybits" default:"24" description:"required leading zero bits in SHA-256(node_id||pow)"`
	} `group:"Proof of Work"`
}

// Default returns the full configuration surface populated with spec.md
// §6's documented defaults, without touching argv or the environment.
func Default() (*Config, error) {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load parses args (typically os.Args[1:]) into a Config using go-flags'
// standard long/short option conventions.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AssemblyConfig projects the Assembly group onto assembly.Config.
func (c *Config) AssemblyConfig() assembly.Config {
	return assembly.Config{
		TimeoutSecs:          c.Assembly.TimeoutSecs,
		MaxPendingAssemblies: c.Assembly.MaxPendingAssemblies,
	}
}

// StorageConfig projects the Storage group onto storage.Config.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		MinDiskPercent:          c.Storage.MinDiskPercent,
		MaxBlockSize:            c.Storage.MaxBlockSize,
		PersistTransactionIndex: c.Storage.PersistTransactionIndex,
	}
}

// MempoolConfig projects the Mempool group onto mempool.Config. The
// wire-level inclusion_timeout_ms is downconverted to the whole-second
// resolution Pool.CleanupTimeouts operates at.
func (c *Config) MempoolConfig() mempool.Config {
	return mempool.Config{
		MinGasPrice:          c.Mempool.MinGasPrice,
		PerAccountLimit:      c.Mempool.PerAccountLimit,
		PoolCapacity:         c.Mempool.PoolCapacity,
		InclusionTimeoutSecs: c.Mempool.InclusionTimeoutMsecs / 1000,
	}
}

// RateLimiterConfig projects the RateLimit group onto
// mempool.RateLimiterConfig.
func (c *Config) RateLimiterConfig() mempool.RateLimiterConfig {
	return mempool.RateLimiterConfig{
		MaxRequestsPerWindow: c.RateLimit.MaxRequestsPerWindow,
		WindowSecs:           c.RateLimit.WindowSecs,
	}
}

// AddrmgrConfig projects the Kademlia group onto addrmgr.Config. The
// subnet-diversity prefix length is not a recognized command-line option
// (spec.md §6 does not list it); it keeps addrmgr.DefaultConfig's value.
func (c *Config) AddrmgrConfig() addrmgr.Config {
	cfg := addrmgr.DefaultConfig()
	cfg.K = c.Kademlia.K
	cfg.Alpha = c.Kademlia.Alpha
	cfg.MaxPeersPerSubnet = c.Kademlia.MaxPeersPerSubnet
	cfg.MaxPendingPeers = c.Kademlia.MaxPendingPeers
	cfg.EvictionChallengeTimeoutSecs = c.Kademlia.EvictionChallengeTimeoutSecs
	cfg.VerificationTimeoutSecs = c.Kademlia.VerificationTimeoutSecs
	return cfg
}

// EnvelopeVerifierConfig projects the Envelope group onto a partial
// envelope.VerifierConfig. SelfId, Secret, Clock, and AuthTable are
// runtime identity/trust material, not recognized command-line options;
// the caller fills them in before calling envelope.NewVerifier.
func (c *Config) EnvelopeVerifierConfig() envelope.VerifierConfig {
	return envelope.VerifierConfig{
		NonceCacheCeiling:   c.Envelope.NonceCacheMax,
		CleanupIntervalSecs: c.Envelope.CleanupIntervalSecs,
	}
}

// NewPowValidator constructs a pow.Validator from the Pow group.
func (c *Config) NewPowValidator() (*pow.Validator, error) {
	return pow.NewValidator(c.Pow.DifficultyBits)
}
