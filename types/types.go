// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package types defines the fixed-width identifiers shared across every
// subsystem: NodeId, Hash, Address, SubsystemId, CorrelationId and
// Timestamp. None of these types carry behavior beyond byte-width and
// display conventions — ownership of the entities that use them belongs
// to the owning subsystem package (addrmgr, storage, mempool, ...).
package types

import (
	"encoding/hex"
	"errors"

	"github.com/decred/base58"
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/google/uuid"
)

// HashSize is the number of bytes in a Hash (block hash, transaction hash,
// merkle root, state root).
const HashSize = chainhash.HashSize

// Hash is a 256-bit cryptographic hash. It is a thin alias around
// chainhash.Hash so block/tx/merkle/state hashes get that type's
// hex-string and byte-slice conventions for free.
type Hash = chainhash.Hash

// ZeroHash is the all-zero Hash, used to detect an unset block hash.
var ZeroHash = chainhash.Hash{}

// NodeIdSize is the number of bytes in a NodeId.
const NodeIdSize = 32

// NodeId is a 256-bit opaque peer identifier. XOR distance between two
// NodeIds defines Kademlia bucket placement (see package addrmgr).
type NodeId [NodeIdSize]byte

// String returns the base58-encoded NodeId, matching the teacher's
// convention of rendering identifiers as base58 in logs.
func (id NodeId) String() string {
	return base58.Encode(id[:])
}

// Hex returns the lowercase hex encoding of the NodeId.
func (id NodeId) Hex() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the all-zero NodeId (never a valid,
// PoW-bound identity).
func (id NodeId) IsZero() bool {
	return id == NodeId{}
}

// NodeIdFromBytes builds a NodeId from a byte slice of exactly NodeIdSize
// bytes.
func NodeIdFromBytes(b []byte) (NodeId, error) {
	var id NodeId
	if len(b) != NodeIdSize {
		return id, errors.New("types: invalid node id length")
	}
	copy(id[:], b)
	return id, nil
}

// AddressSize is the number of bytes in an Address (account address).
const AddressSize = 20

// Address is a 160-bit account address. This repo does not dictate the
// ledger semantics behind an Address; it only fixes the byte width.
type Address [AddressSize]byte

// String returns the base58-encoded Address.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// AddressFromBytes builds an Address from a byte slice of exactly
// AddressSize bytes.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, errors.New("types: invalid address length")
	}
	copy(a[:], b)
	return a, nil
}

// SubsystemId is an 8-bit small integer drawn from the fixed, closed set
// of reserved subsystem identifiers (spec.md §3). It is the sole carrier
// of sender identity in the message envelope.
type SubsystemId uint8

// Reserved subsystem identifiers (spec.md §3).
const (
	SubsystemPeerDiscovery         SubsystemId = 1
	SubsystemBlockStorage          SubsystemId = 2
	SubsystemTxIndexing            SubsystemId = 3
	SubsystemState                 SubsystemId = 4
	SubsystemPropagation           SubsystemId = 5
	SubsystemMempool               SubsystemId = 6
	SubsystemFilters                SubsystemId = 7
	SubsystemConsensus             SubsystemId = 8
	SubsystemFinality              SubsystemId = 9
	SubsystemSignatureVerification SubsystemId = 10
)

var subsystemNames = map[SubsystemId]string{
	SubsystemPeerDiscovery:         "peer-discovery",
	SubsystemBlockStorage:          "block-storage",
	SubsystemTxIndexing:            "tx-indexing",
	SubsystemState:                 "state",
	SubsystemPropagation:           "propagation",
	SubsystemMempool:               "mempool",
	SubsystemFilters:               "filters",
	SubsystemConsensus:             "consensus",
	SubsystemFinality:              "finality",
	SubsystemSignatureVerification: "signature-verification",
}

// String returns the reserved name for known subsystem ids, or a numeric
// fallback for unrecognized ones (the set is closed but unknown values can
// still arrive over the wire and must not panic).
func (s SubsystemId) String() string {
	if name, ok := subsystemNames[s]; ok {
		return name
	}
	return "subsystem(" + hex.EncodeToString([]byte{byte(s)}) + ")"
}

// CorrelationId is a 128-bit identifier correlating a request with its
// response. Backed by uuid.UUID so it is time-sortable when generated
// with NewCorrelationId (UUIDv7, falling back to v4 if the runtime's
// entropy source fails).
type CorrelationId uuid.UUID

// NewCorrelationId generates a fresh, preferably time-sortable
// CorrelationId.
func NewCorrelationId() CorrelationId {
	if id, err := uuid.NewV7(); err == nil {
		return CorrelationId(id)
	}
	return CorrelationId(uuid.New())
}

// CorrelationIdFromBytes reconstructs a CorrelationId from its 16 raw
// bytes (as read off the wire).
func CorrelationIdFromBytes(b []byte) (CorrelationId, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return CorrelationId{}, err
	}
	return CorrelationId(u), nil
}

// String returns the canonical UUID string form.
func (c CorrelationId) String() string {
	return uuid.UUID(c).String()
}

// Bytes returns the 16 raw bytes of the correlation id.
func (c CorrelationId) Bytes() []byte {
	u := uuid.UUID(c)
	return u[:]
}

// Timestamp is seconds since the Unix epoch.
type Timestamp uint64

// Before reports whether t is strictly earlier than other.
func (t Timestamp) Before(other Timestamp) bool { return t < other }

// Sub returns t - other as a signed number of seconds; it never
// underflows because both operands are widened to int64.
func (t Timestamp) Sub(other Timestamp) int64 {
	return int64(t) - int64(other)
}
