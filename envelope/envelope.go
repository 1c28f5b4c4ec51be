// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package envelope implements the AuthenticatedMessage envelope and its
// Verifier (spec.md §4.2) - the sole trust boundary between subsystems. No
// component may read another's state except through a verified envelope.
package envelope

import "github.com/NerfedChou/Quantum-Chain-sub004/types"

// CurrentVersion is the protocol version this implementation emits.
const CurrentVersion = 1

// MinSupportedVersion and MaxSupportedVersion bound the versions this
// Verifier accepts (spec.md §4.2 rule 1).
const (
	MinSupportedVersion = 1
	MaxSupportedVersion = 1
)

// MaxFutureSkewSecs is the maximum amount of clock skew tolerated for a
// message whose timestamp is in the future (spec.md §4.2 rule 3).
const MaxFutureSkewSecs = 10

// MaxMessageAgeSecs is the maximum age tolerated for a message's
// timestamp (spec.md §4.2 rule 3).
const MaxMessageAgeSecs = 60

// NonceRetentionSecs is how long a nonce is remembered for replay
// detection: 2x the timestamp validity window (spec.md §4.2 rule 4).
const NonceRetentionSecs = 2 * MaxMessageAgeSecs

// ReplyTo names where a response should be published and which subsystem
// is expected to receive it.
type ReplyTo struct {
	SubsystemId types.SubsystemId
	Topic       string
}

// Envelope is the universal authenticated carrier for all inter-subsystem
// communication (spec.md §3, §4.2). Payload is left as opaque bytes: this
// repo does not mandate a payload codec, only the envelope around it.
type Envelope struct {
	Version       uint16
	SenderId      types.SubsystemId
	RecipientId   types.SubsystemId
	CorrelationId types.CorrelationId
	ReplyTo       *ReplyTo
	Timestamp     types.Timestamp
	Nonce         [16]byte
	Signature     []byte
	Payload       []byte

	// MessageType names the payload's message kind (e.g.
	// "VerifyNodeIdentity") for authorization-table lookups. It is
	// envelope metadata carried alongside the wire bytes, not part of the
	// payload, so it is never subject to the "ignore duplicated identity
	// fields" rule - it describes framing, not identity.
	MessageType string
}
