// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package envelope

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// VerificationResult is the structured outcome of Verify, supplementing
// the distilled spec's plain error with the offending values so callers
// and log lines can report specifics without re-deriving them (grounded
// on original_source's shared-types/envelope.rs VerificationResult enum;
// see SPEC_FULL.md's Supplemented Features).
type VerificationResult struct {
	Valid bool
	Err   *VerifyError

	// Populated only for the corresponding failure kind.
	ReceivedVersion  uint16
	SupportedMin     uint16
	SupportedMax     uint16
	MessageTimestamp types.Timestamp
	Now              types.Timestamp
}

// VerifierConfig carries the Verifier's construction-time parameters.
type VerifierConfig struct {
	// SelfId is the subsystem this Verifier protects; envelopes whose
	// RecipientId differs are rejected (spec.md §4.2 rule 2).
	SelfId types.SubsystemId

	// Secret is the shared HMAC-SHA-256 key used to verify signatures
	// (spec.md §4.2 rule 5).
	Secret []byte

	// Clock supplies "now" for timestamp/nonce evaluation.
	Clock ports.TimeSource

	// AuthTable is the closed per-message-type allow-list. If nil,
	// NewDefaultAuthorizationTable() is used.
	AuthTable *AuthorizationTable

	// NonceCacheCeiling is the hard cap on tracked nonces (spec.md §6,
	// nonce_cache_max). Defaults to 1_000_000 if zero.
	NonceCacheCeiling uint64

	// CleanupIntervalSecs is how often the nonce cache's age-based GC
	// sweep runs, independent of the hard ceiling. Defaults to 30s.
	CleanupIntervalSecs uint64
}

// Verifier is the sole trust boundary between subsystems: every envelope
// a component receives must pass Verify before any of its fields are
// trusted (spec.md §4.2).
type Verifier struct {
	cfg    VerifierConfig
	nonces *nonceCache
}

// NewVerifier constructs a Verifier from cfg, filling in defaults for
// zero-valued optional fields.
func NewVerifier(cfg VerifierConfig) *Verifier {
	if cfg.AuthTable == nil {
		cfg.AuthTable = NewDefaultAuthorizationTable()
	}
	if cfg.NonceCacheCeiling == 0 {
		cfg.NonceCacheCeiling = 1_000_000
	}
	if cfg.CleanupIntervalSecs == 0 {
		cfg.CleanupIntervalSecs = 30
	}
	return &Verifier{
		cfg:    cfg,
		nonces: newNonceCache(cfg.NonceCacheCeiling, NonceRetentionSecs, cfg.CleanupIntervalSecs),
	}
}

// Verify applies the seven ordered rules from spec.md §4.2 to env and its
// declared messageType, returning the first rule that fails or Valid if
// all pass. Rule order is load-bearing: cheap structural checks run
// before the nonce-cache mutation and the signature computation, so a
// malformed envelope never gets to consume nonce-cache capacity or CPU on
// a cryptographic verify.
func (v *Verifier) Verify(env *Envelope, messageType string) VerificationResult {
	result := v.verify(env, messageType)
	if !result.Valid {
		// Validation and authorization failures are surfaced to the
		// caller but never escalated to a ban (spec.md §7); debug is
		// sufficient since the caller already gets the structured error.
		log.Debugf("envelope rejected from %s for %s: %v", env.SenderId, messageType, result.Err)
	}
	return result
}

func (v *Verifier) verify(env *Envelope, messageType string) VerificationResult {
	now := v.cfg.Clock.Now()

	// Rule 1: version.
	if env.Version < MinSupportedVersion || env.Version > MaxSupportedVersion {
		return VerificationResult{
			Err: newVerifyErr(ErrUnsupportedVersion,
				fmt.Sprintf("version %d outside supported range [%d,%d]",
					env.Version, MinSupportedVersion, MaxSupportedVersion)),
			ReceivedVersion: env.Version,
			SupportedMin:    MinSupportedVersion,
			SupportedMax:    MaxSupportedVersion,
		}
	}

	// Rule 2: recipient.
	if env.RecipientId != v.cfg.SelfId {
		return VerificationResult{Err: newVerifyErr(ErrWrongRecipient,
			fmt.Sprintf("recipient %s is not self (%s)", env.RecipientId, v.cfg.SelfId))}
	}

	// Rule 3: timestamp.
	if env.Timestamp.Sub(now) > MaxFutureSkewSecs {
		return VerificationResult{
			Err:              newVerifyErr(ErrMessageFromFuture, "timestamp too far in the future"),
			MessageTimestamp: env.Timestamp,
			Now:              now,
		}
	}
	if now.Sub(env.Timestamp) > MaxMessageAgeSecs {
		return VerificationResult{
			Err:              newVerifyErr(ErrMessageExpired, "timestamp too old"),
			MessageTimestamp: env.Timestamp,
			Now:              now,
		}
	}

	// Rule 4: nonce replay.
	if v.nonces.checkAndInsert(string(env.Nonce[:]), now) {
		return VerificationResult{Err: newVerifyErr(ErrNonceReused, "nonce already observed")}
	}

	// Rule 5: signature.
	signingBytes, err := EncodeSigningBytes(env)
	if err != nil {
		return VerificationResult{Err: newVerifyErr(ErrInvalidSignature, "unable to encode signing bytes")}
	}
	mac := hmac.New(sha256.New, v.cfg.Secret)
	mac.Write(signingBytes)
	expected := mac.Sum(nil)
	if !hmac.Equal(expected, env.Signature) {
		return VerificationResult{Err: newVerifyErr(ErrInvalidSignature, "signature mismatch")}
	}

	// Rule 6: reply-to consistency (forwarding-attack defense).
	if env.ReplyTo != nil && env.ReplyTo.SubsystemId != env.SenderId {
		return VerificationResult{Err: newVerifyErr(ErrReplyToMismatch,
			fmt.Sprintf("reply_to subsystem %s != sender %s", env.ReplyTo.SubsystemId, env.SenderId))}
	}

	// Rule 7: per-message-type authorization.
	rule, ok := v.cfg.AuthTable.Lookup(messageType)
	if !ok || !rule.allows(env.SenderId) {
		return VerificationResult{Err: newVerifyErr(ErrUnauthorizedSender,
			fmt.Sprintf("sender %s not authorized for %s", env.SenderId, messageType))}
	}
	if rule.RequiresReplyTo && env.ReplyTo == nil {
		return VerificationResult{Err: newVerifyErr(ErrUnauthorizedSender,
			fmt.Sprintf("%s requires reply_to", messageType))}
	}

	return VerificationResult{Valid: true}
}

// Sign computes env.Signature over env's canonical signing bytes using
// Secret. Used by subsystems composing outbound envelopes.
func (v *Verifier) Sign(env *Envelope) error {
	signingBytes, err := EncodeSigningBytes(env)
	if err != nil {
		return err
	}
	mac := hmac.New(sha256.New, v.cfg.Secret)
	mac.Write(signingBytes)
	env.Signature = mac.Sum(nil)
	return nil
}

// NonceCacheSize reports how many nonces are currently tracked, for
// statistics/metrics surfaces outside this core.
func (v *Verifier) NonceCacheSize() int {
	return v.nonces.size()
}
