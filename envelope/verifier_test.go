// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package envelope

import (
	"errors"
	"testing"

	"github.com/NerfedChou/Quantum-Chain-sub004/ports"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

func newTestVerifier(clock *ports.MockClock) *Verifier {
	return NewVerifier(VerifierConfig{
		SelfId: types.SubsystemPeerDiscovery,
		Secret: []byte("test-shared-secret"),
		Clock:  clock,
	})
}

func buildValidEnvelope(t *testing.T, v *Verifier, now types.Timestamp, sender types.SubsystemId, msgType string) *Envelope {
	t.Helper()
	env := &Envelope{
		Version:       CurrentVersion,
		SenderId:      sender,
		RecipientId:   types.SubsystemPeerDiscovery,
		CorrelationId: types.NewCorrelationId(),
		Timestamp:     now,
		Payload:       []byte("payload"),
	}
	if _, err := randNonce(env); err != nil {
		t.Fatalf("nonce: %v", err)
	}
	if err := v.Sign(env); err != nil {
		t.Fatalf("sign: %v", err)
	}
	_ = msgType
	return env
}

func randNonce(env *Envelope) ([16]byte, error) {
	id := types.NewCorrelationId()
	copy(env.Nonce[:], id.Bytes())
	return env.Nonce, nil
}

func TestVerifyValid(t *testing.T) {
	clock := ports.NewMockClock(1_000_000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, clock.Now(), types.SubsystemSignatureVerification, "NodeIdentityVerified")

	result := v.Verify(env, "NodeIdentityVerified")
	if !result.Valid {
		t.Fatalf("expected valid, got error: %v", result.Err)
	}
}

func TestVerifyUnsupportedVersion(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, clock.Now(), types.SubsystemSignatureVerification, "NodeIdentityVerified")
	env.Version = 99
	// Re-sign so the signature doesn't mask the version check ordering.
	if err := v.Sign(env); err != nil {
		t.Fatal(err)
	}

	result := v.Verify(env, "NodeIdentityVerified")
	if result.Valid || !errors.Is(result.Err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", result.Err)
	}
}

func TestVerifyWrongRecipient(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, clock.Now(), types.SubsystemSignatureVerification, "NodeIdentityVerified")
	env.RecipientId = types.SubsystemMempool
	if err := v.Sign(env); err != nil {
		t.Fatal(err)
	}

	result := v.Verify(env, "NodeIdentityVerified")
	if result.Valid || !errors.Is(result.Err, ErrWrongRecipient) {
		t.Fatalf("expected ErrWrongRecipient, got %v", result.Err)
	}
}

func TestVerifyMessageFromFuture(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, clock.Now()+MaxFutureSkewSecs+1, types.SubsystemSignatureVerification, "NodeIdentityVerified")

	result := v.Verify(env, "NodeIdentityVerified")
	if result.Valid || !errors.Is(result.Err, ErrMessageFromFuture) {
		t.Fatalf("expected ErrMessageFromFuture, got %v", result.Err)
	}
}

func TestVerifyMessageExpired(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, 1000, types.SubsystemSignatureVerification, "NodeIdentityVerified")
	clock.Advance(MaxMessageAgeSecs + 1)

	result := v.Verify(env, "NodeIdentityVerified")
	if result.Valid || !errors.Is(result.Err, ErrMessageExpired) {
		t.Fatalf("expected ErrMessageExpired, got %v", result.Err)
	}
}

// TestVerifyNonceReused exercises spec.md §8 scenario S8: a reused nonce
// within the window fails, but the same nonce after the retention window
// (and a GC sweep) is accepted again.
func TestVerifyNonceReused(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env1 := buildValidEnvelope(t, v, clock.Now(), types.SubsystemSignatureVerification, "NodeIdentityVerified")

	result := v.Verify(env1, "NodeIdentityVerified")
	if !result.Valid {
		t.Fatalf("first message should verify, got %v", result.Err)
	}

	clock.Advance(5)
	env2 := &Envelope{
		Version:       CurrentVersion,
		SenderId:      types.SubsystemSignatureVerification,
		RecipientId:   types.SubsystemPeerDiscovery,
		CorrelationId: types.NewCorrelationId(),
		Timestamp:     clock.Now(),
		Nonce:         env1.Nonce,
		Payload:       []byte("payload"),
	}
	if err := v.Sign(env2); err != nil {
		t.Fatal(err)
	}
	result = v.Verify(env2, "NodeIdentityVerified")
	if result.Valid || !errors.Is(result.Err, ErrNonceReused) {
		t.Fatalf("expected ErrNonceReused, got %v", result.Err)
	}

	// After the retention window has fully elapsed and GC has run, the
	// same nonce is accepted again.
	clock.Advance(NonceRetentionSecs + 1)
	env3 := &Envelope{
		Version:       CurrentVersion,
		SenderId:      types.SubsystemSignatureVerification,
		RecipientId:   types.SubsystemPeerDiscovery,
		CorrelationId: types.NewCorrelationId(),
		Timestamp:     clock.Now(),
		Nonce:         env1.Nonce,
		Payload:       []byte("payload"),
	}
	if err := v.Sign(env3); err != nil {
		t.Fatal(err)
	}
	result = v.Verify(env3, "NodeIdentityVerified")
	if !result.Valid {
		t.Fatalf("expected nonce to be accepted after GC, got %v", result.Err)
	}
}

func TestVerifyInvalidSignature(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, clock.Now(), types.SubsystemSignatureVerification, "NodeIdentityVerified")
	env.Signature[0] ^= 0xFF

	result := v.Verify(env, "NodeIdentityVerified")
	if result.Valid || !errors.Is(result.Err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", result.Err)
	}
}

func TestVerifyReplyToMismatch(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, clock.Now(), types.SubsystemPeerDiscovery, "VerifyNodeIdentity")
	env.ReplyTo = &ReplyTo{SubsystemId: types.SubsystemMempool, Topic: "reply"}
	if err := v.Sign(env); err != nil {
		t.Fatal(err)
	}

	result := v.Verify(env, "VerifyNodeIdentity")
	if result.Valid || !errors.Is(result.Err, ErrReplyToMismatch) {
		t.Fatalf("expected ErrReplyToMismatch, got %v", result.Err)
	}
}

func TestVerifyUnauthorizedSender(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	// PeerListRequest only allows senders {5,7,13}; mempool (6) is not
	// authorized.
	env := buildValidEnvelope(t, v, clock.Now(), types.SubsystemMempool, "PeerListRequest")
	env.ReplyTo = &ReplyTo{SubsystemId: types.SubsystemMempool, Topic: "reply"}
	if err := v.Sign(env); err != nil {
		t.Fatal(err)
	}

	result := v.Verify(env, "PeerListRequest")
	if result.Valid || !errors.Is(result.Err, ErrUnauthorizedSender) {
		t.Fatalf("expected ErrUnauthorizedSender, got %v", result.Err)
	}
}

func TestVerifyRequestMissingReplyTo(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, clock.Now(), types.SubsystemPropagation, "PeerListRequest")

	result := v.Verify(env, "PeerListRequest")
	if result.Valid || !errors.Is(result.Err, ErrUnauthorizedSender) {
		t.Fatalf("expected ErrUnauthorizedSender (missing reply_to), got %v", result.Err)
	}
}

func TestRoundTripCodec(t *testing.T) {
	clock := ports.NewMockClock(1000)
	v := newTestVerifier(clock)
	env := buildValidEnvelope(t, v, clock.Now(), types.SubsystemSignatureVerification, "NodeIdentityVerified")
	env.ReplyTo = &ReplyTo{SubsystemId: types.SubsystemSignatureVerification, Topic: "t"}
	if err := v.Sign(env); err != nil {
		t.Fatal(err)
	}

	var buf writerBuf
	if err := Encode(&buf, env); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Version != env.Version || decoded.SenderId != env.SenderId ||
		decoded.RecipientId != env.RecipientId || decoded.Timestamp != env.Timestamp {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, env)
	}
	if decoded.ReplyTo == nil || decoded.ReplyTo.Topic != "t" {
		t.Fatalf("reply_to not preserved: %+v", decoded.ReplyTo)
	}
}

type writerBuf struct {
	data []byte
	pos  int
}

func (b *writerBuf) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *writerBuf) Read(p []byte) (int, error) {
	n := copy(p, b.data[b.pos:])
	b.pos += n
	if n == 0 && len(p) > 0 {
		return 0, errEOF
	}
	return n, nil
}

var errEOF = errors.New("eof")
