// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package envelope

import "fmt"

// ErrorKind identifies a kind of error in the closed envelope-verification
// taxonomy (spec.md §4.2, §7). It allows callers to do errors.Is(err,
// ErrUnsupportedVersion) without caring about the wrapped description,
// following the RuleError convention used throughout the dcrd/btcsuite
// corpus.
type ErrorKind string

// These constants are the complete, closed set of ways a message can fail
// envelope verification. They are checked in this exact order by Verify.
const (
	// ErrUnsupportedVersion indicates the envelope's version field falls
	// outside the supported [Min,Max] range.
	ErrUnsupportedVersion = ErrorKind("ErrUnsupportedVersion")

	// ErrWrongRecipient indicates recipient_id does not match the local
	// subsystem id.
	ErrWrongRecipient = ErrorKind("ErrWrongRecipient")

	// ErrMessageFromFuture indicates timestamp is further in the future
	// than the configured skew tolerance.
	ErrMessageFromFuture = ErrorKind("ErrMessageFromFuture")

	// ErrMessageExpired indicates timestamp is older than the configured
	// age window.
	ErrMessageExpired = ErrorKind("ErrMessageExpired")

	// ErrNonceReused indicates the nonce was already observed within the
	// retention window.
	ErrNonceReused = ErrorKind("ErrNonceReused")

	// ErrInvalidSignature indicates the HMAC-SHA-256 signature did not
	// verify.
	ErrInvalidSignature = ErrorKind("ErrInvalidSignature")

	// ErrReplyToMismatch indicates reply_to.subsystem_id != sender_id.
	ErrReplyToMismatch = ErrorKind("ErrReplyToMismatch")

	// ErrUnauthorizedSender indicates sender_id is not on the message
	// type's allow-list.
	ErrUnauthorizedSender = ErrorKind("ErrUnauthorizedSender")
)

// Error returns the string representation of the error kind.
func (e ErrorKind) Error() string {
	return string(e)
}

// VerifyError wraps an ErrorKind with a human-readable description,
// preserving the kind for errors.Is/errors.As while giving logs and
// payload error translations something descriptive to print.
type VerifyError struct {
	Kind        ErrorKind
	Description string
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// Unwrap allows errors.Is(err, envelope.ErrXxx) to succeed.
func (e *VerifyError) Unwrap() error {
	return e.Kind
}

// Is reports whether target equals e.Kind, so errors.Is(verifyErr, kind)
// and errors.Is(verifyErr, otherVerifyErr) both work as expected.
func (e *VerifyError) Is(target error) bool {
	if k, ok := target.(ErrorKind); ok {
		return e.Kind == k
	}
	var other *VerifyError
	if ok := asVerifyError(target, &other); ok {
		return other.Kind == e.Kind
	}
	return false
}

func asVerifyError(err error, out **VerifyError) bool {
	ve, ok := err.(*VerifyError)
	if ok {
		*out = ve
	}
	return ok
}

func newVerifyErr(kind ErrorKind, description string) *VerifyError {
	return &VerifyError{Kind: kind, Description: description}
}
