// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

// ErrorKind identifies a kind of error, following the dcrd RuleError
// convention (errors.Is-compatible sentinels) used throughout this module.
type ErrorKind string

const (
	// ErrInvalidDifficulty indicates a difficulty value outside the
	// configured production/test bounds was supplied to a validator
	// constructor.
	ErrInvalidDifficulty = ErrorKind("ErrInvalidDifficulty")
)

// Error satisfies the error interface.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error wraps an ErrorKind with a caller-facing description, mirroring
// dcrd/blockchain's RuleError idiom so callers can errors.Is(err,
// pow.ErrInvalidDifficulty) without caring about the wrapping text.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying ErrorKind so errors.Is/errors.As see
// through the wrapper.
func (e Error) Unwrap() error {
	return e.Err
}

func newErr(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
