// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import "fmt"

// ErrorKind is the closed taxonomy of BlockStorageService failure modes
// (spec.md §4.6, §7).
type ErrorKind string

func (e ErrorKind) Error() string { return string(e) }

const (
	// ErrInsufficientDiskSpace indicates free disk space fell below
	// storage.min_disk_percent (write_block precondition 1).
	ErrInsufficientDiskSpace = ErrorKind("ErrInsufficientDiskSpace")

	// ErrBlockSizeExceeded indicates the block's serialized size exceeds
	// MAX_BLOCK_SIZE (write_block precondition 2).
	ErrBlockSizeExceeded = ErrorKind("ErrBlockSizeExceeded")

	// ErrZeroBlockHash indicates the block hash is the zero value
	// (write_block precondition 3).
	ErrZeroBlockHash = ErrorKind("ErrZeroBlockHash")

	// ErrParentNotFound indicates height > 0 but no block exists at
	// height-1 (write_block precondition 4).
	ErrParentNotFound = ErrorKind("ErrParentNotFound")

	// ErrGenesisModificationAttempt indicates a write at height 0 when a
	// different genesis block is already recorded (write_block
	// precondition 5, §8 invariant 6).
	ErrGenesisModificationAttempt = ErrorKind("ErrGenesisModificationAttempt")

	// ErrDataCorruption indicates a stored block's recomputed checksum
	// does not match the one recorded at write time. Fatal; surfaced,
	// never silently patched (spec.md §7).
	ErrDataCorruption = ErrorKind("ErrDataCorruption")

	// ErrHeightNotFound indicates no block is recorded at the requested
	// height.
	ErrHeightNotFound = ErrorKind("ErrHeightNotFound")

	// ErrBlockNotFound indicates no block is recorded for the requested
	// hash.
	ErrBlockNotFound = ErrorKind("ErrBlockNotFound")

	// ErrTxLocationNotFound indicates the requested transaction hash has
	// no recorded location.
	ErrTxLocationNotFound = ErrorKind("ErrTxLocationNotFound")

	// ErrInvalidFinalization indicates mark_finalized was called with a
	// height not greater than the current finalized_height, or one that
	// exceeds latest_height (spec.md §4.6 "Finalization", §8 invariant 5).
	ErrInvalidFinalization = ErrorKind("ErrInvalidFinalization")

	// ErrBatchWriteFailed wraps a failure from the underlying KVStore's
	// AtomicBatchWrite; none of the batch's writes took effect.
	ErrBatchWriteFailed = ErrorKind("ErrBatchWriteFailed")
)

// Error wraps an ErrorKind with a descriptive message, following the
// RuleError idiom used throughout this module.
type Error struct {
	Kind        ErrorKind
	Description string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Description) }
func (e *Error) Unwrap() error { return e.Kind }

func (e *Error) Is(target error) bool {
	if k, ok := target.(ErrorKind); ok {
		return e.Kind == k
	}
	if other, ok := target.(*Error); ok {
		return other.Kind == e.Kind
	}
	return false
}

func newErr(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}
