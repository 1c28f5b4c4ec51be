// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// DiskSpaceChecker reports the fraction of free disk space remaining at
// a path, backing write_block precondition 1 (spec.md §4.6: "Disk space
// available >= configured minimum percentage"). It is an interface
// rather than a direct golang.org/x/sys/unix call so tests can simulate
// a full disk without needing a real filesystem at capacity.
type DiskSpaceChecker interface {
	// FreePercent returns the percentage (0-100) of free space remaining
	// on the filesystem backing path.
	FreePercent(path string) (float64, error)
}

// AlwaysAvailable is a DiskSpaceChecker that reports abundant free space
// unconditionally, used by tests that don't exercise the disk-space
// precondition.
type AlwaysAvailable struct{}

// FreePercent always returns 100.
func (AlwaysAvailable) FreePercent(string) (float64, error) {
	return 100, nil
}
