// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"math/bits"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
	"github.com/decred/dcrd/math/uint256"
)

// Distance is the XOR distance between two NodeIds, represented as a
// full-precision 256-bit unsigned integer (github.com/decred/dcrd/math/
// uint256) rather than just the bucket index, so find_closest can order
// peers within (and across) a bucket by their exact distance instead of
// only by which of the 256 buckets they fall in.
type Distance struct {
	value uint256.Uint256
	bytes [types.NodeIdSize]byte
}

// xorDistance computes the XOR distance between a and b.
func xorDistance(a, b types.NodeId) Distance {
	var d Distance
	for i := range a {
		d.bytes[i] = a[i] ^ b[i]
	}
	d.value.SetBytes(d.bytes)
	return d
}

// Cmp returns -1, 0 or 1 as d is numerically less than, equal to, or
// greater than other, matching math/big.Int's Cmp convention that the
// rest of the decred/dcrd numeric types (uint256 included) follow.
func (d Distance) Cmp(other Distance) int {
	return d.value.Cmp(&other.value)
}

// IsZero reports whether the distance is zero, i.e. the two NodeIds being
// compared are identical (SPEC's SelfConnection case).
func (d Distance) IsZero() bool {
	return d.bytes == [types.NodeIdSize]byte{}
}

// numBuckets is the number of k-buckets in the routing table: one per bit
// of a 256-bit NodeId (spec.md §4.3).
const numBuckets = types.NodeIdSize * 8

// bucketIndex resolves the Open Question in spec.md §9: the bucket-index
// function is "255 - leading_zero_bits(distance)", i.e. the position
// (0-255, counting from the least-significant bit) of the XOR distance's
// highest set bit. A distance of zero (self-comparison) has no bucket.
// This is applied identically by insert, find_closest and every test.
func bucketIndex(d Distance) (int, bool) {
	if d.IsZero() {
		return 0, false
	}
	for i, b := range d.bytes {
		if b == 0 {
			continue
		}
		// Bit-precise: count each whole-zero byte as 8 (already skipped
		// above) plus the leading zeros of the first non-zero byte,
		// mirroring the PoW leading-zero counting convention in
		// pow.CountLeadingZeroBits.
		leadingZeroBitsInDistance := i*8 + bits.LeadingZeros8(b)
		return (numBuckets - 1) - leadingZeroBitsInDistance, true
	}
	return 0, false
}
