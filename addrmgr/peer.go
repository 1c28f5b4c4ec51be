// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// PeerInfo is a verified peer's routing-table entry (spec.md §3).
type PeerInfo struct {
	NodeId     types.NodeId
	SocketAddr net.IP
	Port       uint16
	LastSeen   types.Timestamp
}

// subnetKey returns the peer's address truncated to prefixBits, used for
// subnet-diversity enforcement (spec.md §4.3). IPv4 addresses are masked
// as IPv4; everything else (including IPv4-mapped IPv6) is masked as
// IPv6, matching net.IP's own dual representation.
func subnetKey(ip net.IP, prefixBits int) string {
	if v4 := ip.To4(); v4 != nil {
		bits := prefixBits
		if bits > 32 {
			bits = 32
		}
		mask := net.CIDRMask(bits, 32)
		return v4.Mask(mask).String()
	}
	v6 := ip.To16()
	if v6 == nil {
		return ip.String()
	}
	bits := prefixBits
	if bits > 128 {
		bits = 128
	}
	mask := net.CIDRMask(bits, 128)
	return v6.Mask(mask).String()
}

// PendingPeer is a peer awaiting identity verification from subsystem 10
// (spec.md §3, the Memory-Bomb-Defended staging area).
type PendingPeer struct {
	PeerInfo             PeerInfo
	ReceivedAt           types.Timestamp
	VerificationDeadline types.Timestamp
}

// BanReason is the closed set of valid reasons a node may be banned
// (spec.md §4.3). InvalidSignature is deliberately absent: a failed
// signature verification is an IP-spoofing vector and must be handled by
// silent drop, never a ban (spec.md §7, §8 invariant 9).
type BanReason string

const (
	BanReasonMalformedMessage  BanReason = "MalformedMessage"
	BanReasonExcessiveRequests BanReason = "ExcessiveRequests"
	BanReasonManualBan         BanReason = "ManualBan"
)

// IsValid reports whether r is a member of the closed BanReason set.
func (r BanReason) IsValid() bool {
	switch r {
	case BanReasonMalformedMessage, BanReasonExcessiveRequests, BanReasonManualBan:
		return true
	default:
		return false
	}
}

// BannedEntry records an active ban (spec.md §3).
type BannedEntry struct {
	NodeId      types.NodeId
	BannedUntil types.Timestamp
	Reason      BanReason
}
