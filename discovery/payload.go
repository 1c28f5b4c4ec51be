// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// encodeVerifyNodeIdentity encodes the payload for a VerifyNodeIdentity
// envelope: node_id || len(pubkey) || pubkey || len(signature) ||
// signature, mirroring the fixed-then-length-prefixed layout
// envelope/codec.go uses for its own fields.
func encodeVerifyNodeIdentity(nodeID types.NodeId, pubkey [33]byte, signature [64]byte) []byte {
	var buf bytes.Buffer
	buf.Write(nodeID[:])
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(pubkey)))
	buf.Write(lenBuf[:])
	buf.Write(pubkey[:])
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(signature)))
	buf.Write(lenBuf[:])
	buf.Write(signature[:])
	return buf.Bytes()
}

// decodeVerifyNodeIdentity reverses encodeVerifyNodeIdentity.
func decodeVerifyNodeIdentity(payload []byte) (nodeID types.NodeId, pubkey [33]byte, signature [64]byte, err error) {
	r := bytes.NewReader(payload)
	if _, err = readFull(r, nodeID[:]); err != nil {
		return
	}
	pkLen, err := readUint32(r)
	if err != nil {
		return
	}
	if pkLen != uint32(len(pubkey)) {
		err = fmt.Errorf("discovery: unexpected pubkey length %d", pkLen)
		return
	}
	if _, err = readFull(r, pubkey[:]); err != nil {
		return
	}
	sigLen, err := readUint32(r)
	if err != nil {
		return
	}
	if sigLen != uint32(len(signature)) {
		err = fmt.Errorf("discovery: unexpected signature length %d", sigLen)
		return
	}
	_, err = readFull(r, signature[:])
	return
}

// decodeNodeIdentityVerified decodes a NodeIdentityVerified payload:
// node_id || identity_valid (1 byte).
func decodeNodeIdentityVerified(payload []byte) (nodeID types.NodeId, identityValid bool, err error) {
	if len(payload) != types.NodeIdSize+1 {
		err = fmt.Errorf("discovery: unexpected NodeIdentityVerified payload length %d", len(payload))
		return
	}
	copy(nodeID[:], payload[:types.NodeIdSize])
	identityValid = payload[types.NodeIdSize] != 0
	return
}

func encodeNodeIdentityVerified(nodeID types.NodeId, identityValid bool) []byte {
	buf := make([]byte, types.NodeIdSize+1)
	copy(buf, nodeID[:])
	if identityValid {
		buf[types.NodeIdSize] = 1
	}
	return buf
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n, err := r.Read(b)
	if err != nil {
		return n, err
	}
	if n != len(b) {
		return n, fmt.Errorf("discovery: short read: got %d want %d", n, len(b))
	}
	return n, nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
