// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/NerfedChou/Quantum-Chain-sub004/block"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// canonicalBlockBytes returns the bytes a checksum is computed over: the
// block's hash, parent hash, height, timestamp, merkle root, state root
// and raw body, in that fixed order. Keeping this separate from the KV encoding means a
// checksum computed at write time and one recomputed at read time always
// agree regardless of any later change to the storage envelope format.
func canonicalBlockBytes(sb *StoredBlock) []byte {
	var buf bytes.Buffer
	buf.Write(sb.Block.Hash[:])
	buf.Write(sb.Block.ParentHash[:])
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], sb.Block.Height)
	buf.Write(u64[:])
	binary.BigEndian.PutUint64(u64[:], uint64(sb.Block.Timestamp))
	buf.Write(u64[:])
	buf.Write(sb.MerkleRoot[:])
	buf.Write(sb.StateRoot[:])
	buf.Write(sb.Block.Bytes)
	return buf.Bytes()
}

// computeChecksum returns the CRC32C (Castagnoli) checksum over sb's
// canonical bytes (spec.md §4.6: "a CRC32C checksum computed over its
// canonical bytes").
func computeChecksum(sb *StoredBlock) uint32 {
	return crc32.Checksum(canonicalBlockBytes(sb), crc32cTable)
}

func encodeStoredBlock(sb *StoredBlock) []byte {
	var buf bytes.Buffer
	buf.Write(sb.Block.Hash[:])
	buf.Write(sb.Block.ParentHash[:])
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], sb.Block.Height)
	buf.Write(u64[:])
	binary.BigEndian.PutUint64(u64[:], uint64(sb.Block.Timestamp))
	buf.Write(u64[:])
	buf.Write(sb.MerkleRoot[:])
	buf.Write(sb.StateRoot[:])
	binary.BigEndian.PutUint64(u64[:], uint64(sb.StoredAt))
	buf.Write(u64[:])
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], sb.Checksum)
	buf.Write(u32[:])
	binary.BigEndian.PutUint32(u32[:], uint32(len(sb.Block.Bytes)))
	buf.Write(u32[:])
	buf.Write(sb.Block.Bytes)
	return buf.Bytes()
}

func decodeStoredBlock(data []byte) (*StoredBlock, error) {
	r := bytes.NewReader(data)
	sb := &StoredBlock{Block: &block.Block{}}

	if _, err := readFull(r, sb.Block.Hash[:]); err != nil {
		return nil, err
	}
	if _, err := readFull(r, sb.Block.ParentHash[:]); err != nil {
		return nil, err
	}
	height, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	sb.Block.Height = height
	ts, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	sb.Block.Timestamp = types.Timestamp(ts)
	if _, err := readFull(r, sb.MerkleRoot[:]); err != nil {
		return nil, err
	}
	if _, err := readFull(r, sb.StateRoot[:]); err != nil {
		return nil, err
	}
	storedAt, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	sb.StoredAt = types.Timestamp(storedAt)
	checksum, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	sb.Checksum = checksum
	bodyLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	body := make([]byte, bodyLen)
	if _, err := readFull(r, body); err != nil {
		return nil, err
	}
	sb.Block.Bytes = body
	return sb, nil
}

func encodeMetadata(m *Metadata) []byte {
	var buf bytes.Buffer
	if m.HasGenesis {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.Write(m.GenesisHash[:])
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], m.LatestHeight)
	buf.Write(u64[:])
	binary.BigEndian.PutUint64(u64[:], m.FinalizedHeight)
	buf.Write(u64[:])
	binary.BigEndian.PutUint64(u64[:], m.TotalBlocks)
	buf.Write(u64[:])
	return buf.Bytes()
}

func decodeMetadata(data []byte) (*Metadata, error) {
	r := bytes.NewReader(data)
	m := &Metadata{}
	flag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	m.HasGenesis = flag != 0
	if _, err := readFull(r, m.GenesisHash[:]); err != nil {
		return nil, err
	}
	if m.LatestHeight, err = readUint64(r); err != nil {
		return nil, err
	}
	if m.FinalizedHeight, err = readUint64(r); err != nil {
		return nil, err
	}
	if m.TotalBlocks, err = readUint64(r); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeTxLocation(loc *TxLocation) []byte {
	var buf bytes.Buffer
	buf.Write(loc.BlockHash[:])
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], loc.Height)
	buf.Write(u64[:])
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], loc.Index)
	buf.Write(u32[:])
	buf.Write(loc.MerkleRoot[:])
	return buf.Bytes()
}

func decodeTxLocation(data []byte) (*TxLocation, error) {
	r := bytes.NewReader(data)
	loc := &TxLocation{}
	if _, err := readFull(r, loc.BlockHash[:]); err != nil {
		return nil, err
	}
	height, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	loc.Height = height
	index, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	loc.Index = index
	if _, err := readFull(r, loc.MerkleRoot[:]); err != nil {
		return nil, err
	}
	return loc, nil
}

// encodeTxHashes/decodeTxHashes serialize the ordered list of tx hashes
// belonging to one block (tx_hashes_by_block index).
func encodeTxHashes(hashes []types.Hash) []byte {
	var buf bytes.Buffer
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(hashes)))
	buf.Write(u32[:])
	for _, h := range hashes {
		buf.Write(h[:])
	}
	return buf.Bytes()
}

func decodeTxHashes(data []byte) ([]types.Hash, error) {
	r := bytes.NewReader(data)
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	out := make([]types.Hash, count)
	for i := range out {
		if _, err := readFull(r, out[i][:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n, err := r.Read(b)
	if err != nil {
		return n, err
	}
	if n != len(b) {
		return n, fmt.Errorf("storage: short read: got %d want %d", n, len(b))
	}
	return n, nil
}
