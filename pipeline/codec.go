// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pipeline

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/NerfedChou/Quantum-Chain-sub004/block"
	"github.com/NerfedChou/Quantum-Chain-sub004/mempool"
	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// Payload layouts mirror discovery/payload.go's fixed-then-length-
// prefixed style: every variable-length field is preceded by a u32
// length, every fixed field is written at its natural width,
// big-endian.

func encodeBlockValidated(b *block.Block) []byte {
	var buf bytes.Buffer
	buf.Write(b.Hash[:])
	buf.Write(b.ParentHash[:])
	writeUint64(&buf, b.Height)
	writeUint64(&buf, uint64(b.Timestamp))
	writeUint32(&buf, uint32(len(b.Bytes)))
	buf.Write(b.Bytes)
	return buf.Bytes()
}

func decodeBlockValidated(payload []byte) (*block.Block, error) {
	r := bytes.NewReader(payload)
	b := &block.Block{}
	if _, err := readFull(r, b.Hash[:]); err != nil {
		return nil, err
	}
	if _, err := readFull(r, b.ParentHash[:]); err != nil {
		return nil, err
	}
	height, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	b.Height = height
	ts, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	b.Timestamp = types.Timestamp(ts)
	blockLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	b.Bytes = make([]byte, blockLen)
	if _, err := readFull(r, b.Bytes); err != nil {
		return nil, err
	}
	return b, nil
}

func encodeRootComputed(hash, root types.Hash) []byte {
	buf := make([]byte, 0, types.HashSize*2)
	buf = append(buf, hash[:]...)
	buf = append(buf, root[:]...)
	return buf
}

func decodeRootComputed(payload []byte) (hash, root types.Hash, err error) {
	if len(payload) != types.HashSize*2 {
		err = fmt.Errorf("pipeline: unexpected root-computed payload length %d", len(payload))
		return
	}
	copy(hash[:], payload[:types.HashSize])
	copy(root[:], payload[types.HashSize:])
	return
}

func encodeBlockFinalized(height uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, height)
	return buf
}

func encodeAddTransactionRequest(tx *mempool.Tx) []byte {
	var buf bytes.Buffer
	buf.Write(tx.Hash[:])
	buf.Write(tx.Sender[:])
	writeUint64(&buf, tx.Nonce)
	writeUint64(&buf, tx.GasPrice)
	writeUint64(&buf, tx.GasLimit)
	writeUint64(&buf, tx.Value)
	return buf.Bytes()
}

func decodeAddTransactionRequest(payload []byte) (*mempool.Tx, error) {
	r := bytes.NewReader(payload)
	tx := &mempool.Tx{}
	if _, err := readFull(r, tx.Hash[:]); err != nil {
		return nil, err
	}
	if _, err := readFull(r, tx.Sender[:]); err != nil {
		return nil, err
	}
	var err error
	if tx.Nonce, err = readUint64(r); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = readUint64(r); err != nil {
		return nil, err
	}
	if tx.GasLimit, err = readUint64(r); err != nil {
		return nil, err
	}
	if tx.Value, err = readUint64(r); err != nil {
		return nil, err
	}
	return tx, nil
}

func encodeGetTransactionsRequest(maxCount int, maxGas uint64) []byte {
	var buf bytes.Buffer
	writeUint32(&buf, uint32(maxCount))
	writeUint64(&buf, maxGas)
	return buf.Bytes()
}

func decodeGetTransactionsRequest(payload []byte) (maxCount int, maxGas uint64, err error) {
	r := bytes.NewReader(payload)
	count, err := readUint32(r)
	if err != nil {
		return 0, 0, err
	}
	maxGas, err = readUint64(r)
	if err != nil {
		return 0, 0, err
	}
	return int(count), maxGas, nil
}

func encodeTransactionList(txs []*mempool.Tx) []byte {
	var buf bytes.Buffer
	writeUint32(&buf, uint32(len(txs)))
	for _, tx := range txs {
		buf.Write(tx.Hash[:])
		buf.Write(tx.Sender[:])
		writeUint64(&buf, tx.Nonce)
		writeUint64(&buf, tx.GasPrice)
		writeUint64(&buf, tx.GasLimit)
		writeUint64(&buf, tx.Value)
	}
	return buf.Bytes()
}

func encodeHashList(hashes []types.Hash) []byte {
	var buf bytes.Buffer
	writeUint32(&buf, uint32(len(hashes)))
	for _, h := range hashes {
		buf.Write(h[:])
	}
	return buf.Bytes()
}

func decodeHashList(payload []byte) ([]types.Hash, error) {
	r := bytes.NewReader(payload)
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	hashes := make([]types.Hash, count)
	for i := range hashes {
		if _, err := readFull(r, hashes[i][:]); err != nil {
			return nil, err
		}
	}
	return hashes, nil
}

func encodeProposeTransactionsRequest(targetHeight uint64, hashes []types.Hash) []byte {
	var buf bytes.Buffer
	writeUint64(&buf, targetHeight)
	buf.Write(encodeHashList(hashes))
	return buf.Bytes()
}

func decodeProposeTransactionsRequest(payload []byte) (targetHeight uint64, hashes []types.Hash, err error) {
	r := bytes.NewReader(payload)
	targetHeight, err = readUint64(r)
	if err != nil {
		return 0, nil, err
	}
	rest := make([]byte, r.Len())
	if _, err = readFull(r, rest); err != nil {
		return 0, nil, err
	}
	hashes, err = decodeHashList(rest)
	return targetHeight, hashes, err
}

func encodeConfirmInclusionRequest(height uint64, blockHash types.Hash, hashes []types.Hash) []byte {
	var buf bytes.Buffer
	writeUint64(&buf, height)
	buf.Write(blockHash[:])
	buf.Write(encodeHashList(hashes))
	return buf.Bytes()
}

func decodeConfirmInclusionRequest(payload []byte) (height uint64, blockHash types.Hash, hashes []types.Hash, err error) {
	r := bytes.NewReader(payload)
	height, err = readUint64(r)
	if err != nil {
		return
	}
	if _, err = readFull(r, blockHash[:]); err != nil {
		return
	}
	rest := make([]byte, r.Len())
	if _, err = readFull(r, rest); err != nil {
		return
	}
	hashes, err = decodeHashList(rest)
	return
}

func ackPayload(ok bool, description string) []byte {
	var buf bytes.Buffer
	if ok {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	writeUint32(&buf, uint32(len(description)))
	buf.WriteString(description)
	return buf.Bytes()
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readFull(r *bytes.Reader, b []byte) (int, error) {
	n, err := r.Read(b)
	if err != nil {
		return n, err
	}
	if n != len(b) {
		return n, fmt.Errorf("pipeline: short read: got %d want %d", n, len(b))
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

func readUint64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
