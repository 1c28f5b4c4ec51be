// Copyright (c) 2025 The Quantum-Chain developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package envelope

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/NerfedChou/Quantum-Chain-sub004/types"
)

// Canonical on-the-wire byte layout (spec.md §6, Open Question 2, resolved
// in SPEC_FULL.md): big-endian fixed-width integers, UUID fields as their
// raw 16 bytes, reply_to as a presence flag followed by its fields, and a
// length-prefixed opaque payload. This mirrors the element-at-a-time
// encode/decode style used by the teacher's wire package
// (wire/msgcfilter.go's BtcEncode/BtcDecode) without importing it, since
// wire's own codec is entangled with chain protocol-version gating that
// has no home in this core.

const maxReplyToTopicLen = 1<<16 - 1
const maxPayloadLen = 16 << 20 // 16 MiB, generous upper bound for IPC payloads

// EncodeSigningBytes writes the canonical signing input for env: every
// header field in wire order, excluding Signature itself, exactly as
// spec.md §6 describes ("Concatenate in field order above (excluding
// signature)").
func EncodeSigningBytes(env *Envelope) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeHeader(&buf, env); err != nil {
		return nil, err
	}
	if err := writePayload(&buf, env.Payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode serializes env (header, signature, and payload) to w.
func Encode(w io.Writer, env *Envelope) error {
	var buf bytes.Buffer
	if err := writeHeader(&buf, env); err != nil {
		return err
	}
	if err := writeVarBytes(&buf, env.Signature); err != nil {
		return err
	}
	if err := writePayload(&buf, env.Payload); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Decode deserializes an Envelope from r.
func Decode(r io.Reader) (*Envelope, error) {
	env := &Envelope{}
	if err := readHeader(r, env); err != nil {
		return nil, err
	}
	sig, err := readVarBytes(r)
	if err != nil {
		return nil, err
	}
	env.Signature = sig
	payload, err := readPayload(r)
	if err != nil {
		return nil, err
	}
	env.Payload = payload
	return env, nil
}

func writeHeader(buf *bytes.Buffer, env *Envelope) error {
	if err := binary.Write(buf, binary.BigEndian, env.Version); err != nil {
		return err
	}
	buf.WriteByte(byte(env.SenderId))
	buf.WriteByte(byte(env.RecipientId))
	buf.Write(env.CorrelationId.Bytes())
	if err := writeReplyTo(buf, env.ReplyTo); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, uint64(env.Timestamp)); err != nil {
		return err
	}
	buf.Write(env.Nonce[:])
	return nil
}

func writeReplyTo(buf *bytes.Buffer, rt *ReplyTo) error {
	if rt == nil {
		buf.WriteByte(0)
		return nil
	}
	if len(rt.Topic) > maxReplyToTopicLen {
		return errors.New("envelope: reply_to topic too long")
	}
	buf.WriteByte(1)
	buf.WriteByte(byte(rt.SubsystemId))
	if err := binary.Write(buf, binary.BigEndian, uint16(len(rt.Topic))); err != nil {
		return err
	}
	buf.WriteString(rt.Topic)
	return nil
}

func writeVarBytes(buf *bytes.Buffer, b []byte) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func writePayload(buf *bytes.Buffer, payload []byte) error {
	if len(payload) > maxPayloadLen {
		return errors.New("envelope: payload exceeds maximum size")
	}
	return writeVarBytes(buf, payload)
}

func readHeader(r io.Reader, env *Envelope) error {
	if err := binary.Read(r, binary.BigEndian, &env.Version); err != nil {
		return err
	}
	var ids [2]byte
	if _, err := io.ReadFull(r, ids[:]); err != nil {
		return err
	}
	env.SenderId = types.SubsystemId(ids[0])
	env.RecipientId = types.SubsystemId(ids[1])

	var corrBytes [16]byte
	if _, err := io.ReadFull(r, corrBytes[:]); err != nil {
		return err
	}
	cid, err := uuidFromBytes(corrBytes[:])
	if err != nil {
		return err
	}
	env.CorrelationId = cid

	rt, err := readReplyTo(r)
	if err != nil {
		return err
	}
	env.ReplyTo = rt

	var ts uint64
	if err := binary.Read(r, binary.BigEndian, &ts); err != nil {
		return err
	}
	env.Timestamp = types.Timestamp(ts)

	if _, err := io.ReadFull(r, env.Nonce[:]); err != nil {
		return err
	}
	return nil
}

func readReplyTo(r io.Reader) (*ReplyTo, error) {
	var present [1]byte
	if _, err := io.ReadFull(r, present[:]); err != nil {
		return nil, err
	}
	if present[0] == 0 {
		return nil, nil
	}
	var subsys [1]byte
	if _, err := io.ReadFull(r, subsys[:]); err != nil {
		return nil, err
	}
	var topicLen uint16
	if err := binary.Read(r, binary.BigEndian, &topicLen); err != nil {
		return nil, err
	}
	if topicLen > maxReplyToTopicLen {
		return nil, errors.New("envelope: reply_to topic too long")
	}
	topic := make([]byte, topicLen)
	if _, err := io.ReadFull(r, topic); err != nil {
		return nil, err
	}
	return &ReplyTo{SubsystemId: types.SubsystemId(subsys[0]), Topic: string(topic)}, nil
}

func readVarBytes(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	if length > maxPayloadLen {
		return nil, errors.New("envelope: field exceeds maximum size")
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func readPayload(r io.Reader) ([]byte, error) {
	return readVarBytes(r)
}

func uuidFromBytes(b []byte) (types.CorrelationId, error) {
	return types.CorrelationIdFromBytes(b)
}
