// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bitfhe

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/luxfi/lattice/v7/core/rlwe"
)

// MarshalBinary serializes a ciphertext.
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(ct.Ciphertext); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary deserializes a ciphertext.
func (ct *Ciphertext) UnmarshalBinary(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))
	ct.Ciphertext = new(rlwe.Ciphertext)
	return dec.Decode(ct.Ciphertext)
}

// MarshalCiphertexts serializes a ciphertext vector with a count header and
// per-entry length prefixes, little-endian.
func MarshalCiphertexts(cts []*Ciphertext) ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(cts))); err != nil {
		return nil, err
	}
	for i, ct := range cts {
		data, err := ct.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}
		if err := binary.Write(&buf, binary.LittleEndian, uint32(len(data))); err != nil {
			return nil, err
		}
		if _, err := buf.Write(data); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// UnmarshalCiphertexts deserializes a ciphertext vector produced by
// MarshalCiphertexts.
func UnmarshalCiphertexts(data []byte) ([]*Ciphertext, error) {
	buf := bytes.NewReader(data)

	var count uint32
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	cts := make([]*Ciphertext, count)
	for i := range cts {
		var n uint32
		if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}

		entry := make([]byte, n)
		if _, err := io.ReadFull(buf, entry); err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}

		cts[i] = new(Ciphertext)
		if err := cts[i].UnmarshalBinary(entry); err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}
	}

	return cts, nil
}
