// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bitfhe

import (
	"errors"
	"fmt"

	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"
)

// ErrMalformedCiphertext is returned when a ciphertext is structurally
// unusable: nil, wrong degree, or wrong ring dimension for the key.
var ErrMalformedCiphertext = errors.New("bitfhe: malformed ciphertext")

// Decryptor decrypts bit ciphertexts to Boolean values.
type Decryptor struct {
	params    Parameters
	decryptor *rlwe.Decryptor
	ringQ     *ring.Ring
}

// NewDecryptor creates a new decryptor from a secret key.
func NewDecryptor(params Parameters, sk *SecretKey) *Decryptor {
	return &Decryptor{
		params:    params,
		decryptor: rlwe.NewDecryptor(params.paramsLWE, sk.SKLWE),
		ringQ:     params.paramsLWE.RingQ(),
	}
}

// Decrypt decrypts a ciphertext to a bit. A ciphertext produced under a
// different parameter set is rejected; a ciphertext produced under a
// different key of the same parameters decrypts to noise.
func (dec *Decryptor) Decrypt(ct *Ciphertext) (bool, error) {
	if ct == nil || ct.Ciphertext == nil {
		return false, fmt.Errorf("%w: nil", ErrMalformedCiphertext)
	}
	if ct.Degree() != 1 {
		return false, fmt.Errorf("%w: degree %d, want 1", ErrMalformedCiphertext, ct.Degree())
	}
	if ct.Value[0].N() != dec.params.N() {
		return false, fmt.Errorf("%w: ring dimension %d, key expects %d",
			ErrMalformedCiphertext, ct.Value[0].N(), dec.params.N())
	}

	pt := rlwe.NewPlaintext(dec.params.paramsLWE, ct.Level())
	dec.decryptor.Decrypt(ct.Ciphertext, pt)

	if pt.IsNTT {
		dec.ringQ.INTT(pt.Value, pt.Value)
	}

	// true was encoded near +Q/8, false near -Q/8, so the constant term
	// lands in [0, Q/2) for true and [Q/2, Q) for false.
	c := pt.Value.Coeffs[0][0]
	return c < dec.params.Q()>>1, nil
}

// DecryptBits decrypts a ciphertext vector. The first failure aborts and is
// reported with its position.
func (dec *Decryptor) DecryptBits(cts []*Ciphertext) ([]bool, error) {
	bits := make([]bool, len(cts))
	for i, ct := range cts {
		b, err := dec.Decrypt(ct)
		if err != nil {
			return nil, fmt.Errorf("bit %d: %w", i, err)
		}
		bits[i] = b
	}
	return bits, nil
}
