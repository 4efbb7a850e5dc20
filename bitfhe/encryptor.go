// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bitfhe

import (
	"github.com/luxfi/lattice/v7/core/rlwe"
)

// Encryptor encrypts Boolean values into bit ciphertexts.
type Encryptor struct {
	params    Parameters
	encryptor *rlwe.Encryptor
}

// NewEncryptor creates a new encryptor from a secret key.
func NewEncryptor(params Parameters, sk *SecretKey) *Encryptor {
	return &Encryptor{
		params:    params,
		encryptor: rlwe.NewEncryptor(params.paramsLWE, sk.SKLWE),
	}
}

// Encrypt encrypts a single bit.
// Panics on encryption failure, which cannot happen with valid parameters.
func (enc *Encryptor) Encrypt(value bool) *Ciphertext {
	pt := encodeBit(enc.params, value)

	ct := rlwe.NewCiphertext(enc.params.paramsLWE, 1, enc.params.paramsLWE.MaxLevel())
	if err := enc.encryptor.Encrypt(pt, ct); err != nil {
		panic(err)
	}

	return &Ciphertext{ct}
}

// EncryptBits encrypts a bit vector, one ciphertext per bit.
func (enc *Encryptor) EncryptBits(values []bool) []*Ciphertext {
	cts := make([]*Ciphertext, len(values))
	for i, v := range values {
		cts[i] = enc.Encrypt(v)
	}
	return cts
}

// TrivialEncrypt produces a key-independent encryption of a constant bit:
// the encoded plaintext with a zero mask. It decrypts to the literal under
// any key and participates in gate evaluation like any ciphertext. Only
// public constants may be encoded this way.
func TrivialEncrypt(params Parameters, value bool) *Ciphertext {
	ct := rlwe.NewCiphertext(params.paramsLWE, 1, params.paramsLWE.MaxLevel())

	q := params.Q()
	if value {
		ct.Value[0].Coeffs[0][0] = q / 8
	} else {
		ct.Value[0].Coeffs[0][0] = q - (q / 8)
	}

	params.paramsLWE.RingQ().NTT(ct.Value[0], ct.Value[0])
	ct.IsNTT = true

	return &Ciphertext{ct}
}

// encodeBit encodes a bit as +Q/8 (true) or -Q/8 (false) in the constant
// coefficient, NTT domain. The Q/8 scale keeps sums of two bits in
// distinguishable ranges:
// - (false,false): -Q/4
// - (false,true):  0
// - (true,true):   +Q/4
func encodeBit(params Parameters, value bool) *rlwe.Plaintext {
	pt := rlwe.NewPlaintext(params.paramsLWE, params.paramsLWE.MaxLevel())

	q := params.Q()
	if value {
		pt.Value.Coeffs[0][0] = q / 8
	} else {
		pt.Value.Coeffs[0][0] = q - (q / 8)
	}

	params.paramsLWE.RingQ().NTT(pt.Value, pt.Value)

	return pt
}
