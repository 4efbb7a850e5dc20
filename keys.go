// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package encircuit

import (
	"fmt"

	"github.com/luxfi/encircuit/bitfhe"
)

// Keyset couples the two capability-disjoint halves of a freshly generated
// key pair. Split hands the ClientKey to the party that owns the plaintexts
// and the ServerKey to the party that evaluates circuits.
type Keyset struct {
	client *ClientKey
	server *ServerKey
}

// NewKeyset generates a key pair for the given backend parameters.
func NewKeyset(params bitfhe.Parameters) *Keyset {
	kgen := bitfhe.NewKeyGenerator(params)
	sk := kgen.GenSecretKey()
	bsk := kgen.GenBootstrapKey(sk)

	return &Keyset{
		client: &ClientKey{
			params: params,
			enc:    bitfhe.NewEncryptor(params, sk),
			dec:    bitfhe.NewDecryptor(params, sk),
		},
		server: &ServerKey{
			params: params,
			bsk:    bsk,
			eval:   bitfhe.NewEvaluator(params, bsk),
		},
	}
}

// Split returns the client and server halves of the keyset.
func (ks *Keyset) Split() (*ClientKey, *ServerKey) {
	return ks.client, ks.server
}

// ClientKey encrypts plaintext bits and decrypts output ciphertexts. It is
// the only type in the package holding secret key material and is never
// reachable from any evaluation code path.
type ClientKey struct {
	params bitfhe.Parameters
	enc    *bitfhe.Encryptor
	dec    *bitfhe.Decryptor
}

// Params returns the backend parameters the key was generated for.
func (ck *ClientKey) Params() bitfhe.Parameters {
	return ck.params
}

// Encrypt encrypts a single bit.
func (ck *ClientKey) Encrypt(value bool) *Ciphertext {
	return ck.enc.Encrypt(value)
}

// Decrypt decrypts a single output ciphertext. Each output is decrypted
// independently; a failure on one output does not affect others.
func (ck *ClientKey) Decrypt(ct *Ciphertext) (bool, error) {
	value, err := ck.dec.Decrypt(ct)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return value, nil
}

// ServerKey evaluates homomorphic gates. It carries only the bootstrap key
// and is structurally incapable of decryption.
type ServerKey struct {
	params bitfhe.Parameters
	bsk    *bitfhe.BootstrapKey
	eval   *bitfhe.Evaluator
}

// evaluators returns n gate evaluators usable concurrently with one
// another. The first is the key's own; the rest are shallow copies sharing
// the read-only bootstrap key.
func (sk *ServerKey) evaluators(n int) []*bitfhe.Evaluator {
	evals := make([]*bitfhe.Evaluator, n)
	evals[0] = sk.eval
	for i := 1; i < n; i++ {
		evals[i] = sk.eval.ShallowCopy()
	}
	return evals
}
