// Package encircuit builds, encrypts and homomorphically evaluates Boolean
// circuits.
//
// A circuit is described once as a directed acyclic graph of logic gates and
// can then be executed by an untrusted party over encrypted inputs, without
// the executor ever holding decryption capability:
//
//	params, _ := bitfhe.NewParametersForScenario(bitfhe.FastDemo)
//	clientKey, serverKey := encircuit.NewKeyset(params).Split()
//
//	b := encircuit.NewBuilder()
//	x := b.Input()
//	y := b.Input()
//	notY, _ := b.Not(y)
//	a1, _ := b.And(notY, x)
//	a2, _ := b.And(x, y)
//	out, _ := b.Or(a1, a2)
//	circuit, _ := b.Finish(out)
//
//	enc, _ := circuit.EncryptInputs([]bool{true, false}, clientKey)
//	cts, _ := enc.Evaluate(serverKey)
//	result, _ := clientKey.Decrypt(cts[0])
//
// The gate arena is append-only and every gate may only reference wires that
// already exist, so the graph is acyclic by construction and no cycle
// detection ever runs. Evaluation walks the arena in index order, or levels
// of independent gates in parallel via EvaluateParallel.
//
// The homomorphic bit operations themselves are provided by the bitfhe
// subpackage, a TFHE-style gate-bootstrapping backend built on luxfi/lattice.
//
// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause
package encircuit

import (
	"github.com/luxfi/encircuit/bitfhe"
)

// Ciphertext is an opaque encrypted bit, produced by a ClientKey and
// transformed by homomorphic gate evaluation.
type Ciphertext = bitfhe.Ciphertext
