// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package bitfhe

import (
	"fmt"

	"github.com/luxfi/lattice/v7/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"
)

// Evaluator evaluates Boolean gates on encrypted bits. It requires only the
// bootstrap key, never the secret key. An Evaluator is not safe for
// concurrent use; see ShallowCopy.
type Evaluator struct {
	params Parameters
	eval   *blindrot.Evaluator
	bsk    *BootstrapKey
	ringQ  *ring.Ring
}

// NewEvaluator creates a new evaluator from a bootstrap key.
func NewEvaluator(params Parameters, bsk *BootstrapKey) *Evaluator {
	return &Evaluator{
		params: params,
		eval:   blindrot.NewEvaluator(params.paramsBR, params.paramsLWE),
		bsk:    bsk,
		ringQ:  params.paramsLWE.RingQ(),
	}
}

// ShallowCopy creates a copy of the evaluator that can be used concurrently
// with the receiver. The bootstrap key is shared read-only; the blind
// rotation buffers are per-copy.
func (eval *Evaluator) ShallowCopy() *Evaluator {
	return NewEvaluator(eval.params, eval.bsk)
}

// bootstrap performs programmable bootstrapping with the given test
// polynomial and returns a fresh bit ciphertext. LWE and blind rotation
// share dimension and modulus, so the rotated ciphertext is the result
// directly and no key switching is needed.
func (eval *Evaluator) bootstrap(ct *Ciphertext, testPoly *ring.Poly) (*Ciphertext, error) {
	testPolyMap := map[int]*ring.Poly{0: testPoly}

	results, err := eval.eval.Evaluate(ct.Ciphertext, testPolyMap, eval.bsk.BRK)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	ctBR, ok := results[0]
	if !ok {
		return nil, fmt.Errorf("bootstrap: no result for slot 0")
	}

	return &Ciphertext{ctBR.CopyNew()}, nil
}

// add adds two ciphertexts element-wise.
func (eval *Evaluator) add(ct1, ct2 *Ciphertext) *Ciphertext {
	result := rlwe.NewCiphertext(eval.params.paramsLWE, 1, ct1.Level())

	eval.ringQ.Add(ct1.Value[0], ct2.Value[0], result.Value[0])
	eval.ringQ.Add(ct1.Value[1], ct2.Value[1], result.Value[1])

	result.IsNTT = ct1.IsNTT

	return &Ciphertext{result}
}

// double multiplies a ciphertext by 2. The doubling makes the (true,true)
// sum wrap around, which is what lets XOR and XNOR use a single bootstrap.
func (eval *Evaluator) double(ct *Ciphertext) *Ciphertext {
	return eval.add(ct, ct)
}

// negate negates a ciphertext.
func (eval *Evaluator) negate(ct *Ciphertext) *Ciphertext {
	result := rlwe.NewCiphertext(eval.params.paramsLWE, 1, ct.Level())

	eval.ringQ.Neg(ct.Value[0], result.Value[0])
	eval.ringQ.Neg(ct.Value[1], result.Value[1])

	result.IsNTT = ct.IsNTT

	return &Ciphertext{result}
}

// NOT computes the logical NOT of the input. With the symmetric ±Q/8
// encoding this is a free negation, no bootstrap.
func (eval *Evaluator) NOT(ct *Ciphertext) *Ciphertext {
	return eval.negate(ct)
}

// AND computes the logical AND of two inputs.
func (eval *Evaluator) AND(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	return eval.bootstrap(eval.add(ct1, ct2), eval.bsk.TestPolyAND)
}

// OR computes the logical OR of two inputs.
func (eval *Evaluator) OR(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	return eval.bootstrap(eval.add(ct1, ct2), eval.bsk.TestPolyOR)
}

// XOR computes the logical XOR of two inputs with a single bootstrap over
// the doubled sum 2*(ct1+ct2).
func (eval *Evaluator) XOR(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	return eval.bootstrap(eval.double(eval.add(ct1, ct2)), eval.bsk.TestPolyXOR)
}

// NAND computes the logical NAND of two inputs.
func (eval *Evaluator) NAND(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	return eval.bootstrap(eval.add(ct1, ct2), eval.bsk.TestPolyNAND)
}

// NOR computes the logical NOR of two inputs.
func (eval *Evaluator) NOR(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	return eval.bootstrap(eval.add(ct1, ct2), eval.bsk.TestPolyNOR)
}

// XNOR computes the logical XNOR of two inputs, same doubled-sum single
// bootstrap as XOR with the inverted test polynomial.
func (eval *Evaluator) XNOR(ct1, ct2 *Ciphertext) (*Ciphertext, error) {
	return eval.bootstrap(eval.double(eval.add(ct1, ct2)), eval.bsk.TestPolyXNOR)
}
