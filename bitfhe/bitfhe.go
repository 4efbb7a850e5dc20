// Package bitfhe implements homomorphic evaluation of Boolean gates over
// encrypted single-bit ciphertexts, using TFHE-style gate bootstrapping.
//
// Each bit is an LWE sample encoding true as +Q/8 and false as -Q/8. A
// two-input gate adds the operand ciphertexts and applies a programmable
// bootstrap with a gate-specific test polynomial; NOT is a free negation.
//
// The implementation is built on luxfi/lattice primitives:
//   - LWE encryption for bits
//   - RGSW for bootstrap keys
//   - blind rotation for programmable bootstrapping
//
// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause
package bitfhe

import (
	"fmt"

	"github.com/luxfi/lattice/v7/core/rgsw/blindrot"
	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"
	"github.com/luxfi/lattice/v7/utils"
)

// Parameters defines the backend parameter set.
type Parameters struct {
	// paramsLWE defines parameters for LWE samples (encrypted bits)
	paramsLWE rlwe.Parameters
	// paramsBR defines parameters for blind rotation (bootstrapping)
	paramsBR rlwe.Parameters
	// evkParams defines evaluation key decomposition
	evkParams rlwe.EvaluationKeyParameters
}

// ParametersLiteral is a user-friendly parameter specification. LWE and
// blind-rotation parameters must share dimension and modulus so that the
// result of a bootstrap is directly an LWE sample and no key switching is
// required.
type ParametersLiteral struct {
	// LogN is log2 of the ring dimension (typically 10-11)
	LogN int
	// Q is the ciphertext modulus, an NTT-friendly prime
	Q uint64
	// BaseTwoDecomposition for the blind rotation key (typically 7-10)
	BaseTwoDecomposition int
}

// Standard parameter sets.
var (
	// PN10QP27 targets ~128-bit security with good performance.
	// N=1024, Q=134215681
	PN10QP27 = ParametersLiteral{
		LogN:                 10,
		Q:                    0x7fff801,
		BaseTwoDecomposition: 7,
	}

	// PN11QP54 targets ~128-bit security with higher precision, suited to
	// deep circuits where noise margin matters more than speed.
	// N=2048, Q=~2^54
	PN11QP54 = ParametersLiteral{
		LogN:                 11,
		Q:                    0x3FFFFFFFFFC0001,
		BaseTwoDecomposition: 10,
	}
)

// Scenario names a predefined parameter set by intended use.
type Scenario uint8

const (
	// FastDemo favors evaluation speed; suitable for tests and demos.
	FastDemo Scenario = iota
	// SafeAndBalanced favors noise margin for deeper circuits.
	SafeAndBalanced
)

// NewParametersForScenario creates Parameters from a named scenario.
func NewParametersForScenario(s Scenario) (Parameters, error) {
	switch s {
	case FastDemo:
		return NewParametersFromLiteral(PN10QP27)
	case SafeAndBalanced:
		return NewParametersFromLiteral(PN11QP54)
	default:
		return Parameters{}, fmt.Errorf("bitfhe: unknown scenario %d", s)
	}
}

// NewParametersFromLiteral creates Parameters from a literal specification.
func NewParametersFromLiteral(lit ParametersLiteral) (params Parameters, err error) {
	params.paramsLWE, err = rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN:    lit.LogN,
		Q:       []uint64{lit.Q},
		NTTFlag: true,
	})
	if err != nil {
		return
	}

	params.paramsBR, err = rlwe.NewParametersFromLiteral(rlwe.ParametersLiteral{
		LogN:    lit.LogN,
		Q:       []uint64{lit.Q},
		NTTFlag: true,
	})
	if err != nil {
		return
	}

	params.evkParams = rlwe.EvaluationKeyParameters{
		BaseTwoDecomposition: utils.Pointy(lit.BaseTwoDecomposition),
	}

	return
}

// N returns the ring dimension.
func (p Parameters) N() int {
	return p.paramsLWE.N()
}

// Q returns the ciphertext modulus.
func (p Parameters) Q() uint64 {
	return p.paramsLWE.Q()[0]
}

// SecretKey contains the LWE and blind-rotation secret keys. It never
// leaves the client side.
type SecretKey struct {
	// SKLWE is the secret key bits are encrypted under
	SKLWE *rlwe.SecretKey
	// SKBR is the secret key of blind rotation results
	SKBR *rlwe.SecretKey
}

// BootstrapKey contains everything the evaluating party needs: the blind
// rotation key plus one test polynomial per gate. It contains no secret key
// material and is safe to hand to an untrusted evaluator.
type BootstrapKey struct {
	// BRK is the blind rotation key (RGSW encryptions of the LWE secret key bits)
	BRK blindrot.BlindRotationEvaluationKeySet

	TestPolyAND  *ring.Poly
	TestPolyOR   *ring.Poly
	TestPolyXOR  *ring.Poly
	TestPolyNAND *ring.Poly
	TestPolyNOR  *ring.Poly
	TestPolyXNOR *ring.Poly

	params Parameters
}

// Ciphertext represents an encrypted bit.
type Ciphertext struct {
	*rlwe.Ciphertext
}

// KeyGenerator generates backend keys.
type KeyGenerator struct {
	params  Parameters
	kgenBR  *rlwe.KeyGenerator
	ringQBR *ring.Ring
	scaleBR float64
}

// NewKeyGenerator creates a new key generator.
func NewKeyGenerator(params Parameters) *KeyGenerator {
	return &KeyGenerator{
		params:  params,
		kgenBR:  rlwe.NewKeyGenerator(params.paramsBR),
		ringQBR: params.paramsBR.RingQ(),
		scaleBR: float64(params.Q()) / 8.0, // [-1, 1] -> [-Q/8, Q/8]
	}
}

// GenSecretKey generates a fresh secret key pair. LWE and blind rotation
// share the same dimension and modulus, so the same key serves both; a
// bootstrap output is then directly decryptable without key switching.
func (kg *KeyGenerator) GenSecretKey() *SecretKey {
	sk := kg.kgenBR.GenSecretKeyNew()
	return &SecretKey{
		SKLWE: sk,
		SKBR:  sk,
	}
}

// GenBootstrapKey generates the bootstrap key for the given secret key.
func (kg *KeyGenerator) GenBootstrapKey(sk *SecretKey) *BootstrapKey {
	brk := blindrot.GenEvaluationKeyNew(kg.params.paramsBR, sk.SKBR, kg.params.paramsLWE, sk.SKLWE, kg.params.evkParams)

	scale := rlwe.NewScale(kg.scaleBR)

	// With Q/8 encoding, after adding two bits the normalized positions are:
	// - true+true:   0.5  (> 0.25)
	// - true+false:  0    (in [-0.25, 0.25])
	// - false+false: -0.5 (< -0.25)

	// AND: 1 only when both inputs are 1. >= handles the exact boundary
	// when the sum of two TRUE lands on 0.25.
	testPolyAND := blindrot.InitTestPolynomial(func(x float64) float64 {
		if x >= 0.25 {
			return 1.0
		}
		return -1.0
	}, scale, kg.ringQBR, -1, 1)

	// OR: 1 when at least one input is 1 (x > -0.25)
	testPolyOR := blindrot.InitTestPolynomial(func(x float64) float64 {
		if x > -0.25 {
			return 1.0
		}
		return -1.0
	}, scale, kg.ringQBR, -1, 1)

	// XOR: with the 2*(ct1+ct2) pre-processing:
	// - (F,F): -0.5
	// - (T,F) or (F,T): 0
	// - (T,T): 0.5, wraps to -0.5
	// so XOR is TRUE only when x is near 0. 0.30 boundaries keep a noise
	// margin on both sides.
	testPolyXOR := blindrot.InitTestPolynomial(func(x float64) float64 {
		if x > -0.30 && x < 0.30 {
			return 1.0
		}
		return -1.0
	}, scale, kg.ringQBR, -1, 1)

	// NAND: 0 only when both inputs are 1
	testPolyNAND := blindrot.InitTestPolynomial(func(x float64) float64 {
		if x >= 0.25 {
			return -1.0
		}
		return 1.0
	}, scale, kg.ringQBR, -1, 1)

	// NOR: 1 only when both inputs are 0
	testPolyNOR := blindrot.InitTestPolynomial(func(x float64) float64 {
		if x > -0.25 {
			return -1.0
		}
		return 1.0
	}, scale, kg.ringQBR, -1, 1)

	// XNOR: inverse of XOR, same doubled pre-processing
	testPolyXNOR := blindrot.InitTestPolynomial(func(x float64) float64 {
		if x > -0.30 && x < 0.30 {
			return -1.0
		}
		return 1.0
	}, scale, kg.ringQBR, -1, 1)

	return &BootstrapKey{
		BRK:          brk,
		TestPolyAND:  &testPolyAND,
		TestPolyOR:   &testPolyOR,
		TestPolyXOR:  &testPolyXOR,
		TestPolyNAND: &testPolyNAND,
		TestPolyNOR:  &testPolyNOR,
		TestPolyXNOR: &testPolyXNOR,
		params:       kg.params,
	}
}
