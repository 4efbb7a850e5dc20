// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package encircuit

import (
	"fmt"
	"sync"

	"github.com/luxfi/encircuit/bitfhe"
)

// EncryptedCircuit is a Circuit together with the ciphertexts for its input
// wires, ready for homomorphic evaluation. It holds a read-only reference to
// the circuit and is itself immutable after construction: Evaluate works on
// a private slot table, so one EncryptedCircuit may be evaluated any number
// of times, concurrently if desired.
type EncryptedCircuit struct {
	circuit *Circuit
	// inputs holds one ciphertext per Input wire. Const wires are seeded
	// with trivial encryptions at evaluation time; all other slots are
	// computed by the evaluator.
	inputs []*Ciphertext
}

// EncryptInputs encrypts one plaintext bit per declared input wire under
// the client key. The plaintext vector length must equal InputCount; on
// mismatch no encryption is performed.
func (c *Circuit) EncryptInputs(plaintexts []bool, ck *ClientKey) (*EncryptedCircuit, error) {
	if len(plaintexts) != len(c.inputs) {
		return nil, fmt.Errorf("%w: circuit declares %d inputs, got %d",
			ErrInputCountMismatch, len(c.inputs), len(plaintexts))
	}
	inputs := make([]*Ciphertext, len(plaintexts))
	for i, bit := range plaintexts {
		inputs[i] = ck.Encrypt(bit)
	}
	return &EncryptedCircuit{circuit: c, inputs: inputs}, nil
}

// AttachInputs builds an EncryptedCircuit from input ciphertexts encrypted
// elsewhere, one per input ordinal. This is the server-side entry point: no
// client key is required.
func (c *Circuit) AttachInputs(inputs []*Ciphertext) (*EncryptedCircuit, error) {
	if len(inputs) != len(c.inputs) {
		return nil, fmt.Errorf("%w: circuit declares %d inputs, got %d",
			ErrInputCountMismatch, len(c.inputs), len(inputs))
	}
	return &EncryptedCircuit{circuit: c, inputs: append([]*Ciphertext(nil), inputs...)}, nil
}

// Circuit returns the underlying circuit.
func (ec *EncryptedCircuit) Circuit() *Circuit {
	return ec.circuit
}

// Inputs returns the input ciphertexts in ordinal order.
func (ec *EncryptedCircuit) Inputs() []*Ciphertext {
	return append([]*Ciphertext(nil), ec.inputs...)
}

// Evaluate computes the circuit over the encrypted inputs using the server
// key and returns one ciphertext per declared output, in declaration order.
// Gates are processed in ascending wire order; every operand is guaranteed
// already computed because operand wires are strictly smaller.
//
// Evaluation is all-or-nothing: if any gate fails, no outputs are returned.
func (ec *EncryptedCircuit) Evaluate(sk *ServerKey) ([]*Ciphertext, error) {
	slots, err := ec.seedSlots(sk)
	if err != nil {
		return nil, err
	}
	for w, g := range ec.circuit.gates {
		if g.Kind == GateInput || g.Kind == GateConst {
			continue
		}
		ct, err := evalGate(sk.eval, g, WireId(w), slots)
		if err != nil {
			return nil, err
		}
		slots[w] = ct
	}
	return ec.collectOutputs(slots)
}

// EvaluateParallel evaluates the circuit with a level-synchronous fork-join
// over the given number of workers. Gates sharing a dependency level never
// depend on one another, so each level is fanned out across the workers and
// a barrier separates consecutive levels. The result is identical to
// Evaluate for every worker count.
func (ec *EncryptedCircuit) EvaluateParallel(sk *ServerKey, workers int) ([]*Ciphertext, error) {
	if workers <= 1 {
		return ec.Evaluate(sk)
	}

	slots, err := ec.seedSlots(sk)
	if err != nil {
		return nil, err
	}

	levels := ec.circuit.wireLevels()
	depth := 0
	for _, l := range levels {
		if l > depth {
			depth = l
		}
	}
	byLevel := make([][]WireId, depth+1)
	for w, l := range levels {
		if l > 0 {
			byLevel[l] = append(byLevel[l], WireId(w))
		}
	}

	evals := sk.evaluators(workers)
	errs := make([]error, workers)

	for _, wires := range byLevel[1:] {
		var wg sync.WaitGroup
		for i := 0; i < workers && i < len(wires); i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := i; j < len(wires); j += workers {
					w := wires[j]
					ct, err := evalGate(evals[i], ec.circuit.gates[w], w, slots)
					if err != nil {
						errs[i] = err
						return
					}
					// Each slot is written exactly once, by the
					// single task owning its wire, and read only
					// by later levels after the barrier.
					slots[w] = ct
				}
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	return ec.collectOutputs(slots)
}

// seedSlots allocates a fresh slot table and populates the level-0 wires:
// input ciphertexts by ordinal and trivial encryptions for constants.
func (ec *EncryptedCircuit) seedSlots(sk *ServerKey) ([]*Ciphertext, error) {
	slots := make([]*Ciphertext, len(ec.circuit.gates))
	for ord, w := range ec.circuit.inputs {
		if ec.inputs[ord] == nil {
			return nil, fmt.Errorf("%w: input wire %d", ErrEvaluation, w)
		}
		slots[w] = ec.inputs[ord]
	}
	for w, g := range ec.circuit.gates {
		if g.Kind == GateConst {
			slots[w] = bitfhe.TrivialEncrypt(sk.params, g.Value)
		}
	}
	return slots, nil
}

func (ec *EncryptedCircuit) collectOutputs(slots []*Ciphertext) ([]*Ciphertext, error) {
	outs := make([]*Ciphertext, len(ec.circuit.outputs))
	for i, w := range ec.circuit.outputs {
		if slots[w] == nil {
			return nil, fmt.Errorf("%w: output wire %d", ErrEvaluation, w)
		}
		outs[i] = slots[w]
	}
	return outs, nil
}

// evalGate computes one non-trivial gate from the already-filled operand
// slots. Backend failures are wrapped with the gate's position, never
// silently ignored.
func evalGate(eval *bitfhe.Evaluator, g Gate, w WireId, slots []*Ciphertext) (*Ciphertext, error) {
	a := slots[g.A]
	if a == nil {
		return nil, fmt.Errorf("%w: operand %d of wire %d", ErrEvaluation, g.A, w)
	}

	if g.Kind == GateNot {
		return eval.NOT(a), nil
	}

	b := slots[g.B]
	if b == nil {
		return nil, fmt.Errorf("%w: operand %d of wire %d", ErrEvaluation, g.B, w)
	}

	var (
		ct  *Ciphertext
		err error
	)
	switch g.Kind {
	case GateAnd:
		ct, err = eval.AND(a, b)
	case GateOr:
		ct, err = eval.OR(a, b)
	case GateXor:
		ct, err = eval.XOR(a, b)
	default:
		return nil, fmt.Errorf("%w: wire %d has kind %s", ErrEvaluation, w, g.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s gate at wire %d: %w", g.Kind, w, err)
	}
	return ct, nil
}
