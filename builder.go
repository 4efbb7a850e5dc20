// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package encircuit

import "fmt"

// Builder constructs a Circuit as an append-only gate sequence. Every
// operand passed to a gate operation must reference a wire the builder has
// already created, so the finished graph is acyclic without any topological
// check. A Builder is single-owner and not safe for concurrent use.
type Builder struct {
	gates    []Gate
	inputs   []WireId
	finished bool
}

// NewBuilder returns an empty circuit builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Input appends an Input gate with the next ordinal and returns its wire.
// Ordinals are assigned contiguously from 0 in creation order.
func (b *Builder) Input() WireId {
	w := b.append(Gate{Kind: GateInput})
	b.inputs = append(b.inputs, w)
	return w
}

// Constant appends a Const gate carrying the given literal.
func (b *Builder) Constant(value bool) WireId {
	return b.append(Gate{Kind: GateConst, Value: value})
}

// And appends an AND gate over the two operand wires.
func (b *Builder) And(x, y WireId) (WireId, error) {
	return b.binary(GateAnd, x, y)
}

// Or appends an OR gate over the two operand wires.
func (b *Builder) Or(x, y WireId) (WireId, error) {
	return b.binary(GateOr, x, y)
}

// Xor appends an XOR gate over the two operand wires.
func (b *Builder) Xor(x, y WireId) (WireId, error) {
	return b.binary(GateXor, x, y)
}

// Not appends a NOT gate over the operand wire.
func (b *Builder) Not(x WireId) (WireId, error) {
	if b.finished {
		return 0, ErrBuilderFinished
	}
	if err := b.checkWire(x); err != nil {
		return 0, err
	}
	return b.append(Gate{Kind: GateNot, A: x}), nil
}

// GateCount returns the number of gates appended so far.
func (b *Builder) GateCount() int {
	return len(b.gates)
}

// InputCount returns the number of Input gates appended so far.
func (b *Builder) InputCount() int {
	return len(b.inputs)
}

// Finish validates the declared outputs, consumes the builder and returns
// the immutable Circuit. After Finish every further builder operation fails
// with ErrBuilderFinished.
func (b *Builder) Finish(outputs ...WireId) (*Circuit, error) {
	if b.finished {
		return nil, ErrBuilderFinished
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}
	for _, w := range outputs {
		if err := b.checkWire(w); err != nil {
			return nil, err
		}
	}
	b.finished = true
	c := &Circuit{
		gates:   b.gates,
		outputs: append([]WireId(nil), outputs...),
		inputs:  b.inputs,
	}
	b.gates = nil
	b.inputs = nil
	return c, nil
}

func (b *Builder) binary(kind GateKind, x, y WireId) (WireId, error) {
	if b.finished {
		return 0, ErrBuilderFinished
	}
	if err := b.checkWire(x); err != nil {
		return 0, err
	}
	if err := b.checkWire(y); err != nil {
		return 0, err
	}
	return b.append(Gate{Kind: kind, A: x, B: y}), nil
}

// checkWire rejects operands that have not been created yet. Performed
// before any gate is appended, so a failed operation leaves the builder
// unmodified.
func (b *Builder) checkWire(w WireId) error {
	if w < 0 || int(w) >= len(b.gates) {
		return fmt.Errorf("%w: wire %d, builder holds %d gates", ErrInvalidWireReference, w, len(b.gates))
	}
	return nil
}

func (b *Builder) append(g Gate) WireId {
	w := WireId(len(b.gates))
	b.gates = append(b.gates, g)
	return w
}
