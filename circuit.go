// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package encircuit

// WireId identifies one value-producing point in the gate graph. Ids are
// assigned in strictly increasing creation order and double as indices into
// the circuit's gate arena.
type WireId int

// GateKind tags the variant of a Gate.
type GateKind uint8

const (
	GateInput GateKind = iota
	GateConst
	GateAnd
	GateOr
	GateXor
	GateNot
)

// String returns the lowercase gate kind name.
func (k GateKind) String() string {
	switch k {
	case GateInput:
		return "input"
	case GateConst:
		return "const"
	case GateAnd:
		return "and"
	case GateOr:
		return "or"
	case GateXor:
		return "xor"
	case GateNot:
		return "not"
	default:
		return "unknown"
	}
}

// Gate is one node of the DAG. Operand wires always reference gates with
// strictly smaller WireId, which makes the graph acyclic by construction.
type Gate struct {
	Kind GateKind
	// A and B are the operand wires. Not uses only A; Input and Const
	// use neither.
	A, B WireId
	// Value is the literal of a Const gate.
	Value bool
}

// Circuit is an immutable Boolean circuit: a gate arena in topological
// order, the declared output wires, and the input ordinal mapping. A Circuit
// is safe for concurrent use and may back any number of independent
// EncryptedCircuit instances.
type Circuit struct {
	gates   []Gate
	outputs []WireId
	inputs  []WireId // ordinal -> wire
}

// GateCount returns the total number of gates.
func (c *Circuit) GateCount() int {
	return len(c.gates)
}

// InputCount returns the number of Input gates.
func (c *Circuit) InputCount() int {
	return len(c.inputs)
}

// Outputs returns a copy of the declared output wires, in declaration order.
func (c *Circuit) Outputs() []WireId {
	out := make([]WireId, len(c.outputs))
	copy(out, c.outputs)
	return out
}

// Gate returns the gate producing the given wire.
func (c *Circuit) Gate(w WireId) Gate {
	return c.gates[w]
}

// Stats holds per-kind gate counts. The counts depend only on the gates
// present, never on construction order.
type Stats struct {
	Inputs    int
	Constants int
	And       int
	Or        int
	Xor       int
	Not       int
	Total     int
}

// Stats counts the gates of each kind.
func (c *Circuit) Stats() Stats {
	var s Stats
	for _, g := range c.gates {
		switch g.Kind {
		case GateInput:
			s.Inputs++
		case GateConst:
			s.Constants++
		case GateAnd:
			s.And++
		case GateOr:
			s.Or++
		case GateXor:
			s.Xor++
		case GateNot:
			s.Not++
		}
	}
	s.Total = len(c.gates)
	return s
}

// Complexity describes the evaluation cost of a circuit.
type Complexity struct {
	// TotalGates is the size of the gate arena.
	TotalGates int
	// BooleanGates counts the gates that require a homomorphic operation
	// (everything except Input and Const).
	BooleanGates int
	// Depth is the longest dependency chain in gate-hops, i.e. the number
	// of sequential levels a parallel evaluation must synchronize on.
	Depth int
}

// Complexity computes the circuit's size and depth in a single pass.
func (c *Circuit) Complexity() Complexity {
	levels := c.wireLevels()
	cx := Complexity{TotalGates: len(c.gates)}
	for i, g := range c.gates {
		if g.Kind != GateInput && g.Kind != GateConst {
			cx.BooleanGates++
		}
		if levels[i] > cx.Depth {
			cx.Depth = levels[i]
		}
	}
	return cx
}

// wireLevels assigns each wire its dependency level: Input and Const gates
// sit at level 0, every other gate at 1 + max(level of operands). Gates
// sharing a level never depend on one another.
func (c *Circuit) wireLevels() []int {
	levels := make([]int, len(c.gates))
	for i, g := range c.gates {
		switch g.Kind {
		case GateInput, GateConst:
			// level 0
		case GateNot:
			levels[i] = levels[g.A] + 1
		default:
			l := levels[g.A]
			if levels[g.B] > l {
				l = levels[g.B]
			}
			levels[i] = l + 1
		}
	}
	return levels
}
