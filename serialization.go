// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package encircuit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Circuit wire format: an ordered list of tagged gate records followed by
// the declared outputs. Input ordinals and the input count are implied by
// record order, so a round trip reproduces an observably identical circuit.
//
//	uint32  gate count
//	per gate:
//	  uint8  kind
//	  kind-specific payload:
//	    Input          (none)
//	    Const          uint8 literal
//	    And, Or, Xor   uint32 a, uint32 b
//	    Not            uint32 a
//	uint32  output count
//	uint32  per output wire
//
// All integers are little-endian.

// MarshalBinary serializes the circuit to its tagged-record wire format.
func (c *Circuit) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(c.gates))); err != nil {
		return nil, err
	}
	for _, g := range c.gates {
		if err := buf.WriteByte(byte(g.Kind)); err != nil {
			return nil, err
		}
		switch g.Kind {
		case GateInput:
		case GateConst:
			v := byte(0)
			if g.Value {
				v = 1
			}
			if err := buf.WriteByte(v); err != nil {
				return nil, err
			}
		case GateAnd, GateOr, GateXor:
			if err := binary.Write(&buf, binary.LittleEndian, uint32(g.A)); err != nil {
				return nil, err
			}
			if err := binary.Write(&buf, binary.LittleEndian, uint32(g.B)); err != nil {
				return nil, err
			}
		case GateNot:
			if err := binary.Write(&buf, binary.LittleEndian, uint32(g.A)); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("marshal circuit: unknown gate kind %d", g.Kind)
		}
	}

	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(c.outputs))); err != nil {
		return nil, err
	}
	for _, w := range c.outputs {
		if err := binary.Write(&buf, binary.LittleEndian, uint32(w)); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary deserializes a circuit, re-validating the same invariants
// the Builder enforces: operand wires strictly smaller than their gate,
// outputs in range, at least one output.
func (c *Circuit) UnmarshalBinary(data []byte) error {
	buf := bytes.NewReader(data)

	var gateCount uint32
	if err := binary.Read(buf, binary.LittleEndian, &gateCount); err != nil {
		return fmt.Errorf("unmarshal circuit: %w", err)
	}

	// The header is untrusted; cap the preallocation by what the remaining
	// bytes could possibly encode (one byte per gate at minimum).
	prealloc := int(gateCount)
	if remaining := buf.Len(); prealloc > remaining {
		prealloc = remaining
	}
	gates := make([]Gate, 0, prealloc)
	var inputs []WireId
	for i := uint32(0); i < gateCount; i++ {
		kind, err := buf.ReadByte()
		if err != nil {
			return fmt.Errorf("unmarshal circuit: gate %d: %w", i, err)
		}
		g := Gate{Kind: GateKind(kind)}
		switch g.Kind {
		case GateInput:
			inputs = append(inputs, WireId(i))
		case GateConst:
			v, err := buf.ReadByte()
			if err != nil {
				return fmt.Errorf("unmarshal circuit: gate %d: %w", i, err)
			}
			g.Value = v != 0
		case GateAnd, GateOr, GateXor:
			if g.A, err = readWire(buf, i); err != nil {
				return err
			}
			if g.B, err = readWire(buf, i); err != nil {
				return err
			}
		case GateNot:
			if g.A, err = readWire(buf, i); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unmarshal circuit: gate %d: unknown kind %d", i, kind)
		}
		gates = append(gates, g)
	}

	var outputCount uint32
	if err := binary.Read(buf, binary.LittleEndian, &outputCount); err != nil {
		return fmt.Errorf("unmarshal circuit: %w", err)
	}
	if outputCount == 0 {
		return ErrNoOutputs
	}
	outputs := make([]WireId, outputCount)
	for i := range outputs {
		var w uint32
		if err := binary.Read(buf, binary.LittleEndian, &w); err != nil {
			return fmt.Errorf("unmarshal circuit: output %d: %w", i, err)
		}
		if w >= gateCount {
			return fmt.Errorf("%w: output wire %d, circuit holds %d gates",
				ErrInvalidWireReference, w, gateCount)
		}
		outputs[i] = WireId(w)
	}
	if buf.Len() != 0 {
		return fmt.Errorf("unmarshal circuit: %d trailing bytes", buf.Len())
	}

	c.gates = gates
	c.outputs = outputs
	c.inputs = inputs
	return nil
}

// readWire reads one operand and enforces the strict ordering invariant.
func readWire(r io.Reader, gate uint32) (WireId, error) {
	var w uint32
	if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
		return 0, fmt.Errorf("unmarshal circuit: gate %d: %w", gate, err)
	}
	if w >= gate {
		return 0, fmt.Errorf("%w: gate %d references wire %d",
			ErrInvalidWireReference, gate, w)
	}
	return WireId(w), nil
}
