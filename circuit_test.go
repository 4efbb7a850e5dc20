// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package encircuit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildExample constructs (¬y∧x)∨(x∧y) with x, y as inputs.
func buildExample(t *testing.T) *Circuit {
	t.Helper()

	b := NewBuilder()
	x := b.Input()
	y := b.Input()
	notY, err := b.Not(y)
	require.NoError(t, err)
	a1, err := b.And(notY, x)
	require.NoError(t, err)
	a2, err := b.And(x, y)
	require.NoError(t, err)
	out, err := b.Or(a1, a2)
	require.NoError(t, err)

	c, err := b.Finish(out)
	require.NoError(t, err)
	return c
}

func TestCircuitStats(t *testing.T) {
	c := buildExample(t)

	require.Equal(t, Stats{
		Inputs: 2,
		And:    2,
		Or:     1,
		Not:    1,
		Total:  6,
	}, c.Stats())
	require.Equal(t, 6, c.GateCount())
	require.Equal(t, 2, c.InputCount())
}

func TestStatsOrderInvariance(t *testing.T) {
	// Two circuits with the same gate multiset built in different orders
	// report identical counts.
	b1 := NewBuilder()
	x := b1.Input()
	y := b1.Input()
	a, _ := b1.And(x, y)
	o, _ := b1.Or(x, y)
	n, _ := b1.Not(a)
	xr, _ := b1.Xor(o, n)
	c1, err := b1.Finish(xr)
	require.NoError(t, err)

	b2 := NewBuilder()
	x = b2.Input()
	y = b2.Input()
	o, _ = b2.Or(x, y)
	xr, _ = b2.Xor(o, y)
	a, _ = b2.And(x, xr)
	n, _ = b2.Not(a)
	c2, err := b2.Finish(n)
	require.NoError(t, err)

	s1, s2 := c1.Stats(), c2.Stats()
	require.Equal(t, s1.And, s2.And)
	require.Equal(t, s1.Or, s2.Or)
	require.Equal(t, s1.Xor, s2.Xor)
	require.Equal(t, s1.Not, s2.Not)
	require.Equal(t, s1.Total, s2.Total)
}

func TestCircuitComplexity(t *testing.T) {
	b := NewBuilder()
	x := b.Input()
	y := b.Input()
	z := b.Input()
	a1, _ := b.And(x, y)
	a2, _ := b.And(a1, z)
	out, _ := b.Or(a2, x)
	c, err := b.Finish(out)
	require.NoError(t, err)

	cx := c.Complexity()
	require.Equal(t, 6, cx.TotalGates)
	require.Equal(t, 3, cx.BooleanGates)
	// Longest chain: input -> and -> and -> or.
	require.Equal(t, 3, cx.Depth)
}

func TestWireLevels(t *testing.T) {
	c := buildExample(t)
	// x=0, y=1, not=2, and1=3, and2=4, or=5
	require.Equal(t, []int{0, 0, 1, 2, 1, 3}, c.wireLevels())
}

func TestCircuitSerializationRoundTrip(t *testing.T) {
	b := NewBuilder()
	x := b.Input()
	y := b.Input()
	ct := b.Constant(true)
	cf := b.Constant(false)
	a, _ := b.And(x, ct)
	o, _ := b.Or(a, cf)
	n, _ := b.Not(y)
	xr, _ := b.Xor(o, n)
	c, err := b.Finish(xr, n)
	require.NoError(t, err)

	data, err := c.MarshalBinary()
	require.NoError(t, err)

	got := new(Circuit)
	require.NoError(t, got.UnmarshalBinary(data))

	require.Equal(t, c.gates, got.gates)
	require.Equal(t, c.outputs, got.outputs)
	require.Equal(t, c.inputs, got.inputs)
	require.Equal(t, c.Stats(), got.Stats())
}

func TestCircuitUnmarshalRejectsForwardReference(t *testing.T) {
	// Gate 1 referencing wire 1 (itself) violates the ordering invariant.
	data := []byte{
		2, 0, 0, 0, // 2 gates
		byte(GateInput),
		byte(GateNot), 1, 0, 0, 0,
		1, 0, 0, 0, // 1 output
		1, 0, 0, 0,
	}
	err := new(Circuit).UnmarshalBinary(data)
	require.ErrorIs(t, err, ErrInvalidWireReference)
}

func TestCircuitUnmarshalRejectsBadOutput(t *testing.T) {
	data := []byte{
		1, 0, 0, 0,
		byte(GateInput),
		1, 0, 0, 0,
		9, 0, 0, 0, // output wire out of range
	}
	err := new(Circuit).UnmarshalBinary(data)
	require.ErrorIs(t, err, ErrInvalidWireReference)
}

func TestCircuitUnmarshalRejectsUnknownKind(t *testing.T) {
	data := []byte{
		1, 0, 0, 0,
		0xff,
		1, 0, 0, 0,
		0, 0, 0, 0,
	}
	err := new(Circuit).UnmarshalBinary(data)
	require.Error(t, err)
}

func TestCircuitUnmarshalRejectsTrailingBytes(t *testing.T) {
	c := buildExample(t)
	data, err := c.MarshalBinary()
	require.NoError(t, err)

	err = new(Circuit).UnmarshalBinary(append(data, 0))
	require.Error(t, err)
}

func TestCircuitUnmarshalHostileGateCount(t *testing.T) {
	// A header claiming ~4 billion gates over a 5-byte body must fail on
	// truncated input, not attempt a matching allocation.
	data := []byte{
		0xff, 0xff, 0xff, 0xff,
		byte(GateInput),
	}
	err := new(Circuit).UnmarshalBinary(data)
	require.Error(t, err)
}
