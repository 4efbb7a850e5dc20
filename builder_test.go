// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package encircuit

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderAcyclicByConstruction(t *testing.T) {
	// Any sequence of builder calls must yield gates whose operands are
	// strictly smaller than their own wire.
	rng := rand.New(rand.NewSource(1))

	b := NewBuilder()
	b.Input()
	b.Input()
	b.Input()
	for i := 0; i < 200; i++ {
		pick := func() WireId { return WireId(rng.Intn(b.GateCount())) }
		var err error
		switch rng.Intn(5) {
		case 0:
			_, err = b.And(pick(), pick())
		case 1:
			_, err = b.Or(pick(), pick())
		case 2:
			_, err = b.Xor(pick(), pick())
		case 3:
			_, err = b.Not(pick())
		case 4:
			b.Constant(rng.Intn(2) == 0)
		}
		require.NoError(t, err)
	}

	c, err := b.Finish(WireId(b.GateCount() - 1))
	require.NoError(t, err)

	for w, g := range c.gates {
		switch g.Kind {
		case GateAnd, GateOr, GateXor:
			require.Less(t, int(g.B), w)
			fallthrough
		case GateNot:
			require.Less(t, int(g.A), w)
		}
	}
}

func TestBuilderRejectsOutOfRangeOperand(t *testing.T) {
	b := NewBuilder()
	x := b.Input()

	_, err := b.And(x, 5)
	require.ErrorIs(t, err, ErrInvalidWireReference)
	require.Equal(t, 1, b.GateCount())

	_, err = b.Or(7, x)
	require.ErrorIs(t, err, ErrInvalidWireReference)
	_, err = b.Xor(x, WireId(-1))
	require.ErrorIs(t, err, ErrInvalidWireReference)
	_, err = b.Not(1)
	require.ErrorIs(t, err, ErrInvalidWireReference)

	// No partial gate was appended by any failed call.
	require.Equal(t, 1, b.GateCount())
}

func TestBuilderInputOrdinals(t *testing.T) {
	b := NewBuilder()
	x := b.Input()
	b.Constant(true)
	y := b.Input()
	notY, err := b.Not(y)
	require.NoError(t, err)
	z := b.Input()

	require.Equal(t, 3, b.InputCount())

	out, err := b.And(notY, z)
	require.NoError(t, err)
	c, err := b.Finish(out)
	require.NoError(t, err)

	require.Equal(t, 3, c.InputCount())
	require.Equal(t, []WireId{x, y, z}, c.inputs)
}

func TestBuilderFinish(t *testing.T) {
	t.Run("OutputOutOfRange", func(t *testing.T) {
		b := NewBuilder()
		b.Input()
		_, err := b.Finish(3)
		require.ErrorIs(t, err, ErrInvalidWireReference)

		// The failed Finish did not consume the builder.
		_, err = b.Finish(0)
		require.NoError(t, err)
	})

	t.Run("NoOutputs", func(t *testing.T) {
		b := NewBuilder()
		b.Input()
		_, err := b.Finish()
		require.ErrorIs(t, err, ErrNoOutputs)
	})

	t.Run("ConsumesBuilder", func(t *testing.T) {
		b := NewBuilder()
		x := b.Input()
		c, err := b.Finish(x)
		require.NoError(t, err)
		require.NotNil(t, c)

		_, err = b.And(x, x)
		require.ErrorIs(t, err, ErrBuilderFinished)
		_, err = b.Not(x)
		require.ErrorIs(t, err, ErrBuilderFinished)
		_, err = b.Finish(x)
		require.ErrorIs(t, err, ErrBuilderFinished)
	})

	t.Run("MultipleOutputs", func(t *testing.T) {
		b := NewBuilder()
		x := b.Input()
		y := b.Input()
		s, err := b.Xor(x, y)
		require.NoError(t, err)
		carry, err := b.And(x, y)
		require.NoError(t, err)

		c, err := b.Finish(s, carry)
		require.NoError(t, err)
		require.Equal(t, []WireId{s, carry}, c.Outputs())
	})
}
