// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"testing"

	"github.com/gomlx/tiling/pkg/core/dtypes"
	"github.com/gomlx/tiling/pkg/core/shapes"
	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastTo(t *testing.T) {
	hw := hardware.Default()
	input := shapes.Make(dtypes.Float32, 1, 1, 5)

	// Constant target shape disagreeing with the declared output only logs a warning.
	plan, err := BroadcastTo(input, shapes.Make(dtypes.Float32, 1, 1, 5), []int{3}, hw)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, plan.Shape.Out)
	assert.Equal(t, ResidentBroadcast, plan.Strategy)
	assert.Equal(t, 1, plan.LaunchUnits())

	plan, err = BroadcastTo(shapes.Make(dtypes.Int8, 3, 1), shapes.Make(dtypes.Int8, 3, 100_000), nil, hw)
	require.NoError(t, err)
	assert.Equal(t, LastDimLargeBroadcast, plan.Strategy)
	assert.Equal(t, uint64(201), plan.TilingKey())

	_, err = BroadcastTo(input, shapes.Make(dtypes.Float32, 5), nil, hw)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = BroadcastTo(input, shapes.Make(dtypes.Int32, 1, 1, 5), nil, hw)
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = BroadcastTo(shapes.Shape{Dimensions: []int{5}}, shapes.Make(dtypes.Float32, 5), nil, hw)
	require.Error(t, err)
}

func TestTileBroadcastDims(t *testing.T) {
	in, out, tiled, err := TileBroadcastDims([]int{2, 3, 1, 1000, 1, 1}, []int{2, 3, 1, 1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1, 3, 1, 1000, 1, 1}, in)
	assert.Equal(t, []int{2, 2, 3, 3, 1, 1000, 2, 2}, out)
	assert.Equal(t, []int{4, 9, 1, 1000, 2, 2}, tiled)

	_, _, _, err = TileBroadcastDims([]int{2, 3}, []int{2})
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, _, _, err = TileBroadcastDims([]int{2, 3}, []int{2, 0})
	require.ErrorIs(t, err, ErrEmptyTensor)
	_, _, _, err = TileBroadcastDims([]int{2, 3}, []int{-1, 2})
	require.ErrorIs(t, err, ErrBroadcastRuleViolation)
}

func TestTile(t *testing.T) {
	hw := hardware.Default()
	input := shapes.Make(dtypes.Float32, 2, 3, 1, 1000, 1, 1)
	multiples := []int{2, 3, 1, 1, 2, 2}
	plan, output, err := Tile(input, multiples, hw)
	require.NoError(t, err)
	assert.True(t, output.Equal(shapes.Make(dtypes.Float32, 4, 9, 1, 1000, 2, 2)))
	assert.Equal(t, output.Size(), plan.Shape.Size())
	assert.Equal(t, input.Size(), plan.Shape.InputSize())
	assert.Equal(t, []int{1, 2, 1, 3000, 1}, plan.Shape.In)
	assert.Equal(t, []int{2, 2, 3, 3000, 4}, plan.Shape.Out)
	assert.Equal(t, MultiDimensionalTransfer, plan.Strategy)
	assert.Equal(t, 3, plan.LaunchUnits())
	assert.LessOrEqual(t, plan.LaunchUnits(), hw.NumUnits)

	// Planning is deterministic.
	for range 5 {
		again, _, err := Tile(input, multiples, hw)
		require.NoError(t, err)
		require.Equal(t, plan, again)
	}

	_, _, err = Tile(input, []int{1, 1}, hw)
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, _, err = Tile(shapes.Make(dtypes.Float32, 0, 3), []int{2, 2}, hw)
	require.ErrorIs(t, err, ErrEmptyTensor)
}
