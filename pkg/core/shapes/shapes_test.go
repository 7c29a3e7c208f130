// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/gomlx/tiling/pkg/core/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := Make(dtypes.Float32, 4, 3, 2)
	assert.Equal(t, 3, s.Rank())
	assert.Equal(t, 24, s.Size())
	assert.Equal(t, uintptr(96), s.Memory())
	assert.Equal(t, 2, s.Dim(-1))
	assert.Equal(t, 4, s.Dim(0))
	assert.Equal(t, "(Float32)[4 3 2]", s.String())
	require.Panics(t, func() { _ = s.Dim(3) })

	s2 := s.Clone()
	s2.Dimensions[0] = 5
	assert.False(t, s.Equal(s2))
	assert.True(t, s.Equal(Make(dtypes.Float32, 4, 3, 2)))

	scalar := Make(dtypes.Int8)
	assert.True(t, scalar.IsScalar())
	assert.Equal(t, 1, scalar.Size())
	assert.Equal(t, "(Int8)", scalar.String())

	assert.False(t, Shape{}.Ok())
	require.Panics(t, func() { _ = Make(dtypes.Float32, 2, -1) })

	// Empty tensors are representable.
	empty := Make(dtypes.Float16, 3, 0)
	assert.Equal(t, 0, empty.Size())
}

func TestCheckDims(t *testing.T) {
	s := Make(dtypes.Int32, 2, 7)
	require.NoError(t, s.CheckDims(2, 7))
	require.NoError(t, s.CheckDims(-1, 7))
	require.Error(t, s.CheckDims(2))
	require.Error(t, s.CheckDims(2, 8))
}
