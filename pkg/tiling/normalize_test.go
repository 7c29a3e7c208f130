// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"math/rand/v2"
	"testing"

	"github.com/gomlx/tiling/pkg/support/xslices"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name          string
		in, out       []int
		wantIn        []int
		wantOut       []int
		wantBroadcast []bool
	}{
		{"padding", []int{3}, []int{2, 3}, []int{1, 3}, []int{2, 3}, []bool{true, false}},
		{"identity", []int{1, 1, 5}, []int{1, 1, 5}, []int{5}, []int{5}, []bool{false}},
		{"all ones", []int{1, 1}, []int{1, 1}, []int{1}, []int{1}, []bool{false}},
		{"scalars", []int{}, []int{}, []int{1}, []int{1}, []bool{false}},
		{"scalar to vector", []int{}, []int{7}, []int{1}, []int{7}, []bool{true}},
		{"merge broadcast", []int{4, 1, 1, 6}, []int{4, 2, 3, 6}, []int{4, 1, 6}, []int{4, 6, 6}, []bool{false, true, false}},
		{"squeeze then merge", []int{2, 1, 3, 1}, []int{2, 1, 3, 4}, []int{6, 1}, []int{6, 4}, []bool{false, true}},
		{"tile form", []int{1, 2, 1, 3, 1, 1000, 1, 1}, []int{2, 2, 3, 3, 1, 1000, 2, 2},
			[]int{1, 2, 1, 3000, 1}, []int{2, 2, 3, 3000, 4}, []bool{true, false, true, false, true}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inCopy, outCopy := append([]int{}, tc.in...), append([]int{}, tc.out...)
			n, err := Normalize(tc.in, tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.wantIn, n.In)
			assert.Equal(t, tc.wantOut, n.Out)
			assert.Equal(t, tc.wantBroadcast, n.Broadcast)
			// Arguments are not modified.
			assert.Equal(t, inCopy, tc.in)
			assert.Equal(t, outCopy, tc.out)
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	testCases := []struct {
		name    string
		in, out []int
		wantErr error
	}{
		{"input rank larger", []int{1, 1, 5}, []int{5}, ErrShapeMismatch},
		{"not broadcastable", []int{2}, []int{3}, ErrBroadcastRuleViolation},
		{"negative", []int{-1}, []int{3}, ErrBroadcastRuleViolation},
		{"empty output", []int{1}, []int{0}, ErrEmptyTensor},
		{"empty input", []int{0, 3}, []int{2, 3}, ErrEmptyTensor},
		{"rank too large", []int{1, 2, 1, 2, 1, 2, 1, 2, 1}, []int{2, 2, 2, 2, 2, 2, 2, 2, 2}, ErrUnsupportedRank},
		{"element count overflows", []int{1 << 32, 1 << 32}, []int{1 << 32, 1 << 32}, ErrUnsupportedRank},
		{"broadcast count overflows", []int{1, 1 << 62}, []int{4, 1 << 62}, ErrUnsupportedRank},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.in, tc.out)
			require.Error(t, err)
			assert.Truef(t, errors.Is(err, tc.wantErr), "wanted %v, got %+v", tc.wantErr, err)
		})
	}

	// Large raw ranks are fine if they normalize to MaxRank or less.
	n, err := Normalize([]int{1, 1, 1, 1, 1, 1, 1, 1, 1, 3}, []int{2, 2, 2, 2, 2, 2, 2, 2, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{512, 3}, n.Out)
}

// randomBroadcast returns a random pair of broadcast compatible dimensions.
func randomBroadcast(rng *rand.Rand, maxRank, maxDim int) (in, out []int) {
	outRank := rng.IntN(maxRank + 1)
	out = make([]int, outRank)
	for axis := range out {
		out[axis] = 1 + rng.IntN(maxDim)
		if rng.IntN(4) == 0 {
			out[axis] = 1
		}
	}
	inRank := rng.IntN(outRank + 1)
	in = make([]int, inRank)
	for ii := range in {
		dim := out[outRank-inRank+ii]
		if rng.IntN(2) == 0 {
			dim = 1
		}
		in[ii] = dim
	}
	return
}

func TestNormalizeProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for range 2000 {
		in, out := randomBroadcast(rng, 8, 6)
		n, err := Normalize(in, out)
		require.NoError(t, err, "in=%v, out=%v", in, out)

		rank := n.Rank()
		require.GreaterOrEqual(t, rank, 1)
		require.LessOrEqual(t, rank, MaxRank)
		require.Len(t, n.In, rank)
		require.Len(t, n.Broadcast, rank)
		assert.Equal(t, xslices.Product(out), n.Size(), "in=%v, out=%v", in, out)
		assert.Equal(t, xslices.Product(in), n.InputSize(), "in=%v, out=%v", in, out)
		if rank == 1 && n.Out[0] == 1 {
			continue
		}
		for axis := range rank {
			assert.NotEqual(t, 1, n.Out[axis], "in=%v, out=%v -> %s", in, out, n)
			if axis > 0 {
				assert.NotEqual(t, n.Broadcast[axis-1], n.Broadcast[axis], "in=%v, out=%v -> %s", in, out, n)
			}
		}
	}
}

func TestClassifyAxes(t *testing.T) {
	in, out := []int{1, 3, 1}, []int{2, 3, 4}
	isBroadcast, err := ClassifyAxes(in, out)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, isBroadcast)
	again, err := ClassifyAxes(in, out)
	require.NoError(t, err)
	assert.Equal(t, isBroadcast, again)

	_, err = ClassifyAxes([]int{1}, []int{2, 3})
	require.ErrorIs(t, err, ErrShapeMismatch)
}
