// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/gomlx/tiling/pkg/support/xslices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPlan(t *testing.T, in, out []int, elementBytes int) Plan {
	plan, err := ComputeTilingPlan(in, out, elementBytes, hardware.Default())
	require.NoError(t, err)
	require.True(t, plan.Ok())
	return plan
}

func TestPlanLastDimLargeCarried(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		plan := mustPlan(t, []int{1_000_000}, []int{1_000_000}, 4)
		assert.Equal(t, LastDimLargeCarried, plan.Strategy)
		assert.Equal(t, 0, plan.Shape.NumBroadcastAxes())
		p := plan.Partition
		assert.Equal(t, 0, p.UnitAxis)
		assert.Equal(t, 15360, p.UnitExtent)
		assert.Equal(t, 66, p.UnitLoops)
		assert.Equal(t, 1600, p.UnitTail)
		assert.Equal(t, CoreSplit{Axis: BlockAxisU, Count: 66, UsedUnits: 33, Normal: 2, Tail: 2}, plan.Split)
		assert.False(t, plan.Double.Enabled)
		assert.Equal(t, 2, plan.Double.BufferCount)
		assert.Equal(t, 33, plan.LaunchUnits())
		assert.Equal(t, uint64(104), plan.TilingKey())
	})

	t.Run("identity evenly split", func(t *testing.T) {
		plan := mustPlan(t, []int{64 * 800}, []int{64 * 800}, 4)
		assert.Equal(t, LastDimLargeCarried, plan.Strategy)
		assert.Equal(t, 800, plan.Budget.TensorSize)
		assert.Equal(t, CoreSplit{Axis: BlockAxisU, Count: 64, UsedUnits: 64, Normal: 1, Tail: 1}, plan.Split)
		assert.Equal(t, 1, plan.Double.BufferCount)
		assert.Equal(t, 64, plan.LaunchUnits())
	})

	t.Run("rows", func(t *testing.T) {
		plan := mustPlan(t, []int{1, 100_000}, []int{4, 100_000}, 4)
		assert.Equal(t, LastDimLargeCarried, plan.Strategy)
		assert.Equal(t, 30720, plan.Budget.TensorSize)
		assert.Equal(t, 4, plan.Partition.UnitLoops)
		assert.Equal(t, 7840, plan.Partition.UnitTail)
		assert.Equal(t, []int{0}, plan.Partition.B.Axes)
		// Ties between U and B favor U.
		assert.Equal(t, BlockAxisU, plan.Split.Axis)
		assert.Equal(t, 4, plan.LaunchUnits())
	})

	t.Run("double mode", func(t *testing.T) {
		plan := mustPlan(t, []int{1, 40_000}, []int{5, 40_000}, 4)
		assert.Equal(t, LastDimLargeCarried, plan.Strategy)
		assert.Equal(t, CoreSplit{Axis: BlockAxisB, Count: 5, UsedUnits: 5, Normal: 1, Tail: 1}, plan.Split)
		assert.Equal(t, DoubleBuffer{Enabled: true, Axis: BlockAxisU, Count: 2, Normal: 1, Tail: 1, BufferCount: 1}, plan.Double)
		assert.Equal(t, 10, plan.LaunchUnits())
	})
}

func TestPlanLastDimLargeBroadcast(t *testing.T) {
	plan := mustPlan(t, []int{2, 1}, []int{2, 100_000}, 4)
	assert.Equal(t, LastDimLargeBroadcast, plan.Strategy)
	p := plan.Partition
	assert.Equal(t, 1, p.UnitAxis)
	assert.Equal(t, 1, p.UnitDims)
	assert.Equal(t, 0, p.UnitInStride)
	assert.Equal(t, 1, p.UnitOutStride)
	assert.Equal(t, 7, p.UnitLoops)
	assert.Equal(t, 7840, p.UnitTail)
	assert.Equal(t, Group{Axes: []int{0}, Dims: []int{2}, InStrides: []int{1}, OutStrides: []int{100_000}, Count: 2}, p.A)
	assert.Equal(t, 0, p.B.Len())
	assert.Equal(t, 1, p.B.Count)
	assert.Equal(t, CoreSplit{Axis: BlockAxisU, Count: 7, UsedUnits: 7, Normal: 1, Tail: 1}, plan.Split)
	assert.Equal(t, 2, plan.Double.BufferCount)
	assert.Equal(t, uint64(204), plan.TilingKey())
}

func TestPlanResidentBroadcast(t *testing.T) {
	plan := mustPlan(t, []int{6, 1, 10, 1}, []int{6, 5, 10, 4000}, 4)
	assert.Equal(t, []bool{false, true, false, true}, plan.Shape.Broadcast)
	assert.Equal(t, 15360, plan.Budget.TensorSize)
	assert.Equal(t, ResidentBroadcast, plan.Strategy)

	p := plan.Partition
	assert.Equal(t, 2, p.UnitAxis)
	assert.Equal(t, 2, p.UnitDims)
	assert.Equal(t, 10, p.UnitAxisLen)
	assert.Equal(t, 3, p.UnitExtent)
	assert.Equal(t, 4, p.UnitLoops)
	assert.Equal(t, 1, p.UnitTail)
	assert.Equal(t, 1, p.UnitInStride)
	assert.Equal(t, 4000, p.UnitOutStride)
	assert.Equal(t, 4000, p.InnerSize)
	assert.Equal(t, 1, p.InnerInSize)
	assert.Equal(t, Group{Axes: []int{0}, Dims: []int{6}, InStrides: []int{10}, OutStrides: []int{200_000}, Count: 6}, p.A)
	assert.Equal(t, Group{Axes: []int{1}, Dims: []int{5}, InStrides: []int{0}, OutStrides: []int{40_000}, Count: 5}, p.B)

	assert.Equal(t, CoreSplit{Axis: BlockAxisA, Count: 6, UsedUnits: 6, Normal: 1, Tail: 1}, plan.Split)
	assert.Equal(t, DoubleBuffer{Enabled: true, Axis: BlockAxisB, Count: 5, Normal: 3, Tail: 2, BufferCount: 2}, plan.Double)
	assert.Equal(t, 12, plan.LaunchUnits())
	assert.Equal(t, uint64(304), plan.TilingKey())
}

func TestPlanSmallInnermostBroadcast(t *testing.T) {
	plan := mustPlan(t, []int{8, 1, 64}, []int{8, 16, 64}, 4)
	assert.Equal(t, SmallInnermostBroadcast, plan.Strategy)
	assert.True(t, plan.Strategy.IsResident())
	p := plan.Partition
	assert.Equal(t, 0, p.UnitAxis)
	assert.Equal(t, 3, p.UnitDims)
	assert.Equal(t, 8, p.UnitExtent)
	assert.Equal(t, 1, p.UnitLoops)
	assert.Equal(t, 1, p.UnitBroadcastAxes(plan.Shape))
	assert.Equal(t, 1, plan.LaunchUnits())
	assert.Equal(t, uint64(604), plan.TilingKey())

	// A wider second-to-last axis doesn't fit a vector register.
	plan = mustPlan(t, []int{8, 1, 64}, []int{8, 128, 64}, 4)
	assert.Equal(t, ResidentBroadcast, plan.Strategy)
}

func TestPlanMultiDimensionalTransfer(t *testing.T) {
	// Innermost broadcast too narrow to expand in the scratchpad.
	plan := mustPlan(t, []int{1, 2, 1, 3000, 1}, []int{2, 2, 3, 3000, 4}, 4)
	assert.Equal(t, MultiDimensionalTransfer, plan.Strategy)
	p := plan.Partition
	assert.Equal(t, 2, p.UnitAxis)
	assert.Equal(t, 3, p.UnitDims)
	assert.Equal(t, 1, p.UnitExtent)
	assert.Equal(t, 3, p.UnitLoops)
	assert.Equal(t, 0, p.UnitInStride)
	assert.Equal(t, 12000, p.UnitOutStride)
	assert.Equal(t, Group{Axes: []int{1}, Dims: []int{2}, InStrides: []int{3000}, OutStrides: []int{36000}, Count: 2}, p.A)
	assert.Equal(t, Group{Axes: []int{0}, Dims: []int{2}, InStrides: []int{0}, OutStrides: []int{72000}, Count: 2}, p.B)
	assert.Equal(t, CoreSplit{Axis: BlockAxisU, Count: 3, UsedUnits: 3, Normal: 1, Tail: 1}, plan.Split)
	assert.False(t, plan.Double.Enabled)
	assert.Equal(t, 2, plan.Double.BufferCount)
	assert.Equal(t, 3, plan.LaunchUnits())

	// Small carried rows, where the tensor size doesn't fit a quarter of the scratchpad.
	plan = mustPlan(t, []int{1, 4}, []int{10, 4}, 4)
	assert.False(t, plan.Budget.QuarterGuard)
	assert.Equal(t, MultiDimensionalTransfer, plan.Strategy)
}

func TestPlanFullMultiDimensionalTransfer(t *testing.T) {
	plan := mustPlan(t, []int{1, 3, 1, 3, 1}, []int{2, 3, 2, 3, 2}, 4)
	assert.Equal(t, FullMultiDimensionalTransfer, plan.Strategy)
	assert.Equal(t, 0, plan.Partition.UnitAxis)
	assert.Equal(t, 5, plan.Partition.UnitDims)
	assert.Equal(t, 1, plan.LaunchUnits())

	plan = mustPlan(t, []int{3, 1, 3, 1, 3, 1}, []int{3, 2, 3, 2, 3, 2}, 4)
	assert.Equal(t, FullMultiDimensionalTransfer, plan.Strategy)
	assert.Equal(t, 1, plan.Partition.UnitAxis)
	assert.Equal(t, 5, plan.Partition.UnitDims)
	assert.Equal(t, CoreSplit{Axis: BlockAxisA, Count: 3, UsedUnits: 3, Normal: 1, Tail: 1}, plan.Split)
	assert.False(t, plan.Double.Enabled)
}

func TestPlanErrors(t *testing.T) {
	plan, err := ComputeTilingPlan([]int{1, 1, 5}, []int{5}, 4, hardware.Default())
	require.ErrorIs(t, err, ErrShapeMismatch)
	assert.False(t, plan.Ok())
	assert.Equal(t, uint64(0), plan.TilingKey())
	assert.Equal(t, 0, plan.LaunchUnits())
	assert.Equal(t, "Plan{invalid}", plan.String())

	_, err = ComputeTilingPlan([]int{3}, []int{3}, 4, hardware.Profile{Name: "broken"})
	require.ErrorIs(t, err, ErrDegenerateBudget)

	_, err = ComputeTilingPlan([]int{3}, []int{0}, 4, hardware.Default())
	require.ErrorIs(t, err, ErrEmptyTensor)

	// Element counts that don't fit an int fail instead of wrapping around.
	plan, err = ComputeTilingPlan([]int{1 << 32, 1 << 32}, []int{1 << 32, 1 << 32}, 4, hardware.Default())
	require.ErrorIs(t, err, ErrUnsupportedRank)
	assert.Equal(t, 0, plan.LaunchUnits())
	_, err = ComputeTilingPlan([]int{1, 1 << 62}, []int{4, 1 << 62}, 4, hardware.Default())
	require.ErrorIs(t, err, ErrUnsupportedRank)
	_, err = ComputeTilingPlan([]int{1 << 62}, []int{1 << 62}, 4, hardware.Default())
	require.ErrorIs(t, err, ErrDegenerateBudget)
}

func TestPlanHugeShapes(t *testing.T) {
	plan := mustPlan(t, []int{1, 1 << 40}, []int{4, 1 << 40}, 4)
	assert.Equal(t, 1<<42, plan.Shape.Size())
	assert.Equal(t, LastDimLargeCarried, plan.Strategy)
	assert.Positive(t, plan.Partition.UnitExtent)
	assert.Equal(t, 1<<40, (plan.Partition.UnitLoops-1)*plan.Partition.UnitExtent+plan.Partition.UnitTail)
	assert.Equal(t, plan.Split.Count, plan.Split.Total())
	assert.Equal(t, hardware.Default().NumUnits, plan.Split.UsedUnits)
}

func TestPlanAllOnes(t *testing.T) {
	plan := mustPlan(t, []int{1, 1}, []int{1, 1}, 4)
	assert.Equal(t, []int{1}, plan.Shape.In)
	assert.Equal(t, []int{1}, plan.Shape.Out)
	assert.Equal(t, ResidentBroadcast, plan.Strategy)
	assert.Equal(t, 1, plan.LaunchUnits())
}

func TestPlanString(t *testing.T) {
	plan := mustPlan(t, []int{6, 1, 10, 1}, []int{6, 5, 10, 4000}, 4)
	s := plan.String()
	assert.True(t, strings.HasPrefix(s, "Plan{ResidentBroadcast, key=304, launch units=12}"), s)
	assert.Contains(t, s, "1,200,000 elements")
	assert.Contains(t, s, "60 KiB")
}

// TestPlanProperties checks the plan invariants over random shapes, element widths and profiles.
func TestPlanProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))
	var profiles []hardware.Profile
	for _, name := range []string{"default", "small", "large"} {
		hw, err := hardware.Lookup(name)
		require.NoError(t, err)
		profiles = append(profiles, hw.WithDefaults())
	}
	seen := make(map[Strategy]bool)
	for range 3000 {
		in, out := randomBroadcast(rng, 7, 12)
		if len(out) > 0 && rng.IntN(3) == 0 {
			// Large innermost axis.
			scale := []int{100, 5000, 40_000}[rng.IntN(3)]
			if len(in) > 0 && xslices.Last(in) == xslices.Last(out) {
				in[len(in)-1] *= scale
			}
			out[len(out)-1] *= scale
		}
		elementBytes := []int{1, 2, 4, 8}[rng.IntN(4)]
		hw := profiles[rng.IntN(len(profiles))]

		plan, err := ComputeTilingPlan(in, out, elementBytes, hw)
		require.NoError(t, err, "in=%v, out=%v", in, out)
		again, err := ComputeTilingPlan(in, out, elementBytes, hw)
		require.NoError(t, err)
		require.Equal(t, plan, again)
		seen[plan.Strategy] = true
		require.NoError(t, plan.Validate(), "%s", plan)

		b, p, c, d := plan.Budget, plan.Partition, plan.Split, plan.Double
		require.Zero(t, b.TensorSize%b.AlignElements, "%s", plan)
		require.GreaterOrEqual(t, b.TensorSize, b.AlignElements)
		require.LessOrEqual(t, b.TensorSize, hw.MaxTensorElements)

		require.GreaterOrEqual(t, p.UnitDims, 1)
		require.Equal(t, plan.Shape.Rank(), p.UnitAxis+p.UnitDims)
		require.Equal(t, plan.Shape.Rank(), p.UnitDims+p.A.Len()+p.B.Len())
		require.GreaterOrEqual(t, p.UnitTail, 1)
		require.LessOrEqual(t, p.UnitTail, p.UnitExtent)
		require.Equal(t, p.UnitAxisLen, (p.UnitLoops-1)*p.UnitExtent+p.UnitTail)
		if plan.Strategy.IsLastDim() {
			require.Equal(t, 1, p.UnitDims)
		}
		if plan.Strategy.IsTransfer() {
			require.LessOrEqual(t, p.UnitDims, hw.MaxTransferDims)
		}

		require.Equal(t, c.Count, c.Total(), "%s", plan)
		require.LessOrEqual(t, c.UsedUnits, hw.NumUnits)
		if d.Enabled {
			require.NotEqual(t, c.Axis, d.Axis)
			require.Equal(t, d.Count, d.Normal+d.Tail)
			require.GreaterOrEqual(t, d.Tail, 1)
			require.Less(t, 2*c.UsedUnits, hw.NumUnits)
		}
		require.LessOrEqual(t, plan.LaunchUnits(), hw.NumUnits)
		require.Equal(t, uint64(plan.Strategy)*100+uint64(elementBytes), plan.TilingKey())
	}
	for _, s := range []Strategy{LastDimLargeCarried, LastDimLargeBroadcast, ResidentBroadcast, MultiDimensionalTransfer} {
		assert.True(t, seen[s], "strategy %s never selected", s)
	}
}
