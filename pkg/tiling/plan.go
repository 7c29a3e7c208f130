// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tiling computes the execution plan of broadcast-style copies (broadcast-to, tile) on an
// accelerator with a number of parallel execution units, each with a limited scratchpad memory.
//
// The plan is computed by a pipeline of pure stages, each returning an immutable record:
//
//	Normalize -> ComputeBudget -> SelectStrategy -> PartitionAxes (-> Refine) -> SplitAcrossUnits -> SelectDoubleBuffer
//
// ComputeTilingPlan runs the whole pipeline. The first error aborts it.
//
// ## Glossary
//
//   - Carried axis (A): an axis where the input dimension equals the output dimension.
//   - Broadcast axis (B): an axis where the input dimension is 1 and the output dimension is larger.
//   - Unit axis (U): the pivot axis; it and the axes inward of it are resident in the scratchpad during
//     one iteration.
//   - Tensor size (T): the maximum number of elements resident per iteration.
package tiling

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/tiling/pkg/hardware"
	"k8s.io/klog/v2"
)

// Plan is the complete tiling of one broadcast: the records produced by each stage of the pipeline.
// It is never modified after creation.
type Plan struct {
	Shape     Normalized
	Budget    Budget
	Strategy  Strategy
	Partition Partition
	Split     CoreSplit
	Double    DoubleBuffer
}

// Ok returns whether the plan is valid. The zero Plan, returned on errors, is not.
func (p Plan) Ok() bool { return p.Strategy.IsValid() }

// ElementBytes returns the width of the elements.
func (p Plan) ElementBytes() int { return p.Budget.ElementBytes }

// LaunchUnits returns the number of execution units to launch, 0 for an invalid plan.
func (p Plan) LaunchUnits() int {
	if !p.Ok() {
		return 0
	}
	return p.Split.UsedUnits * p.Double.Factor()
}

// TilingKey returns the key used to select the execution code path: the strategy and the element width.
// It is 0 for an invalid plan.
func (p Plan) TilingKey() uint64 {
	if !p.Ok() {
		return 0
	}
	return uint64(p.Strategy)*100 + uint64(p.Budget.ElementBytes)
}

// ComputeTilingPlan returns the plan to broadcast a tensor of dimensions inDims to outDims, with
// elements of elementBytes bytes, on the given hardware. Zero thresholds of the hardware profile take
// their default values.
//
// On error, it returns the zero Plan, with tiling key 0 and no units to launch.
func ComputeTilingPlan(inDims, outDims []int, elementBytes int, hw hardware.Profile) (Plan, error) {
	hw = hw.WithDefaults()
	n, err := Normalize(inDims, outDims)
	if err != nil {
		return Plan{}, err
	}
	b, err := ComputeBudget(n, elementBytes, hw)
	if err != nil {
		return Plan{}, err
	}
	s := SelectStrategy(n, b, hw)
	part := PartitionAxes(n, b, s, hw)
	s = Refine(s, n, b, part, hw)
	split, err := SplitAcrossUnits(part, hw.NumUnits)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{
		Shape:     n,
		Budget:    b,
		Strategy:  s,
		Partition: part,
		Split:     split,
		Double:    SelectDoubleBuffer(n, s, part, split, hw.NumUnits),
	}
	if klog.V(1).Enabled() {
		klog.Infof("tiling %v->%v (%d bytes) on %s: %s, %d units", inDims, outDims, elementBytes, hw.Name,
			plan.Strategy, plan.LaunchUnits())
	}
	return plan, nil
}

// String returns a human-readable dump of all the plan fields.
func (p Plan) String() string {
	if !p.Ok() {
		return "Plan{invalid}"
	}
	var sb strings.Builder
	w := func(format string, args ...any) { _, _ = fmt.Fprintf(&sb, format, args...) }
	w("Plan{%s, key=%d, launch units=%d}\n", p.Strategy, p.TilingKey(), p.LaunchUnits())
	w("  shape:      %s, %s elements\n", p.Shape, humanize.Comma(int64(p.Shape.Size())))
	w("  budget:     T=%d elements (%s), base=%d, align=%d, element=%dB, small-innermost=%v, quarter-guard=%v\n",
		p.Budget.TensorSize, humanize.IBytes(uint64(p.Budget.TensorSize*p.Budget.ElementBytes)),
		p.Budget.Base, p.Budget.AlignElements, p.Budget.ElementBytes,
		p.Budget.SmallInnermostBroadcast, p.Budget.QuarterGuard)
	w("  unit:       axis=%d, dims=%d, len=%d, extent=%d, loops=%d, tail=%d, strides(in=%d, out=%d), inner(in=%d, out=%d)\n",
		p.Partition.UnitAxis, p.Partition.UnitDims, p.Partition.UnitAxisLen, p.Partition.UnitExtent,
		p.Partition.UnitLoops, p.Partition.UnitTail, p.Partition.UnitInStride, p.Partition.UnitOutStride,
		p.Partition.InnerInSize, p.Partition.InnerSize)
	for _, g := range []struct {
		name  string
		group Group
	}{{"A", p.Partition.A}, {"B", p.Partition.B}} {
		w("  group %s:    axes=%v, dims=%v, in strides=%v, out strides=%v, count=%d\n",
			g.name, g.group.Axes, g.group.Dims, g.group.InStrides, g.group.OutStrides, g.group.Count)
	}
	w("  split:      %s\n", p.Split)
	w("  double:     %s", p.Double)
	return sb.String()
}
