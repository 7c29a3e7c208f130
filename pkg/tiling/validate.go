// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"slices"

	"github.com/pkg/errors"
)

// Validate checks that the plan is internally consistent, so that executing it only touches the
// elements of its input and output: the shape follows the broadcast rules, the partition layout
// matches the shape, and the splits cover their loops exactly.
//
// Plans returned by ComputeTilingPlan are always consistent. It returns an error wrapping
// ErrInconsistentPlan otherwise.
func (p Plan) Validate() error {
	if !p.Strategy.IsValid() {
		return errors.Wrapf(ErrInconsistentPlan, "invalid strategy %s", p.Strategy)
	}
	if err := p.validateShape(); err != nil {
		return err
	}
	if err := p.validateBudget(); err != nil {
		return err
	}
	if err := p.validatePartition(); err != nil {
		return err
	}
	return p.validateSplits()
}

func (p Plan) validateShape() error {
	n := p.Shape
	rank := n.Rank()
	if rank < 1 || rank > MaxRank || len(n.In) != rank || len(n.Broadcast) != rank {
		return errors.Wrapf(ErrInconsistentPlan, "invalid rank %d (input rank %d, %d classified axes)",
			rank, len(n.In), len(n.Broadcast))
	}
	size := 1
	for axis, dim := range n.Out {
		if dim < 1 || (n.In[axis] != 1 && n.In[axis] != dim) {
			return errors.Wrapf(ErrInconsistentPlan, "axis %d of %v can't be broadcast to %v", axis, n.In, n.Out)
		}
		if n.Broadcast[axis] != (n.In[axis] != dim) {
			return errors.Wrapf(ErrInconsistentPlan, "axis %d of %s misclassified", axis, n)
		}
		var ok bool
		if size, ok = mulChecked(size, dim); !ok {
			return errors.Wrapf(ErrInconsistentPlan, "element count overflows for output %v", n.Out)
		}
	}
	if _, ok := mulChecked(size, p.Budget.ElementBytes); !ok {
		return errors.Wrapf(ErrInconsistentPlan, "byte size of output %v overflows", n.Out)
	}
	return nil
}

func (p Plan) validateBudget() error {
	b := p.Budget
	if b.ElementBytes < 1 || b.AlignElements < 1 || b.TensorSize < 1 || b.TensorSize > b.Base {
		return errors.Wrapf(ErrInconsistentPlan, "invalid budget: element=%dB, align=%d, T=%d, base=%d",
			b.ElementBytes, b.AlignElements, b.TensorSize, b.Base)
	}
	if _, ok := mulChecked(b.TensorSize, b.ElementBytes); !ok {
		return errors.Wrapf(ErrInconsistentPlan, "scratchpad of %d elements of %dB overflows", b.TensorSize, b.ElementBytes)
	}
	return nil
}

func groupsEqual(g0, g1 Group) bool {
	return slices.Equal(g0.Axes, g1.Axes) && slices.Equal(g0.Dims, g1.Dims) &&
		slices.Equal(g0.InStrides, g1.InStrides) && slices.Equal(g0.OutStrides, g1.OutStrides) &&
		g0.Count == g1.Count
}

func (p Plan) validatePartition() error {
	n, part := p.Shape, p.Partition
	if part.UnitAxis < 0 || part.UnitAxis >= n.Rank() {
		return errors.Wrapf(ErrInconsistentPlan, "unit axis %d out of range for rank %d", part.UnitAxis, n.Rank())
	}
	want := Partition{UnitAxis: part.UnitAxis}
	want.setLayout(n)
	if part.UnitDims != want.UnitDims || part.UnitAxisLen != want.UnitAxisLen ||
		part.InnerSize != want.InnerSize || part.InnerInSize != want.InnerInSize ||
		part.UnitInStride != want.UnitInStride || part.UnitOutStride != want.UnitOutStride {
		return errors.Wrapf(ErrInconsistentPlan, "unit group %s doesn't match shape %s", part, n)
	}
	if !groupsEqual(part.A, want.A) || !groupsEqual(part.B, want.B) {
		return errors.Wrapf(ErrInconsistentPlan, "groups %s don't match shape %s", part, n)
	}
	if part.UnitExtent < 1 || part.UnitExtent > part.UnitAxisLen ||
		part.UnitLoops != ceilDiv(part.UnitAxisLen, part.UnitExtent) ||
		part.UnitTail != part.UnitAxisLen-(part.UnitLoops-1)*part.UnitExtent {
		return errors.Wrapf(ErrInconsistentPlan, "unit axis iterations %s don't cover the unit axis", part)
	}

	switch {
	case p.Strategy.IsLastDim():
		if part.UnitDims != 1 || n.InnerBroadcast() != (p.Strategy == LastDimLargeBroadcast) {
			return errors.Wrapf(ErrInconsistentPlan, "%s can't execute unit group %s of %s", p.Strategy, part, n)
		}
	case p.Strategy.IsResident():
		if part.UnitExtent*part.InnerSize > p.Budget.TensorSize {
			return errors.Wrapf(ErrInconsistentPlan, "%s iteration of %d elements doesn't fit T=%d",
				p.Strategy, part.UnitExtent*part.InnerSize, p.Budget.TensorSize)
		}
	}
	return nil
}

func (p Plan) validateSplits() error {
	aCount, uCount, bCount := p.Partition.Counts()
	counts := [numBlockAxes]int{BlockAxisA: aCount, BlockAxisU: uCount, BlockAxisB: bCount}
	c := p.Split
	if !c.Axis.IsValid() || c.Count != counts[c.Axis] || c.Normal < 1 || c.Normal > c.Count ||
		c.UsedUnits != ceilDiv(c.Count, c.Normal) || c.Tail != c.Count-c.Normal*(c.UsedUnits-1) {
		return errors.Wrapf(ErrInconsistentPlan, "core split %s doesn't cover its block axis", c)
	}

	d := p.Double
	if d.BufferCount != 1 && d.BufferCount != 2 {
		return errors.Wrapf(ErrInconsistentPlan, "invalid buffer count %d", d.BufferCount)
	}
	if !d.Enabled {
		return nil
	}
	if !d.Axis.IsValid() || d.Axis == c.Axis || d.Count != counts[d.Axis] || d.Count < 2 ||
		d.Normal != ceilDiv(d.Count, 2) || d.Tail != d.Count-d.Normal {
		return errors.Wrapf(ErrInconsistentPlan, "double mode %s doesn't split a second loop in halves", d)
	}
	return nil
}
