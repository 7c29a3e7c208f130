// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"fmt"

	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/gomlx/tiling/pkg/support/xslices"
)

// Group of axes outward of the unit axis, with the same classification: group A holds the carried
// axes, group B the broadcast ones. A group is iterated as one flat loop of Count iterations.
type Group struct {
	// Axes are the indices of the normalized axes in the group, outermost first.
	Axes []int

	// Dims are the output dimensions of the axes.
	Dims []int

	// InStrides are the input strides (in elements) of the axes. Always 0 for broadcast axes.
	InStrides []int

	// OutStrides are the output strides (in elements) of the axes.
	OutStrides []int

	// Count is the product of Dims, 1 for an empty group.
	Count int
}

// Len returns the number of axes in the group.
func (g Group) Len() int { return len(g.Axes) }

// Offsets returns the input and output offsets (in elements) of the flat group index idx.
func (g Group) Offsets(idx int) (inOffset, outOffset int) {
	for ii := len(g.Dims) - 1; ii >= 0; ii-- {
		coord := idx % g.Dims[ii]
		idx /= g.Dims[ii]
		inOffset += coord * g.InStrides[ii]
		outOffset += coord * g.OutStrides[ii]
	}
	return
}

func newGroup(capacity int) Group {
	return Group{
		Axes:       make([]int, 0, capacity),
		Dims:       make([]int, 0, capacity),
		InStrides:  make([]int, 0, capacity),
		OutStrides: make([]int, 0, capacity),
		Count:      1,
	}
}

func (g *Group) add(axis, dim, inStride, outStride int) {
	g.Axes = append(g.Axes, axis)
	g.Dims = append(g.Dims, dim)
	g.InStrides = append(g.InStrides, inStride)
	g.OutStrides = append(g.OutStrides, outStride)
	g.Count *= dim
}

// Partition of the normalized axes into the unit group U (the unit axis and all axes inward of it,
// resident per iteration), the carried group A and the broadcast group B.
type Partition struct {
	// UnitAxis is the index of the unit axis (the pivot).
	UnitAxis int

	// UnitDims is the number of axes in the unit group: the unit axis and the axes inward of it.
	UnitDims int

	// UnitAxisLen is the output dimension of the unit axis ("uAxisLen").
	UnitAxisLen int

	// UnitExtent is the number of unit axis indices processed per iteration ("uLpUnit").
	UnitExtent int

	// UnitLoops is the number of iterations to cover the unit axis ("uLpCnt").
	UnitLoops int

	// UnitTail is the number of unit axis indices processed by the last iteration.
	UnitTail int

	// UnitInStride and UnitOutStride are the strides (in elements) of the unit axis. UnitInStride
	// is 0 if the unit axis is broadcast.
	UnitInStride, UnitOutStride int

	// InnerSize and InnerInSize are the number of output and input elements inward of the unit axis,
	// that is, per index of the unit axis.
	InnerSize, InnerInSize int

	// A and B are the carried and broadcast groups outward of the unit axis.
	A, B Group
}

// Counts returns the loop counts of the A group, the unit axis iterations and the B group.
func (p Partition) Counts() (aCount, uCount, bCount int) {
	return p.A.Count, p.UnitLoops, p.B.Count
}

// UnitBroadcastAxes returns the number of broadcast axes in the unit group.
func (p Partition) UnitBroadcastAxes(n Normalized) int {
	return xslices.Count(n.Broadcast[p.UnitAxis:], func(b bool) bool { return b })
}

// UnitRange returns the first unit axis index and the number of indices of iteration loop.
func (p Partition) UnitRange(loop int) (start, size int) {
	start = loop * p.UnitExtent
	size = min(p.UnitExtent, p.UnitAxisLen-start)
	return
}

// String implements fmt.Stringer.
func (p Partition) String() string {
	return fmt.Sprintf("U{axis=%d, dims=%d, len=%d, extent=%d, loops=%d, tail=%d}, A{axes=%v, count=%d}, B{axes=%v, count=%d}",
		p.UnitAxis, p.UnitDims, p.UnitAxisLen, p.UnitExtent, p.UnitLoops, p.UnitTail,
		p.A.Axes, p.A.Count, p.B.Axes, p.B.Count)
}

// unitDimsLimit returns the maximum number of axes the unit group can take for the strategy.
func unitDimsLimit(s Strategy, rank int, hw hardware.Profile) int {
	switch {
	case s.IsLastDim():
		return 1
	case s.IsTransfer():
		return hw.MaxTransferDims
	}
	return rank
}

// PartitionAxes selects the unit axis and splits the remaining axes into the A and B groups.
//
// It walks the axes from the innermost outward, accumulating the product of the output dimensions
// (with the innermost dimension aligned, for the resident strategies), until the product reaches the
// budget's TensorSize, the strategy's limit of dimensions is reached, or there are no more axes.
func PartitionAxes(n Normalized, b Budget, s Strategy, hw hardware.Profile) Partition {
	rank := n.Rank()
	maxDims := unitDimsLimit(s, rank, hw)
	innerDim := n.Inner()
	if s.IsResident() {
		innerDim = alignUp(innerDim, b.AlignElements)
	}

	unitAxis := rank - 1
	innerBlock, product := 1, innerDim
	for product < b.TensorSize && rank-unitAxis < maxDims && unitAxis > 0 {
		unitAxis--
		innerBlock = product
		product = mulSaturated(product, n.Out[unitAxis])
	}

	p := Partition{UnitAxis: unitAxis}
	p.setLayout(n)
	if unitAxis == rank-1 {
		p.UnitExtent = min(b.TensorSize, p.UnitAxisLen)
	} else {
		p.UnitExtent = min(max(b.TensorSize/innerBlock, 1), p.UnitAxisLen)
	}
	p.UnitLoops = ceilDiv(p.UnitAxisLen, p.UnitExtent)
	p.UnitTail = p.UnitAxisLen - (p.UnitLoops-1)*p.UnitExtent
	return p
}

// setLayout fills in the fields derived from the shape and the unit axis: the unit group sizes and
// strides, and the A and B groups.
func (p *Partition) setLayout(n Normalized) {
	rank, unitAxis := n.Rank(), p.UnitAxis
	p.UnitDims = rank - unitAxis
	p.UnitAxisLen = n.Out[unitAxis]
	p.InnerSize = xslices.Product(n.Out[unitAxis+1:])
	p.InnerInSize = xslices.Product(n.In[unitAxis+1:])

	inStrides, outStrides := make([]int, rank), make([]int, rank)
	inStride, outStride := 1, 1
	for axis := rank - 1; axis >= 0; axis-- {
		if !n.Broadcast[axis] {
			inStrides[axis] = inStride
		}
		outStrides[axis] = outStride
		inStride *= n.In[axis]
		outStride *= n.Out[axis]
	}
	p.UnitInStride, p.UnitOutStride = inStrides[unitAxis], outStrides[unitAxis]

	p.A, p.B = newGroup(unitAxis), newGroup(unitAxis)
	for axis := range unitAxis {
		if n.Broadcast[axis] {
			p.B.add(axis, n.Out[axis], 0, outStrides[axis])
		} else {
			p.A.add(axis, n.Out[axis], inStrides[axis], outStrides[axis])
		}
	}
}
