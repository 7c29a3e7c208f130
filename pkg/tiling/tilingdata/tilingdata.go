// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tilingdata serializes a tiling.Plan into the fixed-layout binary record consumed by the
// kernel launcher, and builds the launch information (tiling key, number of units and workspace size).
//
// The record is a sequence of little-endian int64 values, in a fixed order, with per-axis arrays
// padded to tiling.MaxRank entries. Its size doesn't depend on the plan.
package tilingdata

import (
	"bytes"
	"encoding/binary"

	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/gomlx/tiling/pkg/tiling"
	"github.com/pkg/errors"
)

type axes [tiling.MaxRank]int64

// group is the serialized form of a tiling.Group.
type group struct {
	Len        int64
	Axes       axes
	Dims       axes
	InStrides  axes
	OutStrides axes
	Count      int64
}

// record is the binary layout. Fields are never reordered: the kernel reads them by offset.
type record struct {
	Strategy int64

	DoubleEnabled int64
	DoubleAxis    int64
	DoubleCount   int64
	DoubleNormal  int64
	DoubleTail    int64
	BufferCount   int64

	TensorSize  int64
	LaunchUnits int64

	BlockAxis   int64
	BlockCount  int64
	UsedUnits   int64
	BlockNormal int64
	BlockTail   int64

	UnitAxis      int64
	UnitDims      int64
	UnitAxisLen   int64
	UnitExtent    int64
	UnitLoops     int64
	UnitTail      int64
	UnitInStride  int64
	UnitOutStride int64
	InnerSize     int64
	InnerInSize   int64

	A, B group

	ElementBytes            int64
	AlignElements           int64
	Base                    int64
	SmallInnermostBroadcast int64
	QuarterGuard            int64

	Rank    int64
	InDims  axes
	OutDims axes
}

// Size is the size in bytes of an encoded plan.
var Size = binary.Size(record{})

func boolTo64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func toAxes(values []int) (a axes) {
	for ii, v := range values {
		a[ii] = int64(v)
	}
	return
}

func fromAxes(a axes, n int) []int {
	values := make([]int, n)
	for ii := range values {
		values[ii] = int(a[ii])
	}
	return values
}

func toGroup(g tiling.Group) group {
	return group{
		Len:        int64(g.Len()),
		Axes:       toAxes(g.Axes),
		Dims:       toAxes(g.Dims),
		InStrides:  toAxes(g.InStrides),
		OutStrides: toAxes(g.OutStrides),
		Count:      int64(g.Count),
	}
}

func (g group) toGroup() tiling.Group {
	n := int(g.Len)
	return tiling.Group{
		Axes:       fromAxes(g.Axes, n),
		Dims:       fromAxes(g.Dims, n),
		InStrides:  fromAxes(g.InStrides, n),
		OutStrides: fromAxes(g.OutStrides, n),
		Count:      int(g.Count),
	}
}

// Encode the plan into its binary record. An invalid plan is encoded as all zeros.
func Encode(plan tiling.Plan) []byte {
	if !plan.Ok() {
		return make([]byte, Size)
	}
	s, b, p, c, d := plan.Shape, plan.Budget, plan.Partition, plan.Split, plan.Double
	r := record{
		Strategy: int64(plan.Strategy),

		DoubleEnabled: boolTo64(d.Enabled),
		DoubleAxis:    int64(d.Axis),
		DoubleCount:   int64(d.Count),
		DoubleNormal:  int64(d.Normal),
		DoubleTail:    int64(d.Tail),
		BufferCount:   int64(d.BufferCount),

		TensorSize:  int64(b.TensorSize),
		LaunchUnits: int64(plan.LaunchUnits()),

		BlockAxis:   int64(c.Axis),
		BlockCount:  int64(c.Count),
		UsedUnits:   int64(c.UsedUnits),
		BlockNormal: int64(c.Normal),
		BlockTail:   int64(c.Tail),

		UnitAxis:      int64(p.UnitAxis),
		UnitDims:      int64(p.UnitDims),
		UnitAxisLen:   int64(p.UnitAxisLen),
		UnitExtent:    int64(p.UnitExtent),
		UnitLoops:     int64(p.UnitLoops),
		UnitTail:      int64(p.UnitTail),
		UnitInStride:  int64(p.UnitInStride),
		UnitOutStride: int64(p.UnitOutStride),
		InnerSize:     int64(p.InnerSize),
		InnerInSize:   int64(p.InnerInSize),

		A: toGroup(p.A),
		B: toGroup(p.B),

		ElementBytes:            int64(b.ElementBytes),
		AlignElements:           int64(b.AlignElements),
		Base:                    int64(b.Base),
		SmallInnermostBroadcast: boolTo64(b.SmallInnermostBroadcast),
		QuarterGuard:            boolTo64(b.QuarterGuard),

		Rank:    int64(s.Rank()),
		InDims:  toAxes(s.In),
		OutDims: toAxes(s.Out),
	}
	var buf bytes.Buffer
	buf.Grow(Size)
	if err := binary.Write(&buf, binary.LittleEndian, &r); err != nil {
		// Only fails for types of unknown size, not the case for record.
		panic(errors.Wrap(err, "encoding tiling record"))
	}
	return buf.Bytes()
}

// Decode a binary record back into a plan. An all-zeros record decodes to the zero (invalid) Plan.
// Records that don't decode to a consistent plan (see tiling.Plan.Validate) return an error.
func Decode(data []byte) (tiling.Plan, error) {
	if len(data) != Size {
		return tiling.Plan{}, errors.Errorf("tiling record must have %d bytes, got %d", Size, len(data))
	}
	var r record
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &r); err != nil {
		return tiling.Plan{}, errors.Wrap(err, "decoding tiling record")
	}
	strategy := tiling.Strategy(r.Strategy)
	if strategy == tiling.StrategyInvalid {
		return tiling.Plan{}, nil
	}
	if !strategy.IsValid() {
		return tiling.Plan{}, errors.Errorf("tiling record has invalid strategy %d", r.Strategy)
	}
	rank := int(r.Rank)
	if rank < 1 || rank > tiling.MaxRank || r.A.Len < 0 || r.A.Len > r.Rank || r.B.Len < 0 || r.B.Len > r.Rank {
		return tiling.Plan{}, errors.Errorf("tiling record has invalid rank %d (A has %d axes, B has %d axes)",
			r.Rank, r.A.Len, r.B.Len)
	}

	shape := tiling.Normalized{
		In:        fromAxes(r.InDims, rank),
		Out:       fromAxes(r.OutDims, rank),
		Broadcast: make([]bool, rank),
	}
	for axis := range rank {
		shape.Broadcast[axis] = shape.In[axis] != shape.Out[axis]
	}
	plan := tiling.Plan{
		Shape: shape,
		Budget: tiling.Budget{
			ElementBytes:            int(r.ElementBytes),
			AlignElements:           int(r.AlignElements),
			Base:                    int(r.Base),
			TensorSize:              int(r.TensorSize),
			SmallInnermostBroadcast: r.SmallInnermostBroadcast != 0,
			QuarterGuard:            r.QuarterGuard != 0,
		},
		Strategy: strategy,
		Partition: tiling.Partition{
			UnitAxis:      int(r.UnitAxis),
			UnitDims:      int(r.UnitDims),
			UnitAxisLen:   int(r.UnitAxisLen),
			UnitExtent:    int(r.UnitExtent),
			UnitLoops:     int(r.UnitLoops),
			UnitTail:      int(r.UnitTail),
			UnitInStride:  int(r.UnitInStride),
			UnitOutStride: int(r.UnitOutStride),
			InnerSize:     int(r.InnerSize),
			InnerInSize:   int(r.InnerInSize),
			A:             r.A.toGroup(),
			B:             r.B.toGroup(),
		},
		Split: tiling.CoreSplit{
			Axis:      tiling.BlockAxis(r.BlockAxis),
			Count:     int(r.BlockCount),
			UsedUnits: int(r.UsedUnits),
			Normal:    int(r.BlockNormal),
			Tail:      int(r.BlockTail),
		},
		Double: tiling.DoubleBuffer{
			Enabled:     r.DoubleEnabled != 0,
			Axis:        tiling.BlockAxis(r.DoubleAxis),
			Count:       int(r.DoubleCount),
			Normal:      int(r.DoubleNormal),
			Tail:        int(r.DoubleTail),
			BufferCount: int(r.BufferCount),
		},
	}
	if err := plan.Validate(); err != nil {
		return tiling.Plan{}, errors.WithMessage(err, "decoding tiling record")
	}
	if int64(plan.LaunchUnits()) != r.LaunchUnits {
		return tiling.Plan{}, errors.Wrapf(tiling.ErrInconsistentPlan, "tiling record launches %d units, plan requires %d",
			r.LaunchUnits, plan.LaunchUnits())
	}
	return plan, nil
}

// LaunchInfo is what the runtime needs to launch the kernel of a plan.
type LaunchInfo struct {
	// TilingKey selects the kernel code path.
	TilingKey uint64

	// LaunchUnits is the number of execution units to launch.
	LaunchUnits int

	// WorkspaceBytes is the size of the auxiliary workspace, used for cross-unit synchronization.
	WorkspaceBytes int

	// Data is the encoded plan.
	Data []byte
}

// Launch returns the launch information of the plan. For an invalid plan, all values are zero and
// Data is the all-zeros record.
func Launch(plan tiling.Plan, hw hardware.Profile) LaunchInfo {
	info := LaunchInfo{
		TilingKey:   plan.TilingKey(),
		LaunchUnits: plan.LaunchUnits(),
		Data:        Encode(plan),
	}
	if plan.Ok() {
		info.WorkspaceBytes = hw.WithDefaults().SyncWorkspaceBytes
	}
	return info
}
