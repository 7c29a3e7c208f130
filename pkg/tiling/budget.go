// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/pkg/errors"
)

// Budget is the scratchpad budget of one scheduling iteration.
type Budget struct {
	// ElementBytes is the width of one element.
	ElementBytes int

	// AlignElements is the number of elements in one alignment unit (cache line), at least 1.
	AlignElements int

	// Base is the number of elements the whole (aligned) scratchpad can hold.
	Base int

	// TensorSize is the maximum number of elements resident per iteration ("T").
	TensorSize int

	// SmallInnermostBroadcast is set when the innermost axis is too small (and the second-to-last
	// axis also small) for a scratchpad-resident broadcast to pay off, favoring a strided
	// multi-dimensional transfer instead.
	SmallInnermostBroadcast bool

	// QuarterGuard is set when TensorSize fits in a quarter of the scratchpad, so expand buffers
	// can be double buffered.
	QuarterGuard bool
}

// ComputeBudget returns the budget for the normalized shapes, given the element width and the hardware
// profile.
//
// It fails with ErrDegenerateBudget if the profile is invalid, the element width is not positive or
// the scratchpad can't hold at least one alignment unit per quarter, or if the output byte size
// overflows an int.
func ComputeBudget(n Normalized, elementBytes int, hw hardware.Profile) (Budget, error) {
	if err := hw.Validate(); err != nil {
		return Budget{}, errors.Wrapf(ErrDegenerateBudget, "%v", err)
	}
	if elementBytes <= 0 {
		return Budget{}, errors.Wrapf(ErrDegenerateBudget, "element width must be > 0, got %d", elementBytes)
	}
	rank := n.Rank()
	if rank == 0 {
		return Budget{}, errors.Wrapf(ErrShapeMismatch, "budget requires normalized shapes, got rank 0")
	}

	if _, ok := mulChecked(n.Size(), elementBytes); !ok {
		return Budget{}, errors.Wrapf(ErrDegenerateBudget, "byte size of %s elements of %d bytes overflows", n, elementBytes)
	}

	b := Budget{
		ElementBytes:  elementBytes,
		AlignElements: max(1, hw.CacheLineBytes/elementBytes),
		Base:          hw.ScratchpadBytes / hw.CacheLineBytes * hw.CacheLineBytes / elementBytes,
	}
	quarter, half := b.Base/4, b.Base/2
	if quarter < b.AlignElements {
		return Budget{}, errors.Wrapf(ErrDegenerateBudget,
			"scratchpad of %d bytes too small for elements of %d bytes aligned to %d bytes",
			hw.ScratchpadBytes, elementBytes, hw.CacheLineBytes)
	}

	inner, innerBroadcast := n.Inner(), n.InnerBroadcast()
	b.SmallInnermostBroadcast = rank > 1 &&
		inner*elementBytes < hw.SmallInnermostBytes &&
		n.Out[rank-2] < hw.SmallSecondLastGate

	var t int
	switch {
	case rank == 1:
		t = min(alignUp(ceilDiv(inner, hw.NumUnits), b.AlignElements), quarter)
	case !innerBroadcast && inner < quarter && !b.SmallInnermostBroadcast:
		// Several rows resident at once: leave room for double buffering and staging.
		t = quarter
	case innerBroadcast:
		// Staging and expand buffers share half of the scratchpad, each double buffered.
		t = quarter
	default:
		// Linear copy: only the two pipelined buffers.
		t = half
	}
	t = alignDown(t, b.AlignElements)
	for t > hw.MaxTensorElements {
		t /= 2
	}
	b.TensorSize = max(alignDown(t, b.AlignElements), b.AlignElements)
	b.QuarterGuard = b.TensorSize*elementBytes <= hw.ScratchpadBytes/4
	return b, nil
}
