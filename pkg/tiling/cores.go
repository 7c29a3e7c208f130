// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"fmt"

	"github.com/pkg/errors"
)

// BlockAxis identifies one of the three loops of a plan: the A group, the unit axis iterations or the
// B group.
//
//go:generate go tool enumer -type BlockAxis -trimprefix=BlockAxis -output=gen_blockaxis_enumer.go cores.go
type BlockAxis int

const (
	// BlockAxisA is the flat loop over the carried axes outward of the unit axis.
	BlockAxisA BlockAxis = iota

	// BlockAxisU is the loop over the iterations of the unit axis.
	BlockAxisU

	// BlockAxisB is the flat loop over the broadcast axes outward of the unit axis.
	BlockAxisB
)

const numBlockAxes = int(BlockAxisB) + 1

// IsValid returns whether a is one of A, U or B.
func (a BlockAxis) IsValid() bool { return a.IsABlockAxis() }

// CoreSplit is the split of one loop (the block axis) across the execution units. The other loops are
// run in full by every unit.
type CoreSplit struct {
	Axis BlockAxis

	// Count is the number of iterations of the block axis.
	Count int

	// UsedUnits is the number of units the block axis is split across.
	UsedUnits int

	// Normal is the number of iterations of each unit, except the last one that takes Tail.
	Normal, Tail int
}

// Range returns the first iteration and the number of iterations of the block axis for the given unit.
func (c CoreSplit) Range(unit int) (start, size int) {
	start = unit * c.Normal
	if unit == c.UsedUnits-1 {
		return start, c.Tail
	}
	return start, c.Normal
}

// Total returns the number of iterations covered by all units, equal to Count.
func (c CoreSplit) Total() int {
	return c.Normal*(c.UsedUnits-1) + c.Tail
}

// String implements fmt.Stringer.
func (c CoreSplit) String() string {
	return fmt.Sprintf("%s{count=%d, units=%d, normal=%d, tail=%d}", c.Axis, c.Count, c.UsedUnits, c.Normal, c.Tail)
}

// splitWeight scores splitting count iterations across the units: the number of units that would be
// used, plus a bonus of units when the split has no remainder.
func splitWeight(count, units int) int {
	weight := ceilDiv(count, ceilDiv(count, units))
	if count%units == 0 {
		weight += units
	}
	return weight
}

// SplitAcrossUnits selects the block axis with the largest split weight (ties broken in the order
// A, U, B) and splits it across the units.
func SplitAcrossUnits(p Partition, units int) (CoreSplit, error) {
	if units <= 0 {
		return CoreSplit{}, errors.Wrapf(ErrNoUsableUnits, "can't split work across %d units", units)
	}
	aCount, uCount, bCount := p.Counts()
	counts := [numBlockAxes]int{BlockAxisA: aCount, BlockAxisU: uCount, BlockAxisB: bCount}
	best, bestWeight := BlockAxisA, -1
	for _, axis := range []BlockAxis{BlockAxisA, BlockAxisU, BlockAxisB} {
		if counts[axis] <= 0 {
			return CoreSplit{}, errors.Errorf("invalid count %d for block axis %s", counts[axis], axis)
		}
		weight := splitWeight(counts[axis], units)
		if weight > bestWeight {
			best, bestWeight = axis, weight
		}
	}

	count := counts[best]
	c := CoreSplit{Axis: best, Count: count}
	c.UsedUnits = ceilDiv(count, ceilDiv(count, units))
	c.Normal = ceilDiv(count, c.UsedUnits)
	c.Tail = count - c.Normal*(c.UsedUnits-1)
	return c, nil
}
