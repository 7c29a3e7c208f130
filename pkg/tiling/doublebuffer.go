// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import "fmt"

// DoubleBuffer holds the "double mode" decision, a secondary split of a second loop in two halves,
// doubling the number of launched units, and the number of pipelined buffers of each unit.
type DoubleBuffer struct {
	// Enabled is set when the secondary split is used.
	Enabled bool

	// Axis is the loop split in two, it is never the block axis. Only meaningful if Enabled.
	Axis BlockAxis

	// Count is the number of iterations of Axis, split in Normal (first half) and Tail (second half).
	Count, Normal, Tail int

	// BufferCount is the number of pipelined buffers per unit: 2 when a unit runs more than one
	// iteration, so the transfer of one iteration overlaps the next.
	BufferCount int
}

// Factor returns the number of logical units launched per unit of the primary split.
func (d DoubleBuffer) Factor() int {
	if d.Enabled {
		return 2
	}
	return 1
}

// Range returns the first iteration and the number of iterations of the secondary split for half
// (0 or 1).
func (d DoubleBuffer) Range(half int) (start, size int) {
	if half == 0 {
		return 0, d.Normal
	}
	return d.Normal, d.Tail
}

// String implements fmt.Stringer.
func (d DoubleBuffer) String() string {
	if !d.Enabled {
		return fmt.Sprintf("off{buffers=%d}", d.BufferCount)
	}
	return fmt.Sprintf("%s{count=%d, normal=%d, tail=%d, buffers=%d}", d.Axis, d.Count, d.Normal, d.Tail, d.BufferCount)
}

// SelectDoubleBuffer decides whether to split a second loop in two halves (double mode) and the number
// of pipelined buffers.
//
// Double mode is only used if fewer than half of the units are used by the primary split, and the loop
// split is the unit axis iterations when the block axis is B, or the B group when the block axis is A.
// It's never used for the resident strategies when the A group has a single iteration and either the
// innermost axis is carried or one iteration covers the whole unit axis; nor for LastDimLargeBroadcast
// if there are carried axes outward of the unit axis.
func SelectDoubleBuffer(n Normalized, s Strategy, p Partition, c CoreSplit, units int) DoubleBuffer {
	d := selectDoubleMode(n, s, p, c, units)
	d.BufferCount = 1
	if d.iterationsPerUnit(p, c) > 1 {
		d.BufferCount = 2
	}
	return d
}

func selectDoubleMode(n Normalized, s Strategy, p Partition, c CoreSplit, units int) (d DoubleBuffer) {
	if 2*c.UsedUnits >= units {
		return d
	}
	aCount, uCount, bCount := p.Counts()
	var otherAxis BlockAxis
	var otherCount int
	switch c.Axis {
	case BlockAxisB:
		otherAxis, otherCount = BlockAxisU, uCount
	case BlockAxisA:
		otherAxis, otherCount = BlockAxisB, bCount
	default:
		return d
	}
	if otherCount <= 1 {
		return d
	}
	if s.IsResident() && aCount == 1 && (!n.InnerBroadcast() || p.UnitExtent >= p.UnitAxisLen) {
		return d
	}
	if s == LastDimLargeBroadcast && p.A.Len() != 0 {
		return d
	}
	d.Enabled = true
	d.Axis = otherAxis
	d.Count = otherCount
	d.Normal = ceilDiv(otherCount, 2)
	d.Tail = otherCount - d.Normal
	return d
}

// iterationsPerUnit returns the number of iterations (unit axis loops) run by the most loaded unit.
func (d DoubleBuffer) iterationsPerUnit(p Partition, c CoreSplit) int {
	aCount, uCount, bCount := p.Counts()
	counts := [numBlockAxes]int{BlockAxisA: aCount, BlockAxisU: uCount, BlockAxisB: bCount}
	counts[c.Axis] = c.Normal
	if d.Enabled {
		counts[d.Axis] = d.Normal
	}
	return counts[BlockAxisA] * counts[BlockAxisU] * counts[BlockAxisB]
}
