// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"slices"
	"sync/atomic"

	"github.com/gomlx/tiling/internal/workerspool"
	"github.com/gomlx/tiling/pkg/tiling"
	"github.com/pkg/errors"
)

// broadcastIterator iterates over the flat indices of the input of a broadcast, in the order of the
// output elements.
type broadcastIterator struct {
	flatIdx     int
	perAxesIdx  []int
	targetDims  []int
	isBroadcast []bool
	strides     []int
}

// newBroadcastIterator requires fromDims and toDims of the same rank.
func newBroadcastIterator(fromDims, toDims []int) *broadcastIterator {
	rank := len(toDims)
	bi := &broadcastIterator{
		perAxesIdx:  make([]int, rank),
		targetDims:  toDims,
		isBroadcast: make([]bool, rank),
		strides:     make([]int, rank),
	}
	stride := 1
	for axis := rank - 1; axis >= 0; axis-- {
		bi.strides[axis] = stride
		stride *= fromDims[axis]
		bi.isBroadcast[axis] = fromDims[axis] != toDims[axis]
	}
	return bi
}

func (bi *broadcastIterator) Next() (flatIdx int) {
	flatIdx = bi.flatIdx
	bi.flatIdx++
	rank := len(bi.perAxesIdx)
	for axis := rank - 1; axis >= 0; axis-- {
		bi.perAxesIdx[axis]++
		if bi.perAxesIdx[axis] < bi.targetDims[axis] {
			if bi.isBroadcast[axis] {
				// Go back and repeat the same slice of the input.
				bi.flatIdx -= bi.strides[axis]
			}
			break
		}
		bi.perAxesIdx[axis] = 0
	}
	return
}

// NaiveBroadcast broadcasts src of dimensions inDims to outDims, one element at a time.
// It's the reference implementation Run is checked against.
func NaiveBroadcast(inDims, outDims []int, src []byte, elementBytes int) ([]byte, error) {
	if len(inDims) > len(outDims) {
		return nil, errors.Wrapf(tiling.ErrShapeMismatch, "can't broadcast %v to %v", inDims, outDims)
	}
	padded := slices.Concat(slices.Repeat([]int{1}, len(outDims)-len(inDims)), inDims)
	for axis, dim := range padded {
		if dim != 1 && dim != outDims[axis] {
			return nil, errors.Wrapf(tiling.ErrBroadcastRuleViolation, "can't broadcast %v to %v", inDims, outDims)
		}
	}
	if len(src) != product(inDims)*elementBytes {
		return nil, errors.Errorf("input of %d bytes doesn't match dimensions %v of %d bytes elements", len(src), inDims, elementBytes)
	}
	size := product(outDims)
	dst := make([]byte, size*elementBytes)
	it := newBroadcastIterator(padded, outDims)
	for outIdx := range size {
		inIdx := it.Next()
		copy(dst[outIdx*elementBytes:(outIdx+1)*elementBytes], src[inIdx*elementBytes:])
	}
	return dst, nil
}

// NaiveTile repeats src of dimensions dims multiples times along each axis, one element at a time.
func NaiveTile(dims, multiples []int, src []byte, elementBytes int) ([]byte, error) {
	if len(dims) != len(multiples) {
		return nil, errors.Wrapf(tiling.ErrShapeMismatch, "tile multiples %v don't match dimensions %v", multiples, dims)
	}
	if len(src) != product(dims)*elementBytes {
		return nil, errors.Errorf("input of %d bytes doesn't match dimensions %v of %d bytes elements", len(src), dims, elementBytes)
	}
	rank := len(dims)
	outDims := make([]int, rank)
	for axis := range rank {
		outDims[axis] = dims[axis] * multiples[axis]
	}
	size := product(outDims)
	dst := make([]byte, size*elementBytes)
	coords := make([]int, rank)
	for outIdx := range size {
		inIdx, stride := 0, 1
		for axis := rank - 1; axis >= 0; axis-- {
			inIdx += (coords[axis] % dims[axis]) * stride
			stride *= dims[axis]
		}
		copy(dst[outIdx*elementBytes:(outIdx+1)*elementBytes], src[inIdx*elementBytes:])
		for axis := rank - 1; axis >= 0; axis-- {
			coords[axis]++
			if coords[axis] < outDims[axis] {
				break
			}
			coords[axis] = 0
		}
	}
	return dst, nil
}

// Coverage returns, for each output element, the number of times the plan writes it. A correct plan
// writes every element exactly once.
func Coverage(plan tiling.Plan, pool *workerspool.Pool) ([]int32, error) {
	if err := checkPlan(plan); err != nil {
		return nil, err
	}
	counts := make([]int32, plan.Shape.Size())
	innerSize := plan.Partition.InnerSize
	numUnits := plan.LaunchUnits()
	pool.RunUnits(numUnits, func(unitIdx int) {
		_ = forEachBlock(plan, unitIdx, func(b block) error {
			for ii := range b.size * innerSize {
				atomic.AddInt32(&counts[b.outOffset+ii], 1)
			}
			return nil
		})
	})
	return counts, nil
}
