// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernel executes a tiling.Plan on the host: each execution unit of the plan runs on its own
// goroutine, with its own scratchpad buffers, and copies its share of the broadcast output.
//
// It is the reference executor of the plans, used to verify that a plan covers every output element
// exactly once and produces the same result as a naive broadcast.
package kernel

import (
	"github.com/gomlx/tiling/internal/workerspool"
	"github.com/gomlx/tiling/pkg/tiling"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// block is one iteration of a unit: the unit axis indices [start, start+size), at the given input and
// output offsets (in elements).
type block struct {
	inOffset, outOffset int
	start, size         int
}

// unitRanges returns, for the logical unit, the first iteration and number of iterations of each of
// the A, U and B loops.
func unitRanges(plan tiling.Plan, unit int) (starts, sizes [3]int) {
	aCount, uCount, bCount := plan.Partition.Counts()
	sizes = [3]int{tiling.BlockAxisA: aCount, tiling.BlockAxisU: uCount, tiling.BlockAxisB: bCount}
	factor := plan.Double.Factor()
	primary, half := unit/factor, unit%factor
	starts[plan.Split.Axis], sizes[plan.Split.Axis] = plan.Split.Range(primary)
	if plan.Double.Enabled {
		starts[plan.Double.Axis], sizes[plan.Double.Axis] = plan.Double.Range(half)
	}
	return
}

// forEachBlock calls fn for each iteration of the logical unit, in the order A, B then U.
func forEachBlock(plan tiling.Plan, unit int, fn func(b block) error) error {
	p := plan.Partition
	starts, sizes := unitRanges(plan, unit)
	for a := starts[tiling.BlockAxisA]; a < starts[tiling.BlockAxisA]+sizes[tiling.BlockAxisA]; a++ {
		aIn, aOut := p.A.Offsets(a)
		for b := starts[tiling.BlockAxisB]; b < starts[tiling.BlockAxisB]+sizes[tiling.BlockAxisB]; b++ {
			bIn, bOut := p.B.Offsets(b)
			for loop := starts[tiling.BlockAxisU]; loop < starts[tiling.BlockAxisU]+sizes[tiling.BlockAxisU]; loop++ {
				start, size := p.UnitRange(loop)
				err := fn(block{
					inOffset:  aIn + bIn + start*p.UnitInStride,
					outOffset: aOut + bOut + start*p.UnitOutStride,
					start:     start,
					size:      size,
				})
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// blockDims returns the input and output dimensions of the unit group for an iteration of size indices
// of the unit axis.
func blockDims(plan tiling.Plan, size int) (in, out []int) {
	n, p := plan.Shape, plan.Partition
	in = append([]int{size}, n.In[p.UnitAxis+1:]...)
	out = append([]int{size}, n.Out[p.UnitAxis+1:]...)
	if n.Broadcast[p.UnitAxis] {
		in[0] = 1
	}
	return
}

// unit is the state of one execution unit.
type unit struct {
	plan     tiling.Plan
	src, dst []byte

	// stage and expand are the scratchpad buffers of the resident strategies.
	stage, expand []byte
}

func newUnit(plan tiling.Plan, src, dst []byte) *unit {
	u := &unit{plan: plan, src: src, dst: dst}
	if plan.Strategy.IsResident() {
		scratch := plan.Budget.TensorSize * plan.ElementBytes()
		u.stage = make([]byte, scratch)
		u.expand = make([]byte, scratch)
	}
	return u
}

func (u *unit) run(b block) error {
	eb := u.plan.ElementBytes()
	p := u.plan.Partition
	inBytes, outBytes := b.inOffset*eb, b.outOffset*eb
	switch u.plan.Strategy {
	case tiling.LastDimLargeCarried:
		copy(u.dst[outBytes:outBytes+b.size*eb], u.src[inBytes:inBytes+b.size*eb])

	case tiling.LastDimLargeBroadcast:
		out := u.dst[outBytes : outBytes+b.size*eb]
		copy(out, u.src[inBytes:inBytes+eb])
		fillByDoubling(out, eb)

	case tiling.ResidentBroadcast, tiling.SmallInnermostBroadcast:
		inDims, outDims := blockDims(u.plan, b.size)
		inLen, outLen := product(inDims)*eb, b.size*p.InnerSize*eb
		if outLen > len(u.expand) {
			return errors.Errorf("iteration of %d elements doesn't fit the scratchpad of %d elements (%s)",
				outLen/eb, len(u.expand)/eb, u.plan.Strategy)
		}
		copy(u.stage[:inLen], u.src[inBytes:inBytes+inLen])
		expand(u.expand[:outLen], u.stage[:inLen], inDims, outDims, eb)
		copy(u.dst[outBytes:outBytes+outLen], u.expand[:outLen])

	case tiling.MultiDimensionalTransfer, tiling.FullMultiDimensionalTransfer:
		inDims, outDims := blockDims(u.plan, b.size)
		expand(u.dst[outBytes:outBytes+b.size*p.InnerSize*eb], u.src[inBytes:], inDims, outDims, eb)

	default:
		return errors.Errorf("kernel doesn't support strategy %s", u.plan.Strategy)
	}
	return nil
}

func checkPlan(plan tiling.Plan) error {
	if !plan.Ok() {
		return errors.New("can't execute an invalid tiling plan")
	}
	if plan.LaunchUnits() <= 0 {
		return errors.Wrapf(tiling.ErrNoUsableUnits, "plan launches %d units", plan.LaunchUnits())
	}
	return plan.Validate()
}

// Run executes the plan, broadcasting src into dst. Both are flat, row-major buffers of
// plan.ElementBytes() bytes per element, of the plan's input and output sizes.
//
// Each logical unit of the plan runs as one task of the pool.
func Run(plan tiling.Plan, src, dst []byte, pool *workerspool.Pool) error {
	if err := checkPlan(plan); err != nil {
		return err
	}
	eb := plan.ElementBytes()
	if len(src) != plan.Shape.InputSize()*eb || len(dst) != plan.Shape.Size()*eb {
		return errors.Errorf("buffers of %d and %d bytes don't match plan %s with %d and %d elements of %d bytes",
			len(src), len(dst), plan.Shape, plan.Shape.InputSize(), plan.Shape.Size(), eb)
	}
	numUnits := plan.LaunchUnits()
	errs := make([]error, numUnits)
	pool.RunUnits(numUnits, func(unitIdx int) {
		u := newUnit(plan, src, dst)
		errs[unitIdx] = forEachBlock(plan, unitIdx, u.run)
		if klog.V(2).Enabled() {
			starts, sizes := unitRanges(plan, unitIdx)
			klog.Infof("unit %d/%d: starts(A,U,B)=%v, sizes(A,U,B)=%v", unitIdx, numUnits, starts, sizes)
		}
	})
	for unitIdx, err := range errs {
		if err != nil {
			return errors.WithMessagef(err, "unit %d of %d", unitIdx, numUnits)
		}
	}
	return nil
}
