// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"io"
	"math/rand/v2"

	"github.com/gomlx/tiling/internal/workerspool"
	"github.com/gomlx/tiling/pkg/core/dtypes"
	"github.com/gomlx/tiling/pkg/core/shapes"
	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/gomlx/tiling/pkg/kernel"
	"github.com/gomlx/tiling/pkg/support/sets"
	"github.com/gomlx/tiling/pkg/tiling"
	"github.com/gomlx/tiling/pkg/tiling/tilingdata"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// request to plan either a broadcast-to (out set) or a tile (multiples set).
type request struct {
	dtype     dtypes.DType
	in, out   []int
	multiples []int
	target    []int
}

// result of planning a request.
type result struct {
	input, output shapes.Shape
	multiples     []int
	plan          tiling.Plan
	launch        tilingdata.LaunchInfo

	verified  bool
	verifyErr error
}

// checkStrategy returns an error if expected is set and the plan uses another strategy.
func (res *result) checkStrategy(expected tiling.Strategy) error {
	if expected == tiling.StrategyInvalid || res.plan.Strategy == expected {
		return nil
	}
	return errors.Errorf("plan %v->%v uses strategy %s, expected %s", res.input, res.output, res.plan.Strategy, expected)
}

func (r request) isTile() bool { return r.multiples != nil }

func (r request) compute(hw hardware.Profile) (*result, error) {
	res := &result{input: shapes.Make(r.dtype, r.in...), multiples: r.multiples}
	var err error
	if r.isTile() {
		res.plan, res.output, err = tiling.Tile(res.input, r.multiples, hw)
	} else {
		res.output = shapes.Make(r.dtype, r.out...)
		res.plan, err = tiling.BroadcastTo(res.input, res.output, r.target, hw)
	}
	if err != nil {
		return nil, err
	}
	res.launch = tilingdata.Launch(res.plan, hw)
	return res, nil
}

// verify executes the plan, decoded from its serialized form, on random data and compares the output
// with the naive implementation. It also checks every output element is written exactly once.
func verify(res *result, seed uint64, pool *workerspool.Pool) error {
	plan, err := tilingdata.Decode(res.launch.Data)
	if err != nil {
		return err
	}
	eb := res.input.DType.Size()
	rng := rand.New(rand.NewPCG(seed, uint64(res.output.Size())))
	src := make([]byte, res.input.Size()*eb)
	for ii := range src {
		src[ii] = byte(rng.Uint32())
	}

	var want []byte
	if res.multiples != nil {
		want, err = kernel.NaiveTile(res.input.Dimensions, res.multiples, src, eb)
	} else {
		want, err = kernel.NaiveBroadcast(res.input.Dimensions, res.output.Dimensions, src, eb)
	}
	if err != nil {
		return err
	}
	got := make([]byte, len(want))
	if err = kernel.Run(plan, src, got, pool); err != nil {
		return err
	}
	if !bytes.Equal(want, got) {
		for ii := range want {
			if want[ii] != got[ii] {
				return errors.Errorf("output differs from the naive implementation at element %d", ii/eb)
			}
		}
	}

	counts, err := kernel.Coverage(plan, pool)
	if err != nil {
		return err
	}
	for ii, count := range counts {
		if count != 1 {
			return errors.Errorf("output element %d written %d times", ii, count)
		}
	}
	return nil
}

// sweepStats aggregates the plans of a sweep.
type sweepStats struct {
	// runID identifies the sweep in logs and plots.
	runID string

	numPlans    int
	count       map[tiling.Strategy]int
	launchUnits map[tiling.Strategy]int
	elements    map[tiling.Strategy]int

	// shapes are the distinct normalized shapes of each strategy.
	shapes map[tiling.Strategy]sets.Set[string]
}

// maxSweepElements limits the size of the random outputs of a sweep, since they are all verified.
const maxSweepElements = 1 << 20

// randomRequest returns a random broadcast-to or tile request.
func randomRequest(rng *rand.Rand, dtype dtypes.DType) request {
	rank := rng.IntN(6)
	in := make([]int, rank)
	for axis := range in {
		in[axis] = 1 + rng.IntN(8)
		if rng.IntN(3) == 0 {
			in[axis] = 1
		}
	}
	if rank > 0 && rng.IntN(4) == 0 {
		in[rank-1] *= 1 + rng.IntN(2000)
	}
	req := request{dtype: dtype, in: in}
	if rng.IntN(4) == 0 {
		req.multiples = make([]int, rank)
		for axis := range rank {
			req.multiples[axis] = 1 + rng.IntN(3)
		}
		return req
	}
	extra := rng.IntN(3)
	req.out = make([]int, extra+rank)
	for axis := range req.out {
		if axis >= extra && in[axis-extra] != 1 {
			req.out[axis] = in[axis-extra]
			continue
		}
		req.out[axis] = 1 + rng.IntN(6)
		if rng.IntN(5) == 0 {
			req.out[axis] *= 1 + rng.IntN(1000)
		}
	}
	return req
}

// sweep plans and verifies numPlans random requests. Progress is reported to progressWriter.
func sweep(hw hardware.Profile, dtype dtypes.DType, numPlans int, seed uint64, pool *workerspool.Pool,
	progressWriter io.Writer) (*sweepStats, error) {
	stats := &sweepStats{
		runID:       uuid.NewString(),
		count:       make(map[tiling.Strategy]int),
		launchUnits: make(map[tiling.Strategy]int),
		elements:    make(map[tiling.Strategy]int),
		shapes:      make(map[tiling.Strategy]sets.Set[string]),
	}
	rng := rand.New(rand.NewPCG(seed, 0))
	klog.V(1).Infof("sweep %s: %d plans of %s on %s, seed %d", stats.runID, numPlans, dtype, hw, seed)
	bar := progressbar.NewOptions(numPlans,
		progressbar.OptionSetDescription("sweep "+stats.runID[:8]),
		progressbar.OptionSetWriter(progressWriter),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
	)
	for stats.numPlans < numPlans {
		req := randomRequest(rng, dtype)
		res, err := req.compute(hw)
		if err != nil {
			return stats, errors.WithMessagef(err, "random request %+v", req)
		}
		if res.output.Size() > maxSweepElements {
			continue
		}
		if err = verify(res, seed, pool); err != nil {
			return stats, errors.WithMessagef(err, "verifying %s -> %s: %s", res.input, res.output, res.plan)
		}
		stats.numPlans++
		s := res.plan.Strategy
		stats.count[s]++
		stats.launchUnits[s] += res.plan.LaunchUnits()
		stats.elements[s] += res.output.Size()
		if stats.shapes[s] == nil {
			stats.shapes[s] = sets.Make[string]()
		}
		stats.shapes[s].Insert(res.plan.Shape.String())
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return stats, nil
}
