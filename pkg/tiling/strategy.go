// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import "github.com/gomlx/tiling/pkg/hardware"

// Strategy is the execution strategy selected for a broadcast. The kernel dispatches on it.
//
//go:generate go tool enumer -type=Strategy -trimprefix=Strategy -transform=snake -text -output=gen_strategy_enumer.go strategy.go
type Strategy int

const (
	// StrategyInvalid is the zero value, used by failed plans.
	StrategyInvalid Strategy = iota

	// LastDimLargeCarried is a linear copy of a large carried innermost axis.
	LastDimLargeCarried

	// LastDimLargeBroadcast fills a large broadcast innermost axis.
	LastDimLargeBroadcast

	// ResidentBroadcast expands the broadcast of the unit working set in the scratchpad.
	ResidentBroadcast

	// MultiDimensionalTransfer moves data with strided, dimension-by-dimension transfers.
	MultiDimensionalTransfer

	// FullMultiDimensionalTransfer is a MultiDimensionalTransfer whose unit group uses the maximum
	// number of transferable dimensions: the kernel uses the wider transfer primitive.
	FullMultiDimensionalTransfer

	// SmallInnermostBroadcast is a ResidentBroadcast with a layout optimized for a small trailing
	// broadcast axis over a carried innermost axis.
	SmallInnermostBroadcast
)

// IsValid returns whether s is one of the defined strategies, other than StrategyInvalid.
func (s Strategy) IsValid() bool {
	return s != StrategyInvalid && s.IsAStrategy()
}

// Strategies returns the valid strategies, in order.
func Strategies() []Strategy {
	return StrategyValues()[1:]
}

// IsResident returns whether the strategy keeps the whole unit working set in the scratchpad.
func (s Strategy) IsResident() bool {
	return s == ResidentBroadcast || s == SmallInnermostBroadcast
}

// IsTransfer returns whether the strategy is one of the multi-dimensional transfers.
func (s Strategy) IsTransfer() bool {
	return s == MultiDimensionalTransfer || s == FullMultiDimensionalTransfer
}

// IsLastDim returns whether the strategy only works on the innermost axis.
func (s Strategy) IsLastDim() bool {
	return s == LastDimLargeCarried || s == LastDimLargeBroadcast
}

// SelectStrategy returns the initial strategy for the normalized shapes and budget.
// Refine may still upgrade it once the axes are partitioned.
func SelectStrategy(n Normalized, b Budget, hw hardware.Profile) Strategy {
	inner, innerBroadcast, t := n.Inner(), n.InnerBroadcast(), b.TensorSize
	switch {
	case !innerBroadcast && inner >= t:
		return LastDimLargeCarried
	case innerBroadcast && inner >= t && b.QuarterGuard:
		return LastDimLargeBroadcast
	}
	if !b.QuarterGuard {
		return MultiDimensionalTransfer
	}
	if n.Rank() == 1 && !innerBroadcast {
		return ResidentBroadcast
	}
	if inner <= t {
		carriedOk := !innerBroadcast && !b.SmallInnermostBroadcast
		broadcastOk := innerBroadcast && inner*b.ElementBytes >= hw.MinResidentBroadcastBytes
		if carriedOk || broadcastOk {
			return ResidentBroadcast
		}
	}
	return MultiDimensionalTransfer
}

// Refine the strategy once the axes are partitioned:
//
//   - a MultiDimensionalTransfer whose unit group takes the maximum number of transferable
//     dimensions becomes a FullMultiDimensionalTransfer;
//   - a ResidentBroadcast with exactly one broadcast axis in the unit group, a carried innermost
//     axis, more than one axis in the unit group and a second-to-last axis that fits a vector
//     register becomes a SmallInnermostBroadcast.
func Refine(s Strategy, n Normalized, b Budget, p Partition, hw hardware.Profile) Strategy {
	switch s {
	case MultiDimensionalTransfer:
		if p.UnitDims == hw.MaxTransferDims {
			return FullMultiDimensionalTransfer
		}
	case ResidentBroadcast:
		rank := n.Rank()
		if p.UnitBroadcastAxes(n) == 1 && !n.InnerBroadcast() && p.UnitDims > 1 &&
			n.Out[rank-2]*b.ElementBytes <= hw.VectorBytes {
			return SmallInnermostBroadcast
		}
	}
	return s
}
