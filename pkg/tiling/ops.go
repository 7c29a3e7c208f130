// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"slices"

	"github.com/gomlx/tiling/pkg/core/shapes"
	"github.com/gomlx/tiling/pkg/hardware"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// checkDTypes returns an error if the shapes don't have the same valid dtype.
func checkDTypes(input, output shapes.Shape) error {
	if !input.Ok() {
		return errors.Errorf("invalid dtype %s for input %s", input.DType, input)
	}
	if input.DType != output.DType {
		return errors.Wrapf(ErrShapeMismatch, "input %s and output %s have different dtypes", input, output)
	}
	return nil
}

// BroadcastTo returns the plan of the broadcast-to operator, from the declared input and output tensor
// descriptors.
//
// targetShape is the value of the operator's constant shape input, if known (nil otherwise). If it
// disagrees with the declared output, a warning is logged and the declared output is used.
func BroadcastTo(input, output shapes.Shape, targetShape []int, hw hardware.Profile) (Plan, error) {
	if err := checkDTypes(input, output); err != nil {
		return Plan{}, err
	}
	if targetShape != nil && !slices.Equal(targetShape, output.Dimensions) {
		klog.Warningf("BroadcastTo: constant target shape %v differs from the declared output %s, using the output",
			targetShape, output)
	}
	return ComputeTilingPlan(input.Dimensions, output.Dimensions, input.DType.Size(), hw)
}

// TileBroadcastDims returns the dimensions of the broadcast equivalent to tiling a tensor of dimensions
// dims by multiples. The flat layouts of the input and the output are the same as the tile's, each
// axis of size d > 1 repeated m > 1 times becomes the pair of axes (1, d) -> (m, d).
//
// The tiled output dimensions are also returned.
func TileBroadcastDims(dims, multiples []int) (in, out, tiled []int, err error) {
	if len(dims) != len(multiples) {
		err = errors.Wrapf(ErrShapeMismatch, "tile multiples %v must have one value per axis of %v", multiples, dims)
		return
	}
	in = make([]int, 0, 2*len(dims))
	out = make([]int, 0, 2*len(dims))
	tiled = make([]int, len(dims))
	for axis, dim := range dims {
		multiple := multiples[axis]
		switch {
		case multiple < 0:
			err = errors.Wrapf(ErrBroadcastRuleViolation, "negative tile multiple %d for axis %d", multiple, axis)
			return
		case multiple == 0:
			err = errors.Wrapf(ErrEmptyTensor, "tile multiple 0 for axis %d", axis)
			return
		}
		tiled[axis] = dim * multiple
		switch {
		case multiple == 1:
			in, out = append(in, dim), append(out, dim)
		case dim == 1:
			in, out = append(in, 1), append(out, multiple)
		default:
			in, out = append(in, 1, dim), append(out, multiple, dim)
		}
	}
	return
}

// Tile returns the plan of the tile operator, repeating input multiples times along each axis, and the
// shape of the tiled output.
func Tile(input shapes.Shape, multiples []int, hw hardware.Profile) (Plan, shapes.Shape, error) {
	if !input.Ok() {
		return Plan{}, shapes.Shape{}, errors.Errorf("invalid dtype %s for tile input %s", input.DType, input)
	}
	in, out, tiled, err := TileBroadcastDims(input.Dimensions, multiples)
	if err != nil {
		return Plan{}, shapes.Shape{}, err
	}
	output := shapes.Shape{DType: input.DType, Dimensions: tiled}
	plan, err := ComputeTilingPlan(in, out, input.DType.Size(), hw)
	if err != nil {
		return Plan{}, shapes.Shape{}, errors.WithMessagef(err, "tiling Tile(%s, multiples=%v)", input, multiples)
	}
	return plan, output, nil
}
