// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/tiling/pkg/support/xslices"
	"github.com/pkg/errors"
)

// MaxRank is the maximum rank of a normalized shape pair.
const MaxRank = 8

// Normalized is a pair of input/output shapes after normalization: same rank (between 1 and MaxRank),
// no axis of output dimension 1 (except for the single-axis [1] shape), and adjacent axes always with
// different classification.
type Normalized struct {
	In, Out []int

	// Broadcast classification of each axis: true if the input dimension is 1 and the output
	// dimension is larger (a "B" axis), false if they are equal (a carried "A" axis).
	Broadcast []bool
}

// Rank of the normalized shapes.
func (n Normalized) Rank() int { return len(n.Out) }

// Inner returns the output dimension of the innermost axis.
func (n Normalized) Inner() int { return xslices.Last(n.Out) }

// InnerBroadcast returns whether the innermost axis is broadcast.
func (n Normalized) InnerBroadcast() bool { return xslices.Last(n.Broadcast) }

// Size returns the number of output elements.
func (n Normalized) Size() int { return xslices.Product(n.Out) }

// InputSize returns the number of input elements.
func (n Normalized) InputSize() int { return xslices.Product(n.In) }

// NumBroadcastAxes returns the number of broadcast axes.
func (n Normalized) NumBroadcastAxes() int {
	return xslices.Count(n.Broadcast, func(b bool) bool { return b })
}

// String implements fmt.Stringer.
func (n Normalized) String() string {
	var classes strings.Builder
	for _, isBroadcast := range n.Broadcast {
		if isBroadcast {
			classes.WriteByte('B')
		} else {
			classes.WriteByte('A')
		}
	}
	return fmt.Sprintf("%v->%v(%s)", n.In, n.Out, classes.String())
}

// Normalize the input and output dimensions of a broadcast:
//
//  1. inDims is left-padded with 1s up to the rank of outDims;
//  2. axes of output dimension 1 are removed (an all-ones pair becomes [1]->[1]);
//  3. adjacent axes with the same broadcast classification are merged.
//
// Outputs whose number of elements doesn't fit an int fail with ErrUnsupportedRank, so merged
// dimensions never overflow. The arguments are not modified.
func Normalize(inDims, outDims []int) (Normalized, error) {
	if len(inDims) > len(outDims) {
		return Normalized{}, errors.Wrapf(ErrShapeMismatch, "input rank %d is larger than output rank %d (input=%v, output=%v)",
			len(inDims), len(outDims), inDims, outDims)
	}
	for _, dims := range [][]int{inDims, outDims} {
		for axis, dim := range dims {
			if dim < 0 {
				return Normalized{}, errors.Wrapf(ErrBroadcastRuleViolation, "negative dimension %d for axis %d of %v", dim, axis, dims)
			}
			if dim == 0 {
				return Normalized{}, errors.Wrapf(ErrEmptyTensor, "axis %d of %v has dimension 0", axis, dims)
			}
		}
	}

	size := 1
	for _, dim := range outDims {
		var ok bool
		if size, ok = mulChecked(size, dim); !ok {
			return Normalized{}, errors.Wrapf(ErrUnsupportedRank, "element count overflows for output %v", outDims)
		}
	}

	out := slices.Clone(outDims)
	if len(out) == 0 {
		out = []int{1}
	}
	in := make([]int, len(out)-len(inDims), len(out))
	for ii := range in {
		in[ii] = 1
	}
	in = append(in, inDims...)
	if len(in) != len(out) {
		return Normalized{}, errors.Wrapf(ErrShapeMismatch, "padded input %v and output %v have different ranks", in, out)
	}
	for axis := range out {
		if in[axis] != 1 && in[axis] != out[axis] {
			return Normalized{}, errors.Wrapf(ErrBroadcastRuleViolation,
				"input dimension %d of axis %d can't be broadcast to %d (input=%v, output=%v)",
				in[axis], axis, out[axis], inDims, outDims)
		}
	}

	in, out = squeeze(in, out)
	isBroadcast, err := ClassifyAxes(in, out)
	if err != nil {
		return Normalized{}, err
	}
	in, out, isBroadcast = mergeAxes(in, out, isBroadcast)
	if len(out) > MaxRank {
		return Normalized{}, errors.Wrapf(ErrUnsupportedRank, "normalized rank %d exceeds the maximum of %d (input=%v, output=%v)",
			len(out), MaxRank, in, out)
	}
	return Normalized{In: in, Out: out, Broadcast: isBroadcast}, nil
}

// squeeze removes the axes with output dimension 1, never returning an empty shape.
func squeeze(in, out []int) ([]int, []int) {
	newIn, newOut := make([]int, 0, len(in)), make([]int, 0, len(out))
	for axis, dim := range out {
		if dim == 1 {
			continue
		}
		newIn = append(newIn, in[axis])
		newOut = append(newOut, dim)
	}
	if len(newOut) == 0 {
		return []int{1}, []int{1}
	}
	return newIn, newOut
}

// mergeAxes merges in place adjacent axes with the same classification, in one left-to-right pass.
func mergeAxes(in, out []int, isBroadcast []bool) ([]int, []int, []bool) {
	write := 0
	for read := 1; read < len(out); read++ {
		if isBroadcast[read] == isBroadcast[write] {
			out[write] *= out[read]
			in[write] *= in[read]
			continue
		}
		write++
		in[write], out[write], isBroadcast[write] = in[read], out[read], isBroadcast[read]
	}
	return in[:write+1], out[:write+1], isBroadcast[:write+1]
}

// ClassifyAxes returns for each axis whether it is broadcast (input dimension differs from the output
// dimension) or carried. The shapes must have the same rank.
func ClassifyAxes(in, out []int) ([]bool, error) {
	if len(in) != len(out) {
		return nil, errors.Wrapf(ErrShapeMismatch, "can't classify axes of shapes with different ranks (input=%v, output=%v)", in, out)
	}
	isBroadcast := make([]bool, len(out))
	for axis := range out {
		isBroadcast[axis] = in[axis] != out[axis]
	}
	return isBroadcast, nil
}
