// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import "github.com/pkg/errors"

// Kinds of tiling failures. Errors returned by the package wrap one of them with a description of
// the offending values, use errors.Is to test for a kind.
var (
	// ErrShapeMismatch is returned when the input and output ranks don't match.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupportedRank is returned when the normalized rank is larger than MaxRank, or the number
	// of elements doesn't fit an int.
	ErrUnsupportedRank = errors.New("unsupported rank")

	// ErrEmptyTensor is returned when the input or the output has no elements.
	ErrEmptyTensor = errors.New("empty tensor")

	// ErrBroadcastRuleViolation is returned when an input dimension is neither 1 nor equal to the
	// corresponding output dimension.
	ErrBroadcastRuleViolation = errors.New("broadcast rule violation")

	// ErrDegenerateBudget is returned for invalid hardware profiles or element widths, or when a
	// derived divisor would be zero.
	ErrDegenerateBudget = errors.New("degenerate budget")

	// ErrNoUsableUnits is returned when there are no execution units to partition the work on.
	ErrNoUsableUnits = errors.New("no usable execution units")

	// ErrInconsistentPlan is returned by Plan.Validate, for plans not produced by ComputeTilingPlan
	// (e.g. decoded from a corrupted record).
	ErrInconsistentPlan = errors.New("inconsistent tiling plan")
)
