// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import "math"

// ceilDiv returns ceil(a/b) for positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// alignUp rounds value up to a multiple of align.
func alignUp(value, align int) int {
	return ceilDiv(value, align) * align
}

// alignDown rounds value down to a multiple of align.
func alignDown(value, align int) int {
	return value / align * align
}

// mulChecked returns a*b for non-negative a and b, and false if the product overflows an int.
func mulChecked(a, b int) (int, bool) {
	if a != 0 && b > math.MaxInt/a {
		return 0, false
	}
	return a * b, true
}

// mulSaturated returns a*b for non-negative a and b, clamped to math.MaxInt.
func mulSaturated(a, b int) int {
	if product, ok := mulChecked(a, b); ok {
		return product
	}
	return math.MaxInt
}
