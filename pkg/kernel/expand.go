// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import "slices"

func product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}

// fillByDoubling replicates the first n bytes of buf over the whole buffer, doubling the filled
// region at each copy.
func fillByDoubling(buf []byte, n int) {
	for filled := n; filled < len(buf); {
		filled += copy(buf[filled:], buf[:filled])
	}
}

// expand broadcasts the contiguous row-major block src of dimensions in into dst of dimensions out,
// where each input dimension is either 1 or equal to the output dimension.
func expand(dst, src []byte, in, out []int, elementBytes int) {
	if slices.Equal(in, out) {
		copy(dst[:product(out)*elementBytes], src)
		return
	}
	outInner := product(out[1:]) * elementBytes
	if in[0] == out[0] {
		inInner := product(in[1:]) * elementBytes
		for ii := range out[0] {
			expand(dst[ii*outInner:], src[ii*inInner:], in[1:], out[1:], elementBytes)
		}
		return
	}
	expand(dst, src, in[1:], out[1:], elementBytes)
	fillByDoubling(dst[:out[0]*outInner], outInner)
}
