// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct(t *testing.T) {
	assert.Equal(t, 1, Product([]int{}))
	assert.Equal(t, 24, Product([]int{2, 3, 4}))
	assert.Equal(t, int64(0), Product([]int64{7, 0, 3}))
}

func TestParseInts(t *testing.T) {
	values, err := ParseInts("2, 3,1_000")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1000}, values)

	values, err = ParseInts("")
	require.NoError(t, err)
	assert.Empty(t, values)

	_, err = ParseInts("2,x")
	require.Error(t, err)
}

func TestFlag(t *testing.T) {
	dims := Flag("test_dims", []int{1, 2}, "dims for testing", ParseInt)
	assert.Equal(t, []int{1, 2}, *dims)
	require.NoError(t, flag.Set("test_dims", "4,5,6"))
	assert.Equal(t, []int{4, 5, 6}, *dims)
	assert.Equal(t, "4,5,6", flag.Lookup("test_dims").Value.String())
}

func TestCount(t *testing.T) {
	assert.Equal(t, 2, Count([]bool{true, false, true}, func(b bool) bool { return b }))
	assert.Equal(t, 7, Last([]int{3, 7}))
	assert.Equal(t, []int{5, 5, 5}, SliceWithValue(3, 5))
}
