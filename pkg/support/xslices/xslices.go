// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide missing functionality to the slices package.
package xslices

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Product returns the product of all values in the slice, 1 for an empty slice.
func Product[T constraints.Integer](slice []T) T {
	product := T(1)
	for _, v := range slice {
		product *= v
	}
	return product
}

// Last returns the last element of a slice. It panics for an empty slice.
func Last[T any](slice []T) T {
	return slice[len(slice)-1]
}

// SliceWithValue creates a slice of given size filled with given value.
func SliceWithValue[T any](size int, value T) []T {
	s := make([]T, size)
	for ii := range s {
		s[ii] = value
	}
	return s
}

// Count returns how many elements of the slice satisfy fn.
func Count[T any](slice []T, fn func(e T) bool) (count int) {
	for _, e := range slice {
		if fn(e) {
			count++
		}
	}
	return
}

// ParseInts parses a comma-separated list of integers, like "2,3,1000". Spaces and "_" separators
// within numbers are accepted. An empty string is an empty list.
func ParseInts(list string) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return []int{}, nil
	}
	parts := strings.Split(list, ",")
	values := make([]int, len(parts))
	for ii, part := range parts {
		v, err := ParseInt(part)
		if err != nil {
			return nil, errors.WithMessagef(err, "while parsing list %q", list)
		}
		values[ii] = v
	}
	return values, nil
}

// ParseInt parses one integer, accepting spaces around and "_" separators.
func ParseInt(str string) (int, error) {
	str = strings.ReplaceAll(strings.TrimSpace(str), "_", "")
	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid integer %q", str)
	}
	return v, nil
}

// Flag creates a flag for []T with the given name, description and default value.
// It takes as input a parser for an individual T value.
func Flag[T any](name string, defaultValue []T, usage string,
	parserFn func(valueStr string) (T, error)) *[]T {
	f := &sliceFlag[T]{
		parsedSlice: defaultValue,
		parserFn:    parserFn,
	}
	flag.Var(f, name, usage)
	return &f.parsedSlice
}

// sliceFlag implements flag.Value for a slice of a generic type.
type sliceFlag[T any] struct {
	parsedSlice []T
	parserFn    func(valueStr string) (T, error)
}

func (f *sliceFlag[T]) String() string {
	if f == nil || len(f.parsedSlice) == 0 {
		return ""
	}
	parts := make([]string, len(f.parsedSlice))
	for ii, elem := range f.parsedSlice {
		parts[ii] = fmt.Sprintf("%v", elem)
	}
	return strings.Join(parts, ",")
}

func (f *sliceFlag[T]) Set(listStr string) error {
	if listStr == "" {
		f.parsedSlice = make([]T, 0)
		return nil
	}
	parts := strings.Split(listStr, ",")
	f.parsedSlice = make([]T, len(parts))
	var err error
	for ii, part := range parts {
		f.parsedSlice[ii], err = f.parserFn(part)
		if err != nil {
			return err
		}
	}
	return nil
}
