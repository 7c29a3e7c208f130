// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dtypes includes the DType enum for the element types handled by the tiling engine.
//
// Tiling only cares about the width of an element, so besides the enum itself the package provides
// the byte width (Size), names and parsing from names.
package dtypes

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

func init() {
	// Add a mapping to the lower-case version of dtypes.
	keys := slices.Collect(maps.Keys(MapOfNames))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if _, found := MapOfNames[lowerKey]; found {
			continue
		}
		MapOfNames[lowerKey] = MapOfNames[key]
	}
}

// String implements fmt.Stringer.
func (dtype DType) String() string {
	if name, found := dtypeNames[dtype]; found {
		return name
	}
	return fmt.Sprintf("DType(%d)", int32(dtype))
}

// IsValid returns whether dtype is one of the known, tileable, data types.
func (dtype DType) IsValid() bool {
	_, found := dtypeNames[dtype]
	return found && dtype != InvalidDType
}

// Pre-generate constant reflect.TypeOf for convenience.
var (
	float16Type = reflect.TypeOf(float16.Float16(0))

	// bfloat16Type uses the raw bits representation: only the width matters here.
	bfloat16Type = reflect.TypeOf(uint16(0))
)

// GoType returns the Go `reflect.Type` used to hold one element of the DType.
//
// It panics for an invalid DType.
func (dtype DType) GoType() reflect.Type {
	switch dtype {
	case Int64:
		return reflect.TypeOf(int64(0))
	case Int32:
		return reflect.TypeOf(int32(0))
	case Int16:
		return reflect.TypeOf(int16(0))
	case Int8:
		return reflect.TypeOf(int8(0))

	case Uint64:
		return reflect.TypeOf(uint64(0))
	case Uint32:
		return reflect.TypeOf(uint32(0))
	case Uint16:
		return reflect.TypeOf(uint16(0))
	case Uint8:
		return reflect.TypeOf(uint8(0))

	case Bool:
		return reflect.TypeOf(true)

	case Float16:
		return float16Type
	case BFloat16:
		return bfloat16Type
	case Float32:
		return reflect.TypeOf(float32(0))
	case Float64:
		return reflect.TypeOf(float64(0))
	}
	exceptions.Panicf("unknown dtype %s in DType.GoType", dtype)
	panic(nil) // Quiet the linter.
}

// Size returns the number of bytes of one element of the DType.
// It panics for an invalid DType.
func (dtype DType) Size() int {
	return int(dtype.GoType().Size())
}

// Memory returns the number of bytes for the given DType.
// It's an alias to Size, converted to uintptr.
func (dtype DType) Memory() uintptr {
	return uintptr(dtype.Size())
}

// FromName returns the DType for the given name (case-insensitive, aliases like "f32" accepted).
func FromName(name string) (DType, error) {
	dtype, found := MapOfNames[name]
	if !found {
		dtype, found = MapOfNames[strings.ToLower(name)]
	}
	if !found || dtype == InvalidDType {
		return InvalidDType, errors.Errorf("unknown dtype %q", name)
	}
	return dtype, nil
}

// FromSize returns the canonical floating point (or, for 1 byte, integer) DType with the given element
// width in bytes. It's used when a caller only knows the element width.
func FromSize(numBytes int) (DType, error) {
	switch numBytes {
	case 1:
		return Int8, nil
	case 2:
		return Float16, nil
	case 4:
		return Float32, nil
	case 8:
		return Float64, nil
	}
	return InvalidDType, errors.Errorf("no dtype with element width of %d bytes", numBytes)
}
