// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

// DType is an enum with the element types an operator can be tiled for.
//
// The numbering follows the XLA/PJRT primitive types, so values can be exchanged with the graph
// compiler that requests tiling without translation.
type DType int32

const (
	// InvalidDType is the zero value, it has no element width and can't be tiled.
	InvalidDType DType = 0

	// Bool is stored as one byte per element.
	Bool DType = 1

	// Int8 and the other integer types are signed integral values of fixed width.
	Int8  DType = 2
	Int16 DType = 3
	Int32 DType = 4
	Int64 DType = 5

	// Uint8 and the other unsigned types are unsigned integral values of fixed width.
	Uint8  DType = 6
	Uint16 DType = 7
	Uint32 DType = 8
	Uint64 DType = 9

	// Float16 is the IEEE 754 half precision float (github.com/x448/float16 on the Go side).
	Float16 DType = 10

	// Float32 is the IEEE 754 single precision float.
	Float32 DType = 11

	// Float64 is the IEEE 754 double precision float.
	Float64 DType = 12

	// BFloat16 is the "brain" 16 bits float: 8 bits exponent like Float32, 7 bits mantissa.
	BFloat16 DType = 16
)

// Aliases.
const (
	Bool8   = Bool
	F16     = Float16
	F32     = Float32
	F64     = Float64
	BF16    = BFloat16
	I8      = Int8
	I16     = Int16
	I32     = Int32
	I64     = Int64
	U8      = Uint8
	U16     = Uint16
	U32     = Uint32
	U64     = Uint64
	Invalid = InvalidDType
)

// MapOfNames maps the canonical names (and a few aliases) to DTypes. Lower-case versions are added
// at initialization.
var MapOfNames = map[string]DType{
	"InvalidDType": InvalidDType,
	"Bool":         Bool,
	"Int8":         Int8,
	"Int16":        Int16,
	"Int32":        Int32,
	"Int64":        Int64,
	"Uint8":        Uint8,
	"Uint16":       Uint16,
	"Uint32":       Uint32,
	"Uint64":       Uint64,
	"Float16":      Float16,
	"Float32":      Float32,
	"Float64":      Float64,
	"BFloat16":     BFloat16,
	"F16":          Float16,
	"F32":          Float32,
	"F64":          Float64,
	"BF16":         BFloat16,
	"I8":           Int8,
	"I16":          Int16,
	"I32":          Int32,
	"I64":          Int64,
	"U8":           Uint8,
	"U16":          Uint16,
	"U32":          Uint32,
	"U64":          Uint64,
}

var dtypeNames = map[DType]string{
	InvalidDType: "InvalidDType",
	Bool:         "Bool",
	Int8:         "Int8",
	Int16:        "Int16",
	Int32:        "Int32",
	Int64:        "Int64",
	Uint8:        "Uint8",
	Uint16:       "Uint16",
	Uint32:       "Uint32",
	Uint64:       "Uint64",
	Float16:      "Float16",
	Float32:      "Float32",
	Float64:      "Float64",
	BFloat16:     "BFloat16",
}
