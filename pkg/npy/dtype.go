package npy

import "fmt"

// DType is the element type of a written array.
type DType uint8

const (
	Float32 DType = iota
	Float64
	Uint32
	Uint64
	Int32
	Int64
)

// DefaultDType is used when no dtype is requested.
const DefaultDType = Float32

type dtypeInfo struct {
	name  string
	descr string
	width int
}

var dtypes = [...]dtypeInfo{
	Float32: {"f32", "<f4", 4},
	Float64: {"f64", "<f8", 8},
	Uint32:  {"u32", "<u4", 4},
	Uint64:  {"u64", "<u8", 8},
	Int32:   {"i32", "<i4", 4},
	Int64:   {"i64", "<i8", 8},
}

// DTypes returns every supported dtype.
func DTypes() []DType {
	return []DType{Uint32, Uint64, Int32, Int64, Float32, Float64}
}

func (d DType) valid() bool {
	return int(d) < len(dtypes)
}

// Width returns the encoded size of one element in bytes.
func (d DType) Width() int {
	if !d.valid() {
		return 0
	}
	return dtypes[d].width
}

// Descr returns the NumPy descriptor token, e.g. "<f4".
func (d DType) Descr() string {
	if !d.valid() {
		return ""
	}
	return dtypes[d].descr
}

func (d DType) String() string {
	if !d.valid() {
		return fmt.Sprintf("DType(%d)", uint8(d))
	}
	return dtypes[d].name
}

// IsFloat reports whether d is an IEEE-754 type.
func (d DType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// ParseDType accepts a short name ("u32", "f64", ...) or a descriptor token
// ("<u4", "<f8", ...).
func ParseDType(s string) (DType, error) {
	for i, info := range dtypes {
		if s == info.name || s == info.descr {
			return DType(i), nil
		}
	}
	return DefaultDType, &ConfigError{Value: s, Err: ErrUnknownDType}
}

// DTypeFromDescr maps a header descriptor token back to a DType.
func DTypeFromDescr(descr string) (DType, bool) {
	for i, info := range dtypes {
		if descr == info.descr {
			return DType(i), true
		}
	}
	return 0, false
}
