// Package tensor provides the dense tensor types consumed by the voxconv
// convolution engine.
package tensor

// DType is a constraint for element types the numeric core computes in.
// It uses Go generics to ensure compile-time type safety.
type DType interface {
	~float32 | ~float64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
//
// Float16 is a storage-only type: the engine widens it to float32 for
// computation, the way half-precision inference runtimes do.
const (
	Float32 DataType = iota
	Float64
	Float16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	case Float16:
		return 2
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	default:
		return "unknown"
	}
}

// Of returns the DataType corresponding to the generic element type T.
func Of[T DType]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		panic("unsupported type")
	}
}
