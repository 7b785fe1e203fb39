package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
//
// The convolution engine works on rank-5 shapes laid out as
// (height, width, time, channels, batch).
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Dim returns the extent of axis i, or 1 when i is beyond the rank.
// Treating missing trailing axes as singleton matches the convolution
// engine's view of lower-rank tensors (e.g. a bias vector).
func (s Shape) Dim(i int) int {
	if i < 0 || i >= len(s) {
		return 1
	}
	return s[i]
}

// ComputeStrides calculates column-major strides for the shape.
// The first axis varies fastest: stride[i] = product of all dimensions
// before i. This is the fixed memory layout of every tensor the engine
// touches.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[0] = 1
	for i := 1; i < len(s); i++ {
		strides[i] = strides[i-1] * s[i-1]
	}
	return strides
}
