package tensor

import (
	"fmt"

	"github.com/x448/float16"
)

// FromFloat32 creates a Float32 tensor initialized from values.
// The values are copied; len(values) must equal the shape's element count.
func FromFloat32(shape Shape, values []float32, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	if len(values) != raw.NumElements() {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, raw.NumElements(), len(values))
	}
	copy(raw.AsFloat32(), values)
	return raw, nil
}

// FromFloat64 creates a Float64 tensor initialized from values.
func FromFloat64(shape Shape, values []float64, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float64, device)
	if err != nil {
		return nil, err
	}
	if len(values) != raw.NumElements() {
		return nil, fmt.Errorf("shape %v needs %d elements, got %d", shape, raw.NumElements(), len(values))
	}
	copy(raw.AsFloat64(), values)
	return raw, nil
}

// Fill sets every element of a Float32 or Float64 tensor to value.
func Fill(r *RawTensor, value float64) error {
	switch r.DType() {
	case Float32:
		data := r.AsFloat32()
		v := float32(value)
		for i := range data {
			data[i] = v
		}
	case Float64:
		data := r.AsFloat64()
		for i := range data {
			data[i] = value
		}
	case Float16:
		data := r.AsFloat16()
		v := float16.Fromfloat32(float32(value))
		for i := range data {
			data[i] = v
		}
	default:
		return fmt.Errorf("fill: unsupported dtype %s", r.DType())
	}
	return nil
}

// ConvertToFloat16 narrows a Float32 tensor into a new Float16 tensor.
// Values outside the float16 range saturate per IEEE 754 rounding.
func ConvertToFloat16(src *RawTensor) (*RawTensor, error) {
	if src.DType() != Float32 {
		return nil, fmt.Errorf("convert to float16: source dtype is %s, want float32", src.DType())
	}
	dst, err := NewRaw(src.Shape(), Float16, src.Device())
	if err != nil {
		return nil, err
	}
	in := src.AsFloat32()
	out := dst.AsFloat16()
	for i, v := range in {
		out[i] = float16.Fromfloat32(v)
	}
	return dst, nil
}

// ConvertToFloat32 widens a Float16 tensor into a new Float32 tensor.
func ConvertToFloat32(src *RawTensor) (*RawTensor, error) {
	if src.DType() != Float16 {
		return nil, fmt.Errorf("convert to float32: source dtype is %s, want float16", src.DType())
	}
	dst, err := NewRaw(src.Shape(), Float32, src.Device())
	if err != nil {
		return nil, err
	}
	in := src.AsFloat16()
	out := dst.AsFloat32()
	for i, v := range in {
		out[i] = v.Float32()
	}
	return dst, nil
}
