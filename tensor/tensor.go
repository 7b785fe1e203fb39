// Copyright 2025 Voxconv ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/voxconv-ml/voxconv/internal/tensor"
)

// Shape represents the dimensions of a tensor, column-major,
// (height, width, time, channels, batch) for the convolution engine.
type Shape = tensor.Shape

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Float16 = tensor.Float16
)

// Device represents the compute device holding a tensor's memory.
type Device = tensor.Device

// Supported compute devices.
const (
	CPU = tensor.CPU
)

// RawTensor is the low-level tensor representation: a dense, contiguous,
// column-major buffer plus shape and type information.
//
// RawTensors are views supplied by the caller for the duration of one
// engine call; use View to address a slice of images inside a batch.
type RawTensor = tensor.RawTensor

// NewRaw creates a new zero-initialized RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromFloat32 creates a Float32 tensor initialized from values.
func FromFloat32(shape Shape, values []float32, device Device) (*RawTensor, error) {
	return tensor.FromFloat32(shape, values, device)
}

// FromFloat64 creates a Float64 tensor initialized from values.
func FromFloat64(shape Shape, values []float64, device Device) (*RawTensor, error) {
	return tensor.FromFloat64(shape, values, device)
}

// Fill sets every element of a tensor to value.
func Fill(r *RawTensor, value float64) error {
	return tensor.Fill(r, value)
}

// ConvertToFloat16 narrows a Float32 tensor into a new Float16 tensor.
func ConvertToFloat16(src *RawTensor) (*RawTensor, error) {
	return tensor.ConvertToFloat16(src)
}

// ConvertToFloat32 widens a Float16 tensor into a new Float32 tensor.
func ConvertToFloat32(src *RawTensor) (*RawTensor, error) {
	return tensor.ConvertToFloat32(src)
}
