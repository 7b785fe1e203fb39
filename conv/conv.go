// Copyright 2025 Voxconv ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package conv

import (
	"github.com/voxconv-ml/voxconv/internal/conv"
	"github.com/voxconv-ml/voxconv/tensor"
)

// Backend is the numeric capability surface the engine needs: dense
// column-major GEMM/GEMV for float32 and float64.
type Backend = conv.Backend

// Context owns the transient resources of one convolution call: the
// scratch workspace and the cached all-ones vector. Not safe for
// concurrent use; allocate one per worker.
type Context = conv.Context

// Params holds the stride and padding configuration of one convolution.
type Params = conv.Params

// Error annotates an engine failure with the originating operation and a
// failure kind.
type Error = conv.Error

// Failure kinds, distinguishable via errors.Is.
var (
	ErrAllocation = conv.ErrAllocation
	ErrBackend    = conv.ErrBackend
	ErrValidation = conv.ErrValidation
)

// NewContext creates a Context executing on the given backend.
func NewContext(backend Backend) *Context {
	return conv.NewContext(backend)
}

// UnitParams returns unit strides and no padding.
func UnitParams() Params {
	return conv.UnitParams()
}

// OutputShape computes the output tensor shape Forward expects for the
// given data and filter shapes.
func OutputShape(data, filters tensor.Shape, p Params) (tensor.Shape, error) {
	return conv.OutputShape(data, filters, p)
}

// Forward computes a grouped 3-D convolution over a batch of volumes:
//
//	output = dataMult * conv(data, filters) + outputMult * output [+ biases]
//
// See the package documentation for shapes and the resource contract.
func Forward(ctx *Context, output *tensor.RawTensor, outputMult float64, data *tensor.RawTensor, dataMult float64, filters, biases *tensor.RawTensor, p Params) error {
	return conv.Forward(ctx, output, outputMult, data, dataMult, filters, biases, p)
}

// Backward computes the gradients of a grouped 3-D convolution. Each of
// derData, derFilters and derBiases is independently optional (nil skips
// it); derOutput drives all of them. Destinations need not be pre-zeroed.
func Backward(ctx *Context, derData, derFilters, derBiases *tensor.RawTensor, data, filters, derOutput *tensor.RawTensor, p Params) error {
	return conv.Backward(ctx, derData, derFilters, derBiases, data, filters, derOutput, p)
}

// ForwardParallel runs Forward over disjoint slices of the batch on
// several goroutines, one private Context per worker.
func ForwardParallel(backend Backend, workers int, output *tensor.RawTensor, outputMult float64, data *tensor.RawTensor, dataMult float64, filters, biases *tensor.RawTensor, p Params) error {
	return conv.ForwardParallel(backend, workers, output, outputMult, data, dataMult, filters, biases, p)
}
