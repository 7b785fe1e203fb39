// Copyright 2025 Voxconv ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package conv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxconv-ml/voxconv/backend/cpu"
	"github.com/voxconv-ml/voxconv/conv"
	"github.com/voxconv-ml/voxconv/tensor"
)

// End-to-end through the public surface: forward, then backward, on the
// 4x4x4 two-group scenario.
func TestPublicAPI_RoundTrip(t *testing.T) {
	backend := cpu.New()
	ctx := conv.NewContext(backend)
	p := conv.UnitParams()

	data, err := tensor.NewRaw(tensor.Shape{4, 4, 4, 2, 1}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	require.NoError(t, tensor.Fill(data, 1))
	filters, err := tensor.NewRaw(tensor.Shape{2, 2, 2, 1, 4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	require.NoError(t, tensor.Fill(filters, 0.5))
	biases, err := tensor.FromFloat32(tensor.Shape{4}, []float32{1, 2, 3, 4}, tensor.CPU)
	require.NoError(t, err)

	outShape, err := conv.OutputShape(data.Shape(), filters.Shape(), p)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{3, 3, 3, 4, 1}, outShape)

	output, err := tensor.NewRaw(outShape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	require.NoError(t, conv.Forward(ctx, output, 0, data, 1, filters, biases, p))

	// All-ones data through one 2x2x2 single-channel group of half-weights
	// sums 8 taps of 0.5, plus the filter's bias.
	out := output.AsFloat32()
	for f := 0; f < 4; f++ {
		for i := 0; i < 27; i++ {
			assert.Equal(t, float32(4+f+1), out[f*27+i])
		}
	}

	derData, err := tensor.NewRaw(data.Shape(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	derFilters, err := tensor.NewRaw(filters.Shape(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	derBiases, err := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	require.NoError(t, conv.Backward(ctx, derData, derFilters, derBiases, data, filters, output, p))

	// Bias gradient sums derOutput over the 27 positions of each filter.
	for f, v := range derBiases.AsFloat32() {
		assert.Equal(t, float32(27*(4+f+1)), v)
	}

	require.NoError(t, conv.ForwardParallel(backend, 4, output, 0, data, 1, filters, biases, p))
	assert.Equal(t, float32(5), output.AsFloat32()[0])
}

func TestPublicAPI_ErrorKinds(t *testing.T) {
	ctx := conv.NewContext(cpu.New())
	data, err := tensor.NewRaw(tensor.Shape{4, 4, 4, 2, 1}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	filters, err := tensor.NewRaw(tensor.Shape{2, 2, 2, 1, 4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	badOut, err := tensor.NewRaw(tensor.Shape{1, 1, 1, 4, 1}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	err = conv.Forward(ctx, badOut, 0, data, 1, filters, nil, conv.UnitParams())
	assert.ErrorIs(t, err, conv.ErrValidation)

	var cerr *conv.Error
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Op, "Forward")
}
