// Copyright 2025 Voxconv ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package conv implements grouped 3-D convolution forward and backward
// passes on top of a BLAS backend.
//
// # Algorithm
//
// Each image volume is unfolded into a patch matrix (vol2row), one row
// per output position, one column per kernel tap and channel. Grouped
// convolution is then a set of dense matrix multiplies against disjoint
// column ranges of that matrix, and an optional bias is broadcast-added
// through a cached all-ones vector. The backward pass runs the adjoint
// pipeline: transposed GEMMs plus the scatter-add fold row2vol.
//
// # Resources and Concurrency
//
// A Context owns the scratch workspace and the all-ones cache, grown on
// demand and reused across calls. A Context must not be shared between
// concurrent calls; ForwardParallel creates one per worker.
//
// # Accumulation Contract
//
// Backward gradient destinations need not be pre-zeroed: the first image
// of the batch overwrites them and later images accumulate, yielding the
// sum over the batch with no batch-size normalization.
//
// # Basic Usage
//
//	backend := cpu.New()
//	ctx := conv.NewContext(backend)
//
//	outShape, err := conv.OutputShape(data.Shape(), filters.Shape(), params)
//	output, err := tensor.NewRaw(outShape, data.DType(), data.Device())
//	err = conv.Forward(ctx, output, 0, data, 1, filters, biases, params)
package conv
