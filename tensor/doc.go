// Copyright 2025 Voxconv ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensor types consumed by the voxconv
// convolution engine.
//
// # Overview
//
// Tensors here are plain views: a contiguous, column-major buffer plus
// shape and type information. The convolution engine works on rank-5
// shapes laid out as (height, width, time, channels, batch), with the
// first axis varying fastest in memory. Tensors are owned by the caller
// for the duration of one engine call; the engine never frees them.
//
// # Basic Usage
//
//	import "github.com/voxconv-ml/voxconv/tensor"
//
//	data, err := tensor.NewRaw(tensor.Shape{4, 4, 4, 2, 1}, tensor.Float32, tensor.CPU)
//	if err != nil {
//	    ...
//	}
//	values := data.AsFloat32() // type-safe zero-copy access
//
// # Supported Data Types
//
//   - Float32, Float64: native compute types
//   - Float16: storage only; the engine widens to float32 for compute
package tensor
