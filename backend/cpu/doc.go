// Copyright 2025 Voxconv ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU numeric backend for the voxconv engine.
//
// # Overview
//
// The backend exposes the classic column-major BLAS GEMM/GEMV contract,
// mapped onto gonum's pure Go row-major kernels through the standard
// operand-swap identity. It is stateless and safe for concurrent use;
// the per-call state lives in conv.Context.
//
// # Basic Usage
//
//	import (
//	    "github.com/voxconv-ml/voxconv/backend/cpu"
//	    "github.com/voxconv-ml/voxconv/conv"
//	)
//
//	ctx := conv.NewContext(cpu.New())
//	err := conv.Forward(ctx, output, 0, data, 1, filters, biases, conv.UnitParams())
package cpu
