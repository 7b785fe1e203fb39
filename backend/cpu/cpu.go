// Copyright 2025 Voxconv ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/voxconv-ml/voxconv/internal/backend/cpu"

	"github.com/voxconv-ml/voxconv/conv"
)

// Backend provides column-major GEMM/GEMV primitives on the CPU via
// gonum's BLAS kernels.
type Backend = internalcpu.Backend

// Compile-time check that Backend satisfies the engine's capability
// interface.
var _ conv.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/voxconv-ml/voxconv/backend/cpu"
//	    "github.com/voxconv-ml/voxconv/conv"
//	)
//
//	ctx := conv.NewContext(cpu.New())
func New() *Backend {
	return internalcpu.New()
}
