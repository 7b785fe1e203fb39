// Package conv implements grouped 3-D convolution forward and backward
// passes on top of a BLAS backend, reducing convolution to dense matrix
// multiplication through a vol2row unfolding of the input volume.
package conv

import (
	"unsafe"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"

	"github.com/voxconv-ml/voxconv/internal/tensor"
)

// Backend is the numeric capability surface the engine needs: dense
// matrix-matrix and matrix-vector multiply-accumulate with the
// column-major BLAS contract.
type Backend interface {
	Gemm32(tA, tB blas.Transpose, m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int, beta float32, c []float32, ldc int) error
	Gemm64(tA, tB blas.Transpose, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int, beta float64, c []float64, ldc int) error
	Gemv32(t blas.Transpose, m, n int, alpha float32, a []float32, lda int, x []float32, incx int, beta float32, y []float32, incy int) error
	Gemv64(t blas.Transpose, m, n int, alpha float64, a []float64, lda int, x []float64, incx int, beta float64, y []float64, incy int) error
}

// Context owns the transient resources one convolution call needs: the
// scratch workspace holding the unfolded patch matrix, and the cached
// all-ones vector used to broadcast bias additions.
//
// Both buffers are grown on demand and reused across calls, so a Context
// must NOT be shared between concurrent calls. Give each worker its own
// Context (see ForwardParallel).
type Context struct {
	backend Backend

	workspace []byte

	allOnes      []byte
	allOnesType  tensor.DataType
	allOnesCount int

	lastErr error
}

// NewContext creates a Context executing on the given backend.
func NewContext(backend Backend) *Context {
	return &Context{backend: backend}
}

// Backend returns the numeric backend this context dispatches to.
func (c *Context) Backend() Backend {
	return c.backend
}

// Workspace returns at least byteSize bytes of scratch memory. The buffer
// is reused across calls; its contents are unspecified on return.
func (c *Context) Workspace(byteSize int) ([]byte, error) {
	if byteSize < 0 {
		err := opError("context.Workspace", ErrAllocation, errors.Errorf("negative size %d", byteSize))
		c.lastErr = err
		return nil, err
	}
	if cap(c.workspace) < byteSize {
		c.workspace = make([]byte, byteSize)
	}
	return c.workspace[:byteSize], nil
}

// AllOnes returns a cached vector of count elements all equal to one, in
// the given dtype. The cache is lazily grown or refilled when a larger
// count or a different dtype is requested. Callers must treat the
// returned buffer as read-only.
func (c *Context) AllOnes(dtype tensor.DataType, count int) ([]byte, error) {
	const op = "context.AllOnes"
	if count < 0 {
		err := opError(op, ErrAllocation, errors.Errorf("negative count %d", count))
		c.lastErr = err
		return nil, err
	}
	if dtype != tensor.Float32 && dtype != tensor.Float64 {
		err := opError(op, ErrAllocation, errors.Errorf("unsupported dtype %s", dtype))
		c.lastErr = err
		return nil, err
	}

	if dtype != c.allOnesType || count > c.allOnesCount {
		buf := make([]byte, count*dtype.Size())
		fillOnes(buf, dtype, count)
		c.allOnes = buf
		c.allOnesType = dtype
		c.allOnesCount = count
	}
	return c.allOnes[:count*dtype.Size()], nil
}

// LastError returns the most recent resource failure recorded by this
// context, or nil. Engine operations additionally return their errors
// directly.
func (c *Context) LastError() error {
	return c.lastErr
}

func fillOnes(buf []byte, dtype tensor.DataType, count int) {
	if count == 0 {
		return
	}
	switch dtype {
	case tensor.Float32:
		s := unsafe.Slice((*float32)(unsafe.Pointer(&buf[0])), count)
		for i := range s {
			s[i] = 1
		}
	case tensor.Float64:
		s := unsafe.Slice((*float64)(unsafe.Pointer(&buf[0])), count)
		for i := range s {
			s[i] = 1
		}
	}
}

// workspaceSlice views the context workspace as a typed slice of n
// elements, growing it as needed.
func workspaceSlice[T tensor.DType](c *Context, n int) ([]T, error) {
	var zero T
	buf, err := c.Workspace(n * int(unsafe.Sizeof(zero)))
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n), nil
}

// allOnesSlice views the cached all-ones vector as a typed slice.
func allOnesSlice[T tensor.DType](c *Context, n int) ([]T, error) {
	buf, err := c.AllOnes(tensor.Of[T](), n)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[0])), n), nil
}
