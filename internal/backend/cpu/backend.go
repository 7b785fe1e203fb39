// Package cpu implements the CPU numeric backend on top of gonum's BLAS
// kernels.
//
// The engine's tensors are column-major, while gonum's BLAS is row-major.
// Every entry point here therefore exposes the classic column-major BLAS
// contract and maps it onto gonum through the standard operand-swap
// identity: a column-major product C = op(A)op(B) is the row-major product
// C' = op(B)'op(A)' over the same memory.
package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/gonum"
)

// Backend provides column-major GEMM/GEMV primitives for float32 and
// float64. The zero value is ready to use.
type Backend struct {
	impl gonum.Implementation
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "cpu/gonum"
}

// Gemm32 computes C = alpha*op(A)*op(B) + beta*C for column-major float32
// matrices, where op(A) is m x k, op(B) is k x n and C is m x n.
func (b *Backend) Gemm32(tA, tB blas.Transpose, m, n, k int, alpha float32, a []float32, lda int, bm []float32, ldb int, beta float32, c []float32, ldc int) error {
	if err := checkGemm(tA, tB, m, n, k, len(a), lda, len(bm), ldb, len(c), ldc); err != nil {
		return err
	}
	if m == 0 || n == 0 {
		return nil
	}
	b.impl.Sgemm(tB, tA, n, m, k, alpha, bm, ldb, a, lda, beta, c, ldc)
	return nil
}

// Gemm64 is Gemm32 for float64 matrices.
func (b *Backend) Gemm64(tA, tB blas.Transpose, m, n, k int, alpha float64, a []float64, lda int, bm []float64, ldb int, beta float64, c []float64, ldc int) error {
	if err := checkGemm(tA, tB, m, n, k, len(a), lda, len(bm), ldb, len(c), ldc); err != nil {
		return err
	}
	if m == 0 || n == 0 {
		return nil
	}
	b.impl.Dgemm(tB, tA, n, m, k, alpha, bm, ldb, a, lda, beta, c, ldc)
	return nil
}

// Gemv32 computes y = alpha*op(A)*x + beta*y for a column-major float32
// matrix A of size m x n.
func (b *Backend) Gemv32(t blas.Transpose, m, n int, alpha float32, a []float32, lda int, x []float32, incx int, beta float32, y []float32, incy int) error {
	if err := checkGemv(t, m, n, len(a), lda, len(x), incx, len(y), incy); err != nil {
		return err
	}
	if m == 0 || n == 0 {
		return nil
	}
	b.impl.Sgemv(flip(t), n, m, alpha, a, lda, x, incx, beta, y, incy)
	return nil
}

// Gemv64 is Gemv32 for float64.
func (b *Backend) Gemv64(t blas.Transpose, m, n int, alpha float64, a []float64, lda int, x []float64, incx int, beta float64, y []float64, incy int) error {
	if err := checkGemv(t, m, n, len(a), lda, len(x), incx, len(y), incy); err != nil {
		return err
	}
	if m == 0 || n == 0 {
		return nil
	}
	b.impl.Dgemv(flip(t), n, m, alpha, a, lda, x, incx, beta, y, incy)
	return nil
}

// flip exchanges NoTrans and Trans. A column-major matrix is the transpose
// of the same memory read row-major, so GEMV swaps the flag along with the
// dimensions.
func flip(t blas.Transpose) blas.Transpose {
	if t == blas.NoTrans {
		return blas.Trans
	}
	return blas.NoTrans
}
