package cpu

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
)

// Argument validation for the column-major GEMM/GEMV contract. The
// underlying gonum kernels panic on bad arguments; the engine wants an
// error it can propagate instead, so everything is checked up front.

func checkTranspose(t blas.Transpose) error {
	if t != blas.NoTrans && t != blas.Trans {
		return errors.Errorf("blas: unsupported transpose flag %c", t)
	}
	return nil
}

// opDims returns (rows, cols) of the stored matrix for a column-major
// operand whose op() result is r x c under the given transpose flag.
func opDims(t blas.Transpose, r, c int) (rows, cols int) {
	if t == blas.NoTrans {
		return r, c
	}
	return c, r
}

// minLen is the minimum slice length backing a column-major rows x cols
// matrix with leading dimension ld. Zero-sized matrices need no backing.
func minLen(ld, rows, cols int) int {
	if rows == 0 || cols == 0 {
		return 0
	}
	return ld*(cols-1) + rows
}

func checkGemm(tA, tB blas.Transpose, m, n, k, lenA, lda, lenB, ldb, lenC, ldc int) error {
	if err := checkTranspose(tA); err != nil {
		return err
	}
	if err := checkTranspose(tB); err != nil {
		return err
	}
	if m < 0 || n < 0 || k < 0 {
		return errors.Errorf("blas: negative gemm dimension m=%d n=%d k=%d", m, n, k)
	}

	rowsA, colsA := opDims(tA, m, k)
	rowsB, colsB := opDims(tB, k, n)

	if lda < max(1, rowsA) {
		return errors.Errorf("blas: gemm leading dimension lda=%d < %d", lda, max(1, rowsA))
	}
	if ldb < max(1, rowsB) {
		return errors.Errorf("blas: gemm leading dimension ldb=%d < %d", ldb, max(1, rowsB))
	}
	if ldc < max(1, m) {
		return errors.Errorf("blas: gemm leading dimension ldc=%d < %d", ldc, max(1, m))
	}

	if lenA < minLen(lda, rowsA, colsA) {
		return errors.Errorf("blas: gemm matrix A too short: len=%d need=%d", lenA, minLen(lda, rowsA, colsA))
	}
	if lenB < minLen(ldb, rowsB, colsB) {
		return errors.Errorf("blas: gemm matrix B too short: len=%d need=%d", lenB, minLen(ldb, rowsB, colsB))
	}
	if lenC < minLen(ldc, m, n) {
		return errors.Errorf("blas: gemm matrix C too short: len=%d need=%d", lenC, minLen(ldc, m, n))
	}
	return nil
}

func checkGemv(t blas.Transpose, m, n, lenA, lda, lenX, incx, lenY, incy int) error {
	if err := checkTranspose(t); err != nil {
		return err
	}
	if m < 0 || n < 0 {
		return errors.Errorf("blas: negative gemv dimension m=%d n=%d", m, n)
	}
	if incx == 0 || incy == 0 {
		return errors.Errorf("blas: zero gemv increment incx=%d incy=%d", incx, incy)
	}
	if lda < max(1, m) {
		return errors.Errorf("blas: gemv leading dimension lda=%d < %d", lda, max(1, m))
	}
	if lenA < minLen(lda, m, n) {
		return errors.Errorf("blas: gemv matrix A too short: len=%d need=%d", lenA, minLen(lda, m, n))
	}

	// op(A) is m x n for NoTrans, n x m for Trans.
	nx, ny := n, m
	if t == blas.Trans {
		nx, ny = m, n
	}
	if nx > 0 && lenX < 1+(nx-1)*abs(incx) {
		return errors.Errorf("blas: gemv vector x too short: len=%d need=%d", lenX, 1+(nx-1)*abs(incx))
	}
	if ny > 0 && lenY < 1+(ny-1)*abs(incy) {
		return errors.Errorf("blas: gemv vector y too short: len=%d need=%d", lenY, 1+(ny-1)*abs(incy))
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
