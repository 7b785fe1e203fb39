package conv

import (
	"gonum.org/v1/gonum/blas"

	"github.com/voxconv-ml/voxconv/internal/tensor"
)

// Generic shims dispatching to the per-type backend entry points. The
// engine core is written once over T and routed here.

func gemm[T tensor.DType](bk Backend, tA, tB blas.Transpose, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int) error {
	switch av := any(a).(type) {
	case []float32:
		return bk.Gemm32(tA, tB, m, n, k, float32(alpha), av, lda, any(b).([]float32), ldb, float32(beta), any(c).([]float32), ldc)
	case []float64:
		return bk.Gemm64(tA, tB, m, n, k, float64(alpha), av, lda, any(b).([]float64), ldb, float64(beta), any(c).([]float64), ldc)
	default:
		panic("unsupported element type")
	}
}

func gemv[T tensor.DType](bk Backend, t blas.Transpose, m, n int, alpha T, a []T, lda int, x []T, incx int, beta T, y []T, incy int) error {
	switch av := any(a).(type) {
	case []float32:
		return bk.Gemv32(t, m, n, float32(alpha), av, lda, any(x).([]float32), incx, float32(beta), any(y).([]float32), incy)
	case []float64:
		return bk.Gemv64(t, m, n, float64(alpha), av, lda, any(x).([]float64), incx, float64(beta), any(y).([]float64), incy)
	default:
		panic("unsupported element type")
	}
}
