package conv

import (
	"gonum.org/v1/gonum/blas"

	"github.com/voxconv-ml/voxconv/internal/tensor"
)

// Forward computes a grouped 3-D convolution over a batch of volumes.
//
// Shapes (all column-major): data (H,W,T,C,N), filters (kH,kW,kT,fC,fN)
// with fC dividing C, optional biases of fN elements, and output
// preallocated to the shape OutputShape returns. The input channels and
// filters are partitioned into C/fC contiguous groups convolved
// independently.
//
// Blend factors: the new contribution is scaled by dataMult and added to
// the pre-existing output contents scaled by outputMult, i.e.
//
//	output = dataMult * conv(data, filters) + outputMult * output
//
// with the bias, when present, added on top.
//
// On failure the output is indeterminate: only slices of the failing
// image may have been written, and nothing is rolled back.
func Forward(ctx *Context, output *tensor.RawTensor, outputMult float64, data *tensor.RawTensor, dataMult float64, filters, biases *tensor.RawTensor, p Params) error {
	const op = "conv3d.Forward"
	if ctx == nil || ctx.backend == nil {
		return validationf(op, "nil context or backend")
	}
	if output == nil || data == nil || filters == nil {
		return validationf(op, "output, data and filters are required")
	}
	if data.DType() == tensor.Float16 {
		return forwardFloat16(ctx, output, outputMult, data, dataMult, filters, biases, p)
	}
	if output.DType() != data.DType() || filters.DType() != data.DType() {
		return validationf(op, "dtype mismatch: data %s, filters %s, output %s",
			data.DType(), filters.DType(), output.DType())
	}
	if biases != nil && biases.DType() != data.DType() {
		return validationf(op, "dtype mismatch: data %s, biases %s", data.DType(), biases.DType())
	}

	g, err := resolveGeometry(op, data.Shape(), filters.Shape(), output.Shape(), p)
	if err != nil {
		return err
	}
	if biases != nil && biases.NumElements() != g.fn {
		return validationf(op, "biases have %d elements, want %d", biases.NumElements(), g.fn)
	}

	switch data.DType() {
	case tensor.Float32:
		var bias []float32
		if biases != nil {
			bias = biases.AsFloat32()
		}
		return forwardT(ctx, g, p, output.AsFloat32(), float32(outputMult), data.AsFloat32(), float32(dataMult), filters.AsFloat32(), bias)
	case tensor.Float64:
		var bias []float64
		if biases != nil {
			bias = biases.AsFloat64()
		}
		return forwardT(ctx, g, p, output.AsFloat64(), outputMult, data.AsFloat64(), dataMult, filters.AsFloat64(), bias)
	default:
		return validationf(op, "unsupported dtype %s", data.DType())
	}
}

func forwardT[T tensor.DType](ctx *Context, g geometry, p Params, out []T, outputMult T, data []T, dataMult T, filters []T, bias []T) error {
	const op = "conv3d.Forward"

	temp, err := workspaceSlice[T](ctx, g.outputPixels*g.filtersVolume*g.numGroups)
	if err != nil {
		return err
	}
	var ones []T
	if bias != nil {
		ones, err = allOnesSlice[T](ctx, g.outputPixels)
		if err != nil {
			return err
		}
	}

	bk := ctx.backend
	for image := 0; image < g.batch; image++ {
		src := data[image*g.inVolume : (image+1)*g.inVolume]
		dst := out[image*g.outVolume : (image+1)*g.outVolume]

		vol2row(temp, src, g, p)

		// The groups address disjoint column ranges of the shared patch
		// matrix and disjoint filter and output slices.
		for grp := 0; grp < g.numGroups; grp++ {
			filterOff := g.filtersVolume * g.filtersPerGroup * grp
			tempOff := g.outputPixels * g.filtersVolume * grp
			outOff := g.outputPixels * g.filtersPerGroup * grp
			if err := gemm(bk, blas.NoTrans, blas.NoTrans,
				g.outputPixels, g.filtersPerGroup, g.filtersVolume,
				dataMult, temp[tempOff:], g.outputPixels,
				filters[filterOff:], g.filtersVolume,
				outputMult, dst[outOff:], g.outputPixels); err != nil {
				return opError(op+": gemm", ErrBackend, err)
			}
		}

		if bias != nil {
			// Broadcast-add the bias row through the all-ones column:
			// dst += ones * bias.
			if err := gemm(bk, blas.NoTrans, blas.NoTrans,
				g.outputPixels, len(bias), 1,
				1, ones, g.outputPixels,
				bias, 1,
				1, dst, g.outputPixels); err != nil {
				return opError(op+": bias gemm", ErrBackend, err)
			}
		}
	}
	return nil
}
