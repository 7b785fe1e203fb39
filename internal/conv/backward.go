package conv

import (
	"gonum.org/v1/gonum/blas"

	"github.com/voxconv-ml/voxconv/internal/tensor"
)

// Backward computes the gradients of a grouped 3-D convolution. Each of
// the three gradients is independently optional: pass a nil destination
// to skip it. All are driven by derOutput, which is required.
//
//   - derBiases: sums derOutput over all output positions per filter.
//     Requires nothing else.
//   - derData: requires filters. Multiplies derOutput by the transposed
//     filters per group, then folds the result back into volume
//     coordinates.
//   - derFilters: requires data. Unfolds each input image and multiplies
//     the transposed patch matrix by derOutput per group.
//
// Accumulation contract: destinations need NOT be pre-zeroed. The first
// image of the batch overwrites them (beta=0) and subsequent images
// accumulate (beta=1), so the result is the sum over the batch. No
// normalization by batch size is applied. Batch iteration is strictly
// sequential from image 0; that ordering is what makes the
// overwrite-then-accumulate scheme correct.
//
// On failure the gradients already touched are indeterminate.
func Backward(ctx *Context, derData, derFilters, derBiases *tensor.RawTensor, data, filters, derOutput *tensor.RawTensor, p Params) error {
	const op = "conv3d.Backward"
	if ctx == nil || ctx.backend == nil {
		return validationf(op, "nil context or backend")
	}
	if derOutput == nil {
		return validationf(op, "derOutput is required")
	}
	if derData == nil && derFilters == nil && derBiases == nil {
		return nil
	}
	if derData != nil && filters == nil {
		return validationf(op, "derData requested but filters not supplied")
	}
	if derFilters != nil && data == nil {
		return validationf(op, "derFilters requested but data not supplied")
	}

	if derOutput.DType() == tensor.Float16 {
		return backwardFloat16(ctx, derData, derFilters, derBiases, data, filters, derOutput, p)
	}
	dtype := derOutput.DType()
	if dtype != tensor.Float32 && dtype != tensor.Float64 {
		return validationf(op, "unsupported dtype %s", dtype)
	}
	for _, t := range []*tensor.RawTensor{derData, derFilters, derBiases, data, filters} {
		if t != nil && t.DType() != dtype {
			return validationf(op, "dtype mismatch: derOutput %s, argument %s", dtype, t.DType())
		}
	}

	// Derive geometry from whichever tensors are present, the way the
	// gradients below consume them.
	var (
		g   geometry
		err error
	)
	switch {
	case derData != nil:
		g, err = resolveGeometry(op, derData.Shape(), filters.Shape(), derOutput.Shape(), p)
	case derFilters != nil:
		g, err = resolveGeometry(op, data.Shape(), derFilters.Shape(), derOutput.Shape(), p)
	default: // bias gradient only
		g, err = biasOnlyGeometry(op, derOutput.Shape())
	}
	if err != nil {
		return err
	}
	if derData != nil && data != nil && !data.Shape().Equal(derData.Shape()) {
		return validationf(op, "data shape %v does not match derData shape %v", data.Shape(), derData.Shape())
	}
	if derFilters != nil && filters != nil && !filters.Shape().Equal(derFilters.Shape()) {
		return validationf(op, "filters shape %v does not match derFilters shape %v", filters.Shape(), derFilters.Shape())
	}
	if derBiases != nil && derBiases.NumElements() != g.fn {
		return validationf(op, "derBiases have %d elements, want %d", derBiases.NumElements(), g.fn)
	}

	switch dtype {
	case tensor.Float32:
		return backwardT(ctx, g, p,
			asOrNil32(derData), asOrNil32(derFilters), asOrNil32(derBiases),
			asOrNil32(data), asOrNil32(filters), derOutput.AsFloat32())
	default:
		return backwardT(ctx, g, p,
			asOrNil64(derData), asOrNil64(derFilters), asOrNil64(derBiases),
			asOrNil64(data), asOrNil64(filters), derOutput.AsFloat64())
	}
}

// biasOnlyGeometry fills in the few fields the bias gradient needs when
// neither derData nor derFilters is requested.
func biasOnlyGeometry(op string, derOut tensor.Shape) (geometry, error) {
	var g geometry
	if len(derOut) != 5 {
		return g, validationf(op, "derOutput must be rank 5, got rank %d", len(derOut))
	}
	if err := derOut.Validate(); err != nil {
		return g, validationf(op, "derOutput shape: %v", err)
	}
	g.oh, g.ow, g.ot, g.fn, g.batch = derOut[0], derOut[1], derOut[2], derOut[3], derOut[4]
	g.outputPixels = g.oh * g.ow * g.ot
	g.outVolume = g.outputPixels * g.fn
	return g, nil
}

func backwardT[T tensor.DType](ctx *Context, g geometry, p Params, derData, derFilters, derBias, data, filters, derOut []T) error {
	const op = "conv3d.Backward"

	var (
		ones []T
		temp []T
		err  error
	)
	if derBias != nil {
		ones, err = allOnesSlice[T](ctx, g.outputPixels)
		if err != nil {
			return err
		}
	}
	if derData != nil || derFilters != nil {
		temp, err = workspaceSlice[T](ctx, g.outputPixels*g.filtersVolume*g.numGroups)
		if err != nil {
			return err
		}
	}

	bk := ctx.backend
	for image := 0; image < g.batch; image++ {
		do := derOut[image*g.outVolume : (image+1)*g.outVolume]

		// First image overwrites the accumulators, the rest add.
		var beta T
		if image > 0 {
			beta = 1
		}

		if derBias != nil {
			if err := gemv(bk, blas.Trans,
				g.outputPixels, g.fn,
				1, do, g.outputPixels,
				ones, 1,
				beta, derBias, 1); err != nil {
				return opError(op+": bias gemv", ErrBackend, err)
			}
		}

		if derData != nil {
			for grp := 0; grp < g.numGroups; grp++ {
				filterOff := g.filtersVolume * g.filtersPerGroup * grp
				tempOff := g.outputPixels * g.filtersVolume * grp
				outOff := g.outputPixels * g.filtersPerGroup * grp
				if err := gemm(bk, blas.NoTrans, blas.Trans,
					g.outputPixels, g.filtersVolume, g.filtersPerGroup,
					1, do[outOff:], g.outputPixels,
					filters[filterOff:], g.filtersVolume,
					0, temp[tempOff:], g.outputPixels); err != nil {
					return opError(op+": data gemm", ErrBackend, err)
				}
			}
			dst := derData[image*g.inVolume : (image+1)*g.inVolume]
			row2vol(dst, temp, g, p)
		}

		if derFilters != nil {
			src := data[image*g.inVolume : (image+1)*g.inVolume]
			vol2row(temp, src, g, p)
			for grp := 0; grp < g.numGroups; grp++ {
				filterOff := g.filtersVolume * g.filtersPerGroup * grp
				tempOff := g.outputPixels * g.filtersVolume * grp
				outOff := g.outputPixels * g.filtersPerGroup * grp
				if err := gemm(bk, blas.Trans, blas.NoTrans,
					g.filtersVolume, g.filtersPerGroup, g.outputPixels,
					1, temp[tempOff:], g.outputPixels,
					do[outOff:], g.outputPixels,
					beta, derFilters[filterOff:], g.filtersVolume); err != nil {
					return opError(op+": filter gemm", ErrBackend, err)
				}
			}
		}
	}
	return nil
}

func asOrNil32(t *tensor.RawTensor) []float32 {
	if t == nil {
		return nil
	}
	return t.AsFloat32()
}

func asOrNil64(t *tensor.RawTensor) []float64 {
	if t == nil {
		return nil
	}
	return t.AsFloat64()
}
