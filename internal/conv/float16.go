package conv

import (
	"github.com/x448/float16"

	"github.com/voxconv-ml/voxconv/internal/tensor"
)

// Float16 tensors are storage-only: the engine widens them to float32,
// runs the float32 kernels, and narrows the results back. This mirrors
// how half-precision inference runtimes pair f16 storage with f32
// compute.

func forwardFloat16(ctx *Context, output *tensor.RawTensor, outputMult float64, data *tensor.RawTensor, dataMult float64, filters, biases *tensor.RawTensor, p Params) error {
	const op = "conv3d.Forward"
	for _, t := range []*tensor.RawTensor{output, filters, biases} {
		if t != nil && t.DType() != tensor.Float16 {
			return validationf(op, "dtype mismatch: data float16, argument %s", t.DType())
		}
	}

	data32, err := widen(op, data)
	if err != nil {
		return err
	}
	filters32, err := widen(op, filters)
	if err != nil {
		return err
	}
	output32, err := widen(op, output) // outputMult may blend the old contents in
	if err != nil {
		return err
	}
	var biases32 *tensor.RawTensor
	if biases != nil {
		if biases32, err = widen(op, biases); err != nil {
			return err
		}
	}

	if err := Forward(ctx, output32, outputMult, data32, dataMult, filters32, biases32, p); err != nil {
		return err
	}
	narrow(output, output32)
	return nil
}

func backwardFloat16(ctx *Context, derData, derFilters, derBiases *tensor.RawTensor, data, filters, derOutput *tensor.RawTensor, p Params) error {
	const op = "conv3d.Backward"
	for _, t := range []*tensor.RawTensor{derData, derFilters, derBiases, data, filters} {
		if t != nil && t.DType() != tensor.Float16 {
			return validationf(op, "dtype mismatch: derOutput float16, argument %s", t.DType())
		}
	}

	derOutput32, err := widen(op, derOutput)
	if err != nil {
		return err
	}
	var data32, filters32 *tensor.RawTensor
	if data != nil {
		if data32, err = widen(op, data); err != nil {
			return err
		}
	}
	if filters != nil {
		if filters32, err = widen(op, filters); err != nil {
			return err
		}
	}

	// Gradient destinations are overwritten by the first image, so fresh
	// float32 tensors of the same shapes stand in for them.
	alloc := func(t *tensor.RawTensor) (*tensor.RawTensor, error) {
		if t == nil {
			return nil, nil
		}
		out, err := tensor.NewRaw(t.Shape(), tensor.Float32, t.Device())
		if err != nil {
			return nil, opError(op+": widen", ErrAllocation, err)
		}
		return out, nil
	}
	derData32, err := alloc(derData)
	if err != nil {
		return err
	}
	derFilters32, err := alloc(derFilters)
	if err != nil {
		return err
	}
	derBiases32, err := alloc(derBiases)
	if err != nil {
		return err
	}

	if err := Backward(ctx, derData32, derFilters32, derBiases32, data32, filters32, derOutput32, p); err != nil {
		return err
	}
	if derData != nil {
		narrow(derData, derData32)
	}
	if derFilters != nil {
		narrow(derFilters, derFilters32)
	}
	if derBiases != nil {
		narrow(derBiases, derBiases32)
	}
	return nil
}

func widen(op string, t *tensor.RawTensor) (*tensor.RawTensor, error) {
	out, err := tensor.ConvertToFloat32(t)
	if err != nil {
		return nil, opError(op+": widen", ErrAllocation, err)
	}
	return out, nil
}

// narrow writes a float32 tensor's values back into a float16 tensor of
// the same element count.
func narrow(dst, src *tensor.RawTensor) {
	d := dst.AsFloat16()
	s := src.AsFloat32()
	for i, v := range s {
		d[i] = float16.Fromfloat32(v)
	}
}
