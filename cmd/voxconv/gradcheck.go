package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/urfave/cli/v3"

	"github.com/voxconv-ml/voxconv/backend/cpu"
	"github.com/voxconv-ml/voxconv/conv"
	"github.com/voxconv-ml/voxconv/tensor"
)

func gradcheckCmd() *cli.Command {
	var (
		seed      int
		step      float64
		tolerance float64
	)

	return &cli.Command{
		Name:  "gradcheck",
		Usage: "Check analytic gradients against central finite differences",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "seed", Usage: "random seed", Value: 1, Destination: &seed},
			&cli.FloatFlag{Name: "step", Usage: "finite-difference step", Value: 1e-4, Destination: &step},
			&cli.FloatFlag{Name: "tolerance", Usage: "max allowed abs error", Value: 1e-5, Destination: &tolerance},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			rng := rand.New(rand.NewSource(int64(seed)))
			params := conv.Params{StrideY: 2, StrideX: 1, StrideT: 1, PadTop: 1, PadRight: 1, PadBack: 1}

			data := randTensor64(rng, tensor.Shape{5, 4, 3, 4, 2})
			filters := randTensor64(rng, tensor.Shape{3, 2, 2, 2, 4})
			biases := randTensor64(rng, tensor.Shape{4})

			worst, err := maxGradError(data, filters, biases, params, step)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			fmt.Printf("max |analytic - numeric| = %.3g (tolerance %.3g)\n", worst, tolerance)
			if worst > tolerance {
				return cli.Exit("gradcheck FAILED", 1)
			}
			fmt.Println("gradcheck OK")
			return nil
		},
	}
}

// maxGradError compares the analytic gradients of sum(output) with
// central finite differences over every input, filter and bias element.
func maxGradError(data, filters, biases *tensor.RawTensor, params conv.Params, step float64) (float64, error) {
	backend := cpu.New()
	cctx := conv.NewContext(backend)

	outShape, err := conv.OutputShape(data.Shape(), filters.Shape(), params)
	if err != nil {
		return 0, err
	}

	// Analytic gradients with derOutput = 1 everywhere, so the scalar
	// being differentiated is the plain sum of the output.
	derOutput, err := tensor.NewRaw(outShape, tensor.Float64, tensor.CPU)
	if err != nil {
		return 0, err
	}
	if err := tensor.Fill(derOutput, 1); err != nil {
		return 0, err
	}
	derData, _ := tensor.NewRaw(data.Shape(), tensor.Float64, tensor.CPU)
	derFilters, _ := tensor.NewRaw(filters.Shape(), tensor.Float64, tensor.CPU)
	derBiases, _ := tensor.NewRaw(biases.Shape(), tensor.Float64, tensor.CPU)
	if err := conv.Backward(cctx, derData, derFilters, derBiases, data, filters, derOutput, params); err != nil {
		return 0, err
	}

	sumOutput := func() (float64, error) {
		output, err := tensor.NewRaw(outShape, tensor.Float64, tensor.CPU)
		if err != nil {
			return 0, err
		}
		if err := conv.Forward(cctx, output, 0, data, 1, filters, biases, params); err != nil {
			return 0, err
		}
		var s float64
		for _, v := range output.AsFloat64() {
			s += v
		}
		return s, nil
	}

	worst := 0.0
	check := func(values []float64, analytic []float64) error {
		for i := range values {
			orig := values[i]
			values[i] = orig + step
			up, err := sumOutput()
			if err != nil {
				return err
			}
			values[i] = orig - step
			down, err := sumOutput()
			if err != nil {
				return err
			}
			values[i] = orig
			numeric := (up - down) / (2 * step)
			worst = math.Max(worst, math.Abs(numeric-analytic[i]))
		}
		return nil
	}

	if err := check(data.AsFloat64(), derData.AsFloat64()); err != nil {
		return 0, err
	}
	if err := check(filters.AsFloat64(), derFilters.AsFloat64()); err != nil {
		return 0, err
	}
	if err := check(biases.AsFloat64(), derBiases.AsFloat64()); err != nil {
		return 0, err
	}
	return worst, nil
}

func randTensor64(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
	values := make([]float64, shape.NumElements())
	for i := range values {
		values[i] = rng.Float64()*2 - 1
	}
	t, err := tensor.FromFloat64(shape, values, tensor.CPU)
	if err != nil {
		panic(err)
	}
	return t
}
