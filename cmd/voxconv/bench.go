package main

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/voxconv-ml/voxconv/backend/cpu"
	"github.com/voxconv-ml/voxconv/conv"
	"github.com/voxconv-ml/voxconv/tensor"
)

func benchCmd() *cli.Command {
	var (
		height, width, depth int
		channels, batch      int
		kernel, filters      int
		groups               int
		stride, pad          int
		iters                int
		workers              int
		dtypeName            string
		withBackward         bool
	)

	return &cli.Command{
		Name:  "bench",
		Usage: "Time forward (and optionally backward) convolution passes",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "height", Usage: "input height", Value: 32, Destination: &height},
			&cli.IntFlag{Name: "width", Usage: "input width", Value: 32, Destination: &width},
			&cli.IntFlag{Name: "depth", Usage: "input time extent", Value: 8, Destination: &depth},
			&cli.IntFlag{Name: "channels", Usage: "input channels", Value: 16, Destination: &channels},
			&cli.IntFlag{Name: "batch", Usage: "batch size", Value: 4, Destination: &batch},
			&cli.IntFlag{Name: "kernel", Usage: "cubic kernel extent", Value: 3, Destination: &kernel},
			&cli.IntFlag{Name: "filters", Usage: "total output filters", Value: 32, Destination: &filters},
			&cli.IntFlag{Name: "groups", Usage: "filter groups", Value: 1, Destination: &groups},
			&cli.IntFlag{Name: "stride", Usage: "stride on every axis", Value: 1, Destination: &stride},
			&cli.IntFlag{Name: "pad", Usage: "padding on every boundary", Value: 1, Destination: &pad},
			&cli.IntFlag{Name: "iters", Usage: "timed iterations", Value: 10, Destination: &iters},
			&cli.IntFlag{Name: "workers", Usage: "parallel workers for forward (1 = sequential)", Value: 1, Destination: &workers},
			&cli.StringFlag{Name: "dtype", Usage: "float32, float64 or float16", Value: "float32", Destination: &dtypeName},
			&cli.BoolFlag{Name: "backward", Usage: "also time the backward pass", Destination: &withBackward},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dtype, err := parseDType(dtypeName)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if groups < 1 || channels%groups != 0 || filters%groups != 0 {
				return cli.Exit("error: groups must divide both channels and filters", 1)
			}

			params := conv.Params{
				StrideY: stride, StrideX: stride, StrideT: stride,
				PadTop: pad, PadBottom: pad, PadLeft: pad, PadRight: pad, PadFront: pad, PadBack: pad,
			}

			rng := rand.New(rand.NewSource(42))
			data := randTensor(rng, tensor.Shape{height, width, depth, channels, batch}, dtype)
			weights := randTensor(rng, tensor.Shape{kernel, kernel, kernel, channels / groups, filters}, dtype)
			biases := randTensor(rng, tensor.Shape{filters}, dtype)

			outShape, err := conv.OutputShape(data.Shape(), weights.Shape(), params)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			output, err := tensor.NewRaw(outShape, dtype, tensor.CPU)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			backend := cpu.New()
			cctx := conv.NewContext(backend)

			fmt.Println("=== voxconv bench ===")
			fmt.Printf("Input:    %v %s\n", data.Shape(), dtype)
			fmt.Printf("Filters:  %v, %d group(s)\n", weights.Shape(), groups)
			fmt.Printf("Output:   %v\n", outShape)
			fmt.Printf("Stride:   %d  Pad: %d\n", stride, pad)
			fmt.Printf("CPUs:     %d (workers: %d)\n", runtime.NumCPU(), workers)
			fmt.Println()

			// Multiply-add count of the dense equivalent, for a flop rate.
			outPixels := outShape[0] * outShape[1] * outShape[2]
			macs := float64(batch) * float64(outPixels) * float64(filters) *
				float64(kernel*kernel*kernel) * float64(channels/groups)

			run := func(name string, f func() error) error {
				// One untimed warmup sizes the workspace caches.
				if err := f(); err != nil {
					return err
				}
				start := time.Now()
				for i := 0; i < iters; i++ {
					if err := f(); err != nil {
						return err
					}
				}
				elapsed := time.Since(start) / time.Duration(iters)
				fmt.Printf("%-10s %12v/iter  %8.2f GFLOP/s\n",
					name, elapsed.Round(time.Microsecond), 2*macs/elapsed.Seconds()/1e9)
				return nil
			}

			forward := func() error {
				if workers > 1 {
					return conv.ForwardParallel(backend, workers, output, 0, data, 1, weights, biases, params)
				}
				return conv.Forward(cctx, output, 0, data, 1, weights, biases, params)
			}
			if err := run("forward", forward); err != nil {
				return cli.Exit(fmt.Sprintf("error: forward: %v", err), 1)
			}

			if withBackward {
				derData, _ := tensor.NewRaw(data.Shape(), dtype, tensor.CPU)
				derFilters, _ := tensor.NewRaw(weights.Shape(), dtype, tensor.CPU)
				derBiases, _ := tensor.NewRaw(biases.Shape(), dtype, tensor.CPU)
				derOutput := randTensor(rng, outShape, dtype)
				backward := func() error {
					return conv.Backward(cctx, derData, derFilters, derBiases, data, weights, derOutput, params)
				}
				if err := run("backward", backward); err != nil {
					return cli.Exit(fmt.Sprintf("error: backward: %v", err), 1)
				}
			}
			return nil
		},
	}
}

func parseDType(name string) (tensor.DataType, error) {
	switch name {
	case "float32":
		return tensor.Float32, nil
	case "float64":
		return tensor.Float64, nil
	case "float16":
		return tensor.Float16, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", name)
	}
}

// randTensor fills a tensor with uniform values in [-1, 1).
func randTensor(rng *rand.Rand, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	values := make([]float32, shape.NumElements())
	for i := range values {
		values[i] = rng.Float32()*2 - 1
	}
	t, err := tensor.FromFloat32(shape, values, tensor.CPU)
	if err != nil {
		panic(err)
	}
	switch dtype {
	case tensor.Float32:
		return t
	case tensor.Float16:
		t16, err := tensor.ConvertToFloat16(t)
		if err != nil {
			panic(err)
		}
		return t16
	case tensor.Float64:
		t64, err := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
		if err != nil {
			panic(err)
		}
		dst := t64.AsFloat64()
		for i, v := range t.AsFloat32() {
			dst[i] = float64(v)
		}
		return t64
	default:
		panic("unsupported dtype")
	}
}
