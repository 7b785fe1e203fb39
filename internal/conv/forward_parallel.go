package conv

import (
	"runtime"

	"github.com/voxconv-ml/voxconv/internal/parallel"
	"github.com/voxconv-ml/voxconv/internal/tensor"
)

// ForwardParallel runs Forward over disjoint contiguous slices of the
// batch on several goroutines, producing the same result as a single
// sequential Forward call.
//
// The shared mutable workspace makes a single Context unusable from
// concurrent calls, so every worker here owns a private Context built on
// the given backend. workers <= 0 selects GOMAXPROCS workers; the count
// is clamped to the batch size.
func ForwardParallel(backend Backend, workers int, output *tensor.RawTensor, outputMult float64, data *tensor.RawTensor, dataMult float64, filters, biases *tensor.RawTensor, p Params) error {
	const op = "conv3d.ForwardParallel"
	if backend == nil {
		return validationf(op, "nil backend")
	}
	if output == nil || data == nil || filters == nil {
		return validationf(op, "output, data and filters are required")
	}

	// Geometry depends on shapes only, so one resolution up front covers
	// every per-worker slice.
	g, err := resolveGeometry(op, data.Shape(), filters.Shape(), output.Shape(), p)
	if err != nil {
		return err
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > g.batch {
		workers = g.batch
	}
	if workers <= 1 {
		return Forward(NewContext(backend), output, outputMult, data, dataMult, filters, biases, p)
	}

	chunk := (g.batch + workers - 1) / workers
	errs := make([]error, workers)
	parallel.For(workers, func(wi int) {
		start := wi * chunk
		end := min(start+chunk, g.batch)
		if start >= end {
			return
		}
		count := end - start

		dView, err := data.View(start*g.inVolume, tensor.Shape{g.h, g.w, g.t, g.c, count})
		if err != nil {
			errs[wi] = validationf(op, "data view: %v", err)
			return
		}
		oView, err := output.View(start*g.outVolume, tensor.Shape{g.oh, g.ow, g.ot, g.fn, count})
		if err != nil {
			errs[wi] = validationf(op, "output view: %v", err)
			return
		}

		// Private context per worker; filters and biases are shared
		// read-only.
		errs[wi] = Forward(NewContext(backend), oView, outputMult, dView, dataMult, filters, biases, p)
	}, parallel.Config{Enabled: true, NumWorkers: workers, MinChunkSize: 1})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
