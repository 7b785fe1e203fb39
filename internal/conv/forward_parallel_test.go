package conv

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxconv-ml/voxconv/internal/backend/cpu"
	"github.com/voxconv-ml/voxconv/internal/tensor"
)

func TestForwardParallel_MatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	dataShape := tensor.Shape{5, 4, 3, 4, 8}
	filterShape := tensor.Shape{3, 2, 2, 2, 4}
	p := Params{StrideY: 2, StrideX: 1, StrideT: 1, PadTop: 1, PadRight: 1, PadBack: 1}

	data := randTensor64(t, rng, dataShape)
	filters := randTensor64(t, rng, filterShape)
	biases := randTensor64(t, rng, tensor.Shape{4})
	outShape, err := OutputShape(dataShape, filterShape, p)
	require.NoError(t, err)

	// Pre-filled outputs exercise the blend in both paths.
	seed := randTensor64(t, rng, outShape)
	seq, err := tensor.NewRaw(outShape, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(seq.AsFloat64(), seed.AsFloat64())
	require.NoError(t, Forward(NewContext(cpu.New()), seq, 0.5, data, 2, filters, biases, p))

	for _, workers := range []int{0, 1, 3, 8, 100} {
		par, err := tensor.NewRaw(outShape, tensor.Float64, tensor.CPU)
		require.NoError(t, err)
		copy(par.AsFloat64(), seed.AsFloat64())
		require.NoError(t, ForwardParallel(cpu.New(), workers, par, 0.5, data, 2, filters, biases, p))

		// Per-image arithmetic is identical, so the match is exact.
		assert.Equal(t, seq.AsFloat64(), par.AsFloat64(), "workers=%d", workers)
	}
}

func TestForwardParallel_Validation(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	data := randTensor64(t, rng, tensor.Shape{4, 4, 4, 2, 2})
	filters := randTensor64(t, rng, tensor.Shape{2, 2, 2, 2, 2})
	out := randTensor64(t, rng, tensor.Shape{3, 3, 3, 2, 2})

	assert.ErrorIs(t, ForwardParallel(nil, 2, out, 0, data, 1, filters, nil, UnitParams()), ErrValidation)
	assert.ErrorIs(t, ForwardParallel(cpu.New(), 2, out, 0, nil, 1, filters, nil, UnitParams()), ErrValidation)

	badOut := randTensor64(t, rng, tensor.Shape{3, 3, 3, 2, 1})
	assert.ErrorIs(t, ForwardParallel(cpu.New(), 2, badOut, 0, data, 1, filters, nil, UnitParams()), ErrValidation)
}
