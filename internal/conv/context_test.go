package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxconv-ml/voxconv/internal/backend/cpu"
	"github.com/voxconv-ml/voxconv/internal/tensor"
)

func TestContext_WorkspaceGrowsAndReuses(t *testing.T) {
	ctx := NewContext(cpu.New())

	ws, err := ctx.Workspace(100)
	require.NoError(t, err)
	assert.Len(t, ws, 100)

	// A smaller request reuses the same backing array.
	ws2, err := ctx.Workspace(50)
	require.NoError(t, err)
	assert.Len(t, ws2, 50)
	assert.Same(t, &ws[0], &ws2[0])

	ws3, err := ctx.Workspace(200)
	require.NoError(t, err)
	assert.Len(t, ws3, 200)

	ws4, err := ctx.Workspace(0)
	require.NoError(t, err)
	assert.Empty(t, ws4)
}

func TestContext_WorkspaceNegative(t *testing.T) {
	ctx := NewContext(cpu.New())
	_, err := ctx.Workspace(-1)
	assert.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, ctx.LastError(), ErrAllocation)
}

func TestContext_AllOnes(t *testing.T) {
	ctx := NewContext(cpu.New())

	buf, err := ctx.AllOnes(tensor.Float64, 4)
	require.NoError(t, err)
	ones, err := allOnesSlice[float64](ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1}, ones)
	assert.Len(t, buf, 4*8)

	// Smaller request with the same dtype serves from cache.
	buf2, err := ctx.AllOnes(tensor.Float64, 2)
	require.NoError(t, err)
	assert.Same(t, &buf[0], &buf2[0])

	// Dtype switch refills.
	ones32, err := allOnesSlice[float32](ctx, 8)
	require.NoError(t, err)
	for _, v := range ones32 {
		assert.Equal(t, float32(1), v)
	}

	_, err = ctx.AllOnes(tensor.Float16, 4)
	assert.ErrorIs(t, err, ErrAllocation)
	_, err = ctx.AllOnes(tensor.Float64, -1)
	assert.ErrorIs(t, err, ErrAllocation)
}

func TestContext_LastErrorInitiallyNil(t *testing.T) {
	ctx := NewContext(cpu.New())
	assert.NoError(t, ctx.LastError())
}
