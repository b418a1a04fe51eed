package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/tensor"
)

func newXORSet(t *testing.T) *Dataset[*cpu.CPUBackend] {
	t.Helper()
	d, err := New(cpu.New(),
		[][]float32{
			{0, 0, 0, 1, 1, 1, 1, 0},
			{0, 0, 0, 1, 1, 1, 1, 0},
		},
		[][]float32{
			{0, 0, 1, 0},
			{0, 0, 1, 0},
		},
		tensor.Shape{4, 2},
		tensor.Shape{4, 1},
	)
	require.NoError(t, err)
	return d
}

func TestDataset_Batch(t *testing.T) {
	d := newXORSet(t)
	assert.Equal(t, 2, d.NumBatches())

	input, target, err := d.Batch(0)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 2}, input.Shape())
	assert.Equal(t, tensor.Shape{4, 1}, target.Shape())
	assert.Equal(t, float32(1), input.At(2, 0))
	assert.Equal(t, float32(1), target.At(2, 0))
}

func TestDataset_BatchOutOfRange(t *testing.T) {
	d := newXORSet(t)

	for _, i := range []int{-1, 2, 100} {
		_, _, err := d.Batch(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", i)
	}
}

func TestDataset_LengthMismatch(t *testing.T) {
	_, err := New(cpu.New(),
		[][]float32{{1, 2}},
		[][]float32{},
		tensor.Shape{1, 2},
		tensor.Shape{1, 1},
	)
	assert.Error(t, err)
}

func TestDataset_ShapeMismatch(t *testing.T) {
	_, err := New(cpu.New(),
		[][]float32{{1, 2, 3}}, // 3 values for a 1x2 shape
		[][]float32{{1}},
		tensor.Shape{1, 2},
		tensor.Shape{1, 1},
	)
	assert.Error(t, err)
}
