package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalk-ml/chalk/internal/tensor"
)

func fromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func TestElementwise(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, -2, 3, 0}, tensor.Shape{2, 2})
	b := fromSlice(t, []float32{4, 5, -6, 2}, tensor.Shape{2, 2})

	assert.Equal(t, []float32{5, 3, -3, 2}, backend.Add(a, b).AsFloat32())
	assert.Equal(t, []float32{-3, -7, 9, -2}, backend.Sub(a, b).AsFloat32())
	assert.Equal(t, []float32{4, -10, -18, 0}, backend.Mul(a, b).AsFloat32())
	assert.Equal(t, []float32{2, -4, 6, 0}, backend.Scale(a, 2).AsFloat32())
	assert.Equal(t, []float32{1, 2, 3, 0}, backend.Abs(a).AsFloat32())
	assert.Equal(t, []float32{1, -1, 1, 0}, backend.Sign(a).AsFloat32())
}

func TestElementwise_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2}, tensor.Shape{2})
	b := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})

	assert.Panics(t, func() { backend.Add(a, b) })
}

func TestThreshold(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{-1, 0, 0.5, 1, 2.5}, tensor.Shape{5})

	// max(x - 1, 0)
	out := backend.Threshold(x, 1)
	assert.Equal(t, []float32{0, 0, 0, 0, 1.5}, out.AsFloat32())

	// Threshold 0 behaves like plain ReLU.
	relu := backend.Threshold(x, 0)
	assert.Equal(t, []float32{0, 0, 0.5, 1, 2.5}, relu.AsFloat32())

	mask := backend.ThresholdMask(x, 1)
	assert.Equal(t, []float32{0, 0, 0, 0, 1}, mask.AsFloat32())
}

func TestMatMul(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := fromSlice(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	result := backend.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, result.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, result.AsFloat32())
}

func TestMatMul_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})

	assert.Panics(t, func() { backend.MatMul(a, b) })
}

func TestTranspose(t *testing.T) {
	backend := New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	result := backend.Transpose(a)
	assert.Equal(t, tensor.Shape{3, 2}, result.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, result.AsFloat32())
}

func TestAddBias2D(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	bias := fromSlice(t, []float32{10, 20, 30}, tensor.Shape{3})

	out := backend.AddBias(x, bias)
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())

	// Input is untouched.
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, x.AsFloat32())
}

func TestAddBias4D(t *testing.T) {
	backend := New()
	// [1, 2, 2, 2]: channel 0 all ones, channel 1 all twos.
	x := fromSlice(t, []float32{1, 1, 1, 1, 2, 2, 2, 2}, tensor.Shape{1, 2, 2, 2})
	bias := fromSlice(t, []float32{10, 20}, tensor.Shape{2})

	out := backend.AddBias(x, bias)
	assert.Equal(t, []float32{11, 11, 11, 11, 22, 22, 22, 22}, out.AsFloat32())
}

func TestBiasBackward(t *testing.T) {
	backend := New()

	grad2d := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	out := backend.BiasBackward(grad2d)
	assert.Equal(t, tensor.Shape{3}, out.Shape())
	assert.Equal(t, []float32{5, 7, 9}, out.AsFloat32())

	grad4d := fromSlice(t, []float32{1, 1, 1, 1, 2, 2, 2, 2}, tensor.Shape{1, 2, 2, 2})
	out4 := backend.BiasBackward(grad4d)
	assert.Equal(t, tensor.Shape{2}, out4.Shape())
	assert.Equal(t, []float32{4, 8}, out4.AsFloat32())
}

func TestReductions(t *testing.T) {
	backend := New()
	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	assert.InDelta(t, 10.0, backend.Sum(x), 1e-6)
	assert.InDelta(t, 2.5, backend.Mean(x), 1e-6)
}
