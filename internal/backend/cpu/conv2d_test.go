package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalk-ml/chalk/internal/tensor"
)

func TestConv2D_KnownValues(t *testing.T) {
	backend := New()

	// 3x3 input with values 1..9, single 2x2 kernel [1 2; 3 4], stride 1.
	input := fromSlice(t, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	kernel := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})

	output := backend.Conv2D(input, kernel, 1)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())

	// [0,0]: 1*1 + 2*2 + 3*4 + 4*5 = 37
	// [0,1]: 1*2 + 2*3 + 3*5 + 4*6 = 47
	// [1,0]: 1*4 + 2*5 + 3*7 + 4*8 = 67
	// [1,1]: 1*5 + 2*6 + 3*8 + 4*9 = 77
	assert.Equal(t, []float32{37, 47, 67, 77}, output.AsFloat32())
}

func TestConv2D_Stride(t *testing.T) {
	backend := New()

	// 4x4 input, 2x2 kernel of ones, stride 2: sums of disjoint 2x2 blocks.
	input := fromSlice(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4})
	kernel := fromSlice(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

	output := backend.Conv2D(input, kernel, 2)
	require.Equal(t, tensor.Shape{1, 1, 2, 2}, output.Shape())
	assert.Equal(t, []float32{14, 22, 46, 54}, output.AsFloat32())
}

func TestConv2D_OutputShape(t *testing.T) {
	backend := New()

	// The 84x84 image, 8x8 filter, stride 4 case: feature maps are 20x20.
	input, err := tensor.NewRaw(tensor.Shape{1, 1, 84, 84}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	kernel, err := tensor.NewRaw(tensor.Shape{16, 1, 8, 8}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	output := backend.Conv2D(input, kernel, 4)
	assert.Equal(t, tensor.Shape{1, 16, 20, 20}, output.Shape())
}

func TestConv2D_ChannelMismatchPanics(t *testing.T) {
	backend := New()
	input, err := tensor.NewRaw(tensor.Shape{1, 2, 4, 4}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	kernel, err := tensor.NewRaw(tensor.Shape{1, 3, 2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.Panics(t, func() { backend.Conv2D(input, kernel, 1) })
}

func TestConv2D_MultiChannel(t *testing.T) {
	backend := New()

	// Two input channels, kernel picks channel sums: each output element is
	// the sum over both channels of the 2x2 patch.
	input := fromSlice(t, []float32{
		// channel 0
		1, 2,
		3, 4,
		// channel 1
		10, 20,
		30, 40,
	}, tensor.Shape{1, 2, 2, 2})
	kernel := fromSlice(t, []float32{1, 1, 1, 1, 1, 1, 1, 1}, tensor.Shape{1, 2, 2, 2})

	output := backend.Conv2D(input, kernel, 1)
	require.Equal(t, tensor.Shape{1, 1, 1, 1}, output.Shape())
	assert.Equal(t, []float32{110}, output.AsFloat32())
}

// numericGradient computes d(sum(conv(input, kernel)))/d(param) with
// central differences, perturbing param element-wise.
func numericGradient(backend *CPUBackend, input, kernel *tensor.RawTensor, param []float32, stride int) []float32 {
	const eps = 1e-2
	grads := make([]float32, len(param))
	for i := range param {
		orig := param[i]

		param[i] = orig + eps
		plus := backend.Sum(backend.Conv2D(input, kernel, stride))

		param[i] = orig - eps
		minus := backend.Sum(backend.Conv2D(input, kernel, stride))

		param[i] = orig
		grads[i] = float32((plus - minus) / (2 * eps))
	}
	return grads
}

func TestConv2D_KernelBackward(t *testing.T) {
	backend := New()

	input := fromSlice(t, []float32{
		0.5, -1, 2, 0,
		1, 0.25, -0.5, 1,
		2, 1, 0, -1,
		0, 0.5, 1, 2,
	}, tensor.Shape{1, 1, 4, 4})
	kernel := fromSlice(t, []float32{0.1, -0.2, 0.3, 0.4}, tensor.Shape{1, 1, 2, 2})

	// Upstream gradient of ones makes the implied scalar loss sum(output).
	gradOut := fromSlice(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

	got := backend.Conv2DKernelBackward(input, kernel, gradOut, 2)
	want := numericGradient(backend, input, kernel, kernel.AsFloat32(), 2)

	require.Equal(t, tensor.Shape{1, 1, 2, 2}, got.Shape())
	for i, w := range want {
		assert.InDelta(t, w, got.AsFloat32()[i], 1e-3)
	}
}

func TestConv2D_InputBackward(t *testing.T) {
	backend := New()

	input := fromSlice(t, []float32{
		0.5, -1, 2,
		1, 0.25, -0.5,
		2, 1, 0,
	}, tensor.Shape{1, 1, 3, 3})
	kernel := fromSlice(t, []float32{0.1, -0.2, 0.3, 0.4}, tensor.Shape{1, 1, 2, 2})
	gradOut := fromSlice(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

	got := backend.Conv2DInputBackward(input, kernel, gradOut, 1)
	want := numericGradient(backend, input, kernel, input.AsFloat32(), 1)

	require.Equal(t, tensor.Shape{1, 1, 3, 3}, got.Shape())
	for i, w := range want {
		assert.InDelta(t, w, got.AsFloat32()[i], 1e-3)
	}
}
