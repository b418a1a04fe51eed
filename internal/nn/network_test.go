package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/tensor"
)

func newMLP(t *testing.T, backend *cpu.CPUBackend) *Network[*cpu.CPUBackend] {
	t.Helper()
	net, err := NewNetwork[*cpu.CPUBackend](backend,
		NewAffine(2, 3, Xavier(), backend),
		NewThresholdedAffine(3, 1, 0, Xavier(), backend),
	)
	require.NoError(t, err)
	return net
}

func TestNetwork_Empty(t *testing.T) {
	backend := cpu.New()
	_, err := NewNetwork[*cpu.CPUBackend](backend)

	var confErr *ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestNetwork_DuplicateParameters(t *testing.T) {
	backend := cpu.New()
	layer := NewAffine(2, 2, Xavier(), backend)

	_, err := NewNetwork[*cpu.CPUBackend](backend, layer, layer)

	var confErr *ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}

func TestNetwork_ParameterOrder(t *testing.T) {
	backend := cpu.New()
	first := NewAffine(2, 3, Xavier(), backend)
	second := NewThresholdedAffine(3, 1, 1, Xavier(), backend)

	net, err := NewNetwork[*cpu.CPUBackend](backend, first, second)
	require.NoError(t, err)

	params := net.Parameters()
	require.Len(t, params, 4)
	assert.Same(t, first.Weight(), params[0])
	assert.Same(t, first.Bias(), params[1])
	assert.Same(t, second.Parameters()[0], params[2])
	assert.Same(t, second.Parameters()[1], params[3])
}

func TestNetwork_Regularization(t *testing.T) {
	backend := cpu.New()
	net, err := NewNetwork[*cpu.CPUBackend](backend,
		NewAffine(2, 2, Constant(-2), backend),
	)
	require.NoError(t, err)

	// Four weights of -2: L1 = 8, L2 = 16. Biases don't count.
	assert.InDelta(t, 8.0, net.L1(), 1e-6)
	assert.InDelta(t, 16.0, net.L2(), 1e-6)
}

func TestNetwork_ErrorsIsMeanAbsolute(t *testing.T) {
	backend := cpu.New()
	net := newMLP(t, backend)

	pred, err := tensor.FromSlice([]float32{1, -2, 3, 0}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	target, err := tensor.FromSlice([]float32{0, 0, 0, 0}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	errs, err := net.Errors(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, errs, 1e-6)
}

func TestNetwork_ErrorsShapeMismatch(t *testing.T) {
	backend := cpu.New()
	net := newMLP(t, backend)

	// (2,1) versus (2,): same element count, different rank, must fail.
	pred, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 1}, backend)
	require.NoError(t, err)
	target, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	_, err = net.Errors(pred, target)
	require.Error(t, err)

	var shapeErr *ShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, tensor.Shape{2, 1}, shapeErr.Predicted)
	assert.Equal(t, tensor.Shape{2}, shapeErr.Target)
}

func TestNetwork_CostZeroOnPerfectPrediction(t *testing.T) {
	backend := cpu.New()
	net := newMLP(t, backend)

	pred, err := tensor.FromSlice([]float32{0.5, -1.5, 2}, tensor.Shape{3, 1}, backend)
	require.NoError(t, err)

	cost, err := net.Cost(pred, pred.Clone(), 0, 0)
	require.NoError(t, err)
	assert.Zero(t, cost)
}

func TestNetwork_CostAddsPenalties(t *testing.T) {
	backend := cpu.New()
	net, err := NewNetwork[*cpu.CPUBackend](backend,
		NewAffine(2, 2, Constant(1), backend),
	)
	require.NoError(t, err)

	pred := tensor.Zeros[float32](tensor.Shape{1, 2}, backend)
	target := tensor.Zeros[float32](tensor.Shape{1, 2}, backend)

	// L1 = 4, L2 = 4; errors = 0.
	cost, err := net.Cost(pred, target, 0.5, 0.25)
	require.NoError(t, err)
	assert.InDelta(t, 0.5*4+0.25*4, cost, 1e-6)
}

// costAt evaluates the full forward cost for the current parameter
// values, used by the finite-difference gradient check.
func costAt(t *testing.T, net *Network[*cpu.CPUBackend], input, target *tensor.Tensor[float32, *cpu.CPUBackend], l1w, l2w float64) float64 {
	t.Helper()
	pred := net.Forward(input)
	cost, err := net.Cost(pred, target, l1w, l2w)
	require.NoError(t, err)
	return cost
}

func TestNetwork_BackwardMatchesNumericGradient(t *testing.T) {
	backend := cpu.New()

	hidden := NewAffine(2, 3, Constant(0), backend)
	out := NewThresholdedAffine(3, 1, 0, Constant(0), backend)
	net, err := NewNetwork[*cpu.CPUBackend](backend, hidden, out)
	require.NoError(t, err)

	// Fixed weights keep every rectifier unit and every residual away
	// from its non-differentiable point, so central differences are valid.
	copy(hidden.Weight().Tensor().Data(), []float32{0.3, -0.2, 0.5, 0.4, 0.1, -0.6})
	copy(hidden.Bias().Tensor().Data(), []float32{0.01, 0.02, 0.03})
	copy(out.Parameters()[0].Tensor().Data(), []float32{0.7, -0.5, 0.25})
	copy(out.Parameters()[1].Tensor().Data(), []float32{0.05})

	input, err := tensor.FromSlice([]float32{0.7, -1.3, 0.2, 0.9}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	target, err := tensor.FromSlice([]float32{1.7, -0.4}, tensor.Shape{2, 1}, backend)
	require.NoError(t, err)

	const l1w, l2w = 0.01, 0.02

	pred := net.Forward(input)
	require.NoError(t, net.Backward(pred, target, l1w, l2w))

	const eps = 1e-3
	for _, p := range net.Parameters() {
		require.NotNil(t, p.Grad(), "parameter %s has no gradient", p.Name())
		data := p.Tensor().Data()
		grads := p.Grad().Data()
		for i := range data {
			orig := data[i]

			data[i] = orig + eps
			plus := costAt(t, net, input, target, l1w, l2w)
			data[i] = orig - eps
			minus := costAt(t, net, input, target, l1w, l2w)
			data[i] = orig

			numeric := (plus - minus) / (2 * eps)
			assert.InDelta(t, numeric, float64(grads[i]), 1e-2,
				"parameter %s element %d", p.Name(), i)
		}
	}
}

func TestNetwork_ConvChainBackward(t *testing.T) {
	backend := cpu.New()

	conv, err := NewConv2d(
		tensor.Shape{2, 1, 3, 3},
		tensor.Shape{1, 1, 8, 8},
		2, Constant(0), backend,
	)
	require.NoError(t, err)

	fc := NewAffine(conv.FanOut(), 1, Constant(0), backend)
	net, err := NewNetwork[*cpu.CPUBackend](backend,
		conv,
		NewFlatten[*cpu.CPUBackend](),
		fc,
	)
	require.NoError(t, err)

	// Deterministic, smoothly varying weights.
	for i, d := 0, conv.Parameters()[0].Tensor().Data(); i < len(d); i++ {
		d[i] = 0.2 * float32(math.Cos(float64(i)))
	}
	for i, d := 0, fc.Weight().Tensor().Data(); i < len(d); i++ {
		d[i] = 0.1 * float32(math.Sin(float64(i)+0.5))
	}

	input := tensor.Zeros[float32](tensor.Shape{1, 1, 8, 8}, backend)
	for i := range input.Data() {
		input.Data()[i] = float32(math.Sin(float64(i)))
	}
	target, err := tensor.FromSlice([]float32{3}, tensor.Shape{1, 1}, backend)
	require.NoError(t, err)

	pred := net.Forward(input)
	require.Equal(t, tensor.Shape{1, 1}, pred.Shape())
	require.NoError(t, net.Backward(pred, target, 0, 0))

	const eps = 1e-2
	// Spot-check the convolution weights against finite differences.
	p := conv.Parameters()[0]
	data := p.Tensor().Data()
	grads := p.Grad().Data()
	for i := 0; i < 6; i++ {
		orig := data[i]

		data[i] = orig + eps
		plus := costAt(t, net, input, target, 0, 0)
		data[i] = orig - eps
		minus := costAt(t, net, input, target, 0, 0)
		data[i] = orig

		numeric := (plus - minus) / (2 * eps)
		assert.InDelta(t, numeric, float64(grads[i]), 5e-2)
	}
}
