package nn

import (
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Network chains an ordered sequence of layers: layer i's output feeds
// layer i+1's input. It owns no parameters itself; Parameters is the
// order-preserving concatenation of the layers' parameters.
type Network[B tensor.Backend] struct {
	layers  []Layer[B]
	backend B
}

// NewNetwork creates a network from an ordered layer chain.
// It returns a ConfigurationError when the chain is empty or a parameter
// tensor is aliased across layers.
func NewNetwork[B tensor.Backend](backend B, layers ...Layer[B]) (*Network[B], error) {
	if len(layers) == 0 {
		return nil, &ConfigurationError{Reason: "network needs at least one layer"}
	}

	seen := make(map[*tensor.RawTensor]bool)
	for _, layer := range layers {
		for _, p := range layer.Parameters() {
			if seen[p.Tensor().Raw()] {
				return nil, &ConfigurationError{Reason: "parameter " + p.Name() + " is shared between layers"}
			}
			seen[p.Tensor().Raw()] = true
		}
	}

	return &Network[B]{layers: layers, backend: backend}, nil
}

// Forward runs the input through the layer chain.
func (n *Network[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, layer := range n.layers {
		output = layer.Forward(output)
	}
	return output
}

// Parameters returns the concatenation of all layers' parameters,
// in chain order.
func (n *Network[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, layer := range n.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Layers returns the layer chain.
func (n *Network[B]) Layers() []Layer[B] {
	return n.layers
}

// L1 returns the sum of |w| over all weight parameters. Biases are
// excluded from regularization.
func (n *Network[B]) L1() float64 {
	var sum float64
	for _, p := range n.weightParams() {
		sum += n.backend.Sum(n.backend.Abs(p.Tensor().Raw()))
	}
	return sum
}

// L2 returns the sum of w² over all weight parameters.
func (n *Network[B]) L2() float64 {
	var sum float64
	for _, p := range n.weightParams() {
		w := p.Tensor().Raw()
		sum += n.backend.Sum(n.backend.Mul(w, w))
	}
	return sum
}

// Errors returns the mean absolute error between predicted and target,
// reduced over all elements to a scalar. It returns a ShapeMismatchError
// when the shapes differ in rank or any dimension.
func (n *Network[B]) Errors(predicted, target *tensor.Tensor[float32, B]) (float64, error) {
	if !predicted.Shape().Equal(target.Shape()) {
		return 0, &ShapeMismatchError{
			Predicted: predicted.Shape().Clone(),
			Target:    target.Shape().Clone(),
		}
	}

	diff := n.backend.Sub(predicted.Raw(), target.Raw())
	return n.backend.Mean(n.backend.Abs(diff)), nil
}

// Cost returns Errors plus the weighted regularization penalties:
//
//	cost = errors(predicted, target) + l1Weight*L1 + l2Weight*L2
func (n *Network[B]) Cost(predicted, target *tensor.Tensor[float32, B], l1Weight, l2Weight float64) (float64, error) {
	errs, err := n.Errors(predicted, target)
	if err != nil {
		return 0, err
	}
	cost := errs
	if l1Weight != 0 {
		cost += l1Weight * n.L1()
	}
	if l2Weight != 0 {
		cost += l2Weight * n.L2()
	}
	return cost, nil
}

// Backward computes the gradient of Cost with respect to every parameter
// and stores it on the parameters. Predicted must come from the most
// recent Forward call so the layers' cached activations line up.
func (n *Network[B]) Backward(predicted, target *tensor.Tensor[float32, B], l1Weight, l2Weight float64) error {
	if !predicted.Shape().Equal(target.Shape()) {
		return &ShapeMismatchError{
			Predicted: predicted.Shape().Clone(),
			Target:    target.Shape().Clone(),
		}
	}

	n.ZeroGrad()

	// d mean|p - t| / dp = sign(p - t) / numElements
	diff := n.backend.Sub(predicted.Raw(), target.Raw())
	grad := n.backend.Scale(n.backend.Sign(diff), 1.0/float64(diff.NumElements()))

	upstream := tensor.New[float32, B](grad, n.backend)
	for i := len(n.layers) - 1; i >= 0; i-- {
		upstream = n.layers[i].Backward(upstream)
	}

	// Regularization gradients apply to weights only:
	// d(l1*Σ|w| + l2*Σw²)/dw = l1*sign(w) + 2*l2*w
	for _, p := range n.weightParams() {
		w := p.Tensor().Raw()
		if l1Weight != 0 {
			reg := n.backend.Scale(n.backend.Sign(w), l1Weight)
			p.AccumulateGrad(tensor.New[float32, B](reg, n.backend))
		}
		if l2Weight != 0 {
			reg := n.backend.Scale(w, 2*l2Weight)
			p.AccumulateGrad(tensor.New[float32, B](reg, n.backend))
		}
	}

	return nil
}

// ZeroGrad clears the gradients of every parameter.
func (n *Network[B]) ZeroGrad() {
	for _, p := range n.Parameters() {
		p.ZeroGrad()
	}
}

func (n *Network[B]) weightParams() []*Parameter[B] {
	var weights []*Parameter[B]
	for _, p := range n.Parameters() {
		if p.Kind() == Weight {
			weights = append(weights, p)
		}
	}
	return weights
}
