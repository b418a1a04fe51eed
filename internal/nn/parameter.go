package nn

import (
	"github.com/chalk-ml/chalk/internal/tensor"
)

// ParamKind distinguishes weights from biases. Regularization penalties
// apply to weights only.
type ParamKind int

// Parameter kinds.
const (
	Weight ParamKind = iota
	Bias
)

// Parameter is a trainable tensor owned by exactly one layer. Its values
// are mutated in place only by the optimizer's update step; the gradient
// is written by the owning layer's backward pass.
type Parameter[B tensor.Backend] struct {
	name   string
	kind   ParamKind
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a new trainable parameter.
// The tensor should be initialized before creating the Parameter.
func NewParameter[B tensor.Backend](name string, kind ParamKind, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		kind:   kind,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Kind reports whether the parameter is a weight or a bias.
func (p *Parameter[B]) Kind() ParamKind {
	return p.kind
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before the first backward pass.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad replaces the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// AccumulateGrad adds g into the stored gradient, or stores it if none
// has been set this iteration.
func (p *Parameter[B]) AccumulateGrad(g *tensor.Tensor[float32, B]) {
	if p.grad == nil {
		p.grad = g
		return
	}
	p.grad = p.grad.Add(g)
}

// ZeroGrad clears the gradient so the next iteration starts fresh.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
