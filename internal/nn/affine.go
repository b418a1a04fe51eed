package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Affine is a fully connected layer computing
//
//	output = input @ W + b
//
// with W of shape [in_features, nodes] and b of shape [nodes].
// Weights are filled by the configured InitStrategy, biases start at zero.
type Affine[B tensor.Backend] struct {
	inFeatures int
	nodes      int
	weight     *Parameter[B]
	bias       *Parameter[B]
	backend    B

	input *tensor.Tensor[float32, B] // cached by Forward for Backward
}

// NewAffine creates a fully connected layer with in_features inputs and
// nodes outputs.
func NewAffine[B tensor.Backend](inFeatures, nodes int, init InitStrategy, backend B) *Affine[B] {
	if inFeatures <= 0 || nodes <= 0 {
		panic(fmt.Sprintf("affine: invalid dimensions in=%d, nodes=%d", inFeatures, nodes))
	}

	weightTensor := tensor.Zeros[float32](tensor.Shape{inFeatures, nodes}, backend)
	init(weightTensor.Data(), inFeatures, nodes)
	weight := NewParameter("affine.weight", Weight, weightTensor)

	biasTensor := tensor.Zeros[float32](tensor.Shape{nodes}, backend)
	bias := NewParameter("affine.bias", Bias, biasTensor)

	return &Affine[B]{
		inFeatures: inFeatures,
		nodes:      nodes,
		weight:     weight,
		bias:       bias,
		backend:    backend,
	}
}

// Forward computes input @ W + b.
//
// Input shape: [batch, in_features]. Output shape: [batch, nodes].
func (a *Affine[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("affine: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != a.inFeatures {
		panic(fmt.Sprintf("affine: expected input with %d features, got %d", a.inFeatures, inputShape[1]))
	}

	a.input = input

	output := input.MatMul(a.weight.Tensor())
	raw := a.backend.AddBias(output.Raw(), a.bias.Tensor().Raw())
	return tensor.New[float32, B](raw, a.backend)
}

// Backward differentiates the last Forward call.
//
// With upstream g of shape [batch, nodes]:
//
//	dW = input^T @ g
//	db = sum of g over the batch dimension
//	dInput = g @ W^T
func (a *Affine[B]) Backward(upstream *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if a.input == nil {
		panic("affine: Backward called before Forward")
	}

	weightGrad := a.input.Transpose().MatMul(upstream)
	a.weight.AccumulateGrad(weightGrad)

	biasGrad := tensor.New[float32, B](a.backend.BiasBackward(upstream.Raw()), a.backend)
	a.bias.AccumulateGrad(biasGrad)

	return upstream.MatMul(a.weight.Tensor().Transpose())
}

// Parameters returns the weight and bias parameters.
func (a *Affine[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{a.weight, a.bias}
}

// Weight returns the weight parameter.
func (a *Affine[B]) Weight() *Parameter[B] {
	return a.weight
}

// Bias returns the bias parameter.
func (a *Affine[B]) Bias() *Parameter[B] {
	return a.bias
}

// String returns a string representation of the layer.
func (a *Affine[B]) String() string {
	return fmt.Sprintf("Affine(in=%d, nodes=%d)", a.inFeatures, a.nodes)
}
