// Package nn implements the layer set and network chain of the training
// core: affine and thresholded-affine layers, a valid 2D convolution
// layer, and a Network that chains them and computes the regularized
// mean-absolute-error cost.
//
// There is no graph-rewriting autodiff engine. Each layer owns its
// backward pass: Forward caches what the gradient needs, Backward
// consumes an upstream gradient, writes parameter gradients, and returns
// the gradient with respect to its input. Composed over the chain this
// gives reverse-mode gradients of the scalar cost for every parameter.
package nn

import (
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Layer is a parameterized function from one tensor to another.
//
// Forward must be called before Backward: Backward differentiates the
// most recent Forward call. Output shape is a pure function of input
// shape and parameter shapes.
type Layer[B tensor.Backend] interface {
	// Forward computes the layer output for input.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Backward takes the gradient of the cost with respect to this
	// layer's output, stores the gradients for this layer's parameters,
	// and returns the gradient with respect to the layer's input.
	Backward(upstream *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the trainable parameters of this layer.
	// Layers without parameters return an empty slice.
	Parameters() []*Parameter[B]
}
