package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Flatten reshapes [batch, d1, d2, ...] into [batch, d1*d2*...],
// the glue between a convolution layer and the affine layers after it.
// It has no parameters.
type Flatten[B tensor.Backend] struct {
	inputShape tensor.Shape // cached by Forward for Backward
}

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// Forward flattens everything after the leading batch dimension.
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected at least 2D input, got shape %v", shape))
	}

	f.inputShape = shape.Clone()
	return input.Reshape(shape[0], shape.NumElements()/shape[0])
}

// Backward restores the upstream gradient to the cached input shape.
func (f *Flatten[B]) Backward(upstream *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if f.inputShape == nil {
		panic("flatten: Backward called before Forward")
	}
	return upstream.Reshape(f.inputShape...)
}

// Parameters returns an empty slice; Flatten has no parameters.
func (f *Flatten[B]) Parameters() []*Parameter[B] {
	return nil
}

// String returns a string representation of the layer.
func (f *Flatten[B]) String() string {
	return "Flatten()"
}
