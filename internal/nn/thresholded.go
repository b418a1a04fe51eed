package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// ThresholdedAffine is an affine layer followed by a shifted rectifier:
//
//	lin = input @ W + b
//	output = (lin > threshold) ? lin - threshold : 0
//
// The threshold is a construction option; 0 gives a plain ReLU.
type ThresholdedAffine[B tensor.Backend] struct {
	affine    *Affine[B]
	threshold float64
	backend   B

	linear *tensor.Tensor[float32, B] // pre-activation cached by Forward
}

// NewThresholdedAffine creates a thresholded affine layer.
func NewThresholdedAffine[B tensor.Backend](inFeatures, nodes int, threshold float64, init InitStrategy, backend B) *ThresholdedAffine[B] {
	return &ThresholdedAffine[B]{
		affine:    NewAffine(inFeatures, nodes, init, backend),
		threshold: threshold,
		backend:   backend,
	}
}

// Forward computes the rectified affine output.
func (t *ThresholdedAffine[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	t.linear = t.affine.Forward(input)
	raw := t.backend.Threshold(t.linear.Raw(), t.threshold)
	return tensor.New[float32, B](raw, t.backend)
}

// Backward masks the upstream gradient where the rectifier was inactive
// and defers the rest to the inner affine layer.
func (t *ThresholdedAffine[B]) Backward(upstream *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if t.linear == nil {
		panic("thresholdedAffine: Backward called before Forward")
	}

	mask := tensor.New[float32, B](t.backend.ThresholdMask(t.linear.Raw(), t.threshold), t.backend)
	return t.affine.Backward(upstream.Mul(mask))
}

// Parameters returns the inner affine layer's parameters.
func (t *ThresholdedAffine[B]) Parameters() []*Parameter[B] {
	return t.affine.Parameters()
}

// Threshold returns the rectifier threshold.
func (t *ThresholdedAffine[B]) Threshold() float64 {
	return t.threshold
}

// String returns a string representation of the layer.
func (t *ThresholdedAffine[B]) String() string {
	return fmt.Sprintf("ThresholdedAffine(%s, threshold=%g)", t.affine, t.threshold)
}
