package optim

import (
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// SGD implements plain gradient descent:
//
//	param = param - lr * gradient
//
// No momentum, no adaptive rate. The update mutates parameter tensors in
// place; the training loop is the sole writer between iterations.
type SGD[B tensor.Backend] struct {
	lr float64
}

// NewSGD creates a gradient-descent optimizer with the given learning
// rate. A zero rate falls back to 0.01.
func NewSGD[B tensor.Backend](lr float64) *SGD[B] {
	if lr == 0 {
		lr = 0.01
	}
	return &SGD[B]{lr: lr}
}

// Step applies param -= lr * grad to every parameter with a gradient.
func (s *SGD[B]) Step(params []*nn.Parameter[B]) {
	for _, param := range params {
		grad := param.Grad()
		if grad == nil {
			// Parameter didn't participate in the backward pass, skip.
			continue
		}

		paramData := param.Tensor().Data()
		gradData := grad.Data()
		lr := float32(s.lr)
		for i := range paramData {
			paramData[i] -= lr * gradData[i]
		}
	}
}

// LR returns the learning rate.
func (s *SGD[B]) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[B]) SetLR(lr float64) {
	s.lr = lr
}
