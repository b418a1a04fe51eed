// Package optim implements the parameter update rule of the training
// loop. The only optimizer is plain gradient descent; the update
// contract is deliberately minimal so the trainer stays a thin loop.
package optim

import (
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Optimizer updates parameters from their stored gradients.
type Optimizer[B tensor.Backend] interface {
	// Step applies one update to every parameter that has a gradient.
	// Parameters without a gradient are skipped.
	Step(params []*nn.Parameter[B])

	// LR returns the current learning rate.
	LR() float64
}
