// Package train implements the gradient-descent training loop: pick a
// batch, run the network forward, compute the regularized cost, backprop,
// apply the update rule, repeat for a fixed iteration count.
package train

import (
	"context"
	"fmt"
	"math"

	"github.com/chalk-ml/chalk/internal/dataset"
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/optim"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// DivergenceError reports a non-finite cost or gradient during training.
// Training stops at the iteration where divergence is first observed.
type DivergenceError struct {
	Iteration int
	Cost      float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("training diverged at iteration %d: cost %v", e.Iteration, e.Cost)
}

// Config holds the training hyperparameters.
type Config struct {
	// LearningRate for the gradient-descent update. Zero falls back to
	// the optimizer default.
	LearningRate float64

	// BatchIndex selects which batch every iteration trains on. The loop
	// deliberately does not advance or shuffle: repeated training of one
	// fixed index is the reproducible policy of this core.
	BatchIndex int

	// L1Weight and L2Weight scale the regularization penalties added to
	// the cost.
	L1Weight float64
	L2Weight float64
}

// Trainer drives gradient descent over a network and a dataset.
// It is the sole writer of parameter values; it is not safe for
// concurrent use.
type Trainer[B tensor.Backend] struct {
	net     *nn.Network[B]
	data    *dataset.Dataset[B]
	sgd     *optim.SGD[B]
	config  Config
	running bool
}

// New creates a trainer. The batch index is validated eagerly against
// the dataset.
func New[B tensor.Backend](net *nn.Network[B], data *dataset.Dataset[B], config Config) (*Trainer[B], error) {
	if _, _, err := data.Batch(config.BatchIndex); err != nil {
		return nil, err
	}

	return &Trainer[B]{
		net:    net,
		data:   data,
		sgd:    optim.NewSGD[B](config.LearningRate),
		config: config,
	}, nil
}

// Train runs the given number of iterations and returns the final scalar
// cost. Zero iterations performs no update: parameters are left exactly
// as they were, and the returned cost is the current cost on the
// configured batch.
//
// There is no convergence check and no retry: the loop either completes
// the requested count or propagates the first error. Cancellation is
// checked at the iteration boundary.
func (t *Trainer[B]) Train(ctx context.Context, iterations int) (float64, error) {
	if iterations < 0 {
		return 0, fmt.Errorf("train: negative iteration count %d", iterations)
	}
	if t.running {
		return 0, fmt.Errorf("train: already running")
	}
	t.running = true
	defer func() { t.running = false }()

	input, target, err := t.data.Batch(t.config.BatchIndex)
	if err != nil {
		return 0, err
	}

	if iterations == 0 {
		return t.evaluate(input, target)
	}

	var cost float64
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return cost, err
		}

		cost, err = t.step(i, input, target)
		if err != nil {
			return cost, err
		}
	}
	return cost, nil
}

// step runs one full iteration: forward, cost, backward, update.
func (t *Trainer[B]) step(iteration int, input, target *tensor.Tensor[float32, B]) (float64, error) {
	predicted := t.net.Forward(input)

	cost, err := t.net.Cost(predicted, target, t.config.L1Weight, t.config.L2Weight)
	if err != nil {
		return 0, err
	}
	if !isFinite(cost) {
		return cost, &DivergenceError{Iteration: iteration, Cost: cost}
	}

	if err := t.net.Backward(predicted, target, t.config.L1Weight, t.config.L2Weight); err != nil {
		return cost, err
	}
	for _, p := range t.net.Parameters() {
		if g := p.Grad(); g != nil && !finiteData(g.Data()) {
			return cost, &DivergenceError{Iteration: iteration, Cost: cost}
		}
	}

	t.sgd.Step(t.net.Parameters())
	return cost, nil
}

// evaluate computes the cost without touching any parameter.
func (t *Trainer[B]) evaluate(input, target *tensor.Tensor[float32, B]) (float64, error) {
	predicted := t.net.Forward(input)
	return t.net.Cost(predicted, target, t.config.L1Weight, t.config.L2Weight)
}

// Network returns the trained network.
func (t *Trainer[B]) Network() *nn.Network[B] {
	return t.net
}

// LearningRate returns the effective learning rate.
func (t *Trainer[B]) LearningRate() float64 {
	return t.sgd.LR()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteData(data []float32) bool {
	for _, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
