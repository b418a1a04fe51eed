// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train provides the gradient-descent training loop.
//
// Example:
//
//	trainer, err := train.New(net, data, train.Config{
//	    LearningRate: 0.02,
//	    BatchIndex:   0,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cost, err := trainer.Train(ctx, 1000)
package train

import (
	"github.com/chalk-ml/chalk/internal/dataset"
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
	"github.com/chalk-ml/chalk/internal/train"
)

// Config holds the training hyperparameters.
type Config = train.Config

// DivergenceError reports a non-finite cost or gradient.
type DivergenceError = train.DivergenceError

// Trainer drives gradient descent over one batch of a dataset.
type Trainer[B tensor.Backend] = train.Trainer[B]

// New creates a trainer. The configured batch index is validated
// eagerly against the dataset.
func New[B tensor.Backend](net *nn.Network[B], data *dataset.Dataset[B], config Config) (*Trainer[B], error) {
	return train.New(net, data, config)
}
