// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides parameter update rules.
package optim

import (
	"github.com/chalk-ml/chalk/internal/optim"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Optimizer is the common interface for all optimizers.
type Optimizer[B tensor.Backend] = optim.Optimizer[B]

// SGD is plain stochastic gradient descent: p ← p − rate·∂cost/∂p.
type SGD[B tensor.Backend] = optim.SGD[B]

// NewSGD creates an SGD optimizer. A non-positive rate falls back to
// the default of 0.01.
//
// Example:
//
//	backend := cpu.New()
//	sgd := optim.NewSGD[*cpu.Backend](0.02)
//	sgd.Step(net.Parameters())
func NewSGD[B tensor.Backend](lr float64) *SGD[B] {
	return optim.NewSGD[B](lr)
}
