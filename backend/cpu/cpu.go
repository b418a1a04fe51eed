// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend.
//
// Elementwise operations are pure Go; matrix multiply and the im2col
// convolution product go through gonum's BLAS bindings.
package cpu

import (
	internalcpu "github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}
