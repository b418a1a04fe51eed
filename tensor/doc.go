// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for tensor operations in Chalk.
//
// # Overview
//
// Tensors are the data structure everything else in Chalk is built on.
// This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - A Backend interface for device-specific compute implementations
//   - Shape, DataType, Device core type definitions
//
// # Basic Usage
//
//	import (
//	    "github.com/chalk-ml/chalk/tensor"
//	    "github.com/chalk-ml/chalk/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    z := x.Add(y)
//	    result := x.MatMul(y.Transpose())
//	}
//
// # Supported Data Types
//
// The DType constraint admits float32 and float64. Training code uses
// float32 throughout; float64 exists for numerical cross-checks.
package tensor
