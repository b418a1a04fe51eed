// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/chalk-ml/chalk/internal/tensor"
)

// RawTensor is the untyped tensor underlying Tensor[T, B]: a byte
// buffer plus shape, strides and dtype. Most code wants the typed
// facade; RawTensor is for backends and serialization.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled raw tensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}
