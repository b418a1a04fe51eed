// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dataset turns raw numeric arrays into indexable batches of
// input/target tensors.
package dataset

import (
	"github.com/chalk-ml/chalk/internal/dataset"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// ErrIndexOutOfRange is returned by Batch for an index outside
// [0, NumBatches).
var ErrIndexOutOfRange = dataset.ErrIndexOutOfRange

// Dataset is an ordered collection of batches.
type Dataset[B tensor.Backend] = dataset.Dataset[B]

// New builds a dataset from per-batch input and target rows. The two
// slices must have the same length and every row must match its
// declared shape.
func New[B tensor.Backend](
	backend B,
	inputs, targets [][]float32,
	inputShape, targetShape tensor.Shape,
) (*Dataset[B], error) {
	return dataset.New(backend, inputs, targets, inputShape, targetShape)
}
