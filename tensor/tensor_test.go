// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/tensor"
)

// TestBackendInterface verifies that cpu.CPUBackend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.CPUBackend)(nil)
}

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, tensor.CPU, raw.Device())
	assert.Equal(t, 6, raw.NumElements())
	assert.Len(t, raw.Bytes(), 6*4)
}

// TestComputeStrides verifies the package-level strides helper.
func TestComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, tensor.ComputeStrides(tensor.Shape{2, 3, 4}))
	assert.Equal(t, []int{1}, tensor.ComputeStrides(tensor.Shape{5}))
	assert.Empty(t, tensor.ComputeStrides(tensor.Shape{}))
}

// TestTypedFacade exercises the typed tensor API through the public
// package.
func TestTypedFacade(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	y := tensor.Ones[float32](tensor.Shape{2, 2}, backend)

	z := x.Add(y)
	assert.Equal(t, []float32{2, 3, 4, 5}, z.Data())

	product := x.MatMul(y)
	assert.Equal(t, []float32{3, 3, 7, 7}, product.Data())
}
