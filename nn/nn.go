// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides layers and the network chain.
//
// # Overview
//
// This package contains:
//   - Layers: Affine, ThresholdedAffine, Conv2d, Flatten
//   - Network: an ordered layer chain with MAE cost and L1/L2 penalties
//   - Initialization: Constant, Xavier
//   - Utilities: Layer interface, Parameter
//
// # Basic Usage
//
//	import (
//	    "github.com/chalk-ml/chalk/nn"
//	    "github.com/chalk-ml/chalk/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    net, err := nn.NewNetwork[*cpu.Backend](backend,
//	        nn.NewAffine(2, 40, nn.Xavier(), backend),
//	        nn.NewThresholdedAffine(40, 1, 0, nn.Xavier(), backend),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    prediction := net.Forward(input)
//	}
package nn

import (
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// Layer is the interface all layers implement: a forward pass, a
// layer-local backward pass, and the parameters the layer owns.
type Layer[B tensor.Backend] = nn.Layer[B]

// Parameter is a trainable tensor owned by exactly one layer.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// ParamKind distinguishes weights from biases; regularization applies
// to weights only.
type ParamKind = nn.ParamKind

// Parameter kinds.
const (
	Weight ParamKind = nn.Weight
	Bias   ParamKind = nn.Bias
)

// NewParameter creates a parameter with the given name and kind.
func NewParameter[B tensor.Backend](name string, kind ParamKind, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, kind, t)
}

// Initialization

// InitStrategy fills a weight buffer given its fan-in and fan-out.
type InitStrategy = nn.InitStrategy

// Constant returns a strategy that fills every weight with value.
func Constant(value float32) InitStrategy {
	return nn.Constant(value)
}

// Xavier returns the Glorot uniform strategy with
// bound = sqrt(6/(fan_in + fan_out)).
func Xavier() InitStrategy {
	return nn.Xavier()
}

// Layers

// Affine is a fully connected layer: output = input @ W + b.
type Affine[B tensor.Backend] = nn.Affine[B]

// NewAffine creates an affine layer with inFeatures inputs and nodes
// outputs.
func NewAffine[B tensor.Backend](inFeatures, nodes int, init InitStrategy, backend B) *Affine[B] {
	return nn.NewAffine(inFeatures, nodes, init, backend)
}

// ThresholdedAffine is an affine layer followed by the rectifier
// variant max(output - threshold, 0).
type ThresholdedAffine[B tensor.Backend] = nn.ThresholdedAffine[B]

// NewThresholdedAffine creates a thresholded affine layer.
func NewThresholdedAffine[B tensor.Backend](inFeatures, nodes int, threshold float64, init InitStrategy, backend B) *ThresholdedAffine[B] {
	return nn.NewThresholdedAffine(inFeatures, nodes, threshold, init, backend)
}

// Conv2d is a valid (no padding) 2D convolution layer with stride.
type Conv2d[B tensor.Backend] = nn.Conv2d[B]

// NewConv2d creates a convolution layer.
//
// filterShape is [filters, channels, kh, kw] and imageShape is
// [batch, channels, h, w]. Returns a ConfigurationError when the
// channel dimensions disagree or the filter does not fit the image.
func NewConv2d[B tensor.Backend](filterShape, imageShape tensor.Shape, stride int, init InitStrategy, backend B) (*Conv2d[B], error) {
	return nn.NewConv2d(filterShape, imageShape, stride, init, backend)
}

// Flatten reshapes [batch, ...] to [batch, rest]. It has no parameters.
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// Network

// Network is an ordered chain of layers.
type Network[B tensor.Backend] = nn.Network[B]

// NewNetwork creates a network from a layer chain. The chain must be
// non-empty and no parameter may appear twice.
func NewNetwork[B tensor.Backend](backend B, layers ...Layer[B]) (*Network[B], error) {
	return nn.NewNetwork(backend, layers...)
}

// Errors

// ConfigurationError reports mismatched layer shapes at construction.
type ConfigurationError = nn.ConfigurationError

// ShapeMismatchError reports a cost computation over tensors of
// different shapes.
type ShapeMismatchError = nn.ShapeMismatchError
