package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Conv2d is a valid (no padding) 2D convolution layer with stride:
//
//	output = conv2d(input, W, stride) + b
//
// W has shape [filters, in_channels, K_h, K_w]; the per-filter bias is
// broadcast over the spatial dimensions.
//
// Fan-in and fan-out for weight initialization follow the convolution
// geometry:
//
//	fan_in  = in_channels * K_h * K_w
//	fan_out = filters * out_h * out_w
type Conv2d[B tensor.Backend] struct {
	filterShape tensor.Shape // [filters, in_channels, K_h, K_w]
	imageShape  tensor.Shape // [batch, in_channels, H, W]
	stride      int
	fanIn       int
	fanOut      int
	weight      *Parameter[B]
	bias        *Parameter[B]
	backend     B

	input *tensor.Tensor[float32, B] // cached by Forward for Backward
}

// NewConv2d creates a convolution layer for inputs of the given image
// shape. It returns a ConfigurationError when the image's channel
// dimension does not match the filter's channel dimension, or when the
// filter does not fit the image under the given stride.
func NewConv2d[B tensor.Backend](filterShape, imageShape tensor.Shape, stride int, init InitStrategy, backend B) (*Conv2d[B], error) {
	if len(filterShape) != 4 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("filter shape must be 4D [filters, channels, kh, kw], got %v", filterShape)}
	}
	if len(imageShape) != 4 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("image shape must be 4D [batch, channels, h, w], got %v", imageShape)}
	}
	if imageShape[1] != filterShape[1] {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("image channels %d != filter channels %d", imageShape[1], filterShape[1])}
	}
	if stride <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("stride must be positive, got %d", stride)}
	}

	filters, kh, kw := filterShape[0], filterShape[2], filterShape[3]
	outH := (imageShape[2]-kh)/stride + 1
	outW := (imageShape[3]-kw)/stride + 1
	if outH <= 0 || outW <= 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("filter %dx%d with stride %d does not fit image %dx%d", kh, kw, stride, imageShape[2], imageShape[3])}
	}

	fanIn := filterShape[1] * kh * kw
	fanOut := filters * outH * outW

	weightTensor := tensor.Zeros[float32](filterShape, backend)
	init(weightTensor.Data(), fanIn, fanOut)
	weight := NewParameter("conv2d.weight", Weight, weightTensor)

	biasTensor := tensor.Zeros[float32](tensor.Shape{filters}, backend)
	bias := NewParameter("conv2d.bias", Bias, biasTensor)

	return &Conv2d[B]{
		filterShape: filterShape.Clone(),
		imageShape:  imageShape.Clone(),
		stride:      stride,
		fanIn:       fanIn,
		fanOut:      fanOut,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}, nil
}

// Forward convolves the input with the filters and adds the bias.
//
// Input shape: [batch, in_channels, H, W].
// Output shape: [batch, filters, out_h, out_w].
func (c *Conv2d[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != c.filterShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != filter channels %d", inputShape[1], c.filterShape[1]))
	}

	c.input = input

	convOut := c.backend.Conv2D(input.Raw(), c.weight.Tensor().Raw(), c.stride)
	raw := c.backend.AddBias(convOut, c.bias.Tensor().Raw())
	return tensor.New[float32, B](raw, c.backend)
}

// Backward differentiates the last Forward call, delegating the two
// convolution gradients to the backend.
func (c *Conv2d[B]) Backward(upstream *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if c.input == nil {
		panic("conv2d: Backward called before Forward")
	}

	weightGrad := c.backend.Conv2DKernelBackward(c.input.Raw(), c.weight.Tensor().Raw(), upstream.Raw(), c.stride)
	c.weight.AccumulateGrad(tensor.New[float32, B](weightGrad, c.backend))

	biasGrad := c.backend.BiasBackward(upstream.Raw())
	c.bias.AccumulateGrad(tensor.New[float32, B](biasGrad, c.backend))

	inputGrad := c.backend.Conv2DInputBackward(c.input.Raw(), c.weight.Tensor().Raw(), upstream.Raw(), c.stride)
	return tensor.New[float32, B](inputGrad, c.backend)
}

// Parameters returns the weight and bias parameters.
func (c *Conv2d[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weight, c.bias}
}

// FanIn returns in_channels * K_h * K_w.
func (c *Conv2d[B]) FanIn() int {
	return c.fanIn
}

// FanOut returns filters * out_h * out_w.
func (c *Conv2d[B]) FanOut() int {
	return c.fanOut
}

// String returns a string representation of the layer.
func (c *Conv2d[B]) String() string {
	return fmt.Sprintf("Conv2d(filters=%d, channels=%d, kernel=%dx%d, stride=%d)",
		c.filterShape[0], c.filterShape[1], c.filterShape[2], c.filterShape[3], c.stride)
}
