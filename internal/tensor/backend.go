package tensor

// Backend defines the interface a compute backend must implement for the
// training core. It is deliberately narrow: the layer set drives what is
// here, and layers own their backward passes, so the backend only needs
// the forward primitives plus the convolution gradient kernels.
type Backend interface {
	// Element-wise binary operations. Shapes must match exactly.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Element-wise unary operations.
	Scale(x *RawTensor, alpha float64) *RawTensor
	Abs(x *RawTensor) *RawTensor
	Sign(x *RawTensor) *RawTensor

	// Threshold computes max(x - threshold, 0) element-wise.
	// ThresholdMask returns 1 where x > threshold and 0 elsewhere.
	Threshold(x *RawTensor, threshold float64) *RawTensor
	ThresholdMask(x *RawTensor, threshold float64) *RawTensor

	// Matrix operations on 2D tensors.
	MatMul(a, b *RawTensor) *RawTensor
	Transpose(x *RawTensor) *RawTensor

	// Conv2D performs a valid (no padding) 2D convolution with stride.
	// Input [N, C_in, H, W], kernel [C_out, C_in, K_h, K_w],
	// output [N, C_out, H_out, W_out].
	Conv2D(input, kernel *RawTensor, stride int) *RawTensor

	// Convolution gradients with respect to input and kernel.
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride int) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, stride int) *RawTensor

	// AddBias broadcasts a bias vector over x:
	//   rank 2: [N, F] + [F]
	//   rank 4: [N, C, H, W] + [C]
	AddBias(x, bias *RawTensor) *RawTensor

	// BiasBackward reduces a gradient back to bias shape: sum over the
	// batch dimension for rank 2, batch and spatial dimensions for rank 4.
	BiasBackward(grad *RawTensor) *RawTensor

	// Reductions to a host scalar.
	Sum(x *RawTensor) float64
	Mean(x *RawTensor) float64

	// Metadata
	Name() string
	Device() Device
}
