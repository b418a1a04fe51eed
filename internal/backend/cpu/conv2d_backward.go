package cpu

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Conv2DKernelBackward computes the gradient of a valid convolution with
// respect to the kernel. With the output gradient rearranged to
// G [C_out, N*H_out*W_out] and the im2col matrix col [N*H_out*W_out, K]:
//
//	dKernel = G @ col
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride int) *tensor.RawTensor {
	d := convDims(input, kernel, stride)
	checkGradShape(grad, d)

	kernelGrad, err := tensor.NewRaw(kernel.Shape(), grad.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2dKernelBackward: %v", err))
	}

	switch grad.DType() {
	case tensor.Float32:
		conv2dKernelBackward(kernelGrad.AsFloat32(), input.AsFloat32(), grad.AsFloat32(), d, stride, gemmFloat32)
	case tensor.Float64:
		conv2dKernelBackward(kernelGrad.AsFloat64(), input.AsFloat64(), grad.AsFloat64(), d, stride, gemmFloat64)
	default:
		panic(fmt.Sprintf("conv2dKernelBackward: unsupported dtype %s", grad.DType()))
	}

	return kernelGrad
}

// Conv2DInputBackward computes the gradient of a valid convolution with
// respect to the input (transposed convolution):
//
//	dCol = G^T @ kernel, then col2im scatters dCol back to image layout.
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride int) *tensor.RawTensor {
	d := convDims(input, kernel, stride)
	checkGradShape(grad, d)

	inputGrad, err := tensor.NewRaw(input.Shape(), grad.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2dInputBackward: %v", err))
	}

	switch grad.DType() {
	case tensor.Float32:
		conv2dInputBackward(inputGrad.AsFloat32(), kernel.AsFloat32(), grad.AsFloat32(), d, stride, gemmTNFloat32)
	case tensor.Float64:
		conv2dInputBackward(inputGrad.AsFloat64(), kernel.AsFloat64(), grad.AsFloat64(), d, stride, gemmTNFloat64)
	default:
		panic(fmt.Sprintf("conv2dInputBackward: unsupported dtype %s", grad.DType()))
	}

	return inputGrad
}

func checkGradShape(grad *tensor.RawTensor, d conv2dDims) {
	want := tensor.Shape{d.n, d.cOut, d.hOut, d.wOut}
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("conv2d backward: gradient shape %v, want %v", grad.Shape(), want))
	}
}

func conv2dKernelBackward[T tensor.DType](
	kernelGrad, in, grad []T,
	d conv2dDims, stride int,
	gemm func(c, a, b []T, m, k, n int),
) {
	col := make([]T, d.colLen*d.colWidth)
	im2col(col, in, d, stride)

	g := make([]T, d.cOut*d.colLen)
	gatherChannelMajor(g, grad, d)

	// [C_out, colLen] @ [colLen, K] -> [C_out, K], the flattened kernel.
	gemm(kernelGrad, g, col, d.cOut, d.colLen, d.colWidth)
}

func conv2dInputBackward[T tensor.DType](
	inputGrad, kernel, grad []T,
	d conv2dDims, stride int,
	gemmTN func(c, a, b []T, m, k, n int),
) {
	g := make([]T, d.cOut*d.colLen)
	gatherChannelMajor(g, grad, d)

	// [colLen, C_out] @ [C_out, K] -> [colLen, K], gradient in column form.
	colGrad := make([]T, d.colLen*d.colWidth)
	gemmTN(colGrad, g, kernel, d.colLen, d.cOut, d.colWidth)

	col2im(inputGrad, colGrad, d, stride)
}
