package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Conv2D performs a valid (no padding) 2D convolution with stride using
// the im2col algorithm: input patches are unrolled into a matrix so the
// convolution becomes a single BLAS matrix product.
//
// Input shape:  [N, C_in, H, W]
// Kernel shape: [C_out, C_in, K_h, K_w]
// Output shape: [N, C_out, H_out, W_out]
// with out_h = (H - K_h)/stride + 1, out_w = (W - K_w)/stride + 1.
//
// Reference: "High Performance Convolutional Neural Networks for Document
// Processing" (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride int) *tensor.RawTensor {
	dims := convDims(input, kernel, stride)

	output, err := tensor.NewRaw(tensor.Shape{dims.n, dims.cOut, dims.hOut, dims.wOut}, input.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		conv2dForward(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), dims, stride, gemmNTFloat32)
	case tensor.Float64:
		conv2dForward(output.AsFloat64(), input.AsFloat64(), kernel.AsFloat64(), dims, stride, gemmNTFloat64)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	return output
}

type conv2dDims struct {
	n, cIn, h, w     int
	cOut, kh, kw     int
	hOut, wOut       int
	colWidth, colLen int
}

func convDims(input, kernel *tensor.RawTensor, stride int) conv2dDims {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if inputShape[1] != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", inputShape[1], kernelShape[1]))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}

	d := conv2dDims{
		n: inputShape[0], cIn: inputShape[1], h: inputShape[2], w: inputShape[3],
		cOut: kernelShape[0], kh: kernelShape[2], kw: kernelShape[3],
	}
	d.hOut = (d.h-d.kh)/stride + 1
	d.wOut = (d.w-d.kw)/stride + 1
	if d.hOut <= 0 || d.wOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions out_h=%d, out_w=%d (check kernel/stride)", d.hOut, d.wOut))
	}
	d.colWidth = d.cIn * d.kh * d.kw
	d.colLen = d.n * d.hOut * d.wOut
	return d
}

// conv2dForward runs im2col then one matrix product
// kernel[C_out, K] @ col[colLen, K]^T, and rearranges the result from
// [C_out, N*H_out*W_out] into [N, C_out, H_out, W_out].
func conv2dForward[T tensor.DType](
	out, in, kernel []T,
	d conv2dDims, stride int,
	gemmNT func(c, a, b []T, m, k, n int),
) {
	col := make([]T, d.colLen*d.colWidth)
	im2col(col, in, d, stride)

	tmp := make([]T, d.cOut*d.colLen)
	gemmNT(tmp, kernel, col, d.cOut, d.colWidth, d.colLen)

	spreadChannelMajor(out, tmp, d)
}

// im2col unrolls input patches into rows of col.
// Row j = (n, oh, ow), column k = (c, kh, kw).
func im2col[T tensor.DType](col, in []T, d conv2dDims, stride int) {
	j := 0
	for n := 0; n < d.n; n++ {
		for oh := 0; oh < d.hOut; oh++ {
			for ow := 0; ow < d.wOut; ow++ {
				base := j * d.colWidth
				idx := 0
				for c := 0; c < d.cIn; c++ {
					for kh := 0; kh < d.kh; kh++ {
						ih := oh*stride + kh
						rowBase := ((n*d.cIn+c)*d.h+ih)*d.w + ow*stride
						for kw := 0; kw < d.kw; kw++ {
							col[base+idx] = in[rowBase+kw]
							idx++
						}
					}
				}
				j++
			}
		}
	}
}

// col2im scatter-adds rows of col back into image layout, the transpose
// of im2col. Overlapping patches accumulate.
func col2im[T tensor.DType](in, col []T, d conv2dDims, stride int) {
	j := 0
	for n := 0; n < d.n; n++ {
		for oh := 0; oh < d.hOut; oh++ {
			for ow := 0; ow < d.wOut; ow++ {
				base := j * d.colWidth
				idx := 0
				for c := 0; c < d.cIn; c++ {
					for kh := 0; kh < d.kh; kh++ {
						ih := oh*stride + kh
						rowBase := ((n*d.cIn+c)*d.h+ih)*d.w + ow*stride
						for kw := 0; kw < d.kw; kw++ {
							in[rowBase+kw] += col[base+idx]
							idx++
						}
					}
				}
				j++
			}
		}
	}
}

// spreadChannelMajor rearranges [C_out, N*H_out*W_out] into
// [N, C_out, H_out, W_out].
func spreadChannelMajor[T tensor.DType](out, tmp []T, d conv2dDims) {
	spatial := d.hOut * d.wOut
	for c := 0; c < d.cOut; c++ {
		for n := 0; n < d.n; n++ {
			src := c*d.colLen + n*spatial
			dst := (n*d.cOut + c) * spatial
			copy(out[dst:dst+spatial], tmp[src:src+spatial])
		}
	}
}

// gatherChannelMajor is the inverse of spreadChannelMajor: it rearranges
// [N, C_out, H_out, W_out] into [C_out, N*H_out*W_out].
func gatherChannelMajor[T tensor.DType](tmp, grad []T, d conv2dDims) {
	spatial := d.hOut * d.wOut
	for n := 0; n < d.n; n++ {
		for c := 0; c < d.cOut; c++ {
			src := (n*d.cOut + c) * spatial
			dst := c*d.colLen + n*spatial
			copy(tmp[dst:dst+spatial], grad[src:src+spatial])
		}
	}
}

// BLAS product variants used by the convolution kernels.

// gemmNTFloat32 computes C = A @ B^T.
// A is m×k, B is n×k (stored row-major), C is m×n.
func gemmNTFloat32(c, a, b []float32, m, k, n int) {
	blas32.Gemm(blas.NoTrans, blas.Trans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: n, Cols: k, Stride: k, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c},
	)
}

func gemmNTFloat64(c, a, b []float64, m, k, n int) {
	blas64.Gemm(blas.NoTrans, blas.Trans, 1,
		blas64.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas64.General{Rows: n, Cols: k, Stride: k, Data: b},
		0,
		blas64.General{Rows: m, Cols: n, Stride: n, Data: c},
	)
}

// gemmTNFloat32 computes C = A^T @ B.
// A is k×m (stored row-major), B is k×n, C is m×n.
func gemmTNFloat32(c, a, b []float32, m, k, n int) {
	blas32.Gemm(blas.Trans, blas.NoTrans, 1,
		blas32.General{Rows: k, Cols: m, Stride: m, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c},
	)
}

func gemmTNFloat64(c, a, b []float64, m, k, n int) {
	blas64.Gemm(blas.Trans, blas.NoTrans, 1,
		blas64.General{Rows: k, Cols: m, Stride: m, Data: a},
		blas64.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas64.General{Rows: m, Cols: n, Stride: n, Data: c},
	)
}
