package cpu

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Element-wise and reduction kernels. Binary operations require exactly
// matching shapes; broadcasting is confined to AddBias, which is the only
// broadcast the layer set needs.

// Add returns a + b element-wise.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b, func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub returns a - b element-wise.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b, func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul returns a * b element-wise.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b, func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Scale returns alpha * x.
func (cpu *CPUBackend) Scale(x *tensor.RawTensor, alpha float64) *tensor.RawTensor {
	a32 := float32(alpha)
	return cpu.unaryOp("scale", x, func(v float32) float32 { return a32 * v },
		func(v float64) float64 { return alpha * v })
}

// Abs returns |x| element-wise.
func (cpu *CPUBackend) Abs(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("abs", x, func(v float32) float32 {
		if v < 0 {
			return -v
		}
		return v
	}, func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	})
}

// Sign returns -1, 0 or 1 element-wise.
func (cpu *CPUBackend) Sign(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sign", x, func(v float32) float32 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return 0
		}
	}, func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return 0
		}
	})
}

// Threshold computes max(x - threshold, 0) element-wise, the rectifier
// variant used by the thresholded affine layer.
func (cpu *CPUBackend) Threshold(x *tensor.RawTensor, threshold float64) *tensor.RawTensor {
	t32 := float32(threshold)
	return cpu.unaryOp("threshold", x, func(v float32) float32 {
		if v > t32 {
			return v - t32
		}
		return 0
	}, func(v float64) float64 {
		if v > threshold {
			return v - threshold
		}
		return 0
	})
}

// ThresholdMask returns 1 where x > threshold and 0 elsewhere.
func (cpu *CPUBackend) ThresholdMask(x *tensor.RawTensor, threshold float64) *tensor.RawTensor {
	t32 := float32(threshold)
	return cpu.unaryOp("thresholdMask", x, func(v float32) float32 {
		if v > t32 {
			return 1
		}
		return 0
	}, func(v float64) float64 {
		if v > threshold {
			return 1
		}
		return 0
	})
}

// AddBias broadcasts a bias vector over x.
// Rank 2: [N, F] + [F]. Rank 4: [N, C, H, W] + [C].
func (cpu *CPUBackend) AddBias(x, bias *tensor.RawTensor) *tensor.RawTensor {
	xShape := x.Shape()
	bShape := bias.Shape()
	if len(bShape) != 1 {
		panic(fmt.Sprintf("addBias: bias must be 1D, got %v", bShape))
	}

	out := x.Clone()
	switch len(xShape) {
	case 2:
		if bShape[0] != xShape[1] {
			panic(fmt.Sprintf("addBias: bias size %d != feature dim %d", bShape[0], xShape[1]))
		}
		switch x.DType() {
		case tensor.Float32:
			addBias2D(out.AsFloat32(), bias.AsFloat32(), xShape[0], xShape[1])
		case tensor.Float64:
			addBias2D(out.AsFloat64(), bias.AsFloat64(), xShape[0], xShape[1])
		}
	case 4:
		if bShape[0] != xShape[1] {
			panic(fmt.Sprintf("addBias: bias size %d != channel dim %d", bShape[0], xShape[1]))
		}
		spatial := xShape[2] * xShape[3]
		switch x.DType() {
		case tensor.Float32:
			addBias4D(out.AsFloat32(), bias.AsFloat32(), xShape[0], xShape[1], spatial)
		case tensor.Float64:
			addBias4D(out.AsFloat64(), bias.AsFloat64(), xShape[0], xShape[1], spatial)
		}
	default:
		panic(fmt.Sprintf("addBias: expected 2D or 4D tensor, got %dD", len(xShape)))
	}
	return out
}

func addBias2D[T tensor.DType](out, bias []T, n, f int) {
	for i := 0; i < n; i++ {
		row := out[i*f : (i+1)*f]
		for j := range row {
			row[j] += bias[j]
		}
	}
}

func addBias4D[T tensor.DType](out, bias []T, n, c, spatial int) {
	for i := 0; i < n; i++ {
		for ch := 0; ch < c; ch++ {
			base := (i*c + ch) * spatial
			for s := 0; s < spatial; s++ {
				out[base+s] += bias[ch]
			}
		}
	}
}

// BiasBackward reduces a gradient back to bias shape: sum over the batch
// dimension for rank 2, batch and spatial dimensions for rank 4.
func (cpu *CPUBackend) BiasBackward(grad *tensor.RawTensor) *tensor.RawTensor {
	gShape := grad.Shape()

	var features int
	switch len(gShape) {
	case 2, 4:
		features = gShape[1]
	default:
		panic(fmt.Sprintf("biasBackward: expected 2D or 4D gradient, got %dD", len(gShape)))
	}

	out, err := tensor.NewRaw(tensor.Shape{features}, grad.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("biasBackward: %v", err))
	}

	switch grad.DType() {
	case tensor.Float32:
		biasBackward(out.AsFloat32(), grad.AsFloat32(), gShape)
	case tensor.Float64:
		biasBackward(out.AsFloat64(), grad.AsFloat64(), gShape)
	}
	return out
}

func biasBackward[T tensor.DType](out, grad []T, shape tensor.Shape) {
	n, f := shape[0], shape[1]
	spatial := 1
	if len(shape) == 4 {
		spatial = shape[2] * shape[3]
	}
	for i := 0; i < n; i++ {
		for j := 0; j < f; j++ {
			base := (i*f + j) * spatial
			var sum T
			for s := 0; s < spatial; s++ {
				sum += grad[base+s]
			}
			out[j] += sum
		}
	}
}

// Sum returns the total sum of all elements as a host scalar.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) float64 {
	var sum float64
	switch x.DType() {
	case tensor.Float32:
		for _, v := range x.AsFloat32() {
			sum += float64(v)
		}
	case tensor.Float64:
		for _, v := range x.AsFloat64() {
			sum += v
		}
	}
	return sum
}

// Mean returns the mean of all elements as a host scalar.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) float64 {
	return cpu.Sum(x) / float64(x.NumElements())
}

// binaryOp applies f element-wise over two tensors of identical shape.
func (cpu *CPUBackend) binaryOp(
	name string,
	a, b *tensor.RawTensor,
	f32 func(x, y float32) float32,
	f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", name, a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	out, err := tensor.NewRaw(a.Shape(), a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		ad, bd, od := a.AsFloat32(), b.AsFloat32(), out.AsFloat32()
		for i := range od {
			od[i] = f32(ad[i], bd[i])
		}
	case tensor.Float64:
		ad, bd, od := a.AsFloat64(), b.AsFloat64(), out.AsFloat64()
		for i := range od {
			od[i] = f64(ad[i], bd[i])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return out
}

// unaryOp applies f element-wise.
func (cpu *CPUBackend) unaryOp(
	name string,
	x *tensor.RawTensor,
	f32 func(v float32) float32,
	f64 func(v float64) float64,
) *tensor.RawTensor {
	out, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		xd, od := x.AsFloat32(), out.AsFloat32()
		for i := range od {
			od[i] = f32(xd[i])
		}
	case tensor.Float64:
		xd, od := x.AsFloat64(), out.AsFloat64()
		for i := range od {
			od[i] = f64(xd[i])
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, x.DType()))
	}
	return out
}
