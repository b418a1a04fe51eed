package nn

import (
	"math"
	"math/rand"
)

// InitStrategy fills a weight buffer given its fan-in and fan-out.
// Both strategies below appear in practice; which one a layer uses is a
// construction option.
type InitStrategy func(data []float32, fanIn, fanOut int)

// Constant returns a strategy that fills every weight with value.
func Constant(value float32) InitStrategy {
	return func(data []float32, fanIn, fanOut int) {
		for i := range data {
			data[i] = value
		}
	}
}

// Xavier returns the Glorot uniform strategy: weights drawn from
// U(-bound, bound) with bound = sqrt(6/(fan_in + fan_out)).
//
// The bound is always taken positive with a symmetric interval; an
// inverted bound collapses the interval and is treated as caller error.
func Xavier() InitStrategy {
	return func(data []float32, fanIn, fanOut int) {
		bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
		for i := range data {
			//nolint:gosec // math/rand is fine for weight initialization
			data[i] = float32((rand.Float64()*2.0 - 1.0) * bound)
		}
	}
}
