// Package dataset adapts raw numeric arrays into the tensor batches the
// network and training loop consume.
package dataset

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// ErrIndexOutOfRange is returned by Batch for an index outside
// [0, NumBatches).
var ErrIndexOutOfRange = fmt.Errorf("dataset: batch index out of range")

// Dataset is an ordered collection of (input, target) batches. The
// per-batch tensor shapes are explicit constructor arguments.
type Dataset[B tensor.Backend] struct {
	inputs  []*tensor.Tensor[float32, B]
	targets []*tensor.Tensor[float32, B]

	inputShape  tensor.Shape
	targetShape tensor.Shape
}

// New builds a dataset from flat per-batch slices. Every inputs[i] must
// have inputShape.NumElements() values and every targets[i]
// targetShape.NumElements() values; the two lists must have the same
// length.
func New[B tensor.Backend](
	backend B,
	inputs, targets [][]float32,
	inputShape, targetShape tensor.Shape,
) (*Dataset[B], error) {
	if len(inputs) != len(targets) {
		return nil, fmt.Errorf("dataset: %d input batches but %d target batches", len(inputs), len(targets))
	}

	d := &Dataset[B]{
		inputShape:  inputShape.Clone(),
		targetShape: targetShape.Clone(),
	}

	for i := range inputs {
		in, err := tensor.FromSlice(inputs[i], inputShape, backend)
		if err != nil {
			return nil, fmt.Errorf("dataset: input batch %d: %w", i, err)
		}
		tgt, err := tensor.FromSlice(targets[i], targetShape, backend)
		if err != nil {
			return nil, fmt.Errorf("dataset: target batch %d: %w", i, err)
		}
		d.inputs = append(d.inputs, in)
		d.targets = append(d.targets, tgt)
	}

	return d, nil
}

// NumBatches returns the number of batches.
func (d *Dataset[B]) NumBatches() int {
	return len(d.inputs)
}

// Batch returns the (input, target) pair at index i.
// It fails with ErrIndexOutOfRange when i is outside [0, NumBatches).
func (d *Dataset[B]) Batch(i int) (input, target *tensor.Tensor[float32, B], err error) {
	if i < 0 || i >= len(d.inputs) {
		return nil, nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(d.inputs))
	}
	return d.inputs[i], d.targets[i], nil
}

// InputShape returns the per-batch input tensor shape.
func (d *Dataset[B]) InputShape() tensor.Shape {
	return d.inputShape
}

// TargetShape returns the per-batch target tensor shape.
func (d *Dataset[B]) TargetShape() tensor.Shape {
	return d.targetShape
}
