package nn

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// ConfigurationError reports mismatched layer shapes detected at
// construction time.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s", e.Reason)
}

// ShapeMismatchError reports a cost computation over predicted and target
// tensors whose shapes differ in rank or dimensions.
type ShapeMismatchError struct {
	Predicted tensor.Shape
	Target    tensor.Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch: predicted %v, target %v", e.Predicted, e.Target)
}
