package serialization

import (
	"fmt"
	"time"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Format constants for the .chalk checkpoint format.
//
// Layout: magic bytes, uint32 version, uint64 header size, JSON header,
// then the raw tensor data section. All integers are little-endian.
const (
	MagicBytes    = "CHLK"
	FormatVersion = 1
	MaxHeaderSize = 16 * 1024 * 1024
)

// Data type string constants used in the JSON header.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
)

// Header is the JSON header of a .chalk file.
type Header struct {
	FormatVersion int          `json:"format_version"` // Version of the .chalk format
	CreatedAt     time.Time    `json:"created_at"`     // When the file was created
	Epoch         int          `json:"epoch"`          // Training epoch at save time
	Cost          float64      `json:"cost"`           // Cost value at save time
	Tensors       []TensorMeta `json:"tensors"`        // Tensor metadata, in parameter order
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // Parameter name (e.g. "hidden.weight")
	DType  string `json:"dtype"`  // "float32" or "float64"
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Byte offset from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

func dtypeToString(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32, nil
	case tensor.Float64:
		return DTypeFloat64, nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedDType, dt)
	}
}

func dtypeFromString(s string) (tensor.DataType, error) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, nil
	case DTypeFloat64:
		return tensor.Float64, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
	}
}
