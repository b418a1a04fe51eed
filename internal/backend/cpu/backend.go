// Package cpu implements the tensor.Backend interface with pure Go
// element-wise kernels and gonum BLAS matrix products.
package cpu

import (
	"github.com/chalk-ml/chalk/internal/tensor"
)

// CPUBackend executes tensor operations on the host CPU.
type CPUBackend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{device: tensor.CPU}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "cpu"
}

// Device returns the device this backend computes on.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}
