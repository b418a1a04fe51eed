// Package accel wraps an accelerator-resident network behind a small
// synchronous protocol. A batch is dispatched with StartBatch or
// StartFeatureWriter and the caller blocks on FinishBatch for the
// result. Dispatch and completion never overlap, so a Device carries at
// most one batch in flight.
package accel

import (
	"errors"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Protocol errors.
var (
	ErrBatchInFlight  = errors.New("accel: batch already in flight")
	ErrNoPendingBatch = errors.New("accel: no pending batch")
	ErrUnknownLayer   = errors.New("accel: unknown layer")
)

// Device is the accelerator protocol.
//
// Batches are feature-major, matching the device's native layout: one
// row per feature, one column per sample.
type Device interface {
	// StartBatch dispatches a training or evaluation batch. With
	// testOnly set the device computes the cost without updating
	// parameters.
	StartBatch(inputs, targets [][]float32, testOnly bool) error

	// FinishBatch blocks until the pending batch completes and returns
	// its cost.
	FinishBatch() (float64, error)

	// StartFeatureWriter dispatches a forward-only pass that writes the
	// named layer's activations into out, one row per sample. The
	// result is valid after FinishBatch returns.
	StartFeatureWriter(layerName string, inputs, out [][]float32) error

	// SyncWithHost copies device-resident parameters into host memory.
	SyncWithHost() error

	// HostParameters returns the snapshot taken by the last
	// SyncWithHost, in layer order, or nil before the first sync.
	HostParameters() []HostParameter
}

// HostParameter is the host-side copy of one device parameter.
type HostParameter struct {
	Name  string
	Value *tensor.RawTensor
	Delta *tensor.RawTensor // change since the previous host sync
}
