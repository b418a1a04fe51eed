// Copyright 2026 Chalk ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package accel wraps a network behind the synchronous accelerator
// protocol: dispatch a batch, block on completion, sync parameters
// back to the host.
package accel

import (
	"github.com/chalk-ml/chalk/internal/accel"
	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/nn"
)

// Protocol errors.
var (
	ErrBatchInFlight  = accel.ErrBatchInFlight
	ErrNoPendingBatch = accel.ErrNoPendingBatch
	ErrUnknownLayer   = accel.ErrUnknownLayer
)

// Device is the accelerator protocol: StartBatch/FinishBatch for
// training and StartFeatureWriter/FinishBatch for prediction.
type Device = accel.Device

// HostParameter is the host-side copy of one device parameter.
type HostParameter = accel.HostParameter

// TrainableModel is the host-side view of a network living on an
// accelerator.
type TrainableModel = accel.TrainableModel

// WeightStat summarizes one parameter after a host sync.
type WeightStat = accel.WeightStat

// DimensionError reports a batch whose dimensions do not match the
// configured model.
type DimensionError = accel.DimensionError

// Config describes the data layers of the wrapped network.
type Config = accel.Config

// Model adapts a Device to the TrainableModel interface.
type Model = accel.Model

// NewModel wraps a device.
func NewModel(config Config, device Device) (*Model, error) {
	return accel.NewModel(config, device)
}

// LocalConfig configures the in-process device.
type LocalConfig = accel.LocalConfig

// LocalDevice runs the accelerator protocol in-process on the CPU
// backend.
type LocalDevice = accel.LocalDevice

// NewLocalDevice wraps a network in the accelerator protocol.
func NewLocalDevice(net *nn.Network[*cpu.CPUBackend], backend *cpu.CPUBackend, config LocalConfig) *LocalDevice {
	return accel.NewLocalDevice(net, backend, config)
}
