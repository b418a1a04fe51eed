package accel

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/chalk-ml/chalk/internal/serialization"
)

// TrainableModel is the host-side view of a network living on an
// accelerator.
type TrainableModel interface {
	Train(inputs, targets [][]float32) (float64, error)
	Predict(inputs [][]float32) ([][]float32, error)
	SyncParameters() error
}

// WeightStat summarizes one parameter after a host sync.
type WeightStat struct {
	Name      string
	MeanAbs   float64 // mean |w|
	MeanDelta float64 // mean |Δw| since the previous sync
}

// DimensionError reports a batch whose dimensions do not match the
// configured model.
type DimensionError struct {
	Field string
	Want  int
	Got   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("accel: %s dimension mismatch: want %d, got %d", e.Field, e.Want, e.Got)
}

// Config describes the data layers of the wrapped network.
type Config struct {
	NrInputs    int
	NrOutputs   int
	OutputLayer string // layer whose activations Predict reads
	SavePath    string // directory for SaveState checkpoints
}

// Model adapts a Device to the TrainableModel interface. It owns no
// network state of its own; it validates batch dimensions and drives
// the device's dispatch/wait protocol.
type Model struct {
	config   Config
	device   Device
	lastCost float64
}

// NewModel wraps a device.
func NewModel(config Config, device Device) (*Model, error) {
	if config.NrInputs <= 0 {
		return nil, fmt.Errorf("accel: nr_inputs must be positive, got %d", config.NrInputs)
	}
	if config.NrOutputs <= 0 {
		return nil, fmt.Errorf("accel: nr_outputs must be positive, got %d", config.NrOutputs)
	}
	if device == nil {
		return nil, fmt.Errorf("accel: device is nil")
	}
	return &Model{config: config, device: device}, nil
}

// Train runs one training batch and returns its cost. Inputs and
// targets are feature-major with a shared sample column count.
func (m *Model) Train(inputs, targets [][]float32) (float64, error) {
	return m.runBatch(inputs, targets, false)
}

// Evaluate computes the cost of a batch without updating parameters.
func (m *Model) Evaluate(inputs, targets [][]float32) (float64, error) {
	return m.runBatch(inputs, targets, true)
}

func (m *Model) runBatch(inputs, targets [][]float32, testOnly bool) (float64, error) {
	batch, err := m.checkBatch(inputs, "input", m.config.NrInputs)
	if err != nil {
		return 0, err
	}
	targetBatch, err := m.checkBatch(targets, "target", m.config.NrOutputs)
	if err != nil {
		return 0, err
	}
	if targetBatch != batch {
		return 0, &DimensionError{Field: "target batch", Want: batch, Got: targetBatch}
	}

	if err := m.device.StartBatch(inputs, targets, testOnly); err != nil {
		return 0, err
	}
	cost, err := m.device.FinishBatch()
	if err != nil {
		return 0, err
	}
	if !testOnly {
		m.lastCost = cost
	}
	return cost, nil
}

// Predict runs a forward-only pass and returns the output layer's
// activations, one row per sample.
func (m *Model) Predict(inputs [][]float32) ([][]float32, error) {
	batch, err := m.checkBatch(inputs, "input", m.config.NrInputs)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, batch)
	for i := range out {
		out[i] = make([]float32, m.config.NrOutputs)
	}
	if err := m.device.StartFeatureWriter(m.config.OutputLayer, inputs, out); err != nil {
		return nil, err
	}
	if _, err := m.device.FinishBatch(); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncParameters copies device-resident parameters into host memory.
func (m *Model) SyncParameters() error {
	return m.device.SyncWithHost()
}

// WeightStats syncs parameters and returns per-parameter magnitude
// statistics, in layer order.
func (m *Model) WeightStats() ([]WeightStat, error) {
	if err := m.device.SyncWithHost(); err != nil {
		return nil, err
	}
	host := m.device.HostParameters()
	stats := make([]WeightStat, 0, len(host))
	for _, p := range host {
		stats = append(stats, WeightStat{
			Name:      p.Name,
			MeanAbs:   meanAbs(p.Value.AsFloat32()),
			MeanDelta: meanAbs(p.Delta.AsFloat32()),
		})
	}
	return stats, nil
}

// SaveState syncs parameters and writes a checkpoint for the given
// epoch into the configured save path.
func (m *Model) SaveState(epoch int) (string, error) {
	if err := m.device.SyncWithHost(); err != nil {
		return "", err
	}

	host := m.device.HostParameters()
	checkpoint := &serialization.Checkpoint{
		Epoch:   epoch,
		Cost:    m.lastCost,
		Tensors: make([]serialization.NamedTensor, 0, len(host)),
	}
	for _, p := range host {
		checkpoint.Tensors = append(checkpoint.Tensors, serialization.NamedTensor{
			Name: p.Name,
			Raw:  p.Value,
		})
	}

	path := filepath.Join(m.config.SavePath, fmt.Sprintf("checkpoint-%d.chalk", epoch))
	if err := serialization.Write(path, checkpoint); err != nil {
		return "", err
	}
	return path, nil
}

// checkBatch validates a feature-major matrix and returns its sample
// count.
func (m *Model) checkBatch(rows [][]float32, field string, wantRows int) (int, error) {
	if len(rows) != wantRows {
		return 0, &DimensionError{Field: field + " rows", Want: wantRows, Got: len(rows)}
	}
	batch := len(rows[0])
	if batch == 0 {
		return 0, &DimensionError{Field: field + " batch", Want: 1, Got: 0}
	}
	for _, row := range rows {
		if len(row) != batch {
			return 0, &DimensionError{Field: field + " batch", Want: batch, Got: len(row)}
		}
	}
	return batch, nil
}

func meanAbs(data []float32) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += math.Abs(float64(v))
	}
	return sum / float64(len(data))
}
