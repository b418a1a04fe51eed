package accel

import (
	"fmt"

	"github.com/chalk-ml/chalk/internal/backend/cpu"
	"github.com/chalk-ml/chalk/internal/nn"
	"github.com/chalk-ml/chalk/internal/optim"
	"github.com/chalk-ml/chalk/internal/tensor"
)

// LocalConfig configures the in-process device.
type LocalConfig struct {
	LearningRate float64
	L1Weight     float64
	L2Weight     float64
	OutputLayer  string // name answered by StartFeatureWriter
}

// LocalDevice runs the accelerator protocol in-process, backed by a
// network on the CPU backend. It stands in for a GPU-resident model and
// follows the same one-batch-in-flight discipline.
type LocalDevice struct {
	net     *nn.Network[*cpu.CPUBackend]
	backend *cpu.CPUBackend
	sgd     *optim.SGD[*cpu.CPUBackend]
	config  LocalConfig

	pending  *pendingBatch
	snapshot []*tensor.RawTensor // parameter values at the last host sync
	host     []HostParameter
}

type pendingBatch struct {
	inputs   [][]float32
	targets  [][]float32
	out      [][]float32
	features bool
	testOnly bool
}

// NewLocalDevice wraps a network. The first host sync reports zero
// deltas relative to the construction-time parameters.
func NewLocalDevice(net *nn.Network[*cpu.CPUBackend], backend *cpu.CPUBackend, config LocalConfig) *LocalDevice {
	d := &LocalDevice{
		net:     net,
		backend: backend,
		sgd:     optim.NewSGD[*cpu.CPUBackend](config.LearningRate),
		config:  config,
	}
	d.snapshot = d.cloneParams()
	return d
}

func (d *LocalDevice) StartBatch(inputs, targets [][]float32, testOnly bool) error {
	if d.pending != nil {
		return ErrBatchInFlight
	}
	d.pending = &pendingBatch{inputs: inputs, targets: targets, testOnly: testOnly}
	return nil
}

func (d *LocalDevice) StartFeatureWriter(layerName string, inputs, out [][]float32) error {
	if d.pending != nil {
		return ErrBatchInFlight
	}
	if layerName != d.config.OutputLayer {
		return fmt.Errorf("%w: %q", ErrUnknownLayer, layerName)
	}
	d.pending = &pendingBatch{inputs: inputs, out: out, features: true}
	return nil
}

func (d *LocalDevice) FinishBatch() (float64, error) {
	if d.pending == nil {
		return 0, ErrNoPendingBatch
	}
	batch := d.pending
	d.pending = nil

	input, err := d.sampleMajor(batch.inputs)
	if err != nil {
		return 0, err
	}
	predicted := d.net.Forward(input)

	if batch.features {
		writeRows(predicted, batch.out)
		return 0, nil
	}

	target, err := d.sampleMajor(batch.targets)
	if err != nil {
		return 0, err
	}
	cost, err := d.net.Cost(predicted, target, d.config.L1Weight, d.config.L2Weight)
	if err != nil {
		return 0, err
	}
	if !batch.testOnly {
		if err := d.net.Backward(predicted, target, d.config.L1Weight, d.config.L2Weight); err != nil {
			return 0, err
		}
		d.sgd.Step(d.net.Parameters())
	}
	return cost, nil
}

// SyncWithHost snapshots the current parameters and their change since
// the previous sync.
func (d *LocalDevice) SyncWithHost() error {
	var host []HostParameter
	idx := 0
	for li, layer := range d.net.Layers() {
		for _, p := range layer.Parameters() {
			value := p.Tensor().Raw().Clone()
			delta, err := subtract(value, d.snapshot[idx])
			if err != nil {
				return fmt.Errorf("accel: sync %q: %w", p.Name(), err)
			}
			host = append(host, HostParameter{
				Name:  fmt.Sprintf("layer%d.%s", li, p.Name()),
				Value: value,
				Delta: delta,
			})
			idx++
		}
	}
	d.host = host
	d.snapshot = d.cloneParams()
	return nil
}

func (d *LocalDevice) HostParameters() []HostParameter {
	return d.host
}

func (d *LocalDevice) cloneParams() []*tensor.RawTensor {
	params := d.net.Parameters()
	clones := make([]*tensor.RawTensor, 0, len(params))
	for _, p := range params {
		clones = append(clones, p.Tensor().Raw().Clone())
	}
	return clones
}

// sampleMajor converts a feature-major batch into a [samples, features]
// tensor.
func (d *LocalDevice) sampleMajor(rows [][]float32) (*tensor.Tensor[float32, *cpu.CPUBackend], error) {
	features := len(rows)
	if features == 0 {
		return nil, &DimensionError{Field: "batch rows", Want: 1, Got: 0}
	}
	samples := len(rows[0])
	if samples == 0 {
		return nil, &DimensionError{Field: "batch samples", Want: 1, Got: 0}
	}
	data := make([]float32, samples*features)
	for f, row := range rows {
		for s, v := range row {
			data[s*features+f] = v
		}
	}
	return tensor.FromSlice(data, tensor.Shape{samples, features}, d.backend)
}

// writeRows copies a [samples, outputs] tensor into per-sample rows.
func writeRows(t *tensor.Tensor[float32, *cpu.CPUBackend], out [][]float32) {
	data := t.Data()
	cols := t.Shape()[1]
	for i, row := range out {
		copy(row, data[i*cols:(i+1)*cols])
	}
}

func subtract(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	delta, err := tensor.NewRaw(a.Shape(), a.DType(), a.Device())
	if err != nil {
		return nil, err
	}
	av, bv, dv := a.AsFloat32(), b.AsFloat32(), delta.AsFloat32()
	for i := range dv {
		dv[i] = av[i] - bv[i]
	}
	return delta, nil
}
