package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// NamedTensor pairs a parameter name with its raw tensor. Order is
// preserved in the file so readers can restore parameters positionally.
type NamedTensor struct {
	Name string
	Raw  *tensor.RawTensor
}

// Checkpoint is the in-memory form of a .chalk file.
type Checkpoint struct {
	Epoch   int
	Cost    float64
	Tensors []NamedTensor
}

// Tensor returns the named tensor, or ErrTensorNotFound.
func (c *Checkpoint) Tensor(name string) (*tensor.RawTensor, error) {
	for _, nt := range c.Tensors {
		if nt.Name == name {
			return nt.Raw, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
}

// Write saves a checkpoint to path in .chalk format.
func Write(path string, checkpoint *Checkpoint) error {
	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Epoch:         checkpoint.Epoch,
		Cost:          checkpoint.Cost,
		Tensors:       make([]TensorMeta, 0, len(checkpoint.Tensors)),
	}

	seen := make(map[string]bool, len(checkpoint.Tensors))
	var offset int64
	for _, nt := range checkpoint.Tensors {
		if seen[nt.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, nt.Name)
		}
		seen[nt.Name] = true

		dtype, err := dtypeToString(nt.Raw.DType())
		if err != nil {
			return fmt.Errorf("tensor %q: %w", nt.Name, err)
		}
		size := int64(len(nt.Raw.Bytes()))
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   nt.Name,
			DType:  dtype,
			Shape:  []int(nt.Raw.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	//nolint:gosec // G304: checkpoint path comes from the caller, which is expected
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, nt := range checkpoint.Tensors {
		if _, err := file.Write(nt.Raw.Bytes()); err != nil {
			return fmt.Errorf("failed to write tensor %q: %w", nt.Name, err)
		}
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
