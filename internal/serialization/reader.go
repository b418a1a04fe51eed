package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chalk-ml/chalk/internal/tensor"
)

// Read loads a checkpoint from a .chalk file. Tensors are materialized
// on the CPU device.
func Read(path string) (*Checkpoint, error) {
	//nolint:gosec // G304: checkpoint path comes from the caller, which is expected
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	header, dataOffset, err := parseHeader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	dataSize := info.Size() - dataOffset

	checkpoint := &Checkpoint{
		Epoch:   header.Epoch,
		Cost:    header.Cost,
		Tensors: make([]NamedTensor, 0, len(header.Tensors)),
	}
	for _, meta := range header.Tensors {
		if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > dataSize {
			return nil, fmt.Errorf("%w: tensor %q", ErrOutOfBounds, meta.Name)
		}
		dtype, err := dtypeFromString(meta.DType)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, tensor.CPU)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		if int64(len(raw.Bytes())) != meta.Size {
			return nil, fmt.Errorf("tensor %q: size %d does not match shape %v", meta.Name, meta.Size, meta.Shape)
		}
		if _, err := file.ReadAt(raw.Bytes(), dataOffset+meta.Offset); err != nil {
			return nil, fmt.Errorf("failed to read tensor %q: %w", meta.Name, err)
		}
		checkpoint.Tensors = append(checkpoint.Tensors, NamedTensor{Name: meta.Name, Raw: raw})
	}

	return checkpoint, nil
}

func parseHeader(file *os.File) (*Header, int64, error) {
	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(file, magic); err != nil {
		return nil, 0, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, 0, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(file, binary.LittleEndian, &version); err != nil {
		return nil, 0, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, 0, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, 0, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, 0, ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerJSON); err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal header: %w", err)
	}

	dataOffset := int64(len(MagicBytes)) + 4 + 8 + int64(headerSize)
	return &header, dataOffset, nil
}
