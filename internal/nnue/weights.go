package nnue

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Weight file format constants.
const (
	MagicNumber = 0x4e4e5545 // "NNUE"
	Version     = 2
)

// FileHeader is the header of the weight file: enough layer dimensions to
// catch a build mismatch before the binary blob after it is misread.
type FileHeader struct {
	Magic       uint32
	Version     uint32
	NumFeatures uint32
	L1Size      uint32
	L2Size      uint32
	L3Size      uint32
}

func (n *Network) header() FileHeader {
	return FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		NumFeatures: NumFeatures,
		L1Size:      L1Size,
		L2Size:      L2Size,
		L3Size:      L3Size,
	}
}

func (h FileHeader) validate() error {
	if h.Magic != MagicNumber {
		return fmt.Errorf("invalid magic number: expected %x, got %x", MagicNumber, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("unsupported version: expected %d, got %d", Version, h.Version)
	}
	if h.NumFeatures != NumFeatures {
		return fmt.Errorf("feature count mismatch: expected %d, got %d", NumFeatures, h.NumFeatures)
	}
	if h.L1Size != L1Size {
		return fmt.Errorf("L1 size mismatch: expected %d, got %d", L1Size, h.L1Size)
	}
	if h.L2Size != L2Size {
		return fmt.Errorf("L2 size mismatch: expected %d, got %d", L2Size, h.L2Size)
	}
	if h.L3Size != L3Size {
		return fmt.Errorf("L3 size mismatch: expected %d, got %d", L3Size, h.L3Size)
	}
	return nil
}

// LoadWeights loads network weights from a binary file.
// File format:
//   - Header: Magic, Version, NumFeatures, L1Size, L2Size, L3Size (4 bytes each)
//   - FTWeights: NumFeatures * L1Size * int16
//   - FTBias: L1Size * int16
//   - L1Weights: (L1Size*2) * L2Size * int8
//   - L1Bias: L2Size * float32
//   - L2Weights: L2Size * L3Size * float32
//   - L2Bias: L3Size * float32
//   - L3Weights: L3Size * float32
//   - L3Bias: float32
func (n *Network) LoadWeights(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open weights file: %w", err)
	}
	defer f.Close()
	return n.LoadWeightsFromReader(f)
}

// SaveWeights saves network weights to a binary file.
func (n *Network) SaveWeights(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create weights file: %w", err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, n.header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := 0; i < NumFeatures; i++ {
		if err := binary.Write(f, binary.LittleEndian, &n.FTWeights[i]); err != nil {
			return fmt.Errorf("failed to write FT weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.FTBias); err != nil {
		return fmt.Errorf("failed to write FT bias: %w", err)
	}
	for i := 0; i < L1Size*2; i++ {
		if err := binary.Write(f, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("failed to write L1 weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("failed to write L1 bias: %w", err)
	}
	for i := 0; i < L2Size; i++ {
		if err := binary.Write(f, binary.LittleEndian, &n.L2Weights[i]); err != nil {
			return fmt.Errorf("failed to write L2 weights at %d: %w", i, err)
		}
	}
	if err := binary.Write(f, binary.LittleEndian, &n.L2Bias); err != nil {
		return fmt.Errorf("failed to write L2 bias: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, &n.L3Weights); err != nil {
		return fmt.Errorf("failed to write L3 weights: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, n.L3Bias); err != nil {
		return fmt.Errorf("failed to write L3 bias: %w", err)
	}
	return nil
}

// LoadWeightsFromReader loads network weights from an io.Reader.
func (n *Network) LoadWeightsFromReader(r io.Reader) error {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if err := header.validate(); err != nil {
		return err
	}

	for i := 0; i < NumFeatures; i++ {
		if err := binary.Read(r, binary.LittleEndian, &n.FTWeights[i]); err != nil {
			return fmt.Errorf("failed to read FT weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.FTBias); err != nil {
		return fmt.Errorf("failed to read FT bias: %w", err)
	}
	for i := 0; i < L1Size*2; i++ {
		if err := binary.Read(r, binary.LittleEndian, &n.L1Weights[i]); err != nil {
			return fmt.Errorf("failed to read L1 weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.L1Bias); err != nil {
		return fmt.Errorf("failed to read L1 bias: %w", err)
	}
	for i := 0; i < L2Size; i++ {
		if err := binary.Read(r, binary.LittleEndian, &n.L2Weights[i]); err != nil {
			return fmt.Errorf("failed to read L2 weights at %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.L2Bias); err != nil {
		return fmt.Errorf("failed to read L2 bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.L3Weights); err != nil {
		return fmt.Errorf("failed to read L3 weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.L3Bias); err != nil {
		return fmt.Errorf("failed to read L3 bias: %w", err)
	}
	return nil
}
