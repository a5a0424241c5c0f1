package transform

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DefaultZstdLevel favours speed; externalized strings are usually small.
const DefaultZstdLevel = zstd.SpeedFastest

type zstdTransform struct {
	mu      sync.Mutex // EncodeAll/DecodeAll are safe, the scratch buffer is not
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	scratch []byte
}

// NewZstdTransform creates a Zstandard transform at the given level.
func NewZstdTransform(level zstd.EncoderLevel) (Transform, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to initialize encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to initialize decoder: %w", err)
	}
	return &zstdTransform{encoder: enc, decoder: dec}, nil
}

// Apply compresses data into a fresh slice.
func (s *zstdTransform) Apply(data []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scratch = s.encoder.EncodeAll(data, s.scratch[:0])
	out := make([]byte, len(s.scratch))
	copy(out, s.scratch)
	return out, nil
}

// Reverse decompresses data.
func (s *zstdTransform) Reverse(data []byte) ([]byte, error) {
	out, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reverse (decompress): %w", err)
	}
	return out, nil
}
