// Package transform post-processes externalized strings before they leave
// the process, and undoes that processing on the way back in.
package transform

import (
	"fmt"
	"strings"
)

type Transform interface {
	Apply(data []byte) ([]byte, error)
	Reverse(data []byte) ([]byte, error)
}

type noOpTransform struct{}

func NewNoOpTransform() Transform                            { return &noOpTransform{} }
func (n *noOpTransform) Apply(data []byte) ([]byte, error)   { return data, nil }
func (n *noOpTransform) Reverse(data []byte) ([]byte, error) { return data, nil }

// Names accepted by ByName.
const (
	None = "none"
	Gzip = "gzip"
	Zstd = "zstd"
)

// ByName builds the transform registered under name. An empty name is None.
func ByName(name string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", None:
		return NewNoOpTransform(), nil
	case Gzip:
		return NewGzipTransform(), nil
	case Zstd:
		return NewZstdTransform(DefaultZstdLevel)
	}
	return nil, fmt.Errorf("transform: unknown transform %q", name)
}
