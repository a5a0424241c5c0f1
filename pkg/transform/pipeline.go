package transform

import (
	"errors"
	"fmt"
)

// Pipeline applies transforms 0..N on output and N..0 on input.
type Pipeline struct {
	transforms []Transform
}

// NewPipeline requires at least one transform; use NewNoOpTransform for an
// explicitly empty pipeline.
func NewPipeline(transforms ...Transform) (*Pipeline, error) {
	if len(transforms) == 0 {
		return nil, errors.New("transform: pipeline requires at least one transform")
	}
	s := make([]Transform, len(transforms))
	copy(s, transforms)
	return &Pipeline{transforms: s}, nil
}

// NewPipelineByName builds a pipeline from transform names.
func NewPipelineByName(names ...string) (*Pipeline, error) {
	if len(names) == 0 {
		names = []string{None}
	}
	ts := make([]Transform, 0, len(names))
	for _, name := range names {
		t, err := ByName(name)
		if err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return NewPipeline(ts...)
}

// PrepareOutput applies the transforms in forward order.
func (p *Pipeline) PrepareOutput(data []byte) ([]byte, error) {
	var err error
	cur := data
	for i, t := range p.transforms {
		cur, err = t.Apply(cur)
		if err != nil {
			return nil, fmt.Errorf("prepare output: transform %d (%T) Apply failed: %w", i, t, err)
		}
	}
	return cur, nil
}

// ParseInput applies the transforms in reverse order.
func (p *Pipeline) ParseInput(data []byte) ([]byte, error) {
	var err error
	cur := data
	for i := len(p.transforms) - 1; i >= 0; i-- {
		t := p.transforms[i]
		cur, err = t.Reverse(cur)
		if err != nil {
			return nil, fmt.Errorf("parse input: transform %d (%T) Reverse failed: %w", i, t, err)
		}
	}
	return cur, nil
}
