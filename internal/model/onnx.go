//go:build cgo

package model

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/rwascore/internal/ortenv"
)

// ONNXPredictor runs an exported classifier (for example a gradient-boosted model converted to
// ONNX) whose output is a [1, width] probability row.
type ONNXPredictor struct {
	session       *ort.AdvancedSession
	input         *ort.Tensor[float32]
	output        *ort.Tensor[float32]
	dimensions    int
	positiveIndex int
	mu            sync.Mutex
}

// NewONNXPredictor creates a session for cfg.Path with a [1, dimensions] float input.
func NewONNXPredictor(cfg Config, dimensions int) (*ONNXPredictor, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("invalid feature dimension %d", dimensions)
	}
	if err := ortenv.Init(""); err != nil {
		return nil, err
	}
	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(dimensions)))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.OutputWidth)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(
		cfg.Path,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create ONNX session for %s: %w", cfg.Path, err)
	}
	return &ONNXPredictor{
		session:       session,
		input:         input,
		output:        output,
		dimensions:    dimensions,
		positiveIndex: cfg.PositiveColumn(),
	}, nil
}

// Predict returns the positive-class column of the model output.
func (p *ONNXPredictor) Predict(ctx context.Context, features []float32) (float64, error) {
	if len(features) != p.dimensions {
		return 0, fmt.Errorf("feature length %d, want %d", len(features), p.dimensions)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return 0, fmt.Errorf("predictor closed")
	}
	copy(p.input.GetData(), features)
	if err := p.session.Run(); err != nil {
		return 0, fmt.Errorf("inference failed: %w", err)
	}
	return float64(p.output.GetData()[p.positiveIndex]), nil
}

// Close destroys the session and tensors.
func (p *ONNXPredictor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.session != nil {
		err = p.session.Destroy()
		p.session = nil
	}
	if p.input != nil {
		_ = p.input.Destroy()
		p.input = nil
	}
	if p.output != nil {
		_ = p.output.Destroy()
		p.output = nil
	}
	return err
}
