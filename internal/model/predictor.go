// Package model loads the classifier that the model-assisted strategy runs on document
// embeddings, and shares the loaded handles across concurrent requests.
package model

import (
	"context"
	"fmt"
)

// Predictor returns the positive-class probability for a feature vector.
type Predictor interface {
	Predict(ctx context.Context, features []float32) (float64, error)
	Close() error
}

// Predictor types.
const (
	TypeLinear = "linear"
	TypeONNX   = "onnx"
)

// Config holds classifier settings.
type Config struct {
	Type          string `yaml:"type"`           // linear (default) or onnx
	Path          string `yaml:"path"`           // YAML weights for linear, .onnx file for onnx
	InputName     string `yaml:"input_name"`     // onnx only
	OutputName    string `yaml:"output_name"`    // onnx only
	OutputWidth   int    `yaml:"output_width"`   // onnx only: number of class columns in the output
	PositiveIndex *int   `yaml:"positive_index"` // onnx only: column holding the positive-class probability; defaults to the last
}

// PositiveColumn returns the output column that holds the positive-class probability.
func (c *Config) PositiveColumn() int {
	if c.PositiveIndex == nil {
		return c.OutputWidth - 1
	}
	return *c.PositiveIndex
}

// ApplyDefaults sets default values for any zero values in c.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = TypeLinear
	}
	if c.Path == "" {
		c.Path = "/usr/local/var/rwascore/models/rwa_classifier.yaml"
	}
	if c.InputName == "" {
		c.InputName = "input"
	}
	if c.OutputName == "" {
		c.OutputName = "probabilities"
	}
	if c.OutputWidth == 0 {
		c.OutputWidth = 2
	}
}

// NewPredictor creates the predictor described by cfg for feature vectors of the given dimension.
func NewPredictor(cfg Config, dimensions int) (Predictor, error) {
	cfg.ApplyDefaults()
	switch cfg.Type {
	case TypeLinear:
		return LoadLinearPredictor(cfg.Path, dimensions)
	case TypeONNX:
		if col := cfg.PositiveColumn(); col < 0 || col >= cfg.OutputWidth {
			return nil, fmt.Errorf("positive_index %d out of range for output_width %d", col, cfg.OutputWidth)
		}
		return NewONNXPredictor(cfg, dimensions)
	default:
		return nil, fmt.Errorf("unknown predictor type %q", cfg.Type)
	}
}
