package model

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/rwascore/pkg/utils"
)

// LinearPredictor is a logistic-regression classifier over embedding features.
type LinearPredictor struct {
	weights []float32
	bias    float64
}

type linearFile struct {
	Weights []float32 `yaml:"weights"`
	Bias    float64   `yaml:"bias"`
}

// NewLinearPredictor returns a predictor with the given weights and bias.
func NewLinearPredictor(weights []float32, bias float64) *LinearPredictor {
	w := make([]float32, len(weights))
	copy(w, weights)
	return &LinearPredictor{weights: w, bias: bias}
}

// LoadLinearPredictor reads weights and bias from a YAML file. When dimensions > 0 the weight
// count must match it.
func LoadLinearPredictor(path string, dimensions int) (*LinearPredictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier: %w", err)
	}
	var f linearFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse classifier %s: %w", path, err)
	}
	if len(f.Weights) == 0 {
		return nil, errors.New("classifier has no weights")
	}
	if dimensions > 0 && len(f.Weights) != dimensions {
		return nil, fmt.Errorf("classifier has %d weights, embedder produces %d dimensions", len(f.Weights), dimensions)
	}
	return NewLinearPredictor(f.Weights, f.Bias), nil
}

// Predict returns sigmoid(w·x + b).
func (p *LinearPredictor) Predict(_ context.Context, features []float32) (float64, error) {
	if len(features) != len(p.weights) {
		return 0, fmt.Errorf("feature length %d, want %d", len(features), len(p.weights))
	}
	return utils.Sigmoid(utils.Dot(p.weights, features) + p.bias), nil
}

// Close is a no-op for LinearPredictor.
func (p *LinearPredictor) Close() error { return nil }
