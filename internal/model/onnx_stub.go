//go:build !cgo

package model

import (
	"context"

	"github.com/hyperjump/rwascore/internal/ortenv"
)

// ONNXPredictor stub type when built without CGO (see onnx.go for real implementation).
type ONNXPredictor struct{}

// NewONNXPredictor returns an error when built without CGO (ONNX not available).
func NewONNXPredictor(_ Config, _ int) (*ONNXPredictor, error) {
	return nil, ortenv.ErrNoCGO
}

func (p *ONNXPredictor) Predict(context.Context, []float32) (float64, error) { return 0, ortenv.ErrNoCGO }
func (p *ONNXPredictor) Close() error                                       { return nil }
