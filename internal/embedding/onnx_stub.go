//go:build !cgo

package embedding

import (
	"context"

	"github.com/hyperjump/rwascore/internal/ortenv"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_ Config, _ Tokenizer) (*ONNXEmbedder, error) {
	return nil, ortenv.ErrNoCGO
}

func (e *ONNXEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, ortenv.ErrNoCGO }
func (e *ONNXEmbedder) Dimensions() int                                 { return 0 }
func (e *ONNXEmbedder) Close() error                                    { return nil }
