// Package embedding turns document text into fixed-dimension, L2-normalized vectors.
package embedding

import (
	"context"
	"fmt"
)

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}

// Embedder types.
const (
	TypeONNX = "onnx"
	TypeMock = "mock"
)

// Pooling modes for ONNX models.
const (
	// PoolingMean averages the token vectors of last_hidden_state over the attention mask.
	PoolingMean = "mean"
	// PoolingNone reads an already pooled [1, dims] output.
	PoolingNone = "none"
)

// Config holds embedder settings.
type Config struct {
	Type              string `yaml:"type"`                // onnx (default) or mock
	ModelPath         string `yaml:"model_path"`          // ONNX sentence-embedding model
	TokenizerPath     string `yaml:"tokenizer_path"`      // HuggingFace tokenizer.json; empty uses the hash tokenizer
	SharedLibraryPath string `yaml:"shared_library_path"` // onnxruntime shared library; empty uses the platform default
	Dimensions        int    `yaml:"dimensions"`
	MaxTokens         int    `yaml:"max_tokens"`
	CacheSize         int    `yaml:"cache_size"`
	Pooling           string `yaml:"pooling"`
	OutputName        string `yaml:"output_name"`
}

// ApplyDefaults sets default values for any zero values in c.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = TypeONNX
	}
	if c.ModelPath == "" {
		c.ModelPath = "/usr/local/var/rwascore/models/all-MiniLM-L6-v2/model.onnx"
	}
	if c.Dimensions == 0 {
		c.Dimensions = 384
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 256
	}
	if c.CacheSize == 0 {
		c.CacheSize = 1024
	}
	if c.Pooling == "" {
		c.Pooling = PoolingMean
	}
	if c.OutputName == "" {
		if c.Pooling == PoolingMean {
			c.OutputName = "last_hidden_state"
		} else {
			c.OutputName = "output"
		}
	}
}

// New creates the embedder described by cfg. It never falls back to another type: a configured
// ONNX model that cannot be loaded is an error.
func New(cfg Config) (Embedder, error) {
	cfg.ApplyDefaults()
	switch cfg.Type {
	case TypeONNX:
		tokenizer, err := NewTokenizer(cfg.TokenizerPath)
		if err != nil {
			return nil, err
		}
		return NewONNXEmbedder(cfg, tokenizer)
	case TypeMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Type)
	}
}
