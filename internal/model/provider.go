package model

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/rwascore/internal/embedding"
)

// Handles bundles the loaded embedder and classifier.
type Handles struct {
	Embedder  embedding.Embedder
	Predictor Predictor
}

// Close releases both handles.
func (h *Handles) Close() error {
	var errs []error
	if h.Embedder != nil {
		errs = append(errs, h.Embedder.Close())
	}
	if h.Predictor != nil {
		errs = append(errs, h.Predictor.Close())
	}
	return errors.Join(errs...)
}

// LoadFunc builds a fresh set of handles.
type LoadFunc func(ctx context.Context) (*Handles, error)

// NewLoader returns a LoadFunc that builds the embedder from embCfg and the classifier from cfg.
func NewLoader(embCfg embedding.Config, cfg Config) LoadFunc {
	return func(ctx context.Context) (*Handles, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb, err := embedding.New(embCfg)
		if err != nil {
			return nil, fmt.Errorf("load embedder: %w", err)
		}
		pred, err := NewPredictor(cfg, emb.Dimensions())
		if err != nil {
			_ = emb.Close()
			return nil, fmt.Errorf("load classifier: %w", err)
		}
		return &Handles{Embedder: emb, Predictor: pred}, nil
	}
}

// Provider loads handles on first use and shares them between callers. Concurrent first calls
// trigger a single load. A failed load is not cached, so a later call retries it.
type Provider struct {
	load     LoadFunc
	handles  atomic.Pointer[Handles]
	group    singleflight.Group
	logger   *zap.Logger
	observer func(took time.Duration, err error)
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger for load events.
func WithLogger(logger *zap.Logger) ProviderOption {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithLoadObserver registers a callback invoked after every load attempt.
func WithLoadObserver(fn func(took time.Duration, err error)) ProviderOption {
	return func(p *Provider) { p.observer = fn }
}

// NewProvider creates a lazy provider around load.
func NewProvider(load LoadFunc, opts ...ProviderOption) *Provider {
	p := &Provider{load: load, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the shared handles, loading them if needed. The load is shared by every waiting
// caller, so it keeps the starting caller's values but not its cancellation.
func (p *Provider) Get(ctx context.Context) (*Handles, error) {
	if h := p.handles.Load(); h != nil {
		return h, nil
	}
	v, err, _ := p.group.Do("handles", func() (any, error) {
		if h := p.handles.Load(); h != nil {
			return h, nil
		}
		start := time.Now()
		h, err := p.load(context.WithoutCancel(ctx))
		took := time.Since(start)
		if p.observer != nil {
			p.observer(took, err)
		}
		if err != nil {
			p.logger.Warn("model load failed", zap.Duration("took", took), zap.Error(err))
			return nil, err
		}
		p.handles.Store(h)
		p.logger.Info("model loaded", zap.Duration("took", took))
		return h, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Handles), nil
}

// Loaded reports whether handles are currently loaded.
func (p *Provider) Loaded() bool {
	return p.handles.Load() != nil
}

// Close releases loaded handles. A later Get loads them again.
func (p *Provider) Close() error {
	if h := p.handles.Swap(nil); h != nil {
		return h.Close()
	}
	return nil
}
