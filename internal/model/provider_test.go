package model

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperjump/rwascore/internal/embedding"
)

func mockHandles() *Handles {
	return &Handles{
		Embedder:  embedding.NewMockEmbedder(4),
		Predictor: NewLinearPredictor([]float32{0, 0, 0, 0}, 0),
	}
}

func TestProvider_LoadsOnceUnderConcurrency(t *testing.T) {
	var loads atomic.Int32
	release := make(chan struct{})
	p := NewProvider(func(context.Context) (*Handles, error) {
		loads.Add(1)
		<-release
		return mockHandles(), nil
	})

	var wg sync.WaitGroup
	results := make([]*Handles, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.Get(context.Background())
		}(i)
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
	for i, h := range results {
		if errs[i] != nil {
			t.Fatalf("Get %d: %v", i, errs[i])
		}
		if h != results[0] {
			t.Errorf("caller %d got different handles", i)
		}
	}
	if !p.Loaded() {
		t.Error("provider should report loaded")
	}
}

func TestProvider_CancelledStarterDoesNotFailWaiters(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := NewProvider(func(ctx context.Context) (*Handles, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return mockHandles(), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Get(ctx)
		firstErr <- err
	}()
	<-started

	secondErr := make(chan error, 1)
	go func() {
		_, err := p.Get(context.Background())
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(release)

	if err := <-firstErr; err != nil {
		t.Errorf("starting caller: %v", err)
	}
	if err := <-secondErr; err != nil {
		t.Errorf("waiting caller: %v", err)
	}
	if !p.Loaded() {
		t.Error("handles should be cached after the shared load")
	}
}

func TestProvider_RetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	p := NewProvider(func(context.Context) (*Handles, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("model file missing")
		}
		return mockHandles(), nil
	})

	if _, err := p.Get(context.Background()); err == nil {
		t.Fatal("expected first load to fail")
	}
	if p.Loaded() {
		t.Error("failed load should not be cached")
	}

	h, err := p.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if h == nil {
		t.Fatal("nil handles")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestProvider_ObserverAndClose(t *testing.T) {
	var observed []error
	p := NewProvider(func(context.Context) (*Handles, error) {
		return mockHandles(), nil
	}, WithLoadObserver(func(_ time.Duration, err error) {
		observed = append(observed, err)
	}))

	for i := 0; i < 2; i++ {
		if _, err := p.Get(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(observed) != 1 {
		t.Errorf("observed %d loads, want 1", len(observed))
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if p.Loaded() {
		t.Error("Close should drop handles")
	}
	if _, err := p.Get(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(observed) != 2 {
		t.Errorf("observed %d loads, want 2", len(observed))
	}
}

func TestNewLoader_MockEmbedderAndLinear(t *testing.T) {
	path := writeClassifier(t, "weights: [1, 1, 1, 1]\nbias: 0\n")
	load := NewLoader(embedding.Config{Type: embedding.TypeMock, Dimensions: 4}, Config{Type: TypeLinear, Path: path})
	h, err := load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	if d := h.Embedder.Dimensions(); d != 4 {
		t.Errorf("Dimensions = %d, want 4", d)
	}
}

func TestNewLoader_ClassifierMismatch(t *testing.T) {
	path := writeClassifier(t, "weights: [1, 1]\n")
	load := NewLoader(embedding.Config{Type: embedding.TypeMock, Dimensions: 4}, Config{Type: TypeLinear, Path: path})
	if _, err := load(context.Background()); err == nil {
		t.Error("expected dimension mismatch error")
	}
}
