package scoring

import (
	"errors"
	"testing"
)

func TestRegistry_Resolve(t *testing.T) {
	h := newPoints(t)
	m := NewModelScorer(sourceWith(0.5), nil)
	r, err := NewRegistry(h, m, "")
	if err != nil {
		t.Fatal(err)
	}
	if r.DefaultStrategy() != StrategyHeuristic {
		t.Errorf("default strategy = %q", r.DefaultStrategy())
	}
	if !r.HasModel() {
		t.Error("registry should offer the model strategy")
	}

	s, err := r.Resolve("", "")
	if err != nil {
		t.Fatal(err)
	}
	if s != h {
		t.Error("empty strategy should resolve to the default heuristic scorer")
	}

	s, err = r.Resolve("Heuristic", "weighted")
	if err != nil {
		t.Fatal(err)
	}
	if hs, ok := s.(*HeuristicScorer); !ok || hs.Profile() != ProfileWeighted {
		t.Errorf("Resolve(Heuristic, weighted) = %T", s)
	}

	s, err = r.Resolve("model", "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != StrategyModel {
		t.Errorf("Name = %q", s.Name())
	}

	errTests := []struct {
		strategy, profile string
		want              error
	}{
		{"model", "weighted", ErrUnknownProfile},
		{"oracle", "", ErrUnknownStrategy},
		{"heuristic", "fancy", ErrUnknownProfile},
	}
	for _, tt := range errTests {
		if _, err := r.Resolve(tt.strategy, tt.profile); !errors.Is(err, tt.want) {
			t.Errorf("Resolve(%q, %q) = %v, want %v", tt.strategy, tt.profile, err, tt.want)
		}
	}
}

func TestRegistry_NoModel(t *testing.T) {
	r, err := NewRegistry(newPoints(t), nil, StrategyHeuristic)
	if err != nil {
		t.Fatal(err)
	}
	if r.HasModel() {
		t.Error("registry without a model scorer should not offer it")
	}
	if _, err := r.Resolve(StrategyModel, ""); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	if _, err := NewRegistry(nil, nil, ""); err == nil {
		t.Error("expected error without a heuristic scorer")
	}
	if _, err := NewRegistry(newPoints(t), nil, "oracle"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("err = %v, want ErrUnknownStrategy", err)
	}
}
