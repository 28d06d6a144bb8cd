package scoring

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/rwascore/internal/embedding"
	"github.com/hyperjump/rwascore/internal/model"
)

type fixedPredictor struct {
	p   float64
	err error
}

func (f *fixedPredictor) Predict(context.Context, []float32) (float64, error) { return f.p, f.err }
func (f *fixedPredictor) Close() error { return nil }

type staticSource struct {
	handles *model.Handles
	err     error
	calls   int
}

func (s *staticSource) Get(context.Context) (*model.Handles, error) {
	s.calls++
	return s.handles, s.err
}

func sourceWith(p float64) *staticSource {
	return &staticSource{handles: &model.Handles{
		Embedder:  embedding.NewMockEmbedder(8),
		Predictor: &fixedPredictor{p: p},
	}}
}

func TestModel_NoTextSkipsLoad(t *testing.T) {
	src := &staticSource{err: errors.New("should not be called")}
	r := score(t, NewModelScorer(src, nil), "  \n ", nil)
	if r.Score != 0 {
		t.Errorf("score = %v, want 0", r.Score)
	}
	if want := []Entry{{Reason: ReasonNoText, Score: 0}}; !reflect.DeepEqual(r.Breakdown, want) {
		t.Errorf("breakdown = %+v", r.Breakdown)
	}
	if src.calls != 0 {
		t.Errorf("model loaded %d times for blank text", src.calls)
	}
}

func TestModel_ScoreIsModelOnlyByDefault(t *testing.T) {
	r := score(t, NewModelScorer(sourceWith(0.5), nil), "Property deed, valuation $120,000, signed 2021", nil)

	if r.Score != 50 {
		t.Errorf("score = %v, want 50", r.Score)
	}
	want := []string{ReasonModelProbability, ReasonNumEntities, ReasonHasDate, ReasonHasSignature}
	if got := reasons(r); !reflect.DeepEqual(got, want) {
		t.Fatalf("reasons = %v, want %v", got, want)
	}
	if r.Breakdown[0].Value != 0.5 || r.Breakdown[0].Score != 50 {
		t.Errorf("probability entry = %+v", r.Breakdown[0])
	}
	if r.Breakdown[1].Value != 3 || r.Breakdown[1].Score != 6 {
		t.Errorf("numeric entry = %+v", r.Breakdown[1])
	}
	if r.Breakdown[2].Score != 5 || r.Breakdown[3].Score != 5 {
		t.Errorf("date = %v, signature = %v", r.Breakdown[2].Score, r.Breakdown[3].Score)
	}
}

func TestModel_AuxiliaryBonusesOptIn(t *testing.T) {
	s := NewModelScorer(sourceWith(0.5), &ModelScorerConfig{AddAuxiliaryBonuses: true})
	if r := score(t, s, "Property deed, valuation $120,000, signed 2021", nil); r.Score != 66 {
		t.Errorf("score = %v, want 66", r.Score)
	}

	high := NewModelScorer(sourceWith(0.95), &ModelScorerConfig{AddAuxiliaryBonuses: true})
	if r := score(t, high, "signed 2021 1 2 3 4 5 6 7 8 9 10", nil); r.Score != MaxScore {
		t.Errorf("score = %v, want %v", r.Score, MaxScore)
	}
}

func TestModel_ExplicitZeroPointsFromYAML(t *testing.T) {
	var cfg ModelScorerConfig
	if err := yaml.Unmarshal([]byte("add_auxiliary_bonuses: true\nsignature_points: 0\n"), &cfg); err != nil {
		t.Fatal(err)
	}
	r := score(t, NewModelScorer(sourceWith(0.5), &cfg), "Property deed, valuation $120,000, signed 2021", nil)
	// 50 + numeric 6 + date 5, signature disabled
	if r.Score != 61 {
		t.Errorf("score = %v, want 61", r.Score)
	}
	if r.Breakdown[3].Value != true || r.Breakdown[3].Score != 0 {
		t.Errorf("signature entry = %+v", r.Breakdown[3])
	}
}

func TestModel_NoAuxiliaryFeatures(t *testing.T) {
	r := score(t, NewModelScorer(sourceWith(0.2), nil), "plain words only", nil)
	if math.Abs(r.Score-20) > 1e-9 {
		t.Errorf("score = %v, want 20", r.Score)
	}
	for _, e := range r.Breakdown[1:] {
		if e.Score != 0 {
			t.Errorf("%s = %v, want 0", e.Reason, e.Score)
		}
	}
}

func TestModel_InvalidOutput(t *testing.T) {
	for _, p := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := NewModelScorer(sourceWith(p), nil).Score(context.Background(), "deed", nil)
		if !errors.Is(err, ErrModelOutputInvalid) {
			t.Errorf("p = %v: err = %v, want ErrModelOutputInvalid", p, err)
		}
	}
}

func TestModel_Unavailable(t *testing.T) {
	loadErr := errors.New("model file missing")
	_, err := NewModelScorer(&staticSource{err: loadErr}, nil).Score(context.Background(), "deed", nil)
	if !errors.Is(err, ErrModelUnavailable) || !errors.Is(err, loadErr) {
		t.Errorf("err = %v, want ErrModelUnavailable wrapping the load error", err)
	}

	predictErr := &staticSource{handles: &model.Handles{
		Embedder:  embedding.NewMockEmbedder(8),
		Predictor: &fixedPredictor{err: errors.New("session closed")},
	}}
	_, err = NewModelScorer(predictErr, nil).Score(context.Background(), "deed", nil)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestModel_WithProviderLoadsOnce(t *testing.T) {
	loads := 0
	provider := model.NewProvider(func(context.Context) (*model.Handles, error) {
		loads++
		return &model.Handles{
			Embedder:  embedding.NewMockEmbedder(8),
			Predictor: &fixedPredictor{p: 0.75},
		}, nil
	})
	s := NewModelScorer(provider, nil)
	for i := 0; i < 3; i++ {
		if r := score(t, s, "title deed", nil); r.Score != 75 {
			t.Errorf("score = %v, want 75", r.Score)
		}
	}
	if loads != 1 {
		t.Errorf("loads = %d, want 1", loads)
	}
}
