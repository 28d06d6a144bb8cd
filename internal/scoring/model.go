package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/rwascore/internal/features"
	"github.com/hyperjump/rwascore/internal/model"
)

// HandleSource supplies the shared embedder and classifier. *model.Provider implements it.
type HandleSource interface {
	Get(ctx context.Context) (*model.Handles, error)
}

// ModelScorer combines a classifier probability over the text embedding with auxiliary
// numeric, date, and signature features. Metadata is not used by this strategy.
type ModelScorer struct {
	source HandleSource
	config *ModelScorerConfig
	logger *zap.Logger
}

// NewModelScorer creates a model-assisted scorer. A nil config uses defaults.
func NewModelScorer(source HandleSource, config *ModelScorerConfig, opts ...Option) *ModelScorer {
	if config == nil {
		config = &ModelScorerConfig{}
	}
	config.ApplyDefaults()
	o := buildOptions(opts)
	return &ModelScorer{source: source, config: config, logger: o.logger}
}

// Name returns the strategy name.
func (s *ModelScorer) Name() string {
	return StrategyModel
}

// Score embeds text, runs the classifier, and reports the auxiliary features. Load and inference
// failures wrap ErrModelUnavailable; a probability outside [0, 1] wraps ErrModelOutputInvalid.
func (s *ModelScorer) Score(ctx context.Context, text string, _ Metadata) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return noTextResult(), nil
	}

	handles, err := s.source.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	vec, err := handles.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed: %w", ErrModelUnavailable, err)
	}
	proba, err := handles.Predictor.Predict(ctx, vec)
	if err != nil {
		return nil, fmt.Errorf("%w: predict: %w", ErrModelUnavailable, err)
	}
	if math.IsNaN(proba) || proba < 0 || proba > 1 {
		return nil, fmt.Errorf("%w: probability %v outside [0, 1]", ErrModelOutputInvalid, proba)
	}

	cfg := s.config
	base := proba * MaxScore
	count := len(features.NumericEntities(text))
	numScore := math.Min(float64(count)*cfg.NumericEntityPoints, cfg.NumericEntityCap)
	hasDate := features.HasDate(text)
	hasSig := features.HasSignatureWord(text)

	breakdown := []Entry{
		{Reason: ReasonModelProbability, Value: proba, Score: base},
		{Reason: ReasonNumEntities, Value: count, Score: numScore},
		{Reason: ReasonHasDate, Value: hasDate, Score: pointsIf(hasDate, cfg.DatePoints)},
		{Reason: ReasonHasSignature, Value: hasSig, Score: pointsIf(hasSig, cfg.SignaturePoints)},
	}

	score := base
	if cfg.AddAuxiliaryBonuses {
		for _, e := range breakdown[1:] {
			score += e.Score
		}
		score = clamp(score, 0, MaxScore)
	}
	s.logger.Debug("model score",
		zap.Float64("probability", proba),
		zap.Float64("score", score),
		zap.Int("numeric_entities", count))
	return &Result{Score: score, Breakdown: breakdown}, nil
}

func pointsIf(cond bool, points float64) float64 {
	if cond {
		return points
	}
	return 0
}
